package order

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// 事件路由键(topic exchange,消费方可以绑定order.*)
const (
	RoutingKeyCreated       = "order.created"
	RoutingKeyStatusChanged = "order.status_changed"
)

// CreatedEvent 订单创建事件
type CreatedEvent struct {
	OrderID     uint            `json:"orderId"`
	OrderNo     string          `json:"orderNo"`
	UserID      uint            `json:"userId"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	Currency    string          `json:"currency"`
	Items       []EventItem     `json:"items"`
	OccurredAt  time.Time       `json:"occurredAt"`
}

// EventItem 事件中的订单明细
type EventItem struct {
	BookID   uint `json:"bookId"`
	Quantity int  `json:"quantity"`
}

// StatusChangedEvent 订单状态变化事件
type StatusChangedEvent struct {
	OrderID    uint      `json:"orderId"`
	OrderNo    string    `json:"orderNo"`
	UserID     uint      `json:"userId"`
	From       Status    `json:"from"`
	To         Status    `json:"to"`
	OccurredAt time.Time `json:"occurredAt"`
}

// NewCreatedEvent 由订单构造创建事件
func NewCreatedEvent(o *Order) CreatedEvent {
	items := make([]EventItem, len(o.Items))
	for i, item := range o.Items {
		items[i] = EventItem{BookID: item.BookID, Quantity: item.Quantity}
	}
	return CreatedEvent{
		OrderID:     o.ID,
		OrderNo:     o.OrderNo,
		UserID:      o.UserID,
		TotalAmount: o.TotalAmount,
		Currency:    o.Currency,
		Items:       items,
		OccurredAt:  time.Now().UTC(),
	}
}

// NewStatusChangedEvent 由订单构造状态变化事件
func NewStatusChangedEvent(o *Order, from Status) StatusChangedEvent {
	return StatusChangedEvent{
		OrderID:    o.ID,
		OrderNo:    o.OrderNo,
		UserID:     o.UserID,
		From:       from,
		To:         o.Status,
		OccurredAt: time.Now().UTC(),
	}
}

// EventPublisher 订单事件发布
// 在事务提交后调用,发布失败只记录日志,不影响已提交的订单
type EventPublisher interface {
	OrderCreated(ctx context.Context, o *Order)
	OrderStatusChanged(ctx context.Context, o *Order, from Status)
}
