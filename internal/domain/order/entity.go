package order

import (
	"time"

	"github.com/shopspring/decimal"
)

// Status 订单状态
// 教学要点:
// 1. 使用字符串而非int(接口返回、日志、数据库中直接可读)
// 2. 定义为具名类型,便于添加方法
type Status string

const (
	StatusPending   Status = "PENDING"   // 待支付
	StatusPaid      Status = "PAID"      // 已支付
	StatusShipped   Status = "SHIPPED"   // 已发货
	StatusCompleted Status = "COMPLETED" // 已完成
	StatusCancelled Status = "CANCELLED" // 已取消
	StatusRefunded  Status = "REFUNDED"  // 已退款
)

// Valid 是否为已知状态
func (s Status) Valid() bool {
	_, ok := transitions[s]
	return ok
}

// Counted 是否计入销量统计(取消、退款不计)
func (s Status) Counted() bool {
	return s != StatusCancelled && s != StatusRefunded
}

// PaymentStatus 支付状态
type PaymentStatus string

const (
	PaymentUnpaid   PaymentStatus = "UNPAID"
	PaymentPaid     PaymentStatus = "PAID"
	PaymentRefunded PaymentStatus = "REFUNDED"
	PaymentFailed   PaymentStatus = "FAILED"
)

// transitions 合法的状态转换规则
var transitions = map[Status][]Status{
	StatusPending:   {StatusPaid, StatusCancelled}, // 待支付→已支付/已取消
	StatusPaid:      {StatusShipped, StatusRefunded},
	StatusShipped:   {StatusCompleted},
	StatusCompleted: {}, // 终态
	StatusCancelled: {}, // 终态
	StatusRefunded:  {}, // 终态
}

// Order 订单实体(聚合根)
// 教学要点:
// 1. Order是聚合根,OrderItem是子实体
// 2. TotalAmount在结算时计算一次后冻结,之后不再随图书价格变化
// 3. CartID指向生成该订单的购物车(唯一索引,同一购物车只能结算一次)
type Order struct {
	ID            uint
	OrderNo       string // 订单号(业务主键,全局唯一)
	UserID        uint
	CartID        *uint
	Status        Status
	PaymentStatus PaymentStatus
	TotalAmount   decimal.Decimal
	Currency      string
	PlacedAt      time.Time
	Items         []OrderItem // 订单明细(聚合内的子实体)
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// OrderItem 订单明细项
// 教学要点:
// 1. 以(OrderID, BookID)为复合主键
// 2. UnitPrice取自购物车中捕获的价格,BookTitleSnapshot取结算时的书名
// 3. 图书之后改名或下架,历史订单仍然准确
type OrderItem struct {
	OrderID           uint
	BookID            uint
	Quantity          int
	UnitPrice         decimal.Decimal
	BookTitleSnapshot string
}

// Subtotal 明细小计
func (i OrderItem) Subtotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// NewOrder 创建新订单(工厂方法)
// 初始状态为PENDING/UNPAID,总金额按明细计算
func NewOrder(orderNo string, userID uint, cartID *uint, currency string, items []OrderItem) (*Order, error) {
	if len(items) == 0 {
		return nil, ErrInvalidOrderItems
	}
	for _, item := range items {
		if item.Quantity <= 0 {
			return nil, ErrInvalidQuantity
		}
	}

	now := time.Now()
	o := &Order{
		OrderNo:       orderNo,
		UserID:        userID,
		CartID:        cartID,
		Status:        StatusPending,
		PaymentStatus: PaymentUnpaid,
		Currency:      currency,
		PlacedAt:      now,
		Items:         items,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	o.TotalAmount = o.CalculateTotal()
	return o, nil
}

// CanTransitionTo 检查是否可以转换到目标状态
// 教学要点:状态机设计,防止非法状态跳转
func (o *Order) CanTransitionTo(target Status) bool {
	for _, allowed := range transitions[o.Status] {
		if allowed == target {
			return true
		}
	}
	return false
}

// TransitionTo 状态转换,同时维护支付状态
func (o *Order) TransitionTo(target Status) error {
	if !o.CanTransitionTo(target) {
		return ErrInvalidStatusTransition.WithDetails(map[string]any{
			"from": o.Status,
			"to":   target,
		})
	}
	switch target {
	case StatusPaid:
		o.PaymentStatus = PaymentPaid
	case StatusRefunded:
		o.PaymentStatus = PaymentRefunded
	}
	o.Status = target
	o.UpdatedAt = time.Now()
	return nil
}

// RestocksOn 转换到target时是否需要回补库存
func RestocksOn(target Status) bool {
	return target == StatusCancelled || target == StatusRefunded
}

// CalculateTotal 按明细计算订单总金额
func (o *Order) CalculateTotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.Subtotal())
	}
	return total
}

// IsOwnedBy 检查订单是否属于指定用户
// 教学要点:权限校验,防止用户访问他人订单
func (o *Order) IsOwnedBy(userID uint) bool {
	return o.UserID == userID
}
