// Package messaging 把领域事件发布到RabbitMQ
package messaging

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/xiebiao/bookhub/internal/domain/order"
	"github.com/xiebiao/bookhub/internal/infrastructure/config"
	"github.com/xiebiao/bookhub/pkg/circuitbreaker"
	"github.com/xiebiao/bookhub/pkg/metrics"
	"github.com/xiebiao/bookhub/pkg/mq"
)

const (
	// publishTimeout 单次发布的超时时间,broker卡住时不拖慢请求
	publishTimeout = 3 * time.Second

	// 连续失败5次后熔断30秒,期间事件直接丢弃
	breakerFailures = 5
	breakerTimeout  = 30 * time.Second
)

// publisher pkg/mq.Publisher的抽象,测试中替换
type publisher interface {
	Publish(ctx context.Context, routingKey string, message interface{}) error
}

// OrderEventPublisher 订单事件发布者
type OrderEventPublisher struct {
	pub     publisher
	breaker *circuitbreaker.CircuitBreaker
	log     *zap.Logger
}

var _ order.EventPublisher = (*OrderEventPublisher)(nil)

// NewOrderEventPublisher 根据配置创建事件发布者
// mq.enabled=false时返回Noop实现
func NewOrderEventPublisher(cfg *config.Config, log *zap.Logger) (order.EventPublisher, func(), error) {
	if !cfg.MQ.Enabled {
		log.Info("mq disabled, order events will not be published")
		return Noop{}, func() {}, nil
	}

	p, err := mq.NewPublisher(cfg.MQ.URL, cfg.MQ.Exchange, "topic", log)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if err := p.Close(); err != nil {
			log.Warn("mq close failed", zap.Error(err))
		}
	}
	return newOrderEventPublisher(p, log), cleanup, nil
}

func newOrderEventPublisher(p publisher, log *zap.Logger) *OrderEventPublisher {
	breaker := circuitbreaker.New("order-events", circuitbreaker.Config{
		Timeout: breakerTimeout,
		ReadyToTrip: func(c circuitbreaker.Counts) bool {
			return c.ConsecutiveFailures >= breakerFailures
		},
		OnStateChange: func(name string, from, to circuitbreaker.State) {
			log.Warn("mq circuit breaker state changed",
				zap.String("breaker", name),
				zap.Stringer("from", from),
				zap.Stringer("to", to))
		},
	})
	return &OrderEventPublisher{pub: p, breaker: breaker, log: log}
}

// OrderCreated 发布order.created
func (p *OrderEventPublisher) OrderCreated(ctx context.Context, o *order.Order) {
	p.publish(ctx, order.RoutingKeyCreated, order.NewCreatedEvent(o), o.ID)
}

// OrderStatusChanged 发布order.status_changed
func (p *OrderEventPublisher) OrderStatusChanged(ctx context.Context, o *order.Order, from order.Status) {
	p.publish(ctx, order.RoutingKeyStatusChanged, order.NewStatusChangedEvent(o, from), o.ID)
}

// publish 尽力而为:失败只记录日志和指标
// 请求结束后ctx会被取消,这里使用独立的超时ctx
func (p *OrderEventPublisher) publish(ctx context.Context, routingKey string, event interface{}, orderID uint) {
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	err := p.breaker.Execute(func() error {
		return p.pub.Publish(pubCtx, routingKey, event)
	})
	if errors.Is(err, circuitbreaker.ErrOpenState) {
		metrics.IncCounterVec(metrics.EventsPublishedTotal, routingKey, "dropped")
		p.log.Warn("mq circuit open, order event dropped",
			zap.String("routing_key", routingKey),
			zap.Uint("order_id", orderID))
		return
	}
	if err != nil {
		metrics.IncCounterVec(metrics.EventsPublishedTotal, routingKey, "error")
		p.log.Error("publish order event failed",
			zap.String("routing_key", routingKey),
			zap.Uint("order_id", orderID),
			zap.Error(err))
		return
	}
	metrics.IncCounterVec(metrics.EventsPublishedTotal, routingKey, "ok")
}

// Noop 不发布任何事件
type Noop struct{}

func (Noop) OrderCreated(context.Context, *order.Order)                     {}
func (Noop) OrderStatusChanged(context.Context, *order.Order, order.Status) {}
