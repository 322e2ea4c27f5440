package messaging

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/xiebiao/bookhub/internal/domain/order"
	"github.com/xiebiao/bookhub/internal/infrastructure/config"
)

type published struct {
	key     string
	message interface{}
}

type fakePublisher struct {
	sent []published
	err  error
}

func (f *fakePublisher) Publish(_ context.Context, key string, message interface{}) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, published{key, message})
	return nil
}

func testOrder(t *testing.T) *order.Order {
	t.Helper()
	o, err := order.NewOrder("BH20231114221320000001", 7, nil, "CNY", []order.OrderItem{
		{BookID: 1, Quantity: 2, UnitPrice: decimal.NewFromInt(50), BookTitleSnapshot: "Go"},
	})
	require.NoError(t, err)
	o.ID = 11
	return o
}

func TestOrderEventPublisher(t *testing.T) {
	fake := &fakePublisher{}
	p := newOrderEventPublisher(fake, zap.NewNop())
	o := testOrder(t)

	p.OrderCreated(context.Background(), o)
	require.NoError(t, o.TransitionTo(order.StatusPaid))
	p.OrderStatusChanged(context.Background(), o, order.StatusPending)

	require.Len(t, fake.sent, 2)
	assert.Equal(t, order.RoutingKeyCreated, fake.sent[0].key)
	created := fake.sent[0].message.(order.CreatedEvent)
	assert.Equal(t, uint(11), created.OrderID)
	assert.True(t, created.TotalAmount.Equal(decimal.NewFromInt(100)))

	changed := fake.sent[1].message.(order.StatusChangedEvent)
	assert.Equal(t, order.StatusPending, changed.From)
	assert.Equal(t, order.StatusPaid, changed.To)
}

func TestOrderEventPublisherFailureIsLogged(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	p := newOrderEventPublisher(&fakePublisher{err: errors.New("channel closed")}, zap.New(core))

	p.OrderCreated(context.Background(), testOrder(t))

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "publish order event failed", entry.Message)
	assert.Equal(t, order.RoutingKeyCreated, entry.ContextMap()["routing_key"])
}

func TestNewOrderEventPublisherDisabled(t *testing.T) {
	cfg := &config.Config{}
	p, cleanup, err := NewOrderEventPublisher(cfg, zap.NewNop())
	require.NoError(t, err)
	defer cleanup()
	assert.IsType(t, Noop{}, p)
}

func TestOrderEventPublisherBreakerDropsEvents(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	fake := &fakePublisher{err: errors.New("connection refused")}
	p := newOrderEventPublisher(fake, zap.New(core))
	o := testOrder(t)

	for i := 0; i < breakerFailures; i++ {
		p.OrderCreated(context.Background(), o)
	}
	require.Equal(t, "OPEN", p.breaker.State().String())

	// 熔断期间broker恢复,事件依然被丢弃,不会调用Publish
	fake.err = nil
	p.OrderCreated(context.Background(), o)
	assert.Empty(t, fake.sent)

	dropped := logs.FilterMessage("mq circuit open, order event dropped")
	assert.Equal(t, 1, dropped.Len())
	assert.Equal(t, 1, logs.FilterMessage("mq circuit breaker state changed").Len())
}
