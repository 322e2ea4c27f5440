package order_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	appcart "github.com/xiebiao/bookhub/internal/application/cart"
	apporder "github.com/xiebiao/bookhub/internal/application/order"
	"github.com/xiebiao/bookhub/internal/domain/book"
	"github.com/xiebiao/bookhub/internal/domain/cart"
	"github.com/xiebiao/bookhub/internal/domain/order"
	"github.com/xiebiao/bookhub/internal/testutil/memstore"
	apperrors "github.com/xiebiao/bookhub/pkg/errors"
)

// recordingEvents 记录发布的领域事件
type recordingEvents struct {
	mu      sync.Mutex
	created []string
	changed [][2]order.Status
}

func (e *recordingEvents) OrderCreated(_ context.Context, o *order.Order) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.created = append(e.created, o.OrderNo)
}

func (e *recordingEvents) OrderStatusChanged(_ context.Context, o *order.Order, from order.Status) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.changed = append(e.changed, [2]order.Status{from, o.Status})
}

type fixture struct {
	store    *memstore.Store
	cart     *appcart.CartUseCase
	checkout *apporder.CheckoutUseCase
	query    *apporder.QueryOrderUseCase
	manage   *apporder.TransitionOrderUseCase
	events   *recordingEvents
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	s := memstore.New()
	events := &recordingEvents{}
	log := zap.NewNop()
	return &fixture{
		store:    s,
		cart:     appcart.NewCartUseCase(s, s.Carts(), s.Books()),
		checkout: apporder.NewCheckoutUseCase(s, s.Carts(), s.Books(), s.Orders(), events, log),
		query:    apporder.NewQueryOrderUseCase(s.Orders()),
		manage:   apporder.NewTransitionOrderUseCase(s, s.Orders(), s.Books(), events, log),
		events:   events,
	}
}

func (f *fixture) seedBook(t *testing.T, isbn, title string, price int64, stock int) *book.Book {
	t.Helper()
	b := book.NewBook(isbn, title, "出版社", "", "", decimal.NewFromInt(price), "CNY", stock)
	require.NoError(t, f.store.Books().Create(context.Background(), b))
	return b
}

func (f *fixture) add(t *testing.T, userID, bookID uint, quantity int) {
	t.Helper()
	_, err := f.cart.AddItem(context.Background(), appcart.AddItemRequest{UserID: userID, BookID: bookID, Quantity: quantity})
	require.NoError(t, err)
}

func (f *fixture) stock(t *testing.T, bookID uint) int {
	t.Helper()
	b, ok := f.store.BookSnapshot(bookID)
	require.True(t, ok)
	return b.Stock
}

func TestCheckoutScenario(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	b := f.seedBook(t, "9787115000001", "Go程序设计语言", 10000, 5)

	f.add(t, 1, b.ID, 3)
	list, err := f.cart.ListCart(ctx, appcart.ListCartRequest{UserID: 1})
	require.NoError(t, err)
	assert.True(t, list.Subtotal.Equal(decimal.NewFromInt(30000)))

	resp, err := f.checkout.Execute(ctx, 1)
	require.NoError(t, err)
	assert.NotZero(t, resp.OrderID)
	assert.False(t, resp.CreatedAt.IsZero())
	assert.True(t, resp.TotalAmount.Equal(decimal.NewFromInt(30000)))

	detail, err := f.query.Get(ctx, apporder.Viewer{UserID: 1}, resp.OrderID)
	require.NoError(t, err)
	assert.Equal(t, string(order.StatusPending), detail.Status)
	assert.Equal(t, string(order.PaymentUnpaid), detail.PaymentStatus)
	require.Len(t, detail.Items, 1)
	assert.Equal(t, "Go程序设计语言", detail.Items[0].Title)

	assert.Equal(t, 2, f.stock(t, b.ID))
	carts := f.store.CartsOf(1)
	require.Len(t, carts, 1)
	assert.Equal(t, cart.StatusCheckedOut, carts[0].Status)
	assert.Equal(t, []string{resp.OrderNo}, f.events.created)

	_, err = f.checkout.Execute(ctx, 1)
	assert.ErrorIs(t, err, cart.ErrCartNotFound)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))
}

func TestCheckoutUsesCapturedPrice(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	b := f.seedBook(t, "9787115000001", "旧书名", 100, 5)
	f.add(t, 1, b.ID, 2)

	// 加购后改价、改名:订单用捕获价格,书名取结算时的快照
	stored, _ := f.store.BookSnapshot(b.ID)
	stored.Title = "新书名"
	require.NoError(t, stored.UpdatePrice(decimal.NewFromInt(999)))
	require.NoError(t, f.store.Books().Update(ctx, stored))

	resp, err := f.checkout.Execute(ctx, 1)
	require.NoError(t, err)
	assert.True(t, resp.TotalAmount.Equal(decimal.NewFromInt(200)))

	detail, err := f.query.Get(ctx, apporder.Viewer{UserID: 1}, resp.OrderID)
	require.NoError(t, err)
	assert.Equal(t, "新书名", detail.Items[0].Title)
}

func TestCheckoutAtomicity(t *testing.T) {
	ctx := context.Background()

	t.Run("库存不足时整体回滚", func(t *testing.T) {
		f := newFixture(t)
		inStock := f.seedBook(t, "9787115000001", "A", 100, 10)
		scarce := f.seedBook(t, "9787115000002", "B", 100, 5)
		f.add(t, 1, inStock.ID, 2)
		f.add(t, 1, scarce.ID, 4)

		// 其他用户先买走3本
		f.add(t, 2, scarce.ID, 3)
		_, err := f.checkout.Execute(ctx, 2)
		require.NoError(t, err)

		_, err = f.checkout.Execute(ctx, 1)
		assert.ErrorIs(t, err, cart.ErrInsufficientStock)
		assert.Equal(t, cart.StockDetails{BookID: scarce.ID, Requested: 4, Available: 2},
			apperrors.GetAppError(err).Details)

		assert.Equal(t, 10, f.stock(t, inStock.ID))
		assert.Equal(t, 2, f.stock(t, scarce.ID))
		assert.Equal(t, 1, f.store.OrderCount())
		assert.Equal(t, cart.StatusActive, f.store.CartsOf(1)[0].Status)
	})

	t.Run("图书已下架", func(t *testing.T) {
		f := newFixture(t)
		b1 := f.seedBook(t, "9787115000001", "A", 100, 10)
		b2 := f.seedBook(t, "9787115000002", "B", 100, 10)
		f.add(t, 1, b1.ID, 1)
		f.add(t, 1, b2.ID, 1)
		require.NoError(t, f.store.Books().Delete(ctx, b2.ID))

		_, err := f.checkout.Execute(ctx, 1)
		assert.ErrorIs(t, err, cart.ErrBookUnavailable)
		assert.Equal(t, 10, f.stock(t, b1.ID))
		assert.Zero(t, f.store.OrderCount())
	})

	t.Run("空购物车", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.cart.GetOrCreateActiveCart(ctx, 1)
		require.NoError(t, err)

		_, err = f.checkout.Execute(ctx, 1)
		assert.ErrorIs(t, err, cart.ErrCartEmpty)
	})

	t.Run("币种不一致", func(t *testing.T) {
		f := newFixture(t)
		b1 := f.seedBook(t, "9787115000001", "A", 100, 10)
		b2 := book.NewBook("9787115000002", "B", "", "", "", decimal.NewFromInt(5), "USD", 10)
		require.NoError(t, f.store.Books().Create(ctx, b2))
		f.add(t, 1, b1.ID, 1)
		f.add(t, 1, b2.ID, 1)

		_, err := f.checkout.Execute(ctx, 1)
		assert.ErrorIs(t, err, cart.ErrCurrencyMismatch)
	})

	t.Run("购物车流转失败时回滚", func(t *testing.T) {
		f := newFixture(t)
		b1 := f.seedBook(t, "9787115000001", "A", 100, 10)
		b2 := f.seedBook(t, "9787115000002", "B", 100, 10)
		f.add(t, 1, b1.ID, 1)
		f.add(t, 1, b2.ID, 1)

		// 库存已扣减、订单已创建,最后一步失败
		boom := errors.New("connection reset")
		f.store.InjectFault("cart.UpdateStatus", boom)
		_, err := f.checkout.Execute(ctx, 1)
		assert.ErrorIs(t, err, boom)

		assert.Equal(t, 10, f.stock(t, b1.ID))
		assert.Equal(t, 10, f.stock(t, b2.ID))
		assert.Zero(t, f.store.OrderCount())
		assert.Empty(t, f.events.created, "回滚后不发布事件")

		_, err = f.checkout.Execute(ctx, 1)
		require.NoError(t, err, "故障消失后可以重试")
	})
}

func TestConcurrentCheckoutNeverOversells(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	b := f.seedBook(t, "9787115000001", "A", 100, 5)

	const users = 10
	for u := uint(1); u <= users; u++ {
		f.add(t, u, b.ID, 1)
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0
	for u := uint(1); u <= users; u++ {
		wg.Add(1)
		go func(userID uint) {
			defer wg.Done()
			if _, err := f.checkout.Execute(ctx, userID); err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			} else {
				assert.ErrorIs(t, err, cart.ErrInsufficientStock)
			}
		}(u)
	}
	wg.Wait()

	assert.Equal(t, 5, succeeded)
	assert.Equal(t, 0, f.stock(t, b.ID))
}

func TestGetOrderPermission(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	b := f.seedBook(t, "9787115000001", "A", 100, 5)
	f.add(t, 1, b.ID, 1)
	resp, err := f.checkout.Execute(ctx, 1)
	require.NoError(t, err)

	_, err = f.query.Get(ctx, apporder.Viewer{UserID: 2}, resp.OrderID)
	assert.ErrorIs(t, err, order.ErrNotOrderOwner)

	_, err = f.query.Get(ctx, apporder.Viewer{UserID: 2, IsAdmin: true}, resp.OrderID)
	assert.NoError(t, err)

	_, err = f.query.Get(ctx, apporder.Viewer{UserID: 1}, 999)
	assert.ErrorIs(t, err, order.ErrOrderNotFound)

	mine, err := f.query.ListMine(ctx, apporder.ListOrdersRequest{UserID: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(1), mine.Total)

	others, err := f.query.ListMine(ctx, apporder.ListOrdersRequest{UserID: 2})
	require.NoError(t, err)
	assert.Zero(t, others.Total)
}

func TestCancelOrder(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	b := f.seedBook(t, "9787115000001", "A", 100, 5)
	f.add(t, 1, b.ID, 3)
	resp, err := f.checkout.Execute(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, 2, f.stock(t, b.ID))

	_, err = f.manage.Cancel(ctx, 2, resp.OrderID)
	assert.ErrorIs(t, err, order.ErrNotOrderOwner)

	dto, err := f.manage.Cancel(ctx, 1, resp.OrderID)
	require.NoError(t, err)
	assert.Equal(t, string(order.StatusCancelled), dto.Status)
	assert.Equal(t, 5, f.stock(t, b.ID), "取消后回补库存")

	_, err = f.manage.Cancel(ctx, 1, resp.OrderID)
	assert.ErrorIs(t, err, order.ErrInvalidStatusTransition)
	assert.Equal(t, 5, f.stock(t, b.ID), "不会重复回补")
	assert.Equal(t, [][2]order.Status{{order.StatusPending, order.StatusCancelled}}, f.events.changed)
}

func TestAdminTransitions(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	b := f.seedBook(t, "9787115000001", "A", 100, 5)
	f.add(t, 1, b.ID, 2)
	resp, err := f.checkout.Execute(ctx, 1)
	require.NoError(t, err)

	_, err = f.manage.UpdateStatus(ctx, resp.OrderID, "SHIPPED")
	assert.ErrorIs(t, err, order.ErrInvalidStatusTransition)

	_, err = f.manage.UpdateStatus(ctx, resp.OrderID, "LOST")
	assert.ErrorIs(t, err, order.ErrInvalidStatus)

	dto, err := f.manage.UpdateStatus(ctx, resp.OrderID, "PAID")
	require.NoError(t, err)
	assert.Equal(t, string(order.PaymentPaid), dto.PaymentStatus)

	dto, err = f.manage.UpdateStatus(ctx, resp.OrderID, "REFUNDED")
	require.NoError(t, err)
	assert.Equal(t, string(order.PaymentRefunded), dto.PaymentStatus)
	assert.Equal(t, 5, f.stock(t, b.ID), "退款回补库存")

	paid, err := f.query.ListAll(ctx, apporder.ListOrdersRequest{Status: "REFUNDED"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), paid.Total)

	_, err = f.query.ListAll(ctx, apporder.ListOrdersRequest{Status: "bogus"})
	assert.ErrorIs(t, err, order.ErrInvalidStatus)
}
