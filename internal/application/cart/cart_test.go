package cart_test

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appcart "github.com/xiebiao/bookhub/internal/application/cart"
	"github.com/xiebiao/bookhub/internal/domain/book"
	"github.com/xiebiao/bookhub/internal/domain/cart"
	"github.com/xiebiao/bookhub/internal/testutil/memstore"
	apperrors "github.com/xiebiao/bookhub/pkg/errors"
)

func setup(t *testing.T) (*memstore.Store, *appcart.CartUseCase) {
	t.Helper()
	s := memstore.New()
	return s, appcart.NewCartUseCase(s, s.Carts(), s.Books())
}

func seedBook(t *testing.T, s *memstore.Store, isbn string, price int64, stock int) *book.Book {
	t.Helper()
	b := book.NewBook(isbn, "书-"+isbn, "出版社", "", "", decimal.NewFromInt(price), "CNY", stock)
	require.NoError(t, s.Books().Create(context.Background(), b))
	return b
}

func TestAddItem(t *testing.T) {
	ctx := context.Background()
	s, uc := setup(t)
	b := seedBook(t, s, "9787115000001", 10000, 5)

	t.Run("首次加购捕获价格", func(t *testing.T) {
		item, err := uc.AddItem(ctx, appcart.AddItemRequest{UserID: 1, BookID: b.ID, Quantity: 3})
		require.NoError(t, err)
		assert.Equal(t, 3, item.Quantity)
		assert.True(t, item.UnitPrice.Equal(decimal.NewFromInt(10000)))
		assert.True(t, item.Subtotal.Equal(decimal.NewFromInt(30000)))
	})

	t.Run("重复加购累加数量且不重新定价", func(t *testing.T) {
		stored, _ := s.BookSnapshot(b.ID)
		require.NoError(t, stored.UpdatePrice(decimal.NewFromInt(20000)))
		require.NoError(t, s.Books().Update(ctx, stored))

		item, err := uc.AddItem(ctx, appcart.AddItemRequest{UserID: 1, BookID: b.ID, Quantity: 1})
		require.NoError(t, err)
		assert.Equal(t, 4, item.Quantity)
		assert.True(t, item.UnitPrice.Equal(decimal.NewFromInt(10000)))
	})

	t.Run("累加超过库存", func(t *testing.T) {
		_, err := uc.AddItem(ctx, appcart.AddItemRequest{UserID: 1, BookID: b.ID, Quantity: 2})
		assert.ErrorIs(t, err, cart.ErrInsufficientStock)

		appErr := apperrors.GetAppError(err)
		assert.Equal(t, cart.StockDetails{BookID: b.ID, Requested: 6, Available: 5}, appErr.Details)
	})

	t.Run("数量越界", func(t *testing.T) {
		for _, q := range []int{0, -1, 1000} {
			_, err := uc.AddItem(ctx, appcart.AddItemRequest{UserID: 1, BookID: b.ID, Quantity: q})
			assert.ErrorIs(t, err, cart.ErrInvalidQuantity)
		}
	})

	t.Run("图书不存在或已下架", func(t *testing.T) {
		_, err := uc.AddItem(ctx, appcart.AddItemRequest{UserID: 1, BookID: 999, Quantity: 1})
		assert.ErrorIs(t, err, book.ErrBookNotFound)

		gone := seedBook(t, s, "9787115000002", 100, 5)
		require.NoError(t, s.Books().Delete(ctx, gone.ID))
		_, err = uc.AddItem(ctx, appcart.AddItemRequest{UserID: 1, BookID: gone.ID, Quantity: 1})
		assert.ErrorIs(t, err, book.ErrBookNotFound)
	})

	t.Run("首次加购超过库存", func(t *testing.T) {
		_, err := uc.AddItem(ctx, appcart.AddItemRequest{UserID: 2, BookID: b.ID, Quantity: 6})
		assert.ErrorIs(t, err, cart.ErrInsufficientStock)
	})
}

func TestAddItemAccumulatesBeyondRequestLimit(t *testing.T) {
	ctx := context.Background()
	s, uc := setup(t)
	b := seedBook(t, s, "9787115000009", 10, 2000)

	// 单次请求不超过999,累加后的数量只受库存限制
	_, err := uc.AddItem(ctx, appcart.AddItemRequest{UserID: 1, BookID: b.ID, Quantity: 600})
	require.NoError(t, err)
	item, err := uc.AddItem(ctx, appcart.AddItemRequest{UserID: 1, BookID: b.ID, Quantity: 600})
	require.NoError(t, err)
	assert.Equal(t, 1200, item.Quantity)

	_, err = uc.AddItem(ctx, appcart.AddItemRequest{UserID: 1, BookID: b.ID, Quantity: 801})
	assert.ErrorIs(t, err, cart.ErrInsufficientStock)
}

func TestUpdateAndRemoveItem(t *testing.T) {
	ctx := context.Background()
	s, uc := setup(t)
	b := seedBook(t, s, "9787115000001", 100, 5)

	_, err := uc.UpdateItem(ctx, appcart.UpdateItemRequest{UserID: 1, BookID: b.ID, Quantity: 2})
	assert.ErrorIs(t, err, cart.ErrCartItemNotFound)

	_, err = uc.AddItem(ctx, appcart.AddItemRequest{UserID: 1, BookID: b.ID, Quantity: 1})
	require.NoError(t, err)

	item, err := uc.UpdateItem(ctx, appcart.UpdateItemRequest{UserID: 1, BookID: b.ID, Quantity: 5})
	require.NoError(t, err)
	assert.Equal(t, 5, item.Quantity, "设置而非累加")

	_, err = uc.UpdateItem(ctx, appcart.UpdateItemRequest{UserID: 1, BookID: b.ID, Quantity: 6})
	assert.ErrorIs(t, err, cart.ErrInsufficientStock)

	require.NoError(t, uc.RemoveItem(ctx, 1, b.ID))
	require.NoError(t, uc.RemoveItem(ctx, 1, b.ID), "重复删除是幂等的")
	require.NoError(t, uc.RemoveItem(ctx, 42, b.ID), "没有购物车也不报错")
}

func TestListCart(t *testing.T) {
	ctx := context.Background()
	s, uc := setup(t)
	b1 := seedBook(t, s, "9787115000001", 100, 10)
	b2 := seedBook(t, s, "9787115000002", 250, 10)

	_, err := uc.AddItem(ctx, appcart.AddItemRequest{UserID: 1, BookID: b1.ID, Quantity: 2})
	require.NoError(t, err)
	_, err = uc.AddItem(ctx, appcart.AddItemRequest{UserID: 1, BookID: b2.ID, Quantity: 1})
	require.NoError(t, err)

	resp, err := uc.ListCart(ctx, appcart.ListCartRequest{UserID: 1, Page: 1, PageSize: 1})
	require.NoError(t, err)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, int64(2), resp.TotalRows)
	assert.True(t, resp.Subtotal.Equal(decimal.NewFromInt(200)), "小计只统计当前页")
	assert.True(t, resp.Total.Equal(decimal.NewFromInt(450)))
	assert.Equal(t, 3, resp.ItemCount)

	// 下架后仍在购物车中,但标记为不可结算
	require.NoError(t, s.Books().Delete(ctx, b1.ID))
	resp, err = uc.ListCart(ctx, appcart.ListCartRequest{UserID: 1, Page: 1, PageSize: 10})
	require.NoError(t, err)
	require.Len(t, resp.Items, 2)
	for _, item := range resp.Items {
		assert.Equal(t, item.BookID != b1.ID, item.Available)
	}
}

func TestAbandonCart(t *testing.T) {
	ctx := context.Background()
	s, uc := setup(t)
	b := seedBook(t, s, "9787115000001", 100, 10)

	assert.ErrorIs(t, uc.AbandonCart(ctx, 1), cart.ErrCartNotFound)

	first, err := uc.GetOrCreateActiveCart(ctx, 1)
	require.NoError(t, err)
	require.NoError(t, uc.AbandonCart(ctx, 1))

	_, err = uc.AddItem(ctx, appcart.AddItemRequest{UserID: 1, BookID: b.ID, Quantity: 1})
	require.NoError(t, err)

	carts := s.CartsOf(1)
	require.Len(t, carts, 2)
	assert.Equal(t, first.ID, carts[0].ID)
	assert.Equal(t, cart.StatusAbandoned, carts[0].Status)
	assert.Equal(t, cart.StatusActive, carts[1].Status)
}

func TestAtMostOneActiveCart(t *testing.T) {
	ctx := context.Background()
	s, uc := setup(t)
	b := seedBook(t, s, "9787115000001", 100, 1000)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := uc.AddItem(ctx, appcart.AddItemRequest{UserID: 1, BookID: b.ID, Quantity: 1})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	active := 0
	for _, c := range s.CartsOf(1) {
		if c.IsActive() {
			active++
		}
	}
	assert.Equal(t, 1, active)

	resp, err := uc.ListCart(ctx, appcart.ListCartRequest{UserID: 1})
	require.NoError(t, err)
	assert.Equal(t, 20, resp.ItemCount)
}
