package memstore

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/bookhub/internal/domain/book"
	"github.com/xiebiao/bookhub/internal/domain/review"
)

func seedBook(t *testing.T, s *Store, isbn string, stock int) *book.Book {
	t.Helper()
	b := book.NewBook(isbn, "Go语言实战", "人民邮电", "", "", decimal.NewFromInt(100), "cny", stock)
	require.NoError(t, s.Books().Create(context.Background(), b))
	return b
}

func TestTransactionRollback(t *testing.T) {
	ctx := context.Background()
	s := New()
	b := seedBook(t, s, "9787115000001", 5)

	boom := errors.New("boom")
	err := s.Transaction(ctx, func(ctx context.Context) error {
		require.NoError(t, s.Books().UpdateStock(ctx, b.ID, -3))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	got, err := s.Books().FindByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, got.Stock, "回滚后库存恢复")
}

func TestTransactionNested(t *testing.T) {
	ctx := context.Background()
	s := New()
	b := seedBook(t, s, "9787115000002", 5)

	err := s.Transaction(ctx, func(ctx context.Context) error {
		return s.Transaction(ctx, func(ctx context.Context) error {
			return s.Books().UpdateStock(ctx, b.ID, -1)
		})
	})
	require.NoError(t, err)

	got, _ := s.BookSnapshot(b.ID)
	assert.Equal(t, 4, got.Stock)
}

func TestInjectFault(t *testing.T) {
	ctx := context.Background()
	s := New()
	b := seedBook(t, s, "9787115000003", 5)

	boom := errors.New("disk full")
	s.InjectFault("book.UpdateStock", boom)
	assert.ErrorIs(t, s.Books().UpdateStock(ctx, b.ID, -1), boom)
	assert.NoError(t, s.Books().UpdateStock(ctx, b.ID, -1), "故障只生效一次")
}

func TestUniqueConstraints(t *testing.T) {
	ctx := context.Background()
	s := New()
	b := seedBook(t, s, "9787115000004", 5)

	dup := book.NewBook("9787115000004", "x", "", "", "", decimal.NewFromInt(1), "CNY", 0)
	assert.ErrorIs(t, s.Books().Create(ctx, dup), book.ErrISBNDuplicate)

	require.NoError(t, s.Carts().EnsureActive(ctx, 1))
	require.NoError(t, s.Carts().EnsureActive(ctx, 1), "已有ACTIVE购物车时忽略")
	assert.Len(t, s.CartsOf(1), 1)

	r, err := review.NewReview(1, b.ID, 4, "")
	require.NoError(t, err)
	require.NoError(t, s.Reviews().Create(ctx, r))
	require.NoError(t, s.Reviews().SoftDelete(ctx, r.ID))

	again, _ := review.NewReview(1, b.ID, 5, "")
	assert.ErrorIs(t, s.Reviews().Create(ctx, again), review.ErrReviewDuplicate, "已删除书评仍占用唯一键")
}

func TestReturnedEntitiesAreCopies(t *testing.T) {
	ctx := context.Background()
	s := New()
	b := seedBook(t, s, "9787115000005", 5)

	got, err := s.Books().FindByID(ctx, b.ID)
	require.NoError(t, err)
	got.Stock = 100

	again, _ := s.Books().FindByID(ctx, b.ID)
	assert.Equal(t, 5, again.Stock)
}
