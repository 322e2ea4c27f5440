package wishlist_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appwishlist "github.com/xiebiao/bookhub/internal/application/wishlist"
	"github.com/xiebiao/bookhub/internal/domain/book"
	"github.com/xiebiao/bookhub/internal/testutil/memstore"
)

func TestWishlist(t *testing.T) {
	ctx := context.Background()
	s := memstore.New()
	uc := appwishlist.NewWishlistUseCase(s.Wishlist(), s.Books())

	b1 := book.NewBook("9787115000001", "A", "", "", "", decimal.NewFromInt(10), "CNY", 1)
	b2 := book.NewBook("9787115000002", "B", "", "", "", decimal.NewFromInt(20), "CNY", 0)
	require.NoError(t, s.Books().Create(ctx, b1))
	require.NoError(t, s.Books().Create(ctx, b2))

	require.NoError(t, uc.Add(ctx, 1, b1.ID))
	require.NoError(t, uc.Add(ctx, 1, b1.ID), "重复收藏是幂等的")
	require.NoError(t, uc.Add(ctx, 1, b2.ID))
	assert.ErrorIs(t, uc.Add(ctx, 1, 999), book.ErrBookNotFound)

	list, err := uc.List(ctx, 1, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), list.Total)
	require.Len(t, list.Items, 2)

	stock := map[uint]bool{}
	for _, item := range list.Items {
		stock[item.BookID] = item.InStock
	}
	assert.Equal(t, map[uint]bool{b1.ID: true, b2.ID: false}, stock)

	t.Run("下架图书不展示", func(t *testing.T) {
		require.NoError(t, s.Books().Delete(ctx, b2.ID))
		list, err := uc.List(ctx, 1, 1, 10)
		require.NoError(t, err)
		assert.Equal(t, int64(1), list.Total)
		require.Len(t, list.Items, 1)
		assert.Equal(t, b1.ID, list.Items[0].BookID)
	})

	t.Run("取消收藏是幂等的", func(t *testing.T) {
		require.NoError(t, uc.Remove(ctx, 1, b1.ID))
		require.NoError(t, uc.Remove(ctx, 1, b1.ID))
		list, err := uc.List(ctx, 1, 1, 10)
		require.NoError(t, err)
		assert.Zero(t, list.Total)
	})
}
