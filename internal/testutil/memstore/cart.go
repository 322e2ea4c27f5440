package memstore

import (
	"context"
	"sort"
	"time"

	"github.com/xiebiao/bookhub/internal/domain/cart"
)

type cartRepo struct{ s *Store }

func (r *cartRepo) FindActive(_ context.Context, userID uint) (*cart.Cart, error) {
	var found *cart.Cart
	err := r.s.with(func(st *state) error {
		for _, c := range st.carts {
			if c.UserID == userID && c.IsActive() {
				cp := *c
				found = &cp
				return nil
			}
		}
		return cart.ErrCartNotFound
	})
	return found, err
}

func (r *cartRepo) LockActive(ctx context.Context, userID uint) (*cart.Cart, error) {
	return r.FindActive(ctx, userID)
}

func (r *cartRepo) EnsureActive(_ context.Context, userID uint) error {
	return r.s.with(func(st *state) error {
		// 模拟active_user_id唯一索引:已有ACTIVE购物车时忽略
		for _, existing := range st.carts {
			if existing.UserID == userID && existing.IsActive() {
				return nil
			}
		}
		c := cart.NewCart(userID)
		c.ID = st.nextID("carts")
		st.carts[c.ID] = c
		return nil
	})
}

func (r *cartRepo) UpdateStatus(_ context.Context, cartID uint, from, to cart.Status) (bool, error) {
	updated := false
	err := r.s.withFault("cart.UpdateStatus", func(st *state) error {
		c, ok := st.carts[cartID]
		if !ok || c.Status != from {
			return nil
		}
		c.Status = to
		c.UpdatedAt = time.Now()
		updated = true
		return nil
	})
	return updated, err
}

func (r *cartRepo) FindItem(_ context.Context, cartID, bookID uint) (*cart.Item, error) {
	var found *cart.Item
	err := r.s.with(func(st *state) error {
		it, ok := st.cartItems[pair{cartID, bookID}]
		if !ok {
			return cart.ErrCartItemNotFound
		}
		cp := *it
		found = &cp
		return nil
	})
	return found, err
}

func (r *cartRepo) CreateItem(_ context.Context, item *cart.Item) error {
	return r.s.with(func(st *state) error {
		key := pair{item.CartID, item.BookID}
		if _, ok := st.cartItems[key]; ok {
			return cart.ErrItemConflict
		}
		cp := *item
		st.cartItems[key] = &cp
		return nil
	})
}

func (r *cartRepo) UpdateItemQuantity(_ context.Context, cartID, bookID uint, quantity int) error {
	return r.s.with(func(st *state) error {
		it, ok := st.cartItems[pair{cartID, bookID}]
		if !ok {
			return cart.ErrCartItemNotFound
		}
		it.Quantity = quantity
		it.UpdatedAt = time.Now()
		return nil
	})
}

func (r *cartRepo) DeleteItem(_ context.Context, cartID, bookID uint) (bool, error) {
	removed := false
	err := r.s.with(func(st *state) error {
		key := pair{cartID, bookID}
		if _, ok := st.cartItems[key]; ok {
			delete(st.cartItems, key)
			removed = true
		}
		return nil
	})
	return removed, err
}

func (r *cartRepo) items(cartID uint) []*cart.Item {
	var all []*cart.Item
	_ = r.s.with(func(st *state) error {
		for key, it := range st.cartItems {
			if key[0] == cartID {
				cp := *it
				all = append(all, &cp)
			}
		}
		return nil
	})
	return all
}

func (r *cartRepo) ListItems(_ context.Context, cartID uint, page, pageSize int) ([]*cart.Item, int64, error) {
	all := r.items(cartID)
	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.Before(all[j].CreatedAt)
		}
		return all[i].BookID < all[j].BookID
	})
	return paginate(all, page, pageSize), int64(len(all)), nil
}

func (r *cartRepo) AllItems(_ context.Context, cartID uint) ([]*cart.Item, error) {
	all := r.items(cartID)
	sort.Slice(all, func(i, j int) bool { return all[i].BookID < all[j].BookID })
	return all, nil
}

// CartsOf 用户全部购物车,供测试断言
func (s *Store) CartsOf(userID uint) []*cart.Cart {
	var out []*cart.Cart
	_ = s.with(func(st *state) error {
		for _, c := range st.carts {
			if c.UserID == userID {
				cp := *c
				out = append(out, &cp)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
