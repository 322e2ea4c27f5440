package memstore

import (
	"context"
	"sort"
	"time"

	"github.com/xiebiao/bookhub/internal/domain/order"
	apperrors "github.com/xiebiao/bookhub/pkg/errors"
)

type orderRepo struct{ s *Store }

func (r *orderRepo) Create(_ context.Context, o *order.Order) error {
	return r.s.withFault("order.Create", func(st *state) error {
		for _, existing := range st.orders {
			if o.CartID != nil && existing.CartID != nil && *existing.CartID == *o.CartID {
				return order.ErrCartAlreadyOrdered
			}
			if existing.OrderNo == o.OrderNo {
				return apperrors.Wrapf(nil, "订单号冲突: %s", o.OrderNo)
			}
		}
		o.ID = st.nextID("orders")
		for i := range o.Items {
			o.Items[i].OrderID = o.ID
		}
		st.orders[o.ID] = copyOrder(o)
		return nil
	})
}

func (r *orderRepo) FindByID(_ context.Context, id uint) (*order.Order, error) {
	var found *order.Order
	err := r.s.with(func(st *state) error {
		o, ok := st.orders[id]
		if !ok {
			return order.ErrOrderNotFound
		}
		found = copyOrder(o)
		return nil
	})
	return found, err
}

func (r *orderRepo) FindByOrderNo(_ context.Context, orderNo string) (*order.Order, error) {
	var found *order.Order
	err := r.s.with(func(st *state) error {
		for _, o := range st.orders {
			if o.OrderNo == orderNo {
				found = copyOrder(o)
				return nil
			}
		}
		return order.ErrOrderNotFound
	})
	return found, err
}

func (r *orderRepo) LockByID(ctx context.Context, id uint) (*order.Order, error) {
	return r.FindByID(ctx, id)
}

func (r *orderRepo) UpdateStatus(_ context.Context, o *order.Order, from order.Status) (bool, error) {
	updated := false
	err := r.s.with(func(st *state) error {
		stored, ok := st.orders[o.ID]
		if !ok || stored.Status != from {
			return nil
		}
		stored.Status = o.Status
		stored.PaymentStatus = o.PaymentStatus
		stored.UpdatedAt = time.Now()
		updated = true
		return nil
	})
	return updated, err
}

func (r *orderRepo) list(filter func(*order.Order) bool, page, pageSize int) ([]*order.Order, int64) {
	var all []*order.Order
	_ = r.s.with(func(st *state) error {
		for _, o := range st.orders {
			if filter(o) {
				all = append(all, copyOrder(o))
			}
		}
		return nil
	})
	sort.Slice(all, func(i, j int) bool {
		if !all[i].PlacedAt.Equal(all[j].PlacedAt) {
			return all[i].PlacedAt.After(all[j].PlacedAt)
		}
		return all[i].ID > all[j].ID
	})
	return paginate(all, page, pageSize), int64(len(all))
}

func (r *orderRepo) ListByUserID(_ context.Context, userID uint, page, pageSize int) ([]*order.Order, int64, error) {
	list, total := r.list(func(o *order.Order) bool { return o.UserID == userID }, page, pageSize)
	return list, total, nil
}

func (r *orderRepo) List(_ context.Context, status order.Status, page, pageSize int) ([]*order.Order, int64, error) {
	list, total := r.list(func(o *order.Order) bool { return status == "" || o.Status == status }, page, pageSize)
	return list, total, nil
}

// OrderCount 订单总数,供测试断言
func (s *Store) OrderCount() int {
	n := 0
	_ = s.with(func(st *state) error {
		n = len(st.orders)
		return nil
	})
	return n
}
