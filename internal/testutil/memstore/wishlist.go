package memstore

import (
	"context"
	"sort"
	"time"

	"github.com/xiebiao/bookhub/internal/domain/wishlist"
)

type wishlistRepo struct{ s *Store }

func (r *wishlistRepo) Add(_ context.Context, userID, bookID uint) (bool, error) {
	inserted := false
	err := r.s.with(func(st *state) error {
		key := pair{userID, bookID}
		if _, ok := st.wishlist[key]; ok {
			return nil
		}
		st.wishlist[key] = &wishlist.Item{UserID: userID, BookID: bookID, CreatedAt: time.Now()}
		inserted = true
		return nil
	})
	return inserted, err
}

func (r *wishlistRepo) Remove(_ context.Context, userID, bookID uint) (bool, error) {
	removed := false
	err := r.s.with(func(st *state) error {
		key := pair{userID, bookID}
		if _, ok := st.wishlist[key]; ok {
			delete(st.wishlist, key)
			removed = true
		}
		return nil
	})
	return removed, err
}

func (r *wishlistRepo) List(_ context.Context, userID uint, page, pageSize int) ([]*wishlist.Item, int64, error) {
	var all []*wishlist.Item
	_ = r.s.with(func(st *state) error {
		for key, item := range st.wishlist {
			if key[0] != userID {
				continue
			}
			if b, ok := st.books[key[1]]; !ok || b.IsDeleted() {
				continue
			}
			c := *item
			all = append(all, &c)
		}
		return nil
	})
	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		return all[i].BookID > all[j].BookID
	})
	return paginate(all, page, pageSize), int64(len(all)), nil
}
