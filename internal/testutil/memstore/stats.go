package memstore

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/xiebiao/bookhub/internal/domain/stats"
)

type statsRepo struct{ s *Store }

func day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func inWindow(t, from, to time.Time) bool {
	return !t.Before(from) && t.Before(to)
}

func (r *statsRepo) TopBooks(_ context.Context, since time.Time, limit int) ([]stats.TopBook, error) {
	agg := map[uint]*stats.TopBook{}
	_ = r.s.with(func(st *state) error {
		for _, o := range st.orders {
			if !o.Status.Counted() || o.PlacedAt.Before(since) {
				continue
			}
			for _, it := range o.Items {
				tb, ok := agg[it.BookID]
				if !ok {
					tb = &stats.TopBook{BookID: it.BookID, Title: it.BookTitleSnapshot, Revenue: decimal.Zero}
					if b, found := st.books[it.BookID]; found {
						tb.Title = b.Title
					}
					agg[it.BookID] = tb
				}
				tb.Quantity += it.Quantity
				tb.Revenue = tb.Revenue.Add(it.Subtotal())
			}
		}
		return nil
	})

	out := make([]stats.TopBook, 0, len(agg))
	for _, tb := range agg {
		out = append(out, *tb)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Quantity != out[j].Quantity {
			return out[i].Quantity > out[j].Quantity
		}
		return out[i].BookID < out[j].BookID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *statsRepo) DailyOrders(_ context.Context, from, to time.Time) ([]stats.DailyOrders, error) {
	agg := map[time.Time]*stats.DailyOrders{}
	_ = r.s.with(func(st *state) error {
		for _, o := range st.orders {
			if !o.Status.Counted() || !inWindow(o.PlacedAt, from, to) {
				continue
			}
			d := day(o.PlacedAt)
			row, ok := agg[d]
			if !ok {
				row = &stats.DailyOrders{Day: d, Revenue: decimal.Zero}
				agg[d] = row
			}
			row.Orders++
			row.Revenue = row.Revenue.Add(o.TotalAmount)
		}
		return nil
	})

	out := make([]stats.DailyOrders, 0, len(agg))
	for _, row := range agg {
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Day.Before(out[j].Day) })
	return out, nil
}

func (r *statsRepo) DailySignups(_ context.Context, from, to time.Time) ([]stats.DailySignups, error) {
	agg := map[time.Time]int{}
	_ = r.s.with(func(st *state) error {
		for _, u := range st.users {
			if inWindow(u.CreatedAt, from, to) {
				agg[day(u.CreatedAt)]++
			}
		}
		return nil
	})

	out := make([]stats.DailySignups, 0, len(agg))
	for d, n := range agg {
		out = append(out, stats.DailySignups{Day: d, Users: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Day.Before(out[j].Day) })
	return out, nil
}
