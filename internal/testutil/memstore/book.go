package memstore

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/xiebiao/bookhub/internal/domain/book"
)

type bookRepo struct{ s *Store }

func (r *bookRepo) Create(_ context.Context, b *book.Book) error {
	return r.s.with(func(st *state) error {
		for _, existing := range st.books {
			if existing.ISBN == b.ISBN {
				return book.ErrISBNDuplicate
			}
		}
		b.ID = st.nextID("books")
		st.books[b.ID] = copyBook(b)
		return nil
	})
}

func (r *bookRepo) FindByID(_ context.Context, id uint) (*book.Book, error) {
	var found *book.Book
	err := r.s.with(func(st *state) error {
		b, ok := st.books[id]
		if !ok || b.IsDeleted() {
			return book.ErrBookNotFound
		}
		found = copyBook(b)
		return nil
	})
	return found, err
}

func (r *bookRepo) FindByISBN(_ context.Context, isbn string) (*book.Book, error) {
	var found *book.Book
	err := r.s.with(func(st *state) error {
		for _, b := range st.books {
			if b.ISBN == isbn && !b.IsDeleted() {
				found = copyBook(b)
				return nil
			}
		}
		return book.ErrBookNotFound
	})
	return found, err
}

func (r *bookRepo) FindByIDs(_ context.Context, ids []uint) ([]*book.Book, error) {
	var out []*book.Book
	err := r.s.with(func(st *state) error {
		for _, id := range ids {
			if b, ok := st.books[id]; ok && !b.IsDeleted() {
				out = append(out, copyBook(b))
			}
		}
		return nil
	})
	return out, err
}

func (r *bookRepo) Update(_ context.Context, b *book.Book) error {
	return r.s.with(func(st *state) error {
		stored, ok := st.books[b.ID]
		if !ok || stored.IsDeleted() {
			return book.ErrBookNotFound
		}
		for _, other := range st.books {
			if other.ID != b.ID && other.ISBN == b.ISBN {
				return book.ErrISBNDuplicate
			}
		}
		// 评分聚合只能由UpdateRating写入
		updated := copyBook(b)
		updated.AvgRating = stored.AvgRating
		updated.ReviewCount = stored.ReviewCount
		updated.CreatedAt = stored.CreatedAt
		updated.UpdatedAt = time.Now()
		st.books[b.ID] = updated
		return nil
	})
}

func (r *bookRepo) Delete(_ context.Context, id uint) error {
	return r.s.with(func(st *state) error {
		b, ok := st.books[id]
		if !ok || b.IsDeleted() {
			return book.ErrBookNotFound
		}
		now := time.Now()
		b.DeletedAt = &now
		return nil
	})
}

func (r *bookRepo) List(_ context.Context, params book.ListParams) ([]*book.Book, int64, error) {
	var all []*book.Book
	_ = r.s.with(func(st *state) error {
		for _, b := range st.books {
			if b.IsDeleted() || !matches(b, params) {
				continue
			}
			all = append(all, copyBook(b))
		}
		return nil
	})

	sort.Slice(all, func(i, j int) bool {
		a, b := all[i], all[j]
		switch params.SortBy {
		case book.SortPriceAsc:
			if !a.Price.Equal(b.Price) {
				return a.Price.LessThan(b.Price)
			}
		case book.SortPriceDesc:
			if !a.Price.Equal(b.Price) {
				return a.Price.GreaterThan(b.Price)
			}
		case book.SortRatingDesc:
			if a.AvgRating != b.AvgRating {
				return a.AvgRating > b.AvgRating
			}
		default:
			if !a.CreatedAt.Equal(b.CreatedAt) {
				return a.CreatedAt.After(b.CreatedAt)
			}
		}
		return a.ID > b.ID
	})

	return paginate(all, params.Page, params.PageSize), int64(len(all)), nil
}

func matches(b *book.Book, params book.ListParams) bool {
	if kw := strings.ToLower(strings.TrimSpace(params.Keyword)); kw != "" {
		if !strings.Contains(strings.ToLower(b.Title), kw) &&
			!strings.Contains(strings.ToLower(b.ISBN), kw) &&
			!strings.Contains(strings.ToLower(b.Publisher), kw) {
			return false
		}
	}
	if params.CategoryID != 0 && !containsID(b.CategoryIDs(), params.CategoryID) {
		return false
	}
	if params.AuthorID != 0 && !containsID(b.AuthorIDs(), params.AuthorID) {
		return false
	}
	return true
}

func containsID(ids []uint, id uint) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func (r *bookRepo) LockByID(_ context.Context, id uint) (*book.Book, error) {
	var found *book.Book
	err := r.s.with(func(st *state) error {
		b, ok := st.books[id]
		if !ok {
			return book.ErrBookNotFound
		}
		found = copyBook(b)
		return nil
	})
	return found, err
}

func (r *bookRepo) LockByIDs(_ context.Context, ids []uint) ([]*book.Book, error) {
	sorted := append([]uint(nil), ids...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	var out []*book.Book
	err := r.s.with(func(st *state) error {
		for _, id := range sorted {
			if b, ok := st.books[id]; ok {
				out = append(out, copyBook(b))
			}
		}
		return nil
	})
	return out, err
}

func (r *bookRepo) UpdateStock(_ context.Context, id uint, delta int) error {
	return r.s.withFault("book.UpdateStock", func(st *state) error {
		b, ok := st.books[id]
		if !ok {
			return book.ErrBookNotFound
		}
		if b.Stock+delta < 0 {
			return book.ErrInsufficientStock
		}
		b.Stock += delta
		b.UpdatedAt = time.Now()
		return nil
	})
}

func (r *bookRepo) UpdateRating(_ context.Context, id uint, avgRating float64, reviewCount int) error {
	return r.s.withFault("book.UpdateRating", func(st *state) error {
		b, ok := st.books[id]
		if !ok {
			return book.ErrBookNotFound
		}
		b.AvgRating = avgRating
		b.ReviewCount = reviewCount
		return nil
	})
}

// BookSnapshot 读取图书原始行(含已下架),供测试断言
func (s *Store) BookSnapshot(id uint) (*book.Book, bool) {
	var found *book.Book
	_ = s.with(func(st *state) error {
		if b, ok := st.books[id]; ok {
			found = copyBook(b)
		}
		return nil
	})
	return found, found != nil
}

type authorRepo struct{ s *Store }

func (r *authorRepo) Create(_ context.Context, a *book.Author) error {
	return r.s.with(func(st *state) error {
		a.ID = st.nextID("authors")
		if a.CreatedAt.IsZero() {
			a.CreatedAt = time.Now()
		}
		st.authors[a.ID] = *a
		return nil
	})
}

func (r *authorRepo) FindByIDs(_ context.Context, ids []uint) ([]book.Author, error) {
	out := []book.Author{}
	err := r.s.with(func(st *state) error {
		for _, id := range ids {
			if a, ok := st.authors[id]; ok {
				out = append(out, a)
			}
		}
		return nil
	})
	return out, err
}

func (r *authorRepo) List(_ context.Context, page, pageSize int) ([]book.Author, int64, error) {
	var all []book.Author
	_ = r.s.with(func(st *state) error {
		for _, a := range st.authors {
			all = append(all, a)
		}
		return nil
	})
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return paginate(all, page, pageSize), int64(len(all)), nil
}

type categoryRepo struct{ s *Store }

func (r *categoryRepo) Create(_ context.Context, c *book.Category) error {
	return r.s.with(func(st *state) error {
		for _, existing := range st.categories {
			if existing.Name == c.Name {
				return book.ErrCategoryDuplicate
			}
		}
		c.ID = st.nextID("categories")
		if c.CreatedAt.IsZero() {
			c.CreatedAt = time.Now()
		}
		st.categories[c.ID] = *c
		return nil
	})
}

func (r *categoryRepo) FindByIDs(_ context.Context, ids []uint) ([]book.Category, error) {
	out := []book.Category{}
	err := r.s.with(func(st *state) error {
		for _, id := range ids {
			if c, ok := st.categories[id]; ok {
				out = append(out, c)
			}
		}
		return nil
	})
	return out, err
}

func (r *categoryRepo) List(_ context.Context) ([]book.Category, error) {
	var all []book.Category
	_ = r.s.with(func(st *state) error {
		for _, c := range st.categories {
			all = append(all, c)
		}
		return nil
	})
	sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })
	return all, nil
}
