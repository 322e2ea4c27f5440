package memstore

import (
	"context"
	"sort"
	"time"

	"github.com/xiebiao/bookhub/internal/domain/comment"
	"github.com/xiebiao/bookhub/internal/domain/review"
)

type reviewRepo struct{ s *Store }

func copyReview(r *review.Review) *review.Review {
	c := *r
	return &c
}

func (r *reviewRepo) Create(_ context.Context, rv *review.Review) error {
	return r.s.withFault("review.Create", func(st *state) error {
		// (user_id, book_id)唯一索引覆盖已删除书评
		for _, existing := range st.reviews {
			if existing.UserID == rv.UserID && existing.BookID == rv.BookID {
				return review.ErrReviewDuplicate
			}
		}
		rv.ID = st.nextID("reviews")
		st.reviews[rv.ID] = copyReview(rv)
		return nil
	})
}

func (r *reviewRepo) live(st *state, id uint) (*review.Review, error) {
	rv, ok := st.reviews[id]
	if !ok || rv.IsDeleted() {
		return nil, review.ErrReviewNotFound
	}
	return rv, nil
}

func (r *reviewRepo) FindByID(_ context.Context, id uint) (*review.Review, error) {
	var found *review.Review
	err := r.s.with(func(st *state) error {
		rv, err := r.live(st, id)
		if err != nil {
			return err
		}
		found = copyReview(rv)
		return nil
	})
	return found, err
}

func (r *reviewRepo) LockByID(ctx context.Context, id uint) (*review.Review, error) {
	return r.FindByID(ctx, id)
}

func (r *reviewRepo) Update(_ context.Context, rv *review.Review) error {
	return r.s.with(func(st *state) error {
		stored, err := r.live(st, rv.ID)
		if err != nil {
			return err
		}
		stored.Rating = rv.Rating
		stored.Content = rv.Content
		stored.UpdatedAt = time.Now()
		return nil
	})
}

func (r *reviewRepo) SoftDelete(_ context.Context, id uint) error {
	return r.s.with(func(st *state) error {
		stored, err := r.live(st, id)
		if err != nil {
			return err
		}
		now := time.Now()
		stored.DeletedAt = &now
		return nil
	})
}

func (r *reviewRepo) ListByBook(_ context.Context, bookID uint, page, pageSize int) ([]*review.Review, int64, error) {
	var all []*review.Review
	_ = r.s.with(func(st *state) error {
		for _, rv := range st.reviews {
			if rv.BookID == bookID && !rv.IsDeleted() {
				all = append(all, copyReview(rv))
			}
		}
		return nil
	})
	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		return all[i].ID > all[j].ID
	})
	return paginate(all, page, pageSize), int64(len(all)), nil
}

func (r *reviewRepo) Summarize(_ context.Context, bookID uint) (review.RatingSummary, error) {
	var sum review.RatingSummary
	err := r.s.with(func(st *state) error {
		total := 0
		for _, rv := range st.reviews {
			if rv.BookID == bookID && !rv.IsDeleted() {
				sum.Count++
				total += rv.Rating
			}
		}
		if sum.Count > 0 {
			sum.Avg = float64(total) / float64(sum.Count)
		}
		return nil
	})
	return sum, err
}

func (r *reviewRepo) AddLike(_ context.Context, reviewID, userID uint) (bool, error) {
	inserted := false
	err := r.s.with(func(st *state) error {
		key := pair{reviewID, userID}
		if _, ok := st.reviewLikes[key]; ok {
			return nil
		}
		st.reviewLikes[key] = struct{}{}
		inserted = true
		return nil
	})
	return inserted, err
}

func (r *reviewRepo) RemoveLike(_ context.Context, reviewID, userID uint) (bool, error) {
	removed := false
	err := r.s.with(func(st *state) error {
		key := pair{reviewID, userID}
		if _, ok := st.reviewLikes[key]; ok {
			delete(st.reviewLikes, key)
			removed = true
		}
		return nil
	})
	return removed, err
}

func (r *reviewRepo) DeleteLikes(_ context.Context, reviewID uint) error {
	return r.s.with(func(st *state) error {
		for key := range st.reviewLikes {
			if key[0] == reviewID {
				delete(st.reviewLikes, key)
			}
		}
		return nil
	})
}

func (r *reviewRepo) AdjustLikeCount(_ context.Context, reviewID uint, delta int) error {
	return r.s.withFault("review.AdjustLikeCount", func(st *state) error {
		rv, ok := st.reviews[reviewID]
		if !ok {
			return review.ErrReviewNotFound
		}
		rv.LikeCount = max(rv.LikeCount+delta, 0)
		return nil
	})
}

func (r *reviewRepo) AdjustCommentCount(_ context.Context, reviewID uint, delta int) error {
	return r.s.with(func(st *state) error {
		rv, ok := st.reviews[reviewID]
		if !ok {
			return review.ErrReviewNotFound
		}
		rv.CommentCount = max(rv.CommentCount+delta, 0)
		return nil
	})
}

// ReviewLikeCount 书评点赞行数量,供测试断言
func (s *Store) ReviewLikeCount(reviewID uint) int {
	n := 0
	_ = s.with(func(st *state) error {
		for key := range st.reviewLikes {
			if key[0] == reviewID {
				n++
			}
		}
		return nil
	})
	return n
}

type commentRepo struct{ s *Store }

func copyComment(c *comment.Comment) *comment.Comment {
	cp := *c
	return &cp
}

func (r *commentRepo) live(st *state, id uint) (*comment.Comment, error) {
	c, ok := st.comments[id]
	if !ok || c.DeletedAt != nil {
		return nil, comment.ErrCommentNotFound
	}
	return c, nil
}

func (r *commentRepo) Create(_ context.Context, c *comment.Comment) error {
	return r.s.with(func(st *state) error {
		c.ID = st.nextID("comments")
		st.comments[c.ID] = copyComment(c)
		return nil
	})
}

func (r *commentRepo) FindByID(_ context.Context, id uint) (*comment.Comment, error) {
	var found *comment.Comment
	err := r.s.with(func(st *state) error {
		c, err := r.live(st, id)
		if err != nil {
			return err
		}
		found = copyComment(c)
		return nil
	})
	return found, err
}

func (r *commentRepo) Update(_ context.Context, c *comment.Comment) error {
	return r.s.with(func(st *state) error {
		stored, err := r.live(st, c.ID)
		if err != nil {
			return err
		}
		stored.Content = c.Content
		stored.UpdatedAt = time.Now()
		return nil
	})
}

func (r *commentRepo) SoftDelete(_ context.Context, id uint) error {
	return r.s.with(func(st *state) error {
		stored, err := r.live(st, id)
		if err != nil {
			return err
		}
		now := time.Now()
		stored.DeletedAt = &now
		return nil
	})
}

func (r *commentRepo) ListByReview(_ context.Context, reviewID uint, page, pageSize int) ([]*comment.Comment, int64, error) {
	var all []*comment.Comment
	_ = r.s.with(func(st *state) error {
		for _, c := range st.comments {
			if c.ReviewID == reviewID && c.DeletedAt == nil {
				all = append(all, copyComment(c))
			}
		}
		return nil
	})
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return paginate(all, page, pageSize), int64(len(all)), nil
}

func (r *commentRepo) AddLike(_ context.Context, commentID, userID uint) (bool, error) {
	inserted := false
	err := r.s.with(func(st *state) error {
		key := pair{commentID, userID}
		if _, ok := st.commentLikes[key]; ok {
			return nil
		}
		st.commentLikes[key] = struct{}{}
		inserted = true
		return nil
	})
	return inserted, err
}

func (r *commentRepo) RemoveLike(_ context.Context, commentID, userID uint) (bool, error) {
	removed := false
	err := r.s.with(func(st *state) error {
		key := pair{commentID, userID}
		if _, ok := st.commentLikes[key]; ok {
			delete(st.commentLikes, key)
			removed = true
		}
		return nil
	})
	return removed, err
}

func (r *commentRepo) DeleteLikes(_ context.Context, commentID uint) error {
	return r.s.with(func(st *state) error {
		for key := range st.commentLikes {
			if key[0] == commentID {
				delete(st.commentLikes, key)
			}
		}
		return nil
	})
}

func (r *commentRepo) AdjustLikeCount(_ context.Context, commentID uint, delta int) error {
	return r.s.with(func(st *state) error {
		c, ok := st.comments[commentID]
		if !ok {
			return comment.ErrCommentNotFound
		}
		c.LikeCount = max(c.LikeCount+delta, 0)
		return nil
	})
}
