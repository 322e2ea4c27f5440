package review

import (
	"context"
	"time"

	"github.com/xiebiao/bookhub/internal/domain/book"
	"github.com/xiebiao/bookhub/internal/domain/review"
	"github.com/xiebiao/bookhub/internal/domain/shared"
	"github.com/xiebiao/bookhub/pkg/metrics"
)

// ReviewUseCase 书评用例
// 设计说明:
// 1. 创建、改分、删除都经过RatingRecomputer,书评与图书评分在同一事务中变化
// 2. 点赞是(书评, 用户)存在行,计数只在真正插入/删除行时移动
type ReviewUseCase struct {
	txManager  shared.TxManager
	reviewRepo review.Repository
	bookRepo   book.Repository
	ratings    *RatingRecomputer
}

// NewReviewUseCase 创建书评用例
func NewReviewUseCase(
	txManager shared.TxManager,
	reviewRepo review.Repository,
	bookRepo book.Repository,
	ratings *RatingRecomputer,
) *ReviewUseCase {
	return &ReviewUseCase{
		txManager:  txManager,
		reviewRepo: reviewRepo,
		bookRepo:   bookRepo,
		ratings:    ratings,
	}
}

// =========================================
// 应用层DTO
// =========================================

// CreateReviewRequest 发表书评
type CreateReviewRequest struct {
	UserID  uint
	BookID  uint
	Rating  int
	Content string
}

// UpdateReviewRequest 修改书评
type UpdateReviewRequest struct {
	UserID   uint
	ReviewID uint
	Rating   int
	Content  string
}

// ReviewDTO 书评
type ReviewDTO struct {
	ID           uint      `json:"id"`
	UserID       uint      `json:"userId"`
	BookID       uint      `json:"bookId"`
	Rating       int       `json:"rating"`
	Content      string    `json:"content"`
	LikeCount    int       `json:"likeCount"`
	CommentCount int       `json:"commentCount"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// ListReviewsResponse 书评分页结果
type ListReviewsResponse struct {
	Reviews []ReviewDTO
	Total   int64
	Page    int
	Size    int
}

// LikeResponse 点赞状态
type LikeResponse struct {
	Liked     bool `json:"liked"`
	LikeCount int  `json:"likeCount"`
}

func toReviewDTO(r *review.Review) *ReviewDTO {
	return &ReviewDTO{
		ID:           r.ID,
		UserID:       r.UserID,
		BookID:       r.BookID,
		Rating:       r.Rating,
		Content:      r.Content,
		LikeCount:    r.LikeCount,
		CommentCount: r.CommentCount,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

// =========================================
// 用例实现
// =========================================

// Create 发表书评
// 业务规则:
// 1. 图书必须在售
// 2. 同一用户对同一本书只能评价一次(删除后也不能再评)
// 3. 同一事务内重算图书评分
func (uc *ReviewUseCase) Create(ctx context.Context, req CreateReviewRequest) (*ReviewDTO, error) {
	r, err := review.NewReview(req.UserID, req.BookID, req.Rating, req.Content)
	if err != nil {
		return nil, err
	}

	err = uc.ratings.Apply(ctx, func(txCtx context.Context) (uint, bool, error) {
		if _, err := uc.bookRepo.FindByID(txCtx, req.BookID); err != nil {
			return 0, false, err
		}
		if err := uc.reviewRepo.Create(txCtx, r); err != nil {
			return 0, false, err
		}
		return r.BookID, true, nil
	})
	if err != nil {
		return nil, err
	}

	metrics.IncCounterVec(metrics.ReviewMutationsTotal, "create")
	return toReviewDTO(r), nil
}

// Update 修改书评(仅作者),评分变化时重算
func (uc *ReviewUseCase) Update(ctx context.Context, req UpdateReviewRequest) (*ReviewDTO, error) {
	var result *review.Review
	err := uc.ratings.Apply(ctx, func(txCtx context.Context) (uint, bool, error) {
		r, err := uc.reviewRepo.LockByID(txCtx, req.ReviewID)
		if err != nil {
			return 0, false, err
		}
		if !r.IsOwnedBy(req.UserID) {
			return 0, false, review.ErrNotReviewOwner
		}
		changed, err := r.Update(req.Rating, req.Content)
		if err != nil {
			return 0, false, err
		}
		if err := uc.reviewRepo.Update(txCtx, r); err != nil {
			return 0, false, err
		}
		result = r
		return r.BookID, changed, nil
	})
	if err != nil {
		return nil, err
	}

	metrics.IncCounterVec(metrics.ReviewMutationsTotal, "update")
	return toReviewDTO(result), nil
}

// Delete 删除书评(仅作者):软删除、删除点赞行、重算评分
func (uc *ReviewUseCase) Delete(ctx context.Context, userID, reviewID uint) error {
	err := uc.ratings.Apply(ctx, func(txCtx context.Context) (uint, bool, error) {
		r, err := uc.reviewRepo.LockByID(txCtx, reviewID)
		if err != nil {
			return 0, false, err
		}
		if !r.IsOwnedBy(userID) {
			return 0, false, review.ErrNotReviewOwner
		}
		if err := uc.reviewRepo.SoftDelete(txCtx, r.ID); err != nil {
			return 0, false, err
		}
		if err := uc.reviewRepo.DeleteLikes(txCtx, r.ID); err != nil {
			return 0, false, err
		}
		return r.BookID, true, nil
	})
	if err != nil {
		return err
	}

	metrics.IncCounterVec(metrics.ReviewMutationsTotal, "delete")
	return nil
}

// ListByBook 图书的书评列表(最新在前)
func (uc *ReviewUseCase) ListByBook(ctx context.Context, bookID uint, page, pageSize int) (*ListReviewsResponse, error) {
	if _, err := uc.bookRepo.FindByID(ctx, bookID); err != nil {
		return nil, err
	}
	p := shared.NewPage(page, pageSize)
	reviews, total, err := uc.reviewRepo.ListByBook(ctx, bookID, p.Page, p.Size)
	if err != nil {
		return nil, err
	}
	resp := &ListReviewsResponse{
		Reviews: make([]ReviewDTO, len(reviews)),
		Total:   total,
		Page:    p.Page,
		Size:    p.Size,
	}
	for i, r := range reviews {
		resp.Reviews[i] = *toReviewDTO(r)
	}
	return resp, nil
}

// Like 点赞(幂等):只有新插入点赞行时计数+1
func (uc *ReviewUseCase) Like(ctx context.Context, userID, reviewID uint) (*LikeResponse, error) {
	return uc.toggleLike(ctx, reviewID, func(txCtx context.Context) (int, error) {
		inserted, err := uc.reviewRepo.AddLike(txCtx, reviewID, userID)
		if err != nil || !inserted {
			return 0, err
		}
		return 1, nil
	}, true)
}

// Unlike 取消点赞(幂等):只有真正删除点赞行时计数-1
func (uc *ReviewUseCase) Unlike(ctx context.Context, userID, reviewID uint) (*LikeResponse, error) {
	return uc.toggleLike(ctx, reviewID, func(txCtx context.Context) (int, error) {
		removed, err := uc.reviewRepo.RemoveLike(txCtx, reviewID, userID)
		if err != nil || !removed {
			return 0, err
		}
		return -1, nil
	}, false)
}

func (uc *ReviewUseCase) toggleLike(
	ctx context.Context,
	reviewID uint,
	apply func(txCtx context.Context) (delta int, err error),
	liked bool,
) (*LikeResponse, error) {
	var count int
	err := uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		// 锁定书评行,点赞行与计数一起变化
		if _, err := uc.reviewRepo.LockByID(txCtx, reviewID); err != nil {
			return err
		}
		delta, err := apply(txCtx)
		if err != nil {
			return err
		}
		if delta != 0 {
			if err := uc.reviewRepo.AdjustLikeCount(txCtx, reviewID, delta); err != nil {
				return err
			}
		}
		r, err := uc.reviewRepo.FindByID(txCtx, reviewID)
		if err != nil {
			return err
		}
		count = r.LikeCount
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &LikeResponse{Liked: liked, LikeCount: count}, nil
}
