package comment

import (
	"context"
	"time"

	"github.com/xiebiao/bookhub/internal/domain/comment"
	"github.com/xiebiao/bookhub/internal/domain/review"
	"github.com/xiebiao/bookhub/internal/domain/shared"
)

// CommentUseCase 评论用例
// 设计说明:
// 1. 评论挂在未删除的书评下,回复的父评论必须属于同一书评
// 2. 新增、删除评论与书评commentCount在同一事务中变化
// 3. 点赞规则与书评一致:只有点赞行真正变化时计数才移动
type CommentUseCase struct {
	txManager   shared.TxManager
	commentRepo comment.Repository
	reviewRepo  review.Repository
}

// NewCommentUseCase 创建评论用例
func NewCommentUseCase(txManager shared.TxManager, commentRepo comment.Repository, reviewRepo review.Repository) *CommentUseCase {
	return &CommentUseCase{
		txManager:   txManager,
		commentRepo: commentRepo,
		reviewRepo:  reviewRepo,
	}
}

// CreateCommentRequest 发表评论
type CreateCommentRequest struct {
	UserID   uint
	ReviewID uint
	ParentID *uint
	Content  string
}

// CommentDTO 评论
type CommentDTO struct {
	ID        uint      `json:"id"`
	ReviewID  uint      `json:"reviewId"`
	UserID    uint      `json:"userId"`
	ParentID  *uint     `json:"parentId,omitempty"`
	Content   string    `json:"content"`
	LikeCount int       `json:"likeCount"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ListCommentsResponse 评论分页结果
type ListCommentsResponse struct {
	Comments []CommentDTO
	Total    int64
	Page     int
	Size     int
}

// LikeResponse 点赞状态
type LikeResponse struct {
	Liked     bool `json:"liked"`
	LikeCount int  `json:"likeCount"`
}

func toCommentDTO(c *comment.Comment) *CommentDTO {
	return &CommentDTO{
		ID:        c.ID,
		ReviewID:  c.ReviewID,
		UserID:    c.UserID,
		ParentID:  c.ParentID,
		Content:   c.Content,
		LikeCount: c.LikeCount,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

// Create 发表评论
func (uc *CommentUseCase) Create(ctx context.Context, req CreateCommentRequest) (*CommentDTO, error) {
	c, err := comment.NewComment(req.ReviewID, req.UserID, req.ParentID, req.Content)
	if err != nil {
		return nil, err
	}

	err = uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		// 1. 书评必须存在(加锁,与计数更新串行)
		if _, err := uc.reviewRepo.LockByID(txCtx, req.ReviewID); err != nil {
			return err
		}

		// 2. 父评论必须属于同一书评
		if req.ParentID != nil {
			parent, err := uc.commentRepo.FindByID(txCtx, *req.ParentID)
			if err != nil {
				return err
			}
			if parent.ReviewID != req.ReviewID {
				return comment.ErrParentMismatch
			}
		}

		// 3. 写评论并累加计数
		if err := uc.commentRepo.Create(txCtx, c); err != nil {
			return err
		}
		return uc.reviewRepo.AdjustCommentCount(txCtx, req.ReviewID, 1)
	})
	if err != nil {
		return nil, err
	}
	return toCommentDTO(c), nil
}

// Update 修改评论(仅作者)
func (uc *CommentUseCase) Update(ctx context.Context, userID, commentID uint, content string) (*CommentDTO, error) {
	c, err := uc.commentRepo.FindByID(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if !c.IsOwnedBy(userID) {
		return nil, comment.ErrNotCommentOwner
	}
	if err := c.UpdateContent(content); err != nil {
		return nil, err
	}
	if err := uc.commentRepo.Update(ctx, c); err != nil {
		return nil, err
	}
	return toCommentDTO(c), nil
}

// Delete 删除评论(仅作者):软删除、删除点赞行、书评commentCount-1
func (uc *CommentUseCase) Delete(ctx context.Context, userID, commentID uint) error {
	return uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		c, err := uc.commentRepo.FindByID(txCtx, commentID)
		if err != nil {
			return err
		}
		if !c.IsOwnedBy(userID) {
			return comment.ErrNotCommentOwner
		}
		if err := uc.commentRepo.SoftDelete(txCtx, c.ID); err != nil {
			return err
		}
		if err := uc.commentRepo.DeleteLikes(txCtx, c.ID); err != nil {
			return err
		}
		return uc.reviewRepo.AdjustCommentCount(txCtx, c.ReviewID, -1)
	})
}

// ListByReview 书评下的评论(按发表顺序)
func (uc *CommentUseCase) ListByReview(ctx context.Context, reviewID uint, page, pageSize int) (*ListCommentsResponse, error) {
	if _, err := uc.reviewRepo.FindByID(ctx, reviewID); err != nil {
		return nil, err
	}
	p := shared.NewPage(page, pageSize)
	comments, total, err := uc.commentRepo.ListByReview(ctx, reviewID, p.Page, p.Size)
	if err != nil {
		return nil, err
	}
	resp := &ListCommentsResponse{
		Comments: make([]CommentDTO, len(comments)),
		Total:    total,
		Page:     p.Page,
		Size:     p.Size,
	}
	for i, c := range comments {
		resp.Comments[i] = *toCommentDTO(c)
	}
	return resp, nil
}

// Like 点赞评论(幂等)
func (uc *CommentUseCase) Like(ctx context.Context, userID, commentID uint) (*LikeResponse, error) {
	var count int
	err := uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		if _, err := uc.commentRepo.FindByID(txCtx, commentID); err != nil {
			return err
		}
		inserted, err := uc.commentRepo.AddLike(txCtx, commentID, userID)
		if err != nil {
			return err
		}
		if inserted {
			if err := uc.commentRepo.AdjustLikeCount(txCtx, commentID, 1); err != nil {
				return err
			}
		}
		count, err = uc.likeCount(txCtx, commentID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &LikeResponse{Liked: true, LikeCount: count}, nil
}

// Unlike 取消点赞(幂等)
func (uc *CommentUseCase) Unlike(ctx context.Context, userID, commentID uint) (*LikeResponse, error) {
	var count int
	err := uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		if _, err := uc.commentRepo.FindByID(txCtx, commentID); err != nil {
			return err
		}
		removed, err := uc.commentRepo.RemoveLike(txCtx, commentID, userID)
		if err != nil {
			return err
		}
		if removed {
			if err := uc.commentRepo.AdjustLikeCount(txCtx, commentID, -1); err != nil {
				return err
			}
		}
		count, err = uc.likeCount(txCtx, commentID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &LikeResponse{Liked: false, LikeCount: count}, nil
}

func (uc *CommentUseCase) likeCount(ctx context.Context, commentID uint) (int, error) {
	c, err := uc.commentRepo.FindByID(ctx, commentID)
	if err != nil {
		return 0, err
	}
	return c.LikeCount, nil
}
