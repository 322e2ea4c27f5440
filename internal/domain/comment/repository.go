package comment

import (
	"context"
)

// Repository 评论仓储接口,普通查询排除已删除评论
type Repository interface {
	Create(ctx context.Context, comment *Comment) error
	FindByID(ctx context.Context, id uint) (*Comment, error)
	Update(ctx context.Context, comment *Comment) error
	SoftDelete(ctx context.Context, id uint) error

	// ListByReview 按时间正序分页查询书评下的评论
	ListByReview(ctx context.Context, reviewID uint, page, pageSize int) ([]*Comment, int64, error)

	// AddLike 插入点赞行(已存在则忽略),返回是否新插入
	AddLike(ctx context.Context, commentID, userID uint) (bool, error)

	// RemoveLike 删除点赞行,返回是否真的删除了
	RemoveLike(ctx context.Context, commentID, userID uint) (bool, error)

	DeleteLikes(ctx context.Context, commentID uint) error
	AdjustLikeCount(ctx context.Context, commentID uint, delta int) error
}
