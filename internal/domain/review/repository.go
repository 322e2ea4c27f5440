package review

import (
	"context"
)

// Repository 书评仓储接口
// 普通查询排除已删除书评;计数调整使用原子UPDATE(x = x + delta)
type Repository interface {
	// Create 创建书评,(user, book)重复返回ErrReviewDuplicate
	Create(ctx context.Context, review *Review) error

	FindByID(ctx context.Context, id uint) (*Review, error)

	// LockByID 加锁读取未删除书评
	LockByID(ctx context.Context, id uint) (*Review, error)

	Update(ctx context.Context, review *Review) error

	// SoftDelete 设置删除时间
	SoftDelete(ctx context.Context, id uint) error

	// ListByBook 按时间倒序分页查询图书的书评
	ListByBook(ctx context.Context, bookID uint, page, pageSize int) ([]*Review, int64, error)

	// Summarize 统计图书未删除书评的数量与平均分
	Summarize(ctx context.Context, bookID uint) (RatingSummary, error)

	// AddLike 插入点赞行(已存在则忽略),返回是否新插入
	AddLike(ctx context.Context, reviewID, userID uint) (bool, error)

	// RemoveLike 删除点赞行,返回是否真的删除了
	RemoveLike(ctx context.Context, reviewID, userID uint) (bool, error)

	// DeleteLikes 删除书评的全部点赞行
	DeleteLikes(ctx context.Context, reviewID uint) error

	AdjustLikeCount(ctx context.Context, reviewID uint, delta int) error
	AdjustCommentCount(ctx context.Context, reviewID uint, delta int) error
}
