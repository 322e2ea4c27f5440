package review

import (
	"context"

	"go.opentelemetry.io/otel/attribute"

	"github.com/xiebiao/bookhub/internal/domain/book"
	"github.com/xiebiao/bookhub/internal/domain/review"
	"github.com/xiebiao/bookhub/internal/domain/shared"
	"github.com/xiebiao/bookhub/pkg/tracing"
)

// RatingRecomputer 图书评分聚合重算
// 设计说明:
// 1. avgRating/reviewCount只由这里写入,数据来自未删除书评的实时统计
// 2. Apply把"书评变更 + 重算"包成一个事务,调用方无法只做其中一半
type RatingRecomputer struct {
	txManager  shared.TxManager
	reviewRepo review.Repository
	bookRepo   book.Repository
}

// NewRatingRecomputer 创建评分重算器
func NewRatingRecomputer(txManager shared.TxManager, reviewRepo review.Repository, bookRepo book.Repository) *RatingRecomputer {
	return &RatingRecomputer{
		txManager:  txManager,
		reviewRepo: reviewRepo,
		bookRepo:   bookRepo,
	}
}

// Mutation 书评变更,返回受影响的图书ID以及是否需要重算
type Mutation func(ctx context.Context) (bookID uint, recompute bool, err error)

// Apply 在同一事务中执行变更并重算评分
func (r *RatingRecomputer) Apply(ctx context.Context, mutate Mutation) error {
	return r.txManager.Transaction(ctx, func(txCtx context.Context) error {
		bookID, recompute, err := mutate(txCtx)
		if err != nil || !recompute {
			return err
		}
		return r.Recompute(txCtx, bookID)
	})
}

// Recompute 重算单本图书的评分聚合,必须在事务内调用
func (r *RatingRecomputer) Recompute(ctx context.Context, bookID uint) error {
	ctx, span := tracing.StartSpan(ctx, "review.RecomputeRating")
	defer span.End()

	summary, err := r.reviewRepo.Summarize(ctx, bookID)
	if err != nil {
		span.RecordError(err)
		return err
	}
	span.SetAttributes(
		attribute.Int("book.id", int(bookID)),
		attribute.Int("review.count", summary.Count),
	)

	// 存储精确的均值,展示精度由前端决定
	return r.bookRepo.UpdateRating(ctx, bookID, summary.Avg, summary.Count)
}
