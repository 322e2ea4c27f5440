package mysql

import (
	"context"

	"gorm.io/gorm"

	"github.com/xiebiao/bookhub/internal/domain/review"
	apperrors "github.com/xiebiao/bookhub/pkg/errors"
)

// reviewRepository 书评仓储实现
// 设计说明:
// 1. (user_id, book_id)唯一索引不含deleted_at,同一用户对同一本书只能评价一次
// 2. 点赞用ON DUPLICATE KEY插入,RowsAffected决定计数是否变化
// 3. 计数用UPDATE x = x + ?原子调整,不做读-改-写
type reviewRepository struct {
	baseRepository
}

// NewReviewRepository 创建书评仓储
func NewReviewRepository(db *gorm.DB) review.Repository {
	return &reviewRepository{baseRepository{db}}
}

func (r *reviewRepository) Create(ctx context.Context, rv *review.Review) error {
	model := &ReviewModel{
		UserID:  rv.UserID,
		BookID:  rv.BookID,
		Rating:  rv.Rating,
		Content: rv.Content,
	}
	if err := r.getDB(ctx).Create(model).Error; err != nil {
		if isDuplicateError(err) {
			return review.ErrReviewDuplicate
		}
		return apperrors.Wrap(err, "创建书评失败")
	}
	rv.ID = model.ID
	rv.CreatedAt = model.CreatedAt
	rv.UpdatedAt = model.UpdatedAt
	return nil
}

func (r *reviewRepository) FindByID(ctx context.Context, id uint) (*review.Review, error) {
	return r.find(r.getDB(ctx), id)
}

// LockByID SELECT ... FOR UPDATE,串行化同一书评的修改与删除
func (r *reviewRepository) LockByID(ctx context.Context, id uint) (*review.Review, error) {
	return r.find(r.getDB(ctx).Clauses(forUpdate), id)
}

func (r *reviewRepository) find(db *gorm.DB, id uint) (*review.Review, error) {
	var model ReviewModel
	if err := db.First(&model, id).Error; err != nil {
		if isNotFound(err) {
			return nil, review.ErrReviewNotFound
		}
		return nil, apperrors.Wrap(err, "查询书评失败")
	}
	return toReviewEntity(&model), nil
}

func (r *reviewRepository) Update(ctx context.Context, rv *review.Review) error {
	err := r.getDB(ctx).Model(&ReviewModel{ID: rv.ID}).Updates(map[string]interface{}{
		"rating":  rv.Rating,
		"content": rv.Content,
	}).Error
	if err != nil {
		return apperrors.Wrap(err, "更新书评失败")
	}
	return nil
}

func (r *reviewRepository) SoftDelete(ctx context.Context, id uint) error {
	result := r.getDB(ctx).Delete(&ReviewModel{}, id)
	if result.Error != nil {
		return apperrors.Wrap(result.Error, "删除书评失败")
	}
	if result.RowsAffected == 0 {
		return review.ErrReviewNotFound
	}
	return nil
}

func (r *reviewRepository) ListByBook(ctx context.Context, bookID uint, page, pageSize int) ([]*review.Review, int64, error) {
	var models []ReviewModel
	var total int64

	query := r.getDB(ctx).Model(&ReviewModel{}).Where("book_id = ?", bookID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Wrap(err, "查询书评总数失败")
	}
	err := query.Order("created_at DESC").Order("id DESC").
		Scopes(paginate(page, pageSize)).Find(&models).Error
	if err != nil {
		return nil, 0, apperrors.Wrap(err, "查询书评列表失败")
	}

	list := make([]*review.Review, len(models))
	for i := range models {
		list[i] = toReviewEntity(&models[i])
	}
	return list, total, nil
}

// Summarize SELECT COUNT(*), COALESCE(SUM(rating), 0) ... 软删除条件由GORM追加
// 不用AVG:MySQL对整数列AVG返回4位小数的DECIMAL,均值在Go里按float64计算
func (r *reviewRepository) Summarize(ctx context.Context, bookID uint) (review.RatingSummary, error) {
	var row struct {
		Count int
		Total int
	}
	err := r.getDB(ctx).Model(&ReviewModel{}).
		Select("COUNT(*) AS count, COALESCE(SUM(rating), 0) AS total").
		Where("book_id = ?", bookID).
		Scan(&row).Error
	if err != nil {
		return review.RatingSummary{}, apperrors.Wrap(err, "统计书评失败")
	}
	sum := review.RatingSummary{Count: row.Count}
	if row.Count > 0 {
		sum.Avg = float64(row.Total) / float64(row.Count)
	}
	return sum, nil
}

func (r *reviewRepository) AddLike(ctx context.Context, reviewID, userID uint) (bool, error) {
	result := r.getDB(ctx).Clauses(insertIgnore).Create(&ReviewLikeModel{ReviewID: reviewID, UserID: userID})
	if result.Error != nil {
		return false, apperrors.Wrap(result.Error, "点赞失败")
	}
	return result.RowsAffected == 1, nil
}

func (r *reviewRepository) RemoveLike(ctx context.Context, reviewID, userID uint) (bool, error) {
	result := r.getDB(ctx).Where("review_id = ? AND user_id = ?", reviewID, userID).Delete(&ReviewLikeModel{})
	if result.Error != nil {
		return false, apperrors.Wrap(result.Error, "取消点赞失败")
	}
	return result.RowsAffected > 0, nil
}

func (r *reviewRepository) DeleteLikes(ctx context.Context, reviewID uint) error {
	if err := r.getDB(ctx).Where("review_id = ?", reviewID).Delete(&ReviewLikeModel{}).Error; err != nil {
		return apperrors.Wrap(err, "删除点赞失败")
	}
	return nil
}

func (r *reviewRepository) AdjustLikeCount(ctx context.Context, reviewID uint, delta int) error {
	return r.adjust(ctx, reviewID, "like_count", delta)
}

func (r *reviewRepository) AdjustCommentCount(ctx context.Context, reviewID uint, delta int) error {
	return r.adjust(ctx, reviewID, "comment_count", delta)
}

// adjust column = GREATEST(column + delta, 0)
func (r *reviewRepository) adjust(ctx context.Context, reviewID uint, column string, delta int) error {
	err := r.getDB(ctx).Unscoped().Model(&ReviewModel{}).Where("id = ?", reviewID).
		UpdateColumn(column, gorm.Expr("GREATEST("+column+" + ?, 0)", delta)).Error
	if err != nil {
		return apperrors.Wrap(err, "更新书评计数失败")
	}
	return nil
}

func toReviewEntity(model *ReviewModel) *review.Review {
	rv := &review.Review{
		ID:           model.ID,
		UserID:       model.UserID,
		BookID:       model.BookID,
		Rating:       model.Rating,
		Content:      model.Content,
		LikeCount:    model.LikeCount,
		CommentCount: model.CommentCount,
		CreatedAt:    model.CreatedAt,
		UpdatedAt:    model.UpdatedAt,
	}
	if model.DeletedAt.Valid {
		t := model.DeletedAt.Time
		rv.DeletedAt = &t
	}
	return rv
}
