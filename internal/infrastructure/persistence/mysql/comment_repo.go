package mysql

import (
	"context"

	"gorm.io/gorm"

	"github.com/xiebiao/bookhub/internal/domain/comment"
	apperrors "github.com/xiebiao/bookhub/pkg/errors"
)

// commentRepository 评论仓储实现
type commentRepository struct {
	baseRepository
}

// NewCommentRepository 创建评论仓储
func NewCommentRepository(db *gorm.DB) comment.Repository {
	return &commentRepository{baseRepository{db}}
}

func (r *commentRepository) Create(ctx context.Context, c *comment.Comment) error {
	model := &CommentModel{
		ReviewID: c.ReviewID,
		UserID:   c.UserID,
		ParentID: c.ParentID,
		Content:  c.Content,
	}
	if err := r.getDB(ctx).Create(model).Error; err != nil {
		return apperrors.Wrap(err, "创建评论失败")
	}
	c.ID = model.ID
	c.CreatedAt = model.CreatedAt
	c.UpdatedAt = model.UpdatedAt
	return nil
}

func (r *commentRepository) FindByID(ctx context.Context, id uint) (*comment.Comment, error) {
	var model CommentModel
	if err := r.getDB(ctx).First(&model, id).Error; err != nil {
		if isNotFound(err) {
			return nil, comment.ErrCommentNotFound
		}
		return nil, apperrors.Wrap(err, "查询评论失败")
	}
	return toCommentEntity(&model), nil
}

func (r *commentRepository) Update(ctx context.Context, c *comment.Comment) error {
	err := r.getDB(ctx).Model(&CommentModel{ID: c.ID}).Update("content", c.Content).Error
	if err != nil {
		return apperrors.Wrap(err, "更新评论失败")
	}
	return nil
}

func (r *commentRepository) SoftDelete(ctx context.Context, id uint) error {
	result := r.getDB(ctx).Delete(&CommentModel{}, id)
	if result.Error != nil {
		return apperrors.Wrap(result.Error, "删除评论失败")
	}
	if result.RowsAffected == 0 {
		return comment.ErrCommentNotFound
	}
	return nil
}

func (r *commentRepository) ListByReview(ctx context.Context, reviewID uint, page, pageSize int) ([]*comment.Comment, int64, error) {
	var models []CommentModel
	var total int64

	query := r.getDB(ctx).Model(&CommentModel{}).Where("review_id = ?", reviewID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Wrap(err, "查询评论总数失败")
	}
	if err := query.Order("id ASC").Scopes(paginate(page, pageSize)).Find(&models).Error; err != nil {
		return nil, 0, apperrors.Wrap(err, "查询评论列表失败")
	}

	list := make([]*comment.Comment, len(models))
	for i := range models {
		list[i] = toCommentEntity(&models[i])
	}
	return list, total, nil
}

func (r *commentRepository) AddLike(ctx context.Context, commentID, userID uint) (bool, error) {
	result := r.getDB(ctx).Clauses(insertIgnore).Create(&CommentLikeModel{CommentID: commentID, UserID: userID})
	if result.Error != nil {
		return false, apperrors.Wrap(result.Error, "点赞失败")
	}
	return result.RowsAffected == 1, nil
}

func (r *commentRepository) RemoveLike(ctx context.Context, commentID, userID uint) (bool, error) {
	result := r.getDB(ctx).Where("comment_id = ? AND user_id = ?", commentID, userID).Delete(&CommentLikeModel{})
	if result.Error != nil {
		return false, apperrors.Wrap(result.Error, "取消点赞失败")
	}
	return result.RowsAffected > 0, nil
}

func (r *commentRepository) DeleteLikes(ctx context.Context, commentID uint) error {
	if err := r.getDB(ctx).Where("comment_id = ?", commentID).Delete(&CommentLikeModel{}).Error; err != nil {
		return apperrors.Wrap(err, "删除点赞失败")
	}
	return nil
}

func (r *commentRepository) AdjustLikeCount(ctx context.Context, commentID uint, delta int) error {
	err := r.getDB(ctx).Unscoped().Model(&CommentModel{}).Where("id = ?", commentID).
		UpdateColumn("like_count", gorm.Expr("GREATEST(like_count + ?, 0)", delta)).Error
	if err != nil {
		return apperrors.Wrap(err, "更新评论计数失败")
	}
	return nil
}

func toCommentEntity(model *CommentModel) *comment.Comment {
	c := &comment.Comment{
		ID:        model.ID,
		ReviewID:  model.ReviewID,
		UserID:    model.UserID,
		ParentID:  model.ParentID,
		Content:   model.Content,
		LikeCount: model.LikeCount,
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}
	if model.DeletedAt.Valid {
		t := model.DeletedAt.Time
		c.DeletedAt = &t
	}
	return c
}
