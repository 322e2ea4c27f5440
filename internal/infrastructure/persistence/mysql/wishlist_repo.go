package mysql

import (
	"context"

	"gorm.io/gorm"

	"github.com/xiebiao/bookhub/internal/domain/wishlist"
	apperrors "github.com/xiebiao/bookhub/pkg/errors"
)

// wishlistRepository 心愿单仓储实现
type wishlistRepository struct {
	baseRepository
}

// NewWishlistRepository 创建心愿单仓储
func NewWishlistRepository(db *gorm.DB) wishlist.Repository {
	return &wishlistRepository{baseRepository{db}}
}

func (r *wishlistRepository) Add(ctx context.Context, userID, bookID uint) (bool, error) {
	result := r.getDB(ctx).Clauses(insertIgnore).Create(&WishlistItemModel{UserID: userID, BookID: bookID})
	if result.Error != nil {
		return false, apperrors.Wrap(result.Error, "加入心愿单失败")
	}
	return result.RowsAffected == 1, nil
}

func (r *wishlistRepository) Remove(ctx context.Context, userID, bookID uint) (bool, error) {
	result := r.getDB(ctx).Where("user_id = ? AND book_id = ?", userID, bookID).Delete(&WishlistItemModel{})
	if result.Error != nil {
		return false, apperrors.Wrap(result.Error, "移出心愿单失败")
	}
	return result.RowsAffected > 0, nil
}

// List 只返回未下架图书
func (r *wishlistRepository) List(ctx context.Context, userID uint, page, pageSize int) ([]*wishlist.Item, int64, error) {
	var models []WishlistItemModel
	var total int64

	query := r.getDB(ctx).Model(&WishlistItemModel{}).
		Joins("JOIN books ON books.id = wishlist_items.book_id AND books.deleted_at IS NULL").
		Where("wishlist_items.user_id = ?", userID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Wrap(err, "查询心愿单总数失败")
	}
	err := query.Select("wishlist_items.*").
		Order("wishlist_items.created_at DESC").Order("wishlist_items.book_id DESC").
		Scopes(paginate(page, pageSize)).Find(&models).Error
	if err != nil {
		return nil, 0, apperrors.Wrap(err, "查询心愿单失败")
	}

	items := make([]*wishlist.Item, len(models))
	for i, m := range models {
		items[i] = &wishlist.Item{UserID: m.UserID, BookID: m.BookID, CreatedAt: m.CreatedAt}
	}
	return items, total, nil
}
