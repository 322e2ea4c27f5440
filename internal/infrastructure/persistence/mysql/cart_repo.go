package mysql

import (
	"context"

	"gorm.io/gorm"

	"github.com/xiebiao/bookhub/internal/domain/cart"
	apperrors "github.com/xiebiao/bookhub/pkg/errors"
)

// cartRepository 购物车仓储实现
// 设计说明:
// 1. active_user_id唯一索引保证每个用户最多一个ACTIVE购物车
// 2. 状态流转是条件UPDATE(WHERE status = from),同时维护active_user_id
type cartRepository struct {
	baseRepository
}

// NewCartRepository 创建购物车仓储
func NewCartRepository(db *gorm.DB) cart.Repository {
	return &cartRepository{baseRepository{db}}
}

func (r *cartRepository) FindActive(ctx context.Context, userID uint) (*cart.Cart, error) {
	return r.findActive(r.getDB(ctx), userID)
}

// LockActive SELECT ... FOR UPDATE
// 同一用户的加购、改数量、结算在此串行化
func (r *cartRepository) LockActive(ctx context.Context, userID uint) (*cart.Cart, error) {
	return r.findActive(r.getDB(ctx).Clauses(forUpdate), userID)
}

func (r *cartRepository) findActive(db *gorm.DB, userID uint) (*cart.Cart, error) {
	var model CartModel
	err := db.Where("user_id = ? AND status = ?", userID, string(cart.StatusActive)).First(&model).Error
	if err != nil {
		if isNotFound(err) {
			return nil, cart.ErrCartNotFound
		}
		return nil, apperrors.Wrap(err, "查询购物车失败")
	}
	return toCartEntity(&model), nil
}

// EnsureActive INSERT ... ON DUPLICATE KEY UPDATE id=id
// uk_carts_active_user冲突时不插入;并发插入方未提交时在唯一索引上等待它提交或回滚
func (r *cartRepository) EnsureActive(ctx context.Context, userID uint) error {
	c := cart.NewCart(userID)
	model := &CartModel{
		UserID:       c.UserID,
		Status:       string(c.Status),
		ActiveUserID: activeUserID(c.UserID, c.Status),
	}
	if err := r.getDB(ctx).Clauses(insertIgnore).Create(model).Error; err != nil {
		return apperrors.Wrap(err, "创建购物车失败")
	}
	return nil
}

// UpdateStatus UPDATE carts SET status = to, active_user_id = ... WHERE id = ? AND status = from
func (r *cartRepository) UpdateStatus(ctx context.Context, cartID uint, from, to cart.Status) (bool, error) {
	updates := map[string]interface{}{"status": string(to)}
	if to != cart.StatusActive {
		updates["active_user_id"] = nil
	}
	result := r.getDB(ctx).Model(&CartModel{}).
		Where("id = ? AND status = ?", cartID, string(from)).
		Updates(updates)
	if result.Error != nil {
		return false, apperrors.Wrap(result.Error, "更新购物车状态失败")
	}
	return result.RowsAffected == 1, nil
}

func (r *cartRepository) FindItem(ctx context.Context, cartID, bookID uint) (*cart.Item, error) {
	var model CartItemModel
	err := r.getDB(ctx).Where("cart_id = ? AND book_id = ?", cartID, bookID).First(&model).Error
	if err != nil {
		if isNotFound(err) {
			return nil, cart.ErrCartItemNotFound
		}
		return nil, apperrors.Wrap(err, "查询购物车行失败")
	}
	return toCartItemEntity(&model), nil
}

func (r *cartRepository) CreateItem(ctx context.Context, item *cart.Item) error {
	model := &CartItemModel{
		CartID:    item.CartID,
		BookID:    item.BookID,
		Quantity:  item.Quantity,
		UnitPrice: item.UnitPrice,
		Currency:  item.Currency,
	}
	if err := r.getDB(ctx).Create(model).Error; err != nil {
		if isDuplicateError(err) {
			return cart.ErrItemConflict
		}
		return apperrors.Wrap(err, "加入购物车失败")
	}
	item.CreatedAt = model.CreatedAt
	item.UpdatedAt = model.UpdatedAt
	return nil
}

// UpdateItemQuantity 只改数量,捕获的单价保持不变
func (r *cartRepository) UpdateItemQuantity(ctx context.Context, cartID, bookID uint, quantity int) error {
	result := r.getDB(ctx).Model(&CartItemModel{}).
		Where("cart_id = ? AND book_id = ?", cartID, bookID).
		Update("quantity", quantity)
	if result.Error != nil {
		return apperrors.Wrap(result.Error, "更新购物车数量失败")
	}
	return nil
}

func (r *cartRepository) DeleteItem(ctx context.Context, cartID, bookID uint) (bool, error) {
	result := r.getDB(ctx).Where("cart_id = ? AND book_id = ?", cartID, bookID).Delete(&CartItemModel{})
	if result.Error != nil {
		return false, apperrors.Wrap(result.Error, "删除购物车行失败")
	}
	return result.RowsAffected > 0, nil
}

func (r *cartRepository) ListItems(ctx context.Context, cartID uint, page, pageSize int) ([]*cart.Item, int64, error) {
	var models []CartItemModel
	var total int64

	query := r.getDB(ctx).Model(&CartItemModel{}).Where("cart_id = ?", cartID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Wrap(err, "查询购物车总数失败")
	}
	err := query.Order("created_at ASC").Order("book_id ASC").
		Scopes(paginate(page, pageSize)).Find(&models).Error
	if err != nil {
		return nil, 0, apperrors.Wrap(err, "查询购物车失败")
	}
	return toCartItemEntities(models), total, nil
}

func (r *cartRepository) AllItems(ctx context.Context, cartID uint) ([]*cart.Item, error) {
	var models []CartItemModel
	if err := r.getDB(ctx).Where("cart_id = ?", cartID).Order("book_id ASC").Find(&models).Error; err != nil {
		return nil, apperrors.Wrap(err, "查询购物车失败")
	}
	return toCartItemEntities(models), nil
}

func activeUserID(userID uint, status cart.Status) *uint {
	if status != cart.StatusActive {
		return nil
	}
	id := userID
	return &id
}

func toCartEntity(model *CartModel) *cart.Cart {
	return &cart.Cart{
		ID:        model.ID,
		UserID:    model.UserID,
		Status:    cart.Status(model.Status),
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}
}

func toCartItemEntity(model *CartItemModel) *cart.Item {
	return &cart.Item{
		CartID:    model.CartID,
		BookID:    model.BookID,
		Quantity:  model.Quantity,
		UnitPrice: model.UnitPrice,
		Currency:  model.Currency,
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}
}

func toCartItemEntities(models []CartItemModel) []*cart.Item {
	items := make([]*cart.Item, len(models))
	for i := range models {
		items[i] = toCartItemEntity(&models[i])
	}
	return items
}
