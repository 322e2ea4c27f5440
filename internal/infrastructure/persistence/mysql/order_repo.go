package mysql

import (
	"context"

	"gorm.io/gorm"

	"github.com/xiebiao/bookhub/internal/domain/order"
	apperrors "github.com/xiebiao/bookhub/pkg/errors"
)

// orderRepository 订单仓储实现
// 教学要点:
// 1. 订单与明细一对多,Create时GORM在同一事务中插入order_items
// 2. cart_id唯一索引是"同一购物车只结算一次"的最后防线
type orderRepository struct {
	baseRepository
}

// NewOrderRepository 创建订单仓储
func NewOrderRepository(db *gorm.DB) order.Repository {
	return &orderRepository{baseRepository{db}}
}

// Create 创建订单(包含订单明细)
func (r *orderRepository) Create(ctx context.Context, o *order.Order) error {
	model := toOrderModel(o)
	if err := r.getDB(ctx).Create(model).Error; err != nil {
		if isDuplicateOn(err, "uk_orders_cart_id") {
			return order.ErrCartAlreadyOrdered
		}
		return apperrors.Wrap(err, "创建订单失败")
	}

	o.ID = model.ID
	for i := range o.Items {
		o.Items[i].OrderID = model.ID
	}
	o.CreatedAt = model.CreatedAt
	o.UpdatedAt = model.UpdatedAt
	return nil
}

func (r *orderRepository) FindByID(ctx context.Context, id uint) (*order.Order, error) {
	return r.find(r.getDB(ctx).Where("id = ?", id))
}

func (r *orderRepository) FindByOrderNo(ctx context.Context, orderNo string) (*order.Order, error) {
	return r.find(r.getDB(ctx).Where("order_no = ?", orderNo))
}

// LockByID 锁定订单行,状态流转期间其他事务等待
func (r *orderRepository) LockByID(ctx context.Context, id uint) (*order.Order, error) {
	return r.find(r.getDB(ctx).Clauses(forUpdate).Where("id = ?", id))
}

func (r *orderRepository) find(db *gorm.DB) (*order.Order, error) {
	var model OrderModel
	if err := db.Preload("Items").First(&model).Error; err != nil {
		if isNotFound(err) {
			return nil, order.ErrOrderNotFound
		}
		return nil, apperrors.Wrap(err, "查询订单失败")
	}
	return toOrderEntity(&model), nil
}

// UpdateStatus UPDATE orders SET status = ?, payment_status = ? WHERE id = ? AND status = from
func (r *orderRepository) UpdateStatus(ctx context.Context, o *order.Order, from order.Status) (bool, error) {
	result := r.getDB(ctx).Model(&OrderModel{}).
		Where("id = ? AND status = ?", o.ID, string(from)).
		Updates(map[string]interface{}{
			"status":         string(o.Status),
			"payment_status": string(o.PaymentStatus),
		})
	if result.Error != nil {
		return false, apperrors.Wrap(result.Error, "更新订单状态失败")
	}
	return result.RowsAffected == 1, nil
}

// ListByUserID 查询用户的订单列表
func (r *orderRepository) ListByUserID(ctx context.Context, userID uint, page, pageSize int) ([]*order.Order, int64, error) {
	return r.list(r.getDB(ctx).Model(&OrderModel{}).Where("user_id = ?", userID), page, pageSize)
}

// List 管理员查询订单
func (r *orderRepository) List(ctx context.Context, status order.Status, page, pageSize int) ([]*order.Order, int64, error) {
	query := r.getDB(ctx).Model(&OrderModel{})
	if status != "" {
		query = query.Where("status = ?", string(status))
	}
	return r.list(query, page, pageSize)
}

func (r *orderRepository) list(query *gorm.DB, page, pageSize int) ([]*order.Order, int64, error) {
	var models []OrderModel
	var total int64

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Wrap(err, "查询订单总数失败")
	}
	err := query.Preload("Items").
		Order("placed_at DESC").Order("id DESC").
		Scopes(paginate(page, pageSize)).
		Find(&models).Error
	if err != nil {
		return nil, 0, apperrors.Wrap(err, "查询订单列表失败")
	}

	orders := make([]*order.Order, len(models))
	for i := range models {
		orders[i] = toOrderEntity(&models[i])
	}
	return orders, total, nil
}

// =========================================
// 辅助函数:模型转换
// =========================================

func toOrderModel(o *order.Order) *OrderModel {
	items := make([]OrderItemModel, len(o.Items))
	for i, item := range o.Items {
		items[i] = OrderItemModel{
			BookID:            item.BookID,
			Quantity:          item.Quantity,
			UnitPrice:         item.UnitPrice,
			BookTitleSnapshot: item.BookTitleSnapshot,
		}
	}
	return &OrderModel{
		ID:            o.ID,
		OrderNo:       o.OrderNo,
		UserID:        o.UserID,
		CartID:        o.CartID,
		Status:        string(o.Status),
		PaymentStatus: string(o.PaymentStatus),
		TotalAmount:   o.TotalAmount,
		Currency:      o.Currency,
		PlacedAt:      o.PlacedAt,
		Items:         items,
	}
}

func toOrderEntity(model *OrderModel) *order.Order {
	items := make([]order.OrderItem, len(model.Items))
	for i, item := range model.Items {
		items[i] = order.OrderItem{
			OrderID:           item.OrderID,
			BookID:            item.BookID,
			Quantity:          item.Quantity,
			UnitPrice:         item.UnitPrice,
			BookTitleSnapshot: item.BookTitleSnapshot,
		}
	}
	return &order.Order{
		ID:            model.ID,
		OrderNo:       model.OrderNo,
		UserID:        model.UserID,
		CartID:        model.CartID,
		Status:        order.Status(model.Status),
		PaymentStatus: order.PaymentStatus(model.PaymentStatus),
		TotalAmount:   model.TotalAmount,
		Currency:      model.Currency,
		PlacedAt:      model.PlacedAt,
		Items:         items,
		CreatedAt:     model.CreatedAt,
		UpdatedAt:     model.UpdatedAt,
	}
}
