package order

import (
	"context"
)

// Repository 订单仓储接口(依赖倒置原则)
// 教学要点:
// 1. 由domain层定义接口,infrastructure层实现
// 2. 支持事务操作(通过context传递事务)
type Repository interface {
	// Create 创建订单(包含订单明细)
	// 教学要点:订单和明细必须在同一事务中创建
	// cart_id重复时返回ErrCartAlreadyOrdered
	Create(ctx context.Context, order *Order) error

	// FindByID 根据ID查找订单(包含订单明细)
	FindByID(ctx context.Context, id uint) (*Order, error)

	// FindByOrderNo 根据订单号查找订单
	FindByOrderNo(ctx context.Context, orderNo string) (*Order, error)

	// LockByID 悲观锁查询订单(含明细),用于状态流转
	LockByID(ctx context.Context, id uint) (*Order, error)

	// UpdateStatus 条件更新状态:仅当当前状态为from时才更新
	// 返回false表示状态已被并发修改
	UpdateStatus(ctx context.Context, order *Order, from Status) (bool, error)

	// ListByUserID 查询用户的订单列表(按下单时间倒序)
	ListByUserID(ctx context.Context, userID uint, page, pageSize int) ([]*Order, int64, error)

	// List 管理员查询全部订单,status为空表示不过滤
	List(ctx context.Context, status Status, page, pageSize int) ([]*Order, int64, error)
}
