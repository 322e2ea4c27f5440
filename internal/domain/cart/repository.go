package cart

import (
	"context"
)

// Repository 购物车仓储接口
// 设计说明:
// 1. LockActive在事务内使用(SELECT ... FOR UPDATE),串行化同一用户的加购与结算
// 2. UpdateStatus是条件更新,只有当前状态等于from时才生效
type Repository interface {
	// FindActive 查找用户的ACTIVE购物车,不存在返回ErrCartNotFound
	FindActive(ctx context.Context, userID uint) (*Cart, error)

	// LockActive 加锁读取用户的ACTIVE购物车
	LockActive(ctx context.Context, userID uint) (*Cart, error)

	// EnsureActive 为用户插入一个ACTIVE购物车,已存在时什么也不做
	// 依赖"每个用户一个ACTIVE购物车"的唯一索引(INSERT ... ON DUPLICATE KEY)
	EnsureActive(ctx context.Context, userID uint) error

	// UpdateStatus 条件流转状态,返回是否更新成功
	UpdateStatus(ctx context.Context, cartID uint, from, to Status) (bool, error)

	// FindItem 查找购物车行,不存在返回ErrCartItemNotFound
	FindItem(ctx context.Context, cartID, bookID uint) (*Item, error)

	// CreateItem 新增购物车行
	CreateItem(ctx context.Context, item *Item) error

	// UpdateItemQuantity 修改数量(不修改捕获的单价)
	UpdateItemQuantity(ctx context.Context, cartID, bookID uint, quantity int) error

	// DeleteItem 删除购物车行,返回是否真的删除了
	DeleteItem(ctx context.Context, cartID, bookID uint) (bool, error)

	// ListItems 分页查询购物车行(按加入时间)
	ListItems(ctx context.Context, cartID uint, page, pageSize int) ([]*Item, int64, error)

	// AllItems 查询购物车全部行(按BookID升序)
	AllItems(ctx context.Context, cartID uint) ([]*Item, error)
}
