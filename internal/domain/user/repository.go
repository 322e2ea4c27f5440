package user

import (
	"context"
)

// Repository 用户仓储接口
// DDD设计说明：
// 1. 接口定义在domain层（依赖倒置原则）
// 2. 具体实现在infrastructure/persistence/mysql层
// 3. 查询方法默认排除已注销用户
type Repository interface {
	// Create 创建用户
	// 如果邮箱已存在，返回ErrEmailDuplicate
	Create(ctx context.Context, user *User) error

	// FindByID 根据ID查找用户，不存在或已注销返回ErrUserNotFound
	FindByID(ctx context.Context, id uint) (*User, error)

	// FindByEmail 根据邮箱查找用户，不存在或已注销返回ErrUserNotFound
	FindByEmail(ctx context.Context, email string) (*User, error)

	// Update 更新昵称、密码
	Update(ctx context.Context, user *User) error

	// Delete 注销用户（软删除）
	Delete(ctx context.Context, id uint) error
}

// TokenRepository 刷新令牌仓储
type TokenRepository interface {
	Create(ctx context.Context, token *RefreshToken) error

	// FindByHash 按哈希查找（包括已吊销的，由调用方判断IsActive）
	FindByHash(ctx context.Context, hash string) (*RefreshToken, error)

	// Revoke 吊销单个令牌，返回是否由本次调用完成吊销（并发轮换时只有一方成功）
	Revoke(ctx context.Context, hash string) (bool, error)

	// RevokeAllByUser 吊销用户全部令牌（注销账号、修改密码）
	RevokeAllByUser(ctx context.Context, userID uint) error
}
