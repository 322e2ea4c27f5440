package mysql

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/xiebiao/bookhub/internal/domain/user"
	apperrors "github.com/xiebiao/bookhub/pkg/errors"
)

// userRepository 用户仓储实现（MySQL）
// 设计说明：
// 1. 实现domain/user/repository.go定义的接口
// 2. 负责domain实体与GORM模型之间的转换
// 3. 处理数据库特定的错误（如邮箱重复），转换为业务错误
type userRepository struct {
	baseRepository
}

// NewUserRepository 创建用户仓储
// 注意：返回的是domain层的接口类型，不是具体类型（依赖倒置）
func NewUserRepository(db *gorm.DB) user.Repository {
	return &userRepository{baseRepository{db}}
}

// Create 创建用户
// 学习要点：
// 1. 邮箱唯一性由数据库UNIQUE索引保证（而非应用层SELECT再INSERT）
// 2. 捕获MySQL的Duplicate Entry错误，转换为业务错误ErrEmailDuplicate
func (r *userRepository) Create(ctx context.Context, u *user.User) error {
	model := &UserModel{
		Email:    u.Email,
		Password: u.Password,
		Nickname: u.Nickname,
		Role:     string(u.Role),
	}

	if err := r.getDB(ctx).Create(model).Error; err != nil {
		if isDuplicateError(err) {
			return user.ErrEmailDuplicate
		}
		return apperrors.Wrap(err, "创建用户失败")
	}

	// 回填自增ID
	u.ID = model.ID
	u.CreatedAt = model.CreatedAt
	u.UpdatedAt = model.UpdatedAt
	return nil
}

// FindByID 根据ID查找用户（已注销用户由软删除条件自动排除）
func (r *userRepository) FindByID(ctx context.Context, id uint) (*user.User, error) {
	var model UserModel
	if err := r.getDB(ctx).First(&model, id).Error; err != nil {
		if isNotFound(err) {
			return nil, user.ErrUserNotFound
		}
		return nil, apperrors.Wrap(err, "查询用户失败")
	}
	return toUserEntity(&model), nil
}

// FindByEmail 根据邮箱查找用户
func (r *userRepository) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	var model UserModel
	if err := r.getDB(ctx).Where("email = ?", email).First(&model).Error; err != nil {
		if isNotFound(err) {
			return nil, user.ErrUserNotFound
		}
		return nil, apperrors.Wrap(err, "查询用户失败")
	}
	return toUserEntity(&model), nil
}

// Update 更新昵称、密码
// 值未变化时MySQL的RowsAffected为0，这里不据此判断用户是否存在
func (r *userRepository) Update(ctx context.Context, u *user.User) error {
	err := r.getDB(ctx).Model(&UserModel{ID: u.ID}).Updates(map[string]interface{}{
		"nickname": u.Nickname,
		"password": u.Password,
	}).Error
	if err != nil {
		return apperrors.Wrap(err, "更新用户失败")
	}
	return nil
}

// Delete 注销用户（软删除，只写deleted_at）
func (r *userRepository) Delete(ctx context.Context, id uint) error {
	result := r.getDB(ctx).Delete(&UserModel{}, id)
	if result.Error != nil {
		return apperrors.Wrap(result.Error, "注销用户失败")
	}
	if result.RowsAffected == 0 {
		return user.ErrUserNotFound
	}
	return nil
}

func toUserEntity(model *UserModel) *user.User {
	u := &user.User{
		ID:        model.ID,
		Email:     model.Email,
		Password:  model.Password,
		Nickname:  model.Nickname,
		Role:      user.Role(model.Role),
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}
	if model.DeletedAt.Valid {
		t := model.DeletedAt.Time
		u.DeletedAt = &t
	}
	return u
}

// tokenRepository 刷新令牌仓储
type tokenRepository struct {
	baseRepository
}

// NewTokenRepository 创建刷新令牌仓储
func NewTokenRepository(db *gorm.DB) user.TokenRepository {
	return &tokenRepository{baseRepository{db}}
}

func (r *tokenRepository) Create(ctx context.Context, t *user.RefreshToken) error {
	model := &RefreshTokenModel{
		UserID:    t.UserID,
		TokenHash: t.TokenHash,
		ExpiresAt: t.ExpiresAt,
	}
	if err := r.getDB(ctx).Create(model).Error; err != nil {
		return apperrors.Wrap(err, "保存刷新令牌失败")
	}
	t.ID = model.ID
	t.CreatedAt = model.CreatedAt
	return nil
}

func (r *tokenRepository) FindByHash(ctx context.Context, hash string) (*user.RefreshToken, error) {
	var model RefreshTokenModel
	if err := r.getDB(ctx).Where("token_hash = ?", hash).First(&model).Error; err != nil {
		if isNotFound(err) {
			return nil, user.ErrRefreshTokenInvalid
		}
		return nil, apperrors.Wrap(err, "查询刷新令牌失败")
	}
	return &user.RefreshToken{
		ID:        model.ID,
		UserID:    model.UserID,
		TokenHash: model.TokenHash,
		ExpiresAt: model.ExpiresAt,
		RevokedAt: model.RevokedAt,
		CreatedAt: model.CreatedAt,
	}, nil
}

// Revoke 条件更新revoked_at IS NULL，并发轮换同一个令牌时只有一方RowsAffected=1
func (r *tokenRepository) Revoke(ctx context.Context, hash string) (bool, error) {
	result := r.getDB(ctx).Model(&RefreshTokenModel{}).
		Where("token_hash = ? AND revoked_at IS NULL", hash).
		Update("revoked_at", time.Now())
	if result.Error != nil {
		return false, apperrors.Wrap(result.Error, "吊销刷新令牌失败")
	}
	return result.RowsAffected == 1, nil
}

func (r *tokenRepository) RevokeAllByUser(ctx context.Context, userID uint) error {
	err := r.getDB(ctx).Model(&RefreshTokenModel{}).
		Where("user_id = ? AND revoked_at IS NULL", userID).
		Update("revoked_at", time.Now()).Error
	if err != nil {
		return apperrors.Wrap(err, "吊销刷新令牌失败")
	}
	return nil
}
