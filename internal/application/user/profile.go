package user

import (
	"context"

	"go.uber.org/zap"

	"github.com/xiebiao/bookhub/internal/domain/shared"
	"github.com/xiebiao/bookhub/internal/domain/user"
)

// ProfileUseCase 个人资料用例：查看、修改昵称/密码、注销账号
type ProfileUseCase struct {
	userService user.Service
	userRepo    user.Repository
	tokenRepo   user.TokenRepository
	txManager   shared.TxManager
	sessions    SessionStore
	logger      *zap.Logger
}

// NewProfileUseCase 创建个人资料用例
func NewProfileUseCase(
	userService user.Service,
	userRepo user.Repository,
	tokenRepo user.TokenRepository,
	txManager shared.TxManager,
	sessions SessionStore,
	logger *zap.Logger,
) *ProfileUseCase {
	return &ProfileUseCase{
		userService: userService,
		userRepo:    userRepo,
		tokenRepo:   tokenRepo,
		txManager:   txManager,
		sessions:    sessions,
		logger:      logger,
	}
}

// UpdateProfileRequest 修改资料，字段为nil表示不修改
type UpdateProfileRequest struct {
	UserID      uint
	Nickname    *string
	OldPassword string
	NewPassword string // 非空时必须同时提供OldPassword
}

// Get 查看个人资料
func (uc *ProfileUseCase) Get(ctx context.Context, userID uint) (*UserInfo, error) {
	u, err := uc.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return toUserInfo(u), nil
}

// Update 修改昵称或密码
// 修改密码后吊销全部Refresh Token，其他设备需要重新登录
func (uc *ProfileUseCase) Update(ctx context.Context, req UpdateProfileRequest) (*UserInfo, error) {
	var result *user.User
	err := uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		u, err := uc.userRepo.FindByID(txCtx, req.UserID)
		if err != nil {
			return err
		}

		// 1. 昵称
		if req.Nickname != nil {
			if err := uc.userService.ValidateNickname(*req.Nickname); err != nil {
				return err
			}
			u.UpdateNickname(*req.Nickname)
		}

		// 2. 密码
		passwordChanged := req.NewPassword != ""
		if passwordChanged {
			if err := uc.userService.ChangePassword(u, req.OldPassword, req.NewPassword); err != nil {
				return err
			}
		}

		if err := uc.userRepo.Update(txCtx, u); err != nil {
			return err
		}
		if passwordChanged {
			if err := uc.tokenRepo.RevokeAllByUser(txCtx, u.ID); err != nil {
				return err
			}
		}
		result = u
		return nil
	})
	if err != nil {
		return nil, err
	}
	return toUserInfo(result), nil
}

// Delete 注销账号（软删除），同时吊销全部Refresh Token
func (uc *ProfileUseCase) Delete(ctx context.Context, userID uint) error {
	err := uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		if err := uc.userRepo.Delete(txCtx, userID); err != nil {
			return err
		}
		return uc.tokenRepo.RevokeAllByUser(txCtx, userID)
	})
	if err != nil {
		return err
	}

	if err := uc.sessions.DeleteSession(ctx, userID); err != nil {
		uc.logger.Warn("删除会话失败", zap.Uint("user_id", userID), zap.Error(err))
	}
	return nil
}
