package user

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/xiebiao/bookhub/internal/domain/shared"
	"github.com/xiebiao/bookhub/internal/domain/user"
	"github.com/xiebiao/bookhub/pkg/jwt"
)

// RefreshTokenUseCase 刷新Token用例
// 设计说明：
// 1. Refresh Token一次性使用：吊销旧的、签发新的（轮换）
// 2. Revoke是条件更新，并发用同一个Refresh Token刷新只有一方成功
// 3. 用户已注销时拒绝刷新
type RefreshTokenUseCase struct {
	userRepo   user.Repository
	tokenRepo  user.TokenRepository
	jwtManager *jwt.Manager
	txManager  shared.TxManager
	issuer     *tokenIssuer
}

// NewRefreshTokenUseCase 创建刷新用例
func NewRefreshTokenUseCase(
	userRepo user.Repository,
	tokenRepo user.TokenRepository,
	txManager shared.TxManager,
	jwtManager *jwt.Manager,
	sessions SessionStore,
	logger *zap.Logger,
) *RefreshTokenUseCase {
	return &RefreshTokenUseCase{
		userRepo:   userRepo,
		tokenRepo:  tokenRepo,
		jwtManager: jwtManager,
		txManager:  txManager,
		issuer: &tokenIssuer{
			jwtManager: jwtManager,
			tokenRepo:  tokenRepo,
			sessions:   sessions,
			logger:     logger,
		},
	}
}

// Execute 执行刷新
func (uc *RefreshTokenUseCase) Execute(ctx context.Context, refreshToken string) (*TokenResponse, error) {
	// 1. 校验签名、类型、过期时间
	claims, err := uc.jwtManager.ParseRefreshToken(refreshToken)
	if err != nil {
		return nil, user.ErrRefreshTokenInvalid
	}

	var (
		u    *user.User
		pair *jwt.TokenPair
	)
	err = uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		// 2. 服务端记录必须存在且有效
		hash := hashToken(refreshToken)
		stored, err := uc.tokenRepo.FindByHash(txCtx, hash)
		if err != nil {
			return err
		}
		if !stored.IsActive(time.Now()) || stored.UserID != claims.UserID {
			return user.ErrRefreshTokenInvalid
		}

		// 3. 已注销用户不能刷新
		u, err = uc.userRepo.FindByID(txCtx, claims.UserID)
		if errors.Is(err, user.ErrUserNotFound) {
			return user.ErrRefreshTokenInvalid
		}
		if err != nil {
			return err
		}

		// 4. 吊销旧Token（并发刷新时只有一方成功）
		revoked, err := uc.tokenRepo.Revoke(txCtx, hash)
		if err != nil {
			return err
		}
		if !revoked {
			return user.ErrRefreshTokenInvalid
		}

		// 5. 签发新Token对
		pair, err = uc.issuer.issue(txCtx, u)
		return err
	})
	if err != nil {
		return nil, err
	}

	return toTokenResponse(pair), nil
}
