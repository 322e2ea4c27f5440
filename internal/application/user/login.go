package user

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/xiebiao/bookhub/internal/domain/shared"
	"github.com/xiebiao/bookhub/internal/domain/user"
	"github.com/xiebiao/bookhub/pkg/jwt"
)

// LoginUseCase 用户登录用例
// 设计说明：
// 1. 验证邮箱密码（邮箱不存在、已注销、密码错误返回同一个错误）
// 2. 生成JWT Token对，Refresh Token哈希落库
// 3. 保存会话到Redis
type LoginUseCase struct {
	userService user.Service
	txManager   shared.TxManager
	issuer      *tokenIssuer
}

// NewLoginUseCase 创建登录用例
func NewLoginUseCase(
	userService user.Service,
	txManager shared.TxManager,
	tokenRepo user.TokenRepository,
	jwtManager *jwt.Manager,
	sessions SessionStore,
	logger *zap.Logger,
) *LoginUseCase {
	return &LoginUseCase{
		userService: userService,
		txManager:   txManager,
		issuer: &tokenIssuer{
			jwtManager: jwtManager,
			tokenRepo:  tokenRepo,
			sessions:   sessions,
			logger:     logger,
		},
	}
}

// Execute 执行登录
func (uc *LoginUseCase) Execute(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	// 1. 验证邮箱密码（调用领域服务）
	u, err := uc.userService.Login(ctx, req.Email, req.Password)
	if err != nil {
		return nil, err
	}

	// 2. 生成JWT Token对
	var pair *jwt.TokenPair
	err = uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		pair, err = uc.issuer.issue(txCtx, u)
		return err
	})
	if err != nil {
		return nil, err
	}

	// 3. 保存会话到Redis
	uc.issuer.saveSession(ctx, u, pair, req.ClientIP)

	// 4. 返回登录响应
	return &LoginResponse{
		User:          *toUserInfo(u),
		TokenResponse: *toTokenResponse(pair),
	}, nil
}

// LogoutUseCase 用户登出用例
type LogoutUseCase struct {
	tokenRepo user.TokenRepository
	sessions  SessionStore
}

// NewLogoutUseCase 创建登出用例
func NewLogoutUseCase(tokenRepo user.TokenRepository, sessions SessionStore) *LogoutUseCase {
	return &LogoutUseCase{tokenRepo: tokenRepo, sessions: sessions}
}

// Execute 执行登出
func (uc *LogoutUseCase) Execute(ctx context.Context, req LogoutRequest) error {
	// 1. 吊销Refresh Token（可选，未携带时只让Access Token失效）
	if req.RefreshToken != "" {
		if _, err := uc.tokenRepo.Revoke(ctx, hashToken(req.RefreshToken)); err != nil {
			return err
		}
	}

	// 2. 将Access Token加入黑名单（防止Token在过期前继续使用）
	// TTL = 剩余有效期，过期后黑名单自动清理
	if err := uc.sessions.AddToBlacklist(ctx, req.AccessTokenID, time.Until(req.AccessExpiresAt)); err != nil {
		return err
	}

	// 3. 删除会话
	return uc.sessions.DeleteSession(ctx, req.UserID)
}

// =========================================
// 应用层DTO
// =========================================

// LoginRequest 登录请求
type LoginRequest struct {
	Email    string
	Password string
	ClientIP string
}

// LoginResponse 登录响应
type LoginResponse struct {
	User UserInfo `json:"user"`
	TokenResponse
}

// LogoutRequest 登出请求（Access Token信息由鉴权中间件解析）
type LogoutRequest struct {
	UserID          uint
	AccessTokenID   string
	AccessExpiresAt time.Time
	RefreshToken    string
}
