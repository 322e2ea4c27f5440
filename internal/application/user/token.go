package user

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"go.uber.org/zap"

	"github.com/xiebiao/bookhub/internal/domain/user"
	"github.com/xiebiao/bookhub/pkg/jwt"
)

// SessionStore 会话与Access Token黑名单(redis实现)
type SessionStore interface {
	SaveSession(ctx context.Context, userID uint, sessionData map[string]interface{}, ttl time.Duration) error
	DeleteSession(ctx context.Context, userID uint) error
	AddToBlacklist(ctx context.Context, jti string, ttl time.Duration) error
}

// TokenResponse Token对
type TokenResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    int64  `json:"expiresIn"` // Access Token过期时间（秒）
}

// tokenIssuer 签发Token对并持久化Refresh Token哈希
// 登录与刷新共用
type tokenIssuer struct {
	jwtManager *jwt.Manager
	tokenRepo  user.TokenRepository
	sessions   SessionStore
	logger     *zap.Logger
}

// issue 签发Token对，必须在事务内调用
func (i *tokenIssuer) issue(ctx context.Context, u *user.User) (*jwt.TokenPair, error) {
	pair, err := i.jwtManager.GenerateToken(u.ID, u.Email, string(u.Role))
	if err != nil {
		return nil, err
	}
	err = i.tokenRepo.Create(ctx, &user.RefreshToken{
		UserID:    u.ID,
		TokenHash: hashToken(pair.RefreshToken),
		ExpiresAt: pair.RefreshExpiresAt,
		CreatedAt: time.Now(),
	})
	if err != nil {
		return nil, err
	}
	return pair, nil
}

// saveSession 保存会话；失败不影响登录，只记录日志
func (i *tokenIssuer) saveSession(ctx context.Context, u *user.User, pair *jwt.TokenPair, clientIP string) {
	sessionData := map[string]interface{}{
		"user_id":  u.ID,
		"email":    u.Email,
		"role":     string(u.Role),
		"login_at": time.Now().Unix(),
		"ip":       clientIP,
	}
	// 会话有效期 = Refresh Token有效期
	ttl := time.Until(pair.RefreshExpiresAt)
	if err := i.sessions.SaveSession(ctx, u.ID, sessionData, ttl); err != nil {
		i.logger.Warn("保存会话失败", zap.Uint("user_id", u.ID), zap.Error(err))
	}
}

func toTokenResponse(pair *jwt.TokenPair) *TokenResponse {
	return &TokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresIn:    pair.ExpiresIn,
	}
}

// hashToken Refresh Token只以SHA-256哈希落库
func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
