package middleware

import (
	"context"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/xiebiao/bookhub/internal/domain/user"
	apperrors "github.com/xiebiao/bookhub/pkg/errors"
	"github.com/xiebiao/bookhub/pkg/jwt"
	"github.com/xiebiao/bookhub/pkg/response"
)

// Context中的key
const (
	ctxUserID    = "user_id"
	ctxEmail     = "email"
	ctxRole      = "role"
	ctxTokenID   = "token_id"
	ctxTokenExp  = "token_expires_at"
	ctxRequestID = "request_id"
)

// TokenBlacklist Access Token黑名单（redis.SessionStore实现）
type TokenBlacklist interface {
	IsInBlacklist(ctx context.Context, jti string) (bool, error)
}

// AuthMiddleware JWT认证中间件
// 设计说明：
// 1. 从Header提取Bearer Token，只接受Access Token
// 2. 按jti检查黑名单（登出后立即失效）
// 3. 将{userId, role}注入Context，核心用例无条件信任这两个值
type AuthMiddleware struct {
	jwtManager *jwt.Manager
	blacklist  TokenBlacklist
}

// NewAuthMiddleware 创建认证中间件
func NewAuthMiddleware(jwtManager *jwt.Manager, blacklist TokenBlacklist) *AuthMiddleware {
	return &AuthMiddleware{
		jwtManager: jwtManager,
		blacklist:  blacklist,
	}
}

// RequireAuth 要求登录
// 使用方式：
//
//	authorized := v1.Group("")
//	authorized.Use(authMiddleware.RequireAuth())
//	authorized.GET("/users/me", userHandler.GetProfile)
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		// 1. 提取Token，格式：Authorization: Bearer <token>
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Error(c, apperrors.ErrUnauthorized)
			return
		}
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
			response.Error(c, apperrors.ErrInvalidToken)
			return
		}

		// 2. 验证签名、过期时间与Token类型
		claims, err := m.jwtManager.ParseAccessToken(parts[1])
		if err != nil {
			response.Error(c, err)
			return
		}

		// 3. 黑名单检查（Redis不可用时返回500，不放行）
		revoked, err := m.blacklist.IsInBlacklist(c.Request.Context(), claims.ID)
		if err != nil {
			response.Error(c, err)
			return
		}
		if revoked {
			response.Error(c, apperrors.ErrTokenExpired)
			return
		}

		// 4. 注入用户信息
		c.Set(ctxUserID, claims.UserID)
		c.Set(ctxEmail, claims.Email)
		c.Set(ctxRole, claims.Role)
		c.Set(ctxTokenID, claims.ID)
		if claims.ExpiresAt != nil {
			c.Set(ctxTokenExp, claims.ExpiresAt.Time)
		}

		c.Next()
	}
}

// RequireRole 要求指定角色，必须放在RequireAuth之后
func (m *AuthMiddleware) RequireRole(role user.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		if GetRole(c) != string(role) {
			response.Error(c, apperrors.ErrForbidden)
			return
		}
		c.Next()
	}
}

// =========================================
// Context辅助函数（供Handler使用）
// =========================================

// GetUserID 当前登录用户ID，未登录为0
func GetUserID(c *gin.Context) uint {
	return c.GetUint(ctxUserID)
}

// GetRole 当前登录用户角色
func GetRole(c *gin.Context) string {
	return c.GetString(ctxRole)
}

// IsAdmin 当前用户是否为管理员
func IsAdmin(c *gin.Context) bool {
	return GetRole(c) == string(user.RoleAdmin)
}

// GetTokenID 当前Access Token的jti（登出时加入黑名单）
func GetTokenID(c *gin.Context) string {
	return c.GetString(ctxTokenID)
}

// GetTokenExpiresAt 当前Access Token的过期时间
func GetTokenExpiresAt(c *gin.Context) time.Time {
	return c.GetTime(ctxTokenExp)
}

// GetRequestID 当前请求ID
func GetRequestID(c *gin.Context) string {
	return c.GetString(ctxRequestID)
}
