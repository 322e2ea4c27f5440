package user

import (
	apperrors "github.com/xiebiao/bookhub/pkg/errors"
)

// 用户领域错误定义
var (
	// ErrUserNotFound 用户不存在（包括已注销）
	ErrUserNotFound = apperrors.NotFound("用户不存在")

	// ErrEmailDuplicate 邮箱已被注册
	ErrEmailDuplicate = apperrors.Duplicate("邮箱已被注册")

	// ErrInvalidCredentials 邮箱或密码错误
	ErrInvalidCredentials = apperrors.Unauthorized("邮箱或密码错误")

	// ErrWrongOldPassword 修改密码时原密码错误
	ErrWrongOldPassword = apperrors.Validation("原密码错误")

	// ErrWeakPassword 密码强度不足
	ErrWeakPassword = apperrors.Validation("密码强度不足（需8-20位，包含字母和数字）")

	// ErrInvalidEmail 邮箱格式不正确
	ErrInvalidEmail = apperrors.Validation("邮箱格式不正确")

	// ErrInvalidNickname 昵称长度不合法
	ErrInvalidNickname = apperrors.Validation("昵称长度应为2-50个字符")

	// ErrRefreshTokenInvalid 刷新令牌无效、已吊销或已过期
	ErrRefreshTokenInvalid = apperrors.Unauthorized("刷新令牌无效，请重新登录")
)
