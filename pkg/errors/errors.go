package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError 自定义应用错误
// 设计说明：
// 1. Status是HTTP状态码，Code是机器可读的错误码字符串（客户端按Code分支）
// 2. Message是用户友好的提示信息，Details携带结构化的补充信息（如库存不足的图书）
// 3. Err是内部错误，仅记录到日志，不返回给客户端（防止泄露敏感信息）
type AppError struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap 支持errors.Is和errors.As
func (e *AppError) Unwrap() error {
	return e.Err
}

// Is 按Code比较，WithDetails复制出的错误仍与原哨兵错误相等
func (e *AppError) Is(target error) bool {
	var t *AppError
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code && e.Message == t.Message
}

// WithDetails 返回携带详情的副本（预定义错误是共享的，不能原地修改）
func (e *AppError) WithDetails(details any) *AppError {
	cp := *e
	cp.Details = details
	return &cp
}

// =========================================
// 错误码定义
// =========================================
// 规范：Code与HTTP状态码一一对应，响应体同时携带两者

const (
	CodeValidationFailed = "VALIDATION_FAILED"
	CodeUnauthorized     = "UNAUTHORIZED"
	CodeForbidden        = "FORBIDDEN"
	CodeNotFound         = "RESOURCE_NOT_FOUND"
	CodeDuplicate        = "DUPLICATE_RESOURCE"
	CodeUnprocessable    = "UNPROCESSABLE_ENTITY"
	CodeInternal         = "INTERNAL_SERVER_ERROR"
)

// New 创建新的AppError
func New(status int, code, message string) *AppError {
	return &AppError{
		Status:  status,
		Code:    code,
		Message: message,
	}
}

// Validation 参数不合法（400）
func Validation(message string) *AppError {
	return New(http.StatusBadRequest, CodeValidationFailed, message)
}

// Unauthorized 未登录或凭证无效（401）
func Unauthorized(message string) *AppError {
	return New(http.StatusUnauthorized, CodeUnauthorized, message)
}

// Forbidden 已登录但无权操作（403）
func Forbidden(message string) *AppError {
	return New(http.StatusForbidden, CodeForbidden, message)
}

// NotFound 资源不存在或已软删除（404）
func NotFound(message string) *AppError {
	return New(http.StatusNotFound, CodeNotFound, message)
}

// Duplicate 唯一性冲突（409）
func Duplicate(message string) *AppError {
	return New(http.StatusConflict, CodeDuplicate, message)
}

// Unprocessable 当前状态下语义不合法的操作（422），如库存不足、空购物车
func Unprocessable(message string) *AppError {
	return New(http.StatusUnprocessableEntity, CodeUnprocessable, message)
}

// Wrap 包装系统错误（如数据库错误、网络错误）
// 用途：将底层错误转换为业务错误，隐藏实现细节
func Wrap(err error, message string) *AppError {
	return &AppError{
		Status:  http.StatusInternalServerError,
		Code:    CodeInternal,
		Message: message,
		Err:     err,
	}
}

// Wrapf 格式化包装错误
func Wrapf(err error, format string, args ...interface{}) *AppError {
	return Wrap(err, fmt.Sprintf(format, args...))
}

// =========================================
// 预定义错误（避免每次都New）
// =========================================

var (
	ErrInternal     = New(http.StatusInternalServerError, CodeInternal, "系统内部错误")
	ErrUnauthorized = Unauthorized("请先登录")
	ErrInvalidToken = Unauthorized("无效的Token")
	ErrTokenExpired = Unauthorized("Token已过期")
	ErrForbidden    = Forbidden("无权限访问")
	ErrBindError    = Validation("参数格式错误")
)

// =========================================
// 辅助函数
// =========================================

// IsAppError 判断是否为AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// IsCode 判断错误链中是否有指定Code的AppError
func IsCode(err error, code string) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == code
}

// GetAppError 提取AppError（如果不是AppError则包装成Internal错误）
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return Wrap(err, "系统内部错误")
}
