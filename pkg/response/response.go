package response

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apperrors "github.com/xiebiao/bookhub/pkg/errors"
	"github.com/xiebiao/bookhub/pkg/logger"
)

// Response 统一成功响应结构
// 设计说明：
// 1. IsSuccess让客户端无需解析HTTP状态码即可判断结果
// 2. Message是用户友好的提示信息
// 3. Payload是业务数据
type Response struct {
	IsSuccess bool        `json:"isSuccess"`
	Message   string      `json:"message"`
	Payload   interface{} `json:"payload"`
}

// ErrorResponse 统一错误响应结构
type ErrorResponse struct {
	Timestamp string      `json:"timestamp"`
	Path      string      `json:"path"`
	Status    int         `json:"status"`
	Code      string      `json:"code"`
	Message   string      `json:"message"`
	Details   interface{} `json:"details"`
}

// Success 成功响应（200）
func Success(c *gin.Context, data interface{}) {
	SuccessWithMessage(c, http.StatusOK, "success", data)
}

// Created 创建成功响应（201）
func Created(c *gin.Context, data interface{}) {
	SuccessWithMessage(c, http.StatusCreated, "created", data)
}

// SuccessWithMessage 自定义状态码与提示
func SuccessWithMessage(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, Response{
		IsSuccess: true,
		Message:   message,
		Payload:   data,
	})
}

// Error 错误响应（自动处理AppError）
// 用法：
//
//	err := cartUseCase.Execute(...)
//	if err != nil {
//	    response.Error(c, err)
//	    return
//	}
func Error(c *gin.Context, err error) {
	// 提取AppError
	appErr := apperrors.GetAppError(err)

	// 内部错误只进日志，不返回给客户端
	if appErr.Status >= http.StatusInternalServerError {
		logger.L().Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.String("code", appErr.Code),
			zap.String("message", appErr.Message),
			zap.Error(appErr.Err),
		)
	}

	c.AbortWithStatusJSON(appErr.Status, ErrorResponse{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Path:      c.Request.URL.Path,
		Status:    appErr.Status,
		Code:      appErr.Code,
		Message:   appErr.Message,
		Details:   appErr.Details,
	})
}

// =========================================
// 分页响应结构
// =========================================

// PageData 分页数据封装
type PageData struct {
	List       interface{} `json:"list"`       // 数据列表
	Total      int64       `json:"total"`      // 总记录数
	Page       int         `json:"page"`       // 当前页码
	Size       int         `json:"size"`       // 每页大小
	TotalPages int         `json:"totalPages"` // 总页数
}

// NewPageData 创建分页数据
func NewPageData(list interface{}, total int64, page, size int) *PageData {
	totalPages := 0
	if size > 0 {
		totalPages = int(total) / size
		if int(total)%size != 0 {
			totalPages++
		}
	}

	return &PageData{
		List:       list,
		Total:      total,
		Page:       page,
		Size:       size,
		TotalPages: totalPages,
	}
}

// SuccessWithPage 分页成功响应
func SuccessWithPage(c *gin.Context, list interface{}, total int64, page, size int) {
	Success(c, NewPageData(list, total, page, size))
}
