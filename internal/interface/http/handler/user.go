package handler

import (
	"github.com/gin-gonic/gin"

	appuser "github.com/xiebiao/bookhub/internal/application/user"
	"github.com/xiebiao/bookhub/internal/interface/http/dto"
	"github.com/xiebiao/bookhub/internal/interface/http/middleware"
	"github.com/xiebiao/bookhub/pkg/response"
)

// UserHandler 账号与个人资料
type UserHandler struct {
	registerUseCase *appuser.RegisterUseCase
	loginUseCase    *appuser.LoginUseCase
	logoutUseCase   *appuser.LogoutUseCase
	refreshUseCase  *appuser.RefreshTokenUseCase
	profileUseCase  *appuser.ProfileUseCase
}

// NewUserHandler 创建用户处理器
func NewUserHandler(
	registerUseCase *appuser.RegisterUseCase,
	loginUseCase *appuser.LoginUseCase,
	logoutUseCase *appuser.LogoutUseCase,
	refreshUseCase *appuser.RefreshTokenUseCase,
	profileUseCase *appuser.ProfileUseCase,
) *UserHandler {
	return &UserHandler{
		registerUseCase: registerUseCase,
		loginUseCase:    loginUseCase,
		logoutUseCase:   logoutUseCase,
		refreshUseCase:  refreshUseCase,
		profileUseCase:  profileUseCase,
	}
}

// Register 用户注册
// @Summary      用户注册
// @Description  创建新用户账号，角色默认为CUSTOMER
// @Tags         账号
// @Accept       json
// @Produce      json
// @Param        request body dto.RegisterRequest true "注册信息"
// @Success      201 {object} response.Response{payload=appuser.UserInfo} "注册成功"
// @Failure      400 {object} response.ErrorResponse "参数错误"
// @Failure      409 {object} response.ErrorResponse "邮箱已存在"
// @Router       /api/v1/auth/register [post]
func (h *UserHandler) Register(c *gin.Context) {
	// 1. 绑定并验证参数
	var req dto.RegisterRequest
	if !bindJSON(c, &req) {
		return
	}

	// 2. 调用应用层用例
	result, err := h.registerUseCase.Execute(c.Request.Context(), appuser.RegisterRequest{
		Email:    req.Email,
		Password: req.Password,
		Nickname: req.Nickname,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	// 3. 返回成功响应
	response.Created(c, result)
}

// Login 用户登录
// @Summary      用户登录
// @Description  验证邮箱密码，返回Access Token与Refresh Token
// @Tags         账号
// @Accept       json
// @Produce      json
// @Param        request body dto.LoginRequest true "登录信息"
// @Success      200 {object} response.Response{payload=appuser.LoginResponse} "登录成功"
// @Failure      401 {object} response.ErrorResponse "邮箱或密码错误"
// @Router       /api/v1/auth/login [post]
func (h *UserHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.loginUseCase.Execute(c.Request.Context(), appuser.LoginRequest{
		Email:    req.Email,
		Password: req.Password,
		ClientIP: c.ClientIP(),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// Refresh 刷新Token（旧Refresh Token随即失效）
// @Summary      刷新Token
// @Tags         账号
// @Accept       json
// @Produce      json
// @Param        request body dto.RefreshRequest true "Refresh Token"
// @Success      200 {object} response.Response{payload=appuser.TokenResponse}
// @Failure      401 {object} response.ErrorResponse "Refresh Token无效"
// @Router       /api/v1/auth/refresh [post]
func (h *UserHandler) Refresh(c *gin.Context) {
	var req dto.RefreshRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.refreshUseCase.Execute(c.Request.Context(), req.RefreshToken)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// Logout 登出：Access Token加入黑名单，吊销Refresh Token
// @Summary      登出
// @Tags         账号
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.LogoutRequest false "Refresh Token"
// @Success      200 {object} response.Response
// @Router       /api/v1/auth/logout [post]
func (h *UserHandler) Logout(c *gin.Context) {
	var req dto.LogoutRequest
	// 请求体可省略
	if c.Request.ContentLength > 0 && !bindJSON(c, &req) {
		return
	}

	err := h.logoutUseCase.Execute(c.Request.Context(), appuser.LogoutRequest{
		UserID:          middleware.GetUserID(c),
		AccessTokenID:   middleware.GetTokenID(c),
		AccessExpiresAt: middleware.GetTokenExpiresAt(c),
		RefreshToken:    req.RefreshToken,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

// GetProfile 查看个人资料
// @Summary      查看个人资料
// @Tags         账号
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.Response{payload=appuser.UserInfo}
// @Router       /api/v1/users/me [get]
func (h *UserHandler) GetProfile(c *gin.Context) {
	result, err := h.profileUseCase.Get(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// UpdateProfile 修改昵称或密码（改密后所有Refresh Token失效）
// @Summary      修改个人资料
// @Tags         账号
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.UpdateProfileRequest true "修改内容"
// @Success      200 {object} response.Response{payload=appuser.UserInfo}
// @Failure      400 {object} response.ErrorResponse "原密码错误或参数错误"
// @Router       /api/v1/users/me [patch]
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	var req dto.UpdateProfileRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.profileUseCase.Update(c.Request.Context(), appuser.UpdateProfileRequest{
		UserID:      middleware.GetUserID(c),
		Nickname:    req.Nickname,
		OldPassword: req.OldPassword,
		NewPassword: req.NewPassword,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// DeleteAccount 注销账号（软删除）
// @Summary      注销账号
// @Tags         账号
// @Security     BearerAuth
// @Success      200 {object} response.Response
// @Router       /api/v1/users/me [delete]
func (h *UserHandler) DeleteAccount(c *gin.Context) {
	if err := h.profileUseCase.Delete(c.Request.Context(), middleware.GetUserID(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}
