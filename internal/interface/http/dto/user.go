package dto

// RegisterRequest HTTP层注册请求
// 说明：HTTP层的DTO，包含参数验证tag；密码强度等业务规则在领域层校验
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email,max=100" example:"reader@example.com"`
	Password string `json:"password" binding:"required,min=8,max=20" example:"secret123"`
	Nickname string `json:"nickname" binding:"required,min=2,max=50" example:"读者"`
}

// LoginRequest 登录请求
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email" example:"reader@example.com"`
	Password string `json:"password" binding:"required" example:"secret123"`
}

// RefreshRequest 刷新Token请求
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// LogoutRequest 登出请求（Access Token从Authorization头获取）
type LogoutRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// UpdateProfileRequest 修改个人资料，字段省略表示不修改
type UpdateProfileRequest struct {
	Nickname    *string `json:"nickname" binding:"omitempty,min=2,max=50" example:"新昵称"`
	OldPassword string  `json:"oldPassword" binding:"required_with=NewPassword"`
	NewPassword string  `json:"newPassword" binding:"omitempty,min=8,max=20"`
}
