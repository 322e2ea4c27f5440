package dto

// =========================================
// 购物车相关DTO
// =========================================

// AddCartItemRequest 加入购物车
type AddCartItemRequest struct {
	BookID   uint `json:"bookId" binding:"required,min=1" example:"1"`
	Quantity int  `json:"quantity" binding:"required,min=1,max=999" example:"2"`
}

// UpdateCartItemRequest 修改购物车行数量（设置而非累加）
type UpdateCartItemRequest struct {
	Quantity int `json:"quantity" binding:"required,min=1,max=999" example:"3"`
}

// =========================================
// 订单相关DTO
// =========================================

// ListOrdersQuery 订单列表查询（status仅管理员接口生效）
type ListOrdersQuery struct {
	PageQuery
	Status string `form:"status" binding:"omitempty,oneof=PENDING PAID SHIPPED COMPLETED CANCELLED REFUNDED"`
}

// UpdateOrderStatusRequest 管理员修改订单状态
type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=PAID SHIPPED COMPLETED CANCELLED REFUNDED" example:"PAID"`
}

// =========================================
// 统计相关DTO
// =========================================

// TopBooksQuery 销量排行
type TopBooksQuery struct {
	Limit int `form:"limit" binding:"omitempty,min=1,max=50" example:"10"`
	Days  int `form:"days" binding:"omitempty,min=1,max=366" example:"30"`
}

// DateRangeQuery 日期区间（含首尾，格式2006-01-02）
type DateRangeQuery struct {
	From string `form:"from" binding:"omitempty,datetime=2006-01-02" example:"2024-01-01"`
	To   string `form:"to" binding:"omitempty,datetime=2006-01-02" example:"2024-01-31"`
}
