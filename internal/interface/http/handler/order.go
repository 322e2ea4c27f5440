package handler

import (
	"github.com/gin-gonic/gin"

	apporder "github.com/xiebiao/bookhub/internal/application/order"
	"github.com/xiebiao/bookhub/internal/interface/http/dto"
	"github.com/xiebiao/bookhub/internal/interface/http/middleware"
	"github.com/xiebiao/bookhub/pkg/response"
)

// OrderHandler 订单HTTP处理器
type OrderHandler struct {
	queryUseCase      *apporder.QueryOrderUseCase
	transitionUseCase *apporder.TransitionOrderUseCase
}

// NewOrderHandler 创建订单处理器
func NewOrderHandler(queryUseCase *apporder.QueryOrderUseCase, transitionUseCase *apporder.TransitionOrderUseCase) *OrderHandler {
	return &OrderHandler{
		queryUseCase:      queryUseCase,
		transitionUseCase: transitionUseCase,
	}
}

// ListMyOrders 我的订单
// @Summary      我的订单
// @Tags         订单
// @Produce      json
// @Security     BearerAuth
// @Param        page query int false "页码"
// @Param        size query int false "每页数量"
// @Success      200 {object} response.Response{payload=response.PageData{list=[]apporder.OrderDTO}}
// @Router       /api/v1/orders [get]
func (h *OrderHandler) ListMyOrders(c *gin.Context) {
	var q dto.PageQuery
	if !bindQuery(c, &q) {
		return
	}
	result, err := h.queryUseCase.ListMine(c.Request.Context(), apporder.ListOrdersRequest{
		UserID:   middleware.GetUserID(c),
		Page:     q.Page,
		PageSize: q.Size,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithPage(c, result.Orders, result.Total, result.Page, result.Size)
}

// GetOrder 订单详情（本人或管理员）
// @Summary      订单详情
// @Tags         订单
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "订单ID"
// @Success      200 {object} response.Response{payload=apporder.OrderDTO}
// @Failure      403 {object} response.ErrorResponse "不是本人的订单"
// @Failure      404 {object} response.ErrorResponse "订单不存在"
// @Router       /api/v1/orders/{id} [get]
func (h *OrderHandler) GetOrder(c *gin.Context) {
	orderID, ok := pathID(c, "id")
	if !ok {
		return
	}
	viewer := apporder.Viewer{UserID: middleware.GetUserID(c), IsAdmin: middleware.IsAdmin(c)}
	result, err := h.queryUseCase.Get(c.Request.Context(), viewer, orderID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// CancelOrder 取消待支付订单并回补库存
// @Summary      取消订单
// @Tags         订单
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "订单ID"
// @Success      200 {object} response.Response{payload=apporder.OrderDTO}
// @Failure      422 {object} response.ErrorResponse "当前状态不允许取消"
// @Router       /api/v1/orders/{id}/cancel [post]
func (h *OrderHandler) CancelOrder(c *gin.Context) {
	orderID, ok := pathID(c, "id")
	if !ok {
		return
	}
	result, err := h.transitionUseCase.Cancel(c.Request.Context(), middleware.GetUserID(c), orderID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// ListAllOrders 全部订单（管理员），可按状态筛选
// @Summary      订单管理列表
// @Tags         管理后台
// @Produce      json
// @Security     BearerAuth
// @Param        status query string false "订单状态" Enums(PENDING, PAID, SHIPPED, COMPLETED, CANCELLED, REFUNDED)
// @Param        page query int false "页码"
// @Param        size query int false "每页数量"
// @Success      200 {object} response.Response{payload=response.PageData{list=[]apporder.OrderDTO}}
// @Router       /api/v1/admin/orders [get]
func (h *OrderHandler) ListAllOrders(c *gin.Context) {
	var q dto.ListOrdersQuery
	if !bindQuery(c, &q) {
		return
	}
	result, err := h.queryUseCase.ListAll(c.Request.Context(), apporder.ListOrdersRequest{
		Status:   q.Status,
		Page:     q.Page,
		PageSize: q.Size,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithPage(c, result.Orders, result.Total, result.Page, result.Size)
}

// UpdateOrderStatus 修改订单状态（管理员）
// @Summary      修改订单状态
// @Description  PENDING→PAID/CANCELLED，PAID→SHIPPED/REFUNDED，SHIPPED→COMPLETED；取消和退款回补库存
// @Tags         管理后台
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "订单ID"
// @Param        request body dto.UpdateOrderStatusRequest true "目标状态"
// @Success      200 {object} response.Response{payload=apporder.OrderDTO}
// @Failure      422 {object} response.ErrorResponse "非法的状态流转"
// @Router       /api/v1/admin/orders/{id}/status [patch]
func (h *OrderHandler) UpdateOrderStatus(c *gin.Context) {
	orderID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateOrderStatusRequest
	if !bindJSON(c, &req) {
		return
	}
	result, err := h.transitionUseCase.UpdateStatus(c.Request.Context(), orderID, req.Status)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}
