package handler

import (
	"github.com/gin-gonic/gin"

	appcart "github.com/xiebiao/bookhub/internal/application/cart"
	apporder "github.com/xiebiao/bookhub/internal/application/order"
	appwishlist "github.com/xiebiao/bookhub/internal/application/wishlist"
	"github.com/xiebiao/bookhub/internal/interface/http/dto"
	"github.com/xiebiao/bookhub/internal/interface/http/middleware"
	"github.com/xiebiao/bookhub/pkg/response"
)

// CartHandler 购物车、结算与心愿单
type CartHandler struct {
	cartUseCase     *appcart.CartUseCase
	checkoutUseCase *apporder.CheckoutUseCase
	wishlistUseCase *appwishlist.WishlistUseCase
}

// NewCartHandler 创建购物车处理器
func NewCartHandler(
	cartUseCase *appcart.CartUseCase,
	checkoutUseCase *apporder.CheckoutUseCase,
	wishlistUseCase *appwishlist.WishlistUseCase,
) *CartHandler {
	return &CartHandler{
		cartUseCase:     cartUseCase,
		checkoutUseCase: checkoutUseCase,
		wishlistUseCase: wishlistUseCase,
	}
}

// GetCart 查看购物车（没有ACTIVE购物车时自动创建）
// @Summary      查看购物车
// @Description  subtotal为当前页小计，total为整车合计
// @Tags         购物车
// @Produce      json
// @Security     BearerAuth
// @Param        page query int false "页码"
// @Param        size query int false "每页数量"
// @Success      200 {object} response.Response{payload=appcart.ListCartResponse}
// @Router       /api/v1/cart [get]
func (h *CartHandler) GetCart(c *gin.Context) {
	var q dto.PageQuery
	if !bindQuery(c, &q) {
		return
	}
	result, err := h.cartUseCase.ListCart(c.Request.Context(), appcart.ListCartRequest{
		UserID:   middleware.GetUserID(c),
		Page:     q.Page,
		PageSize: q.Size,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// AbandonCart 放弃当前购物车，下次操作会创建新的购物车
// @Summary      放弃购物车
// @Tags         购物车
// @Security     BearerAuth
// @Success      200 {object} response.Response
// @Failure      404 {object} response.ErrorResponse "没有进行中的购物车"
// @Router       /api/v1/cart [delete]
func (h *CartHandler) AbandonCart(c *gin.Context) {
	if err := h.cartUseCase.AbandonCart(c.Request.Context(), middleware.GetUserID(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

// AddItem 加入购物车（已有该书时累加数量，单价保持首次加入时的价格）
// @Summary      加入购物车
// @Tags         购物车
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.AddCartItemRequest true "图书与数量"
// @Success      200 {object} response.Response{payload=appcart.ItemInfo}
// @Failure      404 {object} response.ErrorResponse "图书不存在"
// @Failure      422 {object} response.ErrorResponse "库存不足"
// @Router       /api/v1/cart/items [post]
func (h *CartHandler) AddItem(c *gin.Context) {
	var req dto.AddCartItemRequest
	if !bindJSON(c, &req) {
		return
	}
	result, err := h.cartUseCase.AddItem(c.Request.Context(), appcart.AddItemRequest{
		UserID:   middleware.GetUserID(c),
		BookID:   req.BookID,
		Quantity: req.Quantity,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// UpdateItem 修改数量
// @Summary      修改购物车数量
// @Tags         购物车
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        bookId path int true "图书ID"
// @Param        request body dto.UpdateCartItemRequest true "数量"
// @Success      200 {object} response.Response{payload=appcart.ItemInfo}
// @Router       /api/v1/cart/items/{bookId} [put]
func (h *CartHandler) UpdateItem(c *gin.Context) {
	bookID, ok := pathID(c, "bookId")
	if !ok {
		return
	}
	var req dto.UpdateCartItemRequest
	if !bindJSON(c, &req) {
		return
	}
	result, err := h.cartUseCase.UpdateItem(c.Request.Context(), appcart.UpdateItemRequest{
		UserID:   middleware.GetUserID(c),
		BookID:   bookID,
		Quantity: req.Quantity,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// RemoveItem 移出购物车（幂等）
// @Summary      移出购物车
// @Tags         购物车
// @Security     BearerAuth
// @Param        bookId path int true "图书ID"
// @Success      200 {object} response.Response
// @Router       /api/v1/cart/items/{bookId} [delete]
func (h *CartHandler) RemoveItem(c *gin.Context) {
	bookID, ok := pathID(c, "bookId")
	if !ok {
		return
	}
	if err := h.cartUseCase.RemoveItem(c.Request.Context(), middleware.GetUserID(c), bookID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

// Checkout 结算：购物车整体转为订单
// @Summary      结算
// @Description  锁购物车、锁图书、校验库存、写订单、扣库存、购物车置为CHECKED_OUT，全部在一个事务内
// @Tags         购物车
// @Produce      json
// @Security     BearerAuth
// @Success      201 {object} response.Response{payload=apporder.CheckoutResponse}
// @Failure      404 {object} response.ErrorResponse "没有进行中的购物车"
// @Failure      422 {object} response.ErrorResponse "购物车为空、图书已下架或库存不足"
// @Router       /api/v1/cart/checkout [post]
func (h *CartHandler) Checkout(c *gin.Context) {
	result, err := h.checkoutUseCase.Execute(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// =========================================
// 心愿单
// =========================================

// ListWishlist 心愿单
// @Summary      心愿单
// @Tags         心愿单
// @Produce      json
// @Security     BearerAuth
// @Param        page query int false "页码"
// @Param        size query int false "每页数量"
// @Success      200 {object} response.Response{payload=response.PageData{list=[]appwishlist.ItemDTO}}
// @Router       /api/v1/wishlist [get]
func (h *CartHandler) ListWishlist(c *gin.Context) {
	var q dto.PageQuery
	if !bindQuery(c, &q) {
		return
	}
	result, err := h.wishlistUseCase.List(c.Request.Context(), middleware.GetUserID(c), q.Page, q.Size)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithPage(c, result.Items, result.Total, result.Page, result.Size)
}

// AddToWishlist 加入心愿单（幂等）
// @Summary      加入心愿单
// @Tags         心愿单
// @Security     BearerAuth
// @Param        bookId path int true "图书ID"
// @Success      200 {object} response.Response
// @Failure      404 {object} response.ErrorResponse "图书不存在"
// @Router       /api/v1/wishlist/{bookId} [put]
func (h *CartHandler) AddToWishlist(c *gin.Context) {
	bookID, ok := pathID(c, "bookId")
	if !ok {
		return
	}
	if err := h.wishlistUseCase.Add(c.Request.Context(), middleware.GetUserID(c), bookID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

// RemoveFromWishlist 移出心愿单（幂等）
// @Summary      移出心愿单
// @Tags         心愿单
// @Security     BearerAuth
// @Param        bookId path int true "图书ID"
// @Success      200 {object} response.Response
// @Router       /api/v1/wishlist/{bookId} [delete]
func (h *CartHandler) RemoveFromWishlist(c *gin.Context) {
	bookID, ok := pathID(c, "bookId")
	if !ok {
		return
	}
	if err := h.wishlistUseCase.Remove(c.Request.Context(), middleware.GetUserID(c), bookID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}
