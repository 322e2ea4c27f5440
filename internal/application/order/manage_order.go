package order

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/xiebiao/bookhub/internal/domain/book"
	"github.com/xiebiao/bookhub/internal/domain/order"
	"github.com/xiebiao/bookhub/internal/domain/shared"
	"github.com/xiebiao/bookhub/pkg/metrics"
)

// =========================================
// 应用层DTO
// =========================================

// OrderItemDTO 订单明细
type OrderItemDTO struct {
	BookID    uint            `json:"bookId"`
	Title     string          `json:"title"` // 下单时的书名快照
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// OrderDTO 订单详情
type OrderDTO struct {
	ID            uint            `json:"id"`
	OrderNo       string          `json:"orderNo"`
	UserID        uint            `json:"userId"`
	Status        string          `json:"status"`
	PaymentStatus string          `json:"paymentStatus"`
	TotalAmount   decimal.Decimal `json:"totalAmount"`
	Currency      string          `json:"currency"`
	PlacedAt      time.Time       `json:"placedAt"`
	Items         []OrderItemDTO  `json:"items"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// ListOrdersRequest 订单列表查询
type ListOrdersRequest struct {
	UserID   uint
	Status   string // 仅管理员查询使用,空表示全部
	Page     int
	PageSize int
}

// ListOrdersResponse 订单分页结果
type ListOrdersResponse struct {
	Orders []OrderDTO
	Total  int64
	Page   int
	Size   int
}

// Viewer 发起查询的用户身份(来自鉴权中间件)
type Viewer struct {
	UserID  uint
	IsAdmin bool
}

func toOrderDTO(o *order.Order) OrderDTO {
	dto := OrderDTO{
		ID:            o.ID,
		OrderNo:       o.OrderNo,
		UserID:        o.UserID,
		Status:        string(o.Status),
		PaymentStatus: string(o.PaymentStatus),
		TotalAmount:   o.TotalAmount,
		Currency:      o.Currency,
		PlacedAt:      o.PlacedAt,
		Items:         make([]OrderItemDTO, len(o.Items)),
		CreatedAt:     o.CreatedAt,
		UpdatedAt:     o.UpdatedAt,
	}
	for i, item := range o.Items {
		dto.Items[i] = OrderItemDTO{
			BookID:    item.BookID,
			Title:     item.BookTitleSnapshot,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			Subtotal:  item.Subtotal(),
		}
	}
	return dto
}

func toOrderDTOs(orders []*order.Order) []OrderDTO {
	out := make([]OrderDTO, len(orders))
	for i, o := range orders {
		out[i] = toOrderDTO(o)
	}
	return out
}

// =========================================
// 查询用例
// =========================================

// QueryOrderUseCase 订单查询用例
type QueryOrderUseCase struct {
	orderRepo order.Repository
}

// NewQueryOrderUseCase 创建订单查询用例
func NewQueryOrderUseCase(orderRepo order.Repository) *QueryOrderUseCase {
	return &QueryOrderUseCase{orderRepo: orderRepo}
}

// ListMine 查询自己的订单(按下单时间倒序)
func (uc *QueryOrderUseCase) ListMine(ctx context.Context, req ListOrdersRequest) (*ListOrdersResponse, error) {
	page := shared.NewPage(req.Page, req.PageSize)
	orders, total, err := uc.orderRepo.ListByUserID(ctx, req.UserID, page.Page, page.Size)
	if err != nil {
		return nil, err
	}
	return &ListOrdersResponse{Orders: toOrderDTOs(orders), Total: total, Page: page.Page, Size: page.Size}, nil
}

// ListAll 管理员按状态查询全部订单
func (uc *QueryOrderUseCase) ListAll(ctx context.Context, req ListOrdersRequest) (*ListOrdersResponse, error) {
	status := order.Status(req.Status)
	if status != "" && !status.Valid() {
		return nil, order.ErrInvalidStatus
	}
	page := shared.NewPage(req.Page, req.PageSize)
	orders, total, err := uc.orderRepo.List(ctx, status, page.Page, page.Size)
	if err != nil {
		return nil, err
	}
	return &ListOrdersResponse{Orders: toOrderDTOs(orders), Total: total, Page: page.Page, Size: page.Size}, nil
}

// Get 查看订单详情
// 教学要点:订单只对下单用户和管理员可见,其他人返回FORBIDDEN
func (uc *QueryOrderUseCase) Get(ctx context.Context, viewer Viewer, orderID uint) (*OrderDTO, error) {
	o, err := uc.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !viewer.IsAdmin && !o.IsOwnedBy(viewer.UserID) {
		return nil, order.ErrNotOrderOwner
	}
	dto := toOrderDTO(o)
	return &dto, nil
}

// =========================================
// 状态流转用例
// =========================================

// TransitionOrderUseCase 订单状态流转用例
// 设计说明:
// 1. 事务内先锁定订单行,状态机校验后条件更新(WHERE status = from)
// 2. 取消、退款在同一事务内回补库存(不受图书下架影响)
// 3. 提交后发布 order.status_changed 事件
type TransitionOrderUseCase struct {
	txManager shared.TxManager
	orderRepo order.Repository
	bookRepo  book.Repository
	events    order.EventPublisher
	logger    *zap.Logger
}

// NewTransitionOrderUseCase 创建状态流转用例
func NewTransitionOrderUseCase(
	txManager shared.TxManager,
	orderRepo order.Repository,
	bookRepo book.Repository,
	events order.EventPublisher,
	logger *zap.Logger,
) *TransitionOrderUseCase {
	return &TransitionOrderUseCase{
		txManager: txManager,
		orderRepo: orderRepo,
		bookRepo:  bookRepo,
		events:    events,
		logger:    logger,
	}
}

// Cancel 用户取消自己的订单(仅PENDING可取消)
func (uc *TransitionOrderUseCase) Cancel(ctx context.Context, userID, orderID uint) (*OrderDTO, error) {
	return uc.transition(ctx, orderID, order.StatusCancelled, func(o *order.Order) error {
		if !o.IsOwnedBy(userID) {
			return order.ErrNotOrderOwner
		}
		return nil
	})
}

// UpdateStatus 管理员流转订单状态
func (uc *TransitionOrderUseCase) UpdateStatus(ctx context.Context, orderID uint, target string) (*OrderDTO, error) {
	status := order.Status(target)
	if !status.Valid() {
		return nil, order.ErrInvalidStatus
	}
	return uc.transition(ctx, orderID, status, nil)
}

func (uc *TransitionOrderUseCase) transition(
	ctx context.Context,
	orderID uint,
	target order.Status,
	authorize func(o *order.Order) error,
) (*OrderDTO, error) {
	var (
		result *order.Order
		from   order.Status
	)
	err := uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		// 1. 锁定订单
		o, err := uc.orderRepo.LockByID(txCtx, orderID)
		if err != nil {
			return err
		}
		if authorize != nil {
			if err := authorize(o); err != nil {
				return err
			}
		}

		// 2. 状态机校验
		from = o.Status
		if err := o.TransitionTo(target); err != nil {
			return err
		}

		// 3. 条件更新,并发修改时按非法流转处理
		ok, err := uc.orderRepo.UpdateStatus(txCtx, o, from)
		if err != nil {
			return err
		}
		if !ok {
			return order.ErrInvalidStatusTransition
		}

		// 4. 取消/退款回补库存
		if order.RestocksOn(target) {
			for _, item := range o.Items {
				if err := uc.bookRepo.UpdateStock(txCtx, item.BookID, item.Quantity); err != nil {
					return err
				}
			}
		}

		result = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.IncCounterVec(metrics.OrderTransitionsTotal, string(from), string(target))
	uc.logger.Info("订单状态变更",
		zap.Uint("order_id", result.ID),
		zap.String("from", string(from)),
		zap.String("to", string(target)),
	)
	uc.events.OrderStatusChanged(ctx, result, from)

	dto := toOrderDTO(result)
	return &dto, nil
}
