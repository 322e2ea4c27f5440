package order

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/xiebiao/bookhub/internal/domain/book"
	"github.com/xiebiao/bookhub/internal/domain/cart"
	"github.com/xiebiao/bookhub/internal/domain/order"
	"github.com/xiebiao/bookhub/internal/domain/shared"
	apperrors "github.com/xiebiao/bookhub/pkg/errors"
	"github.com/xiebiao/bookhub/pkg/metrics"
	"github.com/xiebiao/bookhub/pkg/tracing"
)

// CheckoutUseCase 购物车结算用例
// 教学要点:这是整个项目最核心的用例
// 涉及:事务处理、行锁顺序、价格快照、购物车状态流转
type CheckoutUseCase struct {
	txManager shared.TxManager
	cartRepo  cart.Repository
	bookRepo  book.Repository
	orderRepo order.Repository
	events    order.EventPublisher
	logger    *zap.Logger
}

// NewCheckoutUseCase 创建结算用例
func NewCheckoutUseCase(
	txManager shared.TxManager,
	cartRepo cart.Repository,
	bookRepo book.Repository,
	orderRepo order.Repository,
	events order.EventPublisher,
	logger *zap.Logger,
) *CheckoutUseCase {
	return &CheckoutUseCase{
		txManager: txManager,
		cartRepo:  cartRepo,
		bookRepo:  bookRepo,
		orderRepo: orderRepo,
		events:    events,
		logger:    logger,
	}
}

// CheckoutResponse 结算响应DTO
type CheckoutResponse struct {
	OrderID     uint            `json:"orderId"`
	OrderNo     string          `json:"orderNo"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	Currency    string          `json:"currency"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// Execute 把用户的ACTIVE购物车原子地转换为订单
//
// 核心问题:超卖与重复结算
// 场景:同一本书库存5本,两个用户的购物车各有3本,同时结算
// 错误实现:
//  1. 读库存 → 5
//  2. 判断够不够 → 两边都够
//  3. 各自扣减 → 库存变成-1
//
// 正确实现(REPEATABLE READ + 显式行锁):
//  1. SELECT ... FOR UPDATE 锁定用户的ACTIVE购物车(同一用户的重复结算在这里排队)
//  2. 按ID升序 SELECT ... FOR UPDATE 锁定全部图书(固定加锁顺序,避免死锁)
//  3. 锁内校验下架、库存、币种
//  4. 创建订单与明细(单价取购物车捕获价,书名取当前快照)
//  5. 条件扣减库存 stock = stock - ? WHERE stock >= ?(兜底)
//  6. 条件流转购物车 ACTIVE → CHECKED_OUT(orders.cart_id唯一索引再兜底)
//  7. COMMIT释放锁,之后才发布领域事件
func (uc *CheckoutUseCase) Execute(ctx context.Context, userID uint) (*CheckoutResponse, error) {
	ctx, span := tracing.StartSpan(ctx, "order.Checkout")
	defer span.End()
	span.SetAttributes(attribute.Int("user.id", int(userID)))

	start := time.Now()
	var result *order.Order
	err := uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		// ========================================
		// 步骤1:锁定ACTIVE购物车
		// ========================================
		c, err := uc.cartRepo.LockActive(txCtx, userID)
		if err != nil {
			return err
		}

		// ========================================
		// 步骤2:加载全部购物车行(按BookID升序)
		// ========================================
		items, err := uc.cartRepo.AllItems(txCtx, c.ID)
		if err != nil {
			return err
		}
		if len(items) == 0 {
			return cart.ErrCartEmpty
		}

		// ========================================
		// 步骤3:按升序锁定图书(包括已下架的)
		// ========================================
		ids := make([]uint, len(items))
		for i, item := range items {
			ids[i] = item.BookID
		}
		books, err := uc.bookRepo.LockByIDs(txCtx, ids)
		if err != nil {
			return err
		}
		bookMap := make(map[uint]*book.Book, len(books))
		for _, b := range books {
			bookMap[b.ID] = b
		}

		// ========================================
		// 步骤4:锁内校验,任意一行失败整个事务回滚
		// ========================================
		currency := items[0].Currency
		orderItems := make([]order.OrderItem, len(items))
		for i, item := range items {
			b, ok := bookMap[item.BookID]
			if !ok || b.IsDeleted() {
				return cart.ErrBookUnavailable.WithDetails(map[string]any{"bookId": item.BookID})
			}
			if !b.HasStock(item.Quantity) {
				return cart.ErrInsufficientStock.WithDetails(cart.StockDetails{
					BookID:    b.ID,
					Requested: item.Quantity,
					Available: b.Stock,
				})
			}
			if item.Currency != currency {
				return cart.ErrCurrencyMismatch
			}
			// 教学要点:使用加购时捕获的价格,而不是图书的当前价格
			orderItems[i] = order.OrderItem{
				BookID:            b.ID,
				Quantity:          item.Quantity,
				UnitPrice:         item.UnitPrice,
				BookTitleSnapshot: b.Title,
			}
		}

		// ========================================
		// 步骤5:创建订单(包含明细)
		// ========================================
		cartID := c.ID
		newOrder, err := order.NewOrder(order.GenerateOrderNo(), userID, &cartID, currency, orderItems)
		if err != nil {
			return err
		}
		if err := uc.orderRepo.Create(txCtx, newOrder); err != nil {
			return err
		}

		// ========================================
		// 步骤6:扣减库存
		// ========================================
		for _, item := range orderItems {
			if err := uc.bookRepo.UpdateStock(txCtx, item.BookID, -item.Quantity); err != nil {
				return err
			}
		}

		// ========================================
		// 步骤7:购物车 ACTIVE → CHECKED_OUT
		// ========================================
		ok, err := uc.cartRepo.UpdateStatus(txCtx, c.ID, cart.StatusActive, cart.StatusCheckedOut)
		if err != nil {
			return err
		}
		if !ok {
			return order.ErrCartAlreadyOrdered
		}

		result = newOrder
		return nil
	})
	metrics.ObserveHistogram(metrics.CheckoutDuration, time.Since(start).Seconds())

	if err != nil {
		metrics.IncCounterVec(metrics.CheckoutsTotal, checkoutResult(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		if appErr := apperrors.GetAppError(err); appErr.Status >= 500 {
			uc.logger.Error("结算失败", zap.Uint("user_id", userID), zap.Error(err))
		}
		return nil, err
	}

	metrics.IncCounterVec(metrics.CheckoutsTotal, "success")
	span.SetAttributes(attribute.String("order.no", result.OrderNo))
	uc.logger.Info("结算成功",
		zap.Uint("user_id", userID),
		zap.Uint("order_id", result.ID),
		zap.String("order_no", result.OrderNo),
		zap.String("total", result.TotalAmount.String()),
	)

	// 事务已提交,事件发布失败不影响结算结果
	uc.events.OrderCreated(ctx, result)

	return &CheckoutResponse{
		OrderID:     result.ID,
		OrderNo:     result.OrderNo,
		TotalAmount: result.TotalAmount,
		Currency:    result.Currency,
		CreatedAt:   result.CreatedAt,
	}, nil
}

// checkoutResult 失败原因作为指标标签(取错误码,控制标签基数)
func checkoutResult(err error) string {
	return apperrors.GetAppError(err).Code
}
