package cart

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/xiebiao/bookhub/internal/domain/book"
	"github.com/xiebiao/bookhub/internal/domain/cart"
	"github.com/xiebiao/bookhub/internal/domain/shared"
	"github.com/xiebiao/bookhub/pkg/metrics"
)

// CartUseCase 购物车生命周期用例
// 设计说明:
// 1. 每次写操作都在事务内先锁定用户的ACTIVE购物车(SELECT ... FOR UPDATE),
//    同一用户的加购、改数量、结算互相串行
// 2. 没有ACTIVE购物车时惰性创建:先INSERT(冲突忽略)再加锁读取,并发首次加购拿到同一个购物车
// 3. 单价在首次加入时捕获,重复加购只累加数量
type CartUseCase struct {
	txManager shared.TxManager
	cartRepo  cart.Repository
	bookRepo  book.Repository
}

// NewCartUseCase 创建购物车用例
func NewCartUseCase(txManager shared.TxManager, cartRepo cart.Repository, bookRepo book.Repository) *CartUseCase {
	return &CartUseCase{
		txManager: txManager,
		cartRepo:  cartRepo,
		bookRepo:  bookRepo,
	}
}

// =========================================
// 应用层DTO
// =========================================

// AddItemRequest 加购请求
type AddItemRequest struct {
	UserID   uint
	BookID   uint
	Quantity int
}

// UpdateItemRequest 修改数量请求(设置而非累加)
type UpdateItemRequest struct {
	UserID   uint
	BookID   uint
	Quantity int
}

// ListCartRequest 购物车分页查询
type ListCartRequest struct {
	UserID   uint
	Page     int
	PageSize int
}

// CartInfo 购物车信息
type CartInfo struct {
	ID        uint      `json:"id"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

// ItemInfo 购物车行
type ItemInfo struct {
	BookID    uint            `json:"bookId"`
	Title     string          `json:"title"`
	Available bool            `json:"available"` // 图书已下架时为false,结算会失败
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Currency  string          `json:"currency"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// ListCartResponse 购物车分页结果
// Subtotal只统计当前页(兼容旧接口);Total、ItemCount覆盖整个购物车
type ListCartResponse struct {
	Cart      CartInfo        `json:"cart"`
	Items     []ItemInfo      `json:"items"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	Total     decimal.Decimal `json:"total"`
	ItemCount int             `json:"itemCount"`
	Page      int             `json:"page"`
	Size      int             `json:"size"`
	TotalRows int64           `json:"totalRows"`
}

// =========================================
// 用例实现
// =========================================

// GetOrCreateActiveCart 获取用户的ACTIVE购物车,不存在则创建
func (uc *CartUseCase) GetOrCreateActiveCart(ctx context.Context, userID uint) (*CartInfo, error) {
	var c *cart.Cart
	err := uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		var err error
		c, err = uc.activeCart(txCtx, userID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return toCartInfo(c), nil
}

// AddItem 加入购物车
// 业务规则:
// 1. 数量在[1,999],图书必须在售
// 2. 新行捕获当前价格;已有行累加数量,单价保持首次捕获的值
// 3. 累加后的数量不能超过当前库存
func (uc *CartUseCase) AddItem(ctx context.Context, req AddItemRequest) (*ItemInfo, error) {
	if err := cart.ValidateQuantity(req.Quantity); err != nil {
		return nil, err
	}

	var result *cart.Item
	var title string
	err := uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		// 1. 锁定(或创建)ACTIVE购物车
		c, err := uc.activeCart(txCtx, req.UserID)
		if err != nil {
			return err
		}

		// 2. 图书必须在售
		b, err := uc.bookRepo.FindByID(txCtx, req.BookID)
		if err != nil {
			return err
		}
		title = b.Title

		// 3. 新行:捕获价格
		item, err := uc.cartRepo.FindItem(txCtx, c.ID, b.ID)
		if errors.Is(err, cart.ErrCartItemNotFound) {
			if err := checkStock(b, req.Quantity); err != nil {
				return err
			}
			item = cart.NewItem(c.ID, b.ID, req.Quantity, b.Price, b.Currency)
			if err := uc.cartRepo.CreateItem(txCtx, item); err != nil {
				return err
			}
			result = item
			return nil
		}
		if err != nil {
			return err
		}

		// 4. 已有行:累加数量,不重新定价
		// [1,999]只约束单次请求的数量,累加后的数量只受库存约束
		quantity := item.Quantity + req.Quantity
		if err := checkStock(b, quantity); err != nil {
			return err
		}
		if err := uc.cartRepo.UpdateItemQuantity(txCtx, c.ID, b.ID, quantity); err != nil {
			return err
		}
		item.Quantity = quantity
		result = item
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.IncCounterVec(metrics.CartMutationsTotal, "add")
	info := toItemInfo(result, title, true)
	return &info, nil
}

// UpdateItem 修改购物车行数量,行不存在返回ErrCartItemNotFound
func (uc *CartUseCase) UpdateItem(ctx context.Context, req UpdateItemRequest) (*ItemInfo, error) {
	if err := cart.ValidateQuantity(req.Quantity); err != nil {
		return nil, err
	}

	var result *cart.Item
	var title string
	err := uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		c, err := uc.activeCart(txCtx, req.UserID)
		if err != nil {
			return err
		}
		item, err := uc.cartRepo.FindItem(txCtx, c.ID, req.BookID)
		if err != nil {
			return err
		}
		b, err := uc.bookRepo.FindByID(txCtx, req.BookID)
		if err != nil {
			return err
		}
		if err := checkStock(b, req.Quantity); err != nil {
			return err
		}
		if err := uc.cartRepo.UpdateItemQuantity(txCtx, c.ID, b.ID, req.Quantity); err != nil {
			return err
		}
		item.Quantity = req.Quantity
		result = item
		title = b.Title
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.IncCounterVec(metrics.CartMutationsTotal, "update")
	info := toItemInfo(result, title, true)
	return &info, nil
}

// RemoveItem 移出购物车(幂等,行不存在也返回成功)
func (uc *CartUseCase) RemoveItem(ctx context.Context, userID, bookID uint) error {
	var removed bool
	err := uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		c, err := uc.cartRepo.LockActive(txCtx, userID)
		if errors.Is(err, cart.ErrCartNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		removed, err = uc.cartRepo.DeleteItem(txCtx, c.ID, bookID)
		return err
	})
	if err != nil {
		return err
	}
	if removed {
		metrics.IncCounterVec(metrics.CartMutationsTotal, "remove")
	}
	return nil
}

// ListCart 分页查看购物车
func (uc *CartUseCase) ListCart(ctx context.Context, req ListCartRequest) (*ListCartResponse, error) {
	page := shared.NewPage(req.Page, req.PageSize)

	var (
		c     *cart.Cart
		items []*cart.Item
		all   []*cart.Item
		total int64
	)
	err := uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		var err error
		if c, err = uc.activeCart(txCtx, req.UserID); err != nil {
			return err
		}
		if items, total, err = uc.cartRepo.ListItems(txCtx, c.ID, page.Page, page.Size); err != nil {
			return err
		}
		all, err = uc.cartRepo.AllItems(txCtx, c.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	// 补充书名;已下架的图书查不到,标记为不可结算
	ids := make([]uint, len(items))
	for i, item := range items {
		ids[i] = item.BookID
	}
	books, err := uc.bookRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	titles := make(map[uint]string, len(books))
	for _, b := range books {
		titles[b.ID] = b.Title
	}

	resp := &ListCartResponse{
		Cart:      *toCartInfo(c),
		Items:     make([]ItemInfo, len(items)),
		Subtotal:  cart.Sum(items),
		Total:     cart.Sum(all),
		Page:      page.Page,
		Size:      page.Size,
		TotalRows: total,
	}
	for i, item := range items {
		title, ok := titles[item.BookID]
		resp.Items[i] = toItemInfo(item, title, ok)
	}
	for _, item := range all {
		resp.ItemCount += item.Quantity
	}
	return resp, nil
}

// AbandonCart 放弃当前购物车(ACTIVE → ABANDONED),下次加购会创建新的购物车
func (uc *CartUseCase) AbandonCart(ctx context.Context, userID uint) error {
	err := uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		c, err := uc.cartRepo.LockActive(txCtx, userID)
		if err != nil {
			return err
		}
		ok, err := uc.cartRepo.UpdateStatus(txCtx, c.ID, cart.StatusActive, cart.StatusAbandoned)
		if err != nil {
			return err
		}
		if !ok {
			return cart.ErrCartNotFound
		}
		return nil
	})
	if err != nil {
		return err
	}
	metrics.IncCounterVec(metrics.CartMutationsTotal, "abandon")
	return nil
}

// =========================================
// 辅助函数
// =========================================

// activeCart 必须在事务内调用
// 1. 快照读(不加锁)判断是否已有ACTIVE购物车
// 2. 没有则先插入(唯一索引冲突时忽略),再加锁读取
// 加锁读取未命中时InnoDB会持有间隙锁,两个首次加购的事务随后各自INSERT会互相等待成死锁,
// 所以插入必须发生在加锁读取之前
func (uc *CartUseCase) activeCart(ctx context.Context, userID uint) (*cart.Cart, error) {
	_, err := uc.cartRepo.FindActive(ctx, userID)
	if errors.Is(err, cart.ErrCartNotFound) {
		if err := uc.cartRepo.EnsureActive(ctx, userID); err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, err
	}

	c, err := uc.cartRepo.LockActive(ctx, userID)
	if !errors.Is(err, cart.ErrCartNotFound) {
		return c, err
	}

	// 快照读之后购物车被并发结算或放弃
	if err := uc.cartRepo.EnsureActive(ctx, userID); err != nil {
		return nil, err
	}
	return uc.cartRepo.LockActive(ctx, userID)
}

func checkStock(b *book.Book, quantity int) error {
	if !b.HasStock(quantity) {
		return cart.ErrInsufficientStock.WithDetails(cart.StockDetails{
			BookID:    b.ID,
			Requested: quantity,
			Available: b.Stock,
		})
	}
	return nil
}

func toCartInfo(c *cart.Cart) *CartInfo {
	return &CartInfo{
		ID:        c.ID,
		Status:    string(c.Status),
		CreatedAt: c.CreatedAt,
	}
}

func toItemInfo(item *cart.Item, title string, available bool) ItemInfo {
	return ItemInfo{
		BookID:    item.BookID,
		Title:     title,
		Available: available,
		Quantity:  item.Quantity,
		UnitPrice: item.UnitPrice,
		Currency:  item.Currency,
		Subtotal:  item.Subtotal(),
	}
}
