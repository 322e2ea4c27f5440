package cart

import (
	"time"

	"github.com/shopspring/decimal"
)

// Status 购物车生命周期状态
type Status string

const (
	StatusActive     Status = "ACTIVE"      // 可继续加购
	StatusCheckedOut Status = "CHECKED_OUT" // 已结算为订单
	StatusAbandoned  Status = "ABANDONED"   // 用户主动清空放弃
)

// 单行购买数量范围
const (
	MinQuantity = 1
	MaxQuantity = 999
)

// Cart 购物车(聚合根)
// 设计说明:
// 1. 每个用户同一时刻最多一个ACTIVE购物车,由active_user_id唯一索引保证
// 2. 结算、放弃后购物车只读,下次加购会惰性创建新的ACTIVE购物车
type Cart struct {
	ID        uint
	UserID    uint
	Status    Status
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewCart 创建ACTIVE购物车
func NewCart(userID uint) *Cart {
	now := time.Now()
	return &Cart{
		UserID:    userID,
		Status:    StatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// IsActive 是否可加购
func (c *Cart) IsActive() bool {
	return c.Status == StatusActive
}

// Item 购物车行,以(CartID, BookID)为复合主键
// UnitPrice在首次加入时捕获,之后重复加购不会重新定价
type Item struct {
	CartID    uint
	BookID    uint
	Quantity  int
	UnitPrice decimal.Decimal
	Currency  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewItem 创建购物车行(捕获当前价格)
func NewItem(cartID, bookID uint, quantity int, unitPrice decimal.Decimal, currency string) *Item {
	now := time.Now()
	return &Item{
		CartID:    cartID,
		BookID:    bookID,
		Quantity:  quantity,
		UnitPrice: unitPrice,
		Currency:  currency,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Subtotal 行小计 = 捕获单价 × 数量
func (i *Item) Subtotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// ValidateQuantity 数量必须在[1,999]
func ValidateQuantity(quantity int) error {
	if quantity < MinQuantity || quantity > MaxQuantity {
		return ErrInvalidQuantity
	}
	return nil
}

// Sum 计算若干行的金额合计
func Sum(items []*Item) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Subtotal())
	}
	return total
}
