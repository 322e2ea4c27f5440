package book

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Book 图书实体（聚合根）
// DDD设计说明：
// 1. 价格使用decimal定点数（避免浮点误差），币种为ISO-4217三位代码
// 2. AvgRating/ReviewCount是冗余聚合值，只能由评分重算在评论变更的同一事务中写入
// 3. 下架是软删除（DeletedAt），历史订单仍能引用
type Book struct {
	ID          uint
	ISBN        string
	Title       string
	Publisher   string
	Description string
	CoverURL    string
	Price       decimal.Decimal
	Currency    string
	Stock       int
	AvgRating   float64
	ReviewCount int
	Authors     []Author
	Categories  []Category
	CreatedAt   time.Time
	UpdatedAt   time.Time
	DeletedAt   *time.Time
}

// Author 作者
type Author struct {
	ID        uint
	Name      string
	Bio       string
	CreatedAt time.Time
}

// Category 分类
type Category struct {
	ID        uint
	Name      string
	CreatedAt time.Time
}

// NewBook 创建新图书（工厂方法），创建时无评分
func NewBook(isbn, title, publisher, description, coverURL string, price decimal.Decimal, currency string, stock int) *Book {
	now := time.Now()
	return &Book{
		ISBN:        isbn,
		Title:       title,
		Publisher:   publisher,
		Description: description,
		CoverURL:    coverURL,
		Price:       price,
		Currency:    strings.ToUpper(currency),
		Stock:       stock,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// IsDeleted 是否已下架
func (b *Book) IsDeleted() bool {
	return b.DeletedAt != nil
}

// HasStock 库存是否足够
func (b *Book) HasStock(quantity int) bool {
	return b.Stock >= quantity
}

// UpdatePrice 更新价格（领域行为）
// 业务规则：价格必须>0
func (b *Book) UpdatePrice(newPrice decimal.Decimal) error {
	if !newPrice.IsPositive() {
		return ErrInvalidPrice
	}
	b.Price = newPrice
	b.UpdatedAt = time.Now()
	return nil
}

// UpdateStock 设置库存（领域行为）
// 业务规则：库存不能为负数
func (b *Book) UpdateStock(newStock int) error {
	if newStock < 0 {
		return ErrInvalidStock
	}
	b.Stock = newStock
	b.UpdatedAt = time.Now()
	return nil
}

// DecrStock 扣减库存（结算）
func (b *Book) DecrStock(quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	if b.Stock < quantity {
		return ErrInsufficientStock
	}
	b.Stock -= quantity
	b.UpdatedAt = time.Now()
	return nil
}

// IncrStock 增加库存（取消订单、退款、补货）
func (b *Book) IncrStock(quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	b.Stock += quantity
	b.UpdatedAt = time.Now()
	return nil
}

// AuthorIDs 作者ID列表
func (b *Book) AuthorIDs() []uint {
	ids := make([]uint, len(b.Authors))
	for i, a := range b.Authors {
		ids[i] = a.ID
	}
	return ids
}

// CategoryIDs 分类ID列表
func (b *Book) CategoryIDs() []uint {
	ids := make([]uint, len(b.Categories))
	for i, c := range b.Categories {
		ids[i] = c.ID
	}
	return ids
}
