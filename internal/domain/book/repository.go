package book

import (
	"context"
)

// Repository 图书仓储接口(依赖倒置原则)
// 设计说明:
// 1. 由domain层定义接口,infrastructure层实现
// 2. 普通查询(FindByID、List、FindByIDs)一律排除已下架图书
// 3. Lock*系列在事务内使用,包含已下架图书,由调用方判断IsDeleted
type Repository interface {
	// Create 创建图书(包括作者、分类关联)
	Create(ctx context.Context, book *Book) error

	// FindByID 根据ID查找在售图书(含作者、分类)
	FindByID(ctx context.Context, id uint) (*Book, error)

	// FindByISBN 根据ISBN查找
	FindByISBN(ctx context.Context, isbn string) (*Book, error)

	// FindByIDs 批量查询在售图书(不保证顺序,缺失的ID直接忽略)
	FindByIDs(ctx context.Context, ids []uint) ([]*Book, error)

	// Update 更新图书信息并替换作者、分类关联
	Update(ctx context.Context, book *Book) error

	// Delete 下架图书(软删除)
	Delete(ctx context.Context, id uint) error

	// List 分页查询在售图书
	List(ctx context.Context, params ListParams) ([]*Book, int64, error)

	// LockByID 悲观锁查询单本图书(SELECT ... FOR UPDATE,含已下架)
	LockByID(ctx context.Context, id uint) (*Book, error)

	// LockByIDs 按ID升序加锁(含已下架)
	// 所有事务按同一顺序加锁,两个共享图书的结算不会互相死锁
	LockByIDs(ctx context.Context, ids []uint) ([]*Book, error)

	// UpdateStock 原子更新库存
	// delta为正数表示增加,负数表示减少;扣减后小于0则返回ErrInsufficientStock
	UpdateStock(ctx context.Context, id uint, delta int) error

	// UpdateRating 写入重算后的评分聚合
	UpdateRating(ctx context.Context, id uint, avgRating float64, reviewCount int) error
}

// AuthorRepository 作者仓储
type AuthorRepository interface {
	Create(ctx context.Context, author *Author) error
	FindByIDs(ctx context.Context, ids []uint) ([]Author, error)
	List(ctx context.Context, page, pageSize int) ([]Author, int64, error)
}

// CategoryRepository 分类仓储
type CategoryRepository interface {
	// Create 创建分类,名称重复返回ErrCategoryDuplicate
	Create(ctx context.Context, category *Category) error
	FindByIDs(ctx context.Context, ids []uint) ([]Category, error)
	List(ctx context.Context) ([]Category, error)
}

// 排序方式
const (
	SortNewest     = "newest"
	SortPriceAsc   = "price_asc"
	SortPriceDesc  = "price_desc"
	SortRatingDesc = "rating_desc"
)

// ListParams 列表查询参数
type ListParams struct {
	Page       int    // 页码(从1开始)
	PageSize   int    // 每页数量
	Keyword    string // 搜索关键词(书名、ISBN、出版社)
	CategoryID uint   // 按分类过滤,0表示不过滤
	AuthorID   uint   // 按作者过滤,0表示不过滤
	SortBy     string // newest | price_asc | price_desc | rating_desc
}
