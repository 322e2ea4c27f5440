package wishlist

import (
	"context"
	"time"
)

// Item 心愿单条目,以(UserID, BookID)为复合主键,存在即表示已收藏
type Item struct {
	UserID    uint
	BookID    uint
	CreatedAt time.Time
}

// Repository 心愿单仓储
// Add/Remove都是幂等的存在性切换
type Repository interface {
	// Add 插入条目(已存在则忽略),返回是否新插入
	Add(ctx context.Context, userID, bookID uint) (bool, error)

	// Remove 删除条目,返回是否真的删除了
	Remove(ctx context.Context, userID, bookID uint) (bool, error)

	// List 按收藏时间倒序分页查询,只包含未下架图书
	List(ctx context.Context, userID uint, page, pageSize int) ([]*Item, int64, error)
}
