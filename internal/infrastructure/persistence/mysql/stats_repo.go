package mysql

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/xiebiao/bookhub/internal/domain/order"
	"github.com/xiebiao/bookhub/internal/domain/stats"
	apperrors "github.com/xiebiao/bookhub/pkg/errors"
)

// excludedStatuses 不计入统计的订单状态
var excludedStatuses = []string{string(order.StatusCancelled), string(order.StatusRefunded)}

// statsRepository 统计查询(只读聚合SQL)
type statsRepository struct {
	baseRepository
}

// NewStatsRepository 创建统计仓储
func NewStatsRepository(db *gorm.DB) stats.Repository {
	return &statsRepository{baseRepository{db}}
}

// TopBooks 按销量排行
// 书名优先取当前书名,图书被物理删除时退回订单快照
func (r *statsRepository) TopBooks(ctx context.Context, since time.Time, limit int) ([]stats.TopBook, error) {
	var rows []struct {
		BookID   uint
		Title    string
		Quantity int
		Revenue  decimal.Decimal
	}
	err := r.getDB(ctx).Table("order_items AS oi").
		Select("oi.book_id, COALESCE(MAX(b.title), MAX(oi.book_title_snapshot)) AS title, "+
			"SUM(oi.quantity) AS quantity, SUM(oi.quantity * oi.unit_price) AS revenue").
		Joins("JOIN orders o ON o.id = oi.order_id").
		Joins("LEFT JOIN books b ON b.id = oi.book_id").
		Where("o.status NOT IN ? AND o.placed_at >= ?", excludedStatuses, since).
		Group("oi.book_id").
		Order("quantity DESC").Order("oi.book_id ASC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, apperrors.Wrap(err, "查询销量排行失败")
	}

	out := make([]stats.TopBook, len(rows))
	for i, row := range rows {
		out[i] = stats.TopBook{BookID: row.BookID, Title: row.Title, Quantity: row.Quantity, Revenue: row.Revenue}
	}
	return out, nil
}

// DailyOrders 每日订单数与成交额,区间[from, to)
func (r *statsRepository) DailyOrders(ctx context.Context, from, to time.Time) ([]stats.DailyOrders, error) {
	var rows []struct {
		Day     time.Time
		Orders  int
		Revenue decimal.Decimal
	}
	err := r.getDB(ctx).Model(&OrderModel{}).
		Select("DATE(placed_at) AS day, COUNT(*) AS orders, SUM(total_amount) AS revenue").
		Where("status NOT IN ? AND placed_at >= ? AND placed_at < ?", excludedStatuses, from, to).
		Group("DATE(placed_at)").
		Order("day ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, apperrors.Wrap(err, "查询每日订单失败")
	}

	out := make([]stats.DailyOrders, len(rows))
	for i, row := range rows {
		out[i] = stats.DailyOrders{Day: row.Day, Orders: row.Orders, Revenue: row.Revenue}
	}
	return out, nil
}

// DailySignups 每日注册人数(已注销用户也计入注册当天)
func (r *statsRepository) DailySignups(ctx context.Context, from, to time.Time) ([]stats.DailySignups, error) {
	var rows []struct {
		Day   time.Time
		Users int
	}
	err := r.getDB(ctx).Unscoped().Model(&UserModel{}).
		Select("DATE(created_at) AS day, COUNT(*) AS users").
		Where("created_at >= ? AND created_at < ?", from, to).
		Group("DATE(created_at)").
		Order("day ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, apperrors.Wrap(err, "查询每日注册失败")
	}

	out := make([]stats.DailySignups, len(rows))
	for i, row := range rows {
		out[i] = stats.DailySignups{Day: row.Day, Users: row.Users}
	}
	return out, nil
}
