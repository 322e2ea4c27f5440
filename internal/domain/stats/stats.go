package stats

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	apperrors "github.com/xiebiao/bookhub/pkg/errors"
)

// 查询约束
const (
	MaxTopBooks   = 50
	MaxWindowDays = 366
)

// TopBook 销量排行项
type TopBook struct {
	BookID   uint
	Title    string
	Quantity int
	Revenue  decimal.Decimal
}

// DailyOrders 每日订单数与成交额
type DailyOrders struct {
	Day     time.Time
	Orders  int
	Revenue decimal.Decimal
}

// DailySignups 每日注册人数
type DailySignups struct {
	Day   time.Time
	Users int
}

// Repository 统计只读查询
// 统计口径:排除CANCELLED、REFUNDED订单;时间区间左闭右开
type Repository interface {
	TopBooks(ctx context.Context, since time.Time, limit int) ([]TopBook, error)
	DailyOrders(ctx context.Context, from, to time.Time) ([]DailyOrders, error)
	DailySignups(ctx context.Context, from, to time.Time) ([]DailySignups, error)
}

var (
	ErrInvalidLimit  = apperrors.Validation("limit必须在1-50之间")
	ErrInvalidWindow = apperrors.Validation("统计区间必须为1-366天")
)

// ValidateWindow 校验[from, to)区间
func ValidateWindow(from, to time.Time) error {
	if !to.After(from) || to.Sub(from) > MaxWindowDays*24*time.Hour {
		return ErrInvalidWindow
	}
	return nil
}

// ValidateLimit 校验排行数量
func ValidateLimit(limit int) error {
	if limit < 1 || limit > MaxTopBooks {
		return ErrInvalidLimit
	}
	return nil
}
