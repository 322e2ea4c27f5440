package stats

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/xiebiao/bookhub/internal/domain/stats"
)

// 默认统计窗口
const (
	DefaultTopBooks = 10
	DefaultDays     = 30
)

// StatsUseCase 管理后台统计(只读)
type StatsUseCase struct {
	repo stats.Repository
	now  func() time.Time
}

// NewStatsUseCase 创建统计用例
func NewStatsUseCase(repo stats.Repository) *StatsUseCase {
	return &StatsUseCase{repo: repo, now: time.Now}
}

// TopBookDTO 销量排行
type TopBookDTO struct {
	BookID   uint            `json:"bookId"`
	Title    string          `json:"title"`
	Quantity int             `json:"quantity"`
	Revenue  decimal.Decimal `json:"revenue"`
}

// DailyOrdersDTO 每日订单
type DailyOrdersDTO struct {
	Day     string          `json:"day"`
	Orders  int             `json:"orders"`
	Revenue decimal.Decimal `json:"revenue"`
}

// DailySignupsDTO 每日注册
type DailySignupsDTO struct {
	Day   string `json:"day"`
	Users int    `json:"users"`
}

// DateRange 按天统计的区间,From与To都包含(UTC日期)
type DateRange struct {
	From time.Time
	To   time.Time
}

const dayLayout = "2006-01-02"

// TopBooks 最近days天内销量最高的limit本图书
func (uc *StatsUseCase) TopBooks(ctx context.Context, limit, days int) ([]TopBookDTO, error) {
	if limit == 0 {
		limit = DefaultTopBooks
	}
	if days == 0 {
		days = DefaultDays
	}
	if err := stats.ValidateLimit(limit); err != nil {
		return nil, err
	}
	if days < 1 || days > stats.MaxWindowDays {
		return nil, stats.ErrInvalidWindow
	}

	since := uc.now().UTC().Add(-time.Duration(days) * 24 * time.Hour)
	rows, err := uc.repo.TopBooks(ctx, since, limit)
	if err != nil {
		return nil, err
	}
	out := make([]TopBookDTO, len(rows))
	for i, r := range rows {
		out[i] = TopBookDTO{BookID: r.BookID, Title: r.Title, Quantity: r.Quantity, Revenue: r.Revenue}
	}
	return out, nil
}

// DailyOrders 每日订单数与成交额(不含取消、退款)
func (uc *StatsUseCase) DailyOrders(ctx context.Context, rng DateRange) ([]DailyOrdersDTO, error) {
	from, to, err := uc.window(rng)
	if err != nil {
		return nil, err
	}
	rows, err := uc.repo.DailyOrders(ctx, from, to)
	if err != nil {
		return nil, err
	}
	out := make([]DailyOrdersDTO, len(rows))
	for i, r := range rows {
		out[i] = DailyOrdersDTO{Day: r.Day.Format(dayLayout), Orders: r.Orders, Revenue: r.Revenue}
	}
	return out, nil
}

// DailySignups 每日注册人数
func (uc *StatsUseCase) DailySignups(ctx context.Context, rng DateRange) ([]DailySignupsDTO, error) {
	from, to, err := uc.window(rng)
	if err != nil {
		return nil, err
	}
	rows, err := uc.repo.DailySignups(ctx, from, to)
	if err != nil {
		return nil, err
	}
	out := make([]DailySignupsDTO, len(rows))
	for i, r := range rows {
		out[i] = DailySignupsDTO{Day: r.Day.Format(dayLayout), Users: r.Users}
	}
	return out, nil
}

// window 闭区间日期 → [from, to+1天);缺省为最近30天
func (uc *StatsUseCase) window(rng DateRange) (time.Time, time.Time, error) {
	to := rng.To
	if to.IsZero() {
		to = uc.now()
	}
	to = truncateDay(to).Add(24 * time.Hour)

	from := rng.From
	if from.IsZero() {
		from = to.Add(-DefaultDays * 24 * time.Hour)
	}
	from = truncateDay(from)

	if err := stats.ValidateWindow(from, to); err != nil {
		return time.Time{}, time.Time{}, err
	}
	return from, to, nil
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
