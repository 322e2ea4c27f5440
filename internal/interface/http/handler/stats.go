package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	appstats "github.com/xiebiao/bookhub/internal/application/stats"
	"github.com/xiebiao/bookhub/internal/interface/http/dto"
	"github.com/xiebiao/bookhub/pkg/response"
)

// StatsHandler 管理后台统计
type StatsHandler struct {
	statsUseCase *appstats.StatsUseCase
}

// NewStatsHandler 创建统计处理器
func NewStatsHandler(statsUseCase *appstats.StatsUseCase) *StatsHandler {
	return &StatsHandler{statsUseCase: statsUseCase}
}

// TopBooks 销量排行
// @Summary      销量排行
// @Description  统计最近days天内非取消、非退款订单的销量
// @Tags         管理后台
// @Produce      json
// @Security     BearerAuth
// @Param        limit query int false "数量（≤50）" default(10)
// @Param        days query int false "天数（≤366）" default(30)
// @Success      200 {object} response.Response{payload=[]appstats.TopBookDTO}
// @Router       /api/v1/admin/stats/top-books [get]
func (h *StatsHandler) TopBooks(c *gin.Context) {
	var q dto.TopBooksQuery
	if !bindQuery(c, &q) {
		return
	}
	result, err := h.statsUseCase.TopBooks(c.Request.Context(), q.Limit, q.Days)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// DailyOrders 每日订单数与销售额
// @Summary      每日订单
// @Tags         管理后台
// @Produce      json
// @Security     BearerAuth
// @Param        from query string false "开始日期 2006-01-02"
// @Param        to query string false "结束日期 2006-01-02（含）"
// @Success      200 {object} response.Response{payload=[]appstats.DailyOrdersDTO}
// @Router       /api/v1/admin/stats/daily-orders [get]
func (h *StatsHandler) DailyOrders(c *gin.Context) {
	rng, ok := bindDateRange(c)
	if !ok {
		return
	}
	result, err := h.statsUseCase.DailyOrders(c.Request.Context(), rng)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// DailySignups 每日注册人数
// @Summary      每日注册
// @Tags         管理后台
// @Produce      json
// @Security     BearerAuth
// @Param        from query string false "开始日期 2006-01-02"
// @Param        to query string false "结束日期 2006-01-02（含）"
// @Success      200 {object} response.Response{payload=[]appstats.DailySignupsDTO}
// @Router       /api/v1/admin/stats/daily-signups [get]
func (h *StatsHandler) DailySignups(c *gin.Context) {
	rng, ok := bindDateRange(c)
	if !ok {
		return
	}
	result, err := h.statsUseCase.DailySignups(c.Request.Context(), rng)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// bindDateRange 格式已由datetime tag校验，这里只做转换
func bindDateRange(c *gin.Context) (appstats.DateRange, bool) {
	var q dto.DateRangeQuery
	if !bindQuery(c, &q) {
		return appstats.DateRange{}, false
	}
	var rng appstats.DateRange
	if q.From != "" {
		rng.From, _ = time.Parse(time.DateOnly, q.From)
	}
	if q.To != "" {
		rng.To, _ = time.Parse(time.DateOnly, q.To)
	}
	return rng, true
}
