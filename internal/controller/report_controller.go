package controller

import (
	"scms_backend/internal/service"
	"scms_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// ReportController 管理端报表，数据均由当前内存快照计算
type ReportController struct {
	ReportService *service.ReportService
}

func NewReportController(reportService *service.ReportService) *ReportController {
	return &ReportController{ReportService: reportService}
}

// Statistics godoc
// @Summary 投诉统计
// @Tags 报表
// @Security BearerAuth
// @Produce json
// @Success 200 {object} util.Response{data=model.ComplaintStatistics}
// @Router /api/reports/statistics [get]
func (c *ReportController) Statistics(ctx *gin.Context) {
	util.Success(ctx, c.ReportService.Statistics())
}

// AdminStats godoc
// @Summary 管理员概览
// @Tags 报表
// @Security BearerAuth
// @Produce json
// @Success 200 {object} util.Response{data=model.AdminStats}
// @Router /api/reports/overview [get]
func (c *ReportController) AdminStats(ctx *gin.Context) {
	util.Success(ctx, c.ReportService.AdminStats())
}

// Categories godoc
// @Summary 分类表现
// @Tags 报表
// @Security BearerAuth
// @Produce json
// @Success 200 {object} util.Response{data=[]model.GroupPerformance}
// @Router /api/reports/categories [get]
func (c *ReportController) Categories(ctx *gin.Context) {
	util.Success(ctx, c.ReportService.Categories())
}

// Trends godoc
// @Summary 月度趋势
// @Tags 报表
// @Security BearerAuth
// @Produce json
// @Param months query int false "月份数，默认 12"
// @Success 200 {object} util.Response{data=[]model.TrendPoint}
// @Router /api/reports/trends [get]
func (c *ReportController) Trends(ctx *gin.Context) {
	months := util.MustParseInt(ctx.Query("months"), service.DefaultTrendMonths)
	if months > 60 {
		months = 60
	}
	util.Success(ctx, c.ReportService.Trends(months))
}

// Universities godoc
// @Summary 高校对比
// @Tags 报表
// @Security BearerAuth
// @Produce json
// @Success 200 {object} util.Response{data=[]model.GroupPerformance}
// @Router /api/reports/universities [get]
func (c *ReportController) Universities(ctx *gin.Context) {
	util.Success(ctx, c.ReportService.Universities())
}

// Priorities godoc
// @Summary 优先级分析
// @Tags 报表
// @Security BearerAuth
// @Produce json
// @Success 200 {object} util.Response{data=[]model.PriorityAnalysis}
// @Router /api/reports/priorities [get]
func (c *ReportController) Priorities(ctx *gin.Context) {
	util.Success(ctx, c.ReportService.Priorities())
}

// Metrics godoc
// @Summary 综合指标
// @Tags 报表
// @Security BearerAuth
// @Produce json
// @Success 200 {object} util.Response{data=model.ReportMetrics}
// @Router /api/reports/metrics [get]
func (c *ReportController) Metrics(ctx *gin.Context) {
	util.Success(ctx, c.ReportService.Metrics())
}

// Escalations godoc
// @Summary 升级概览
// @Tags 报表
// @Security BearerAuth
// @Produce json
// @Success 200 {object} util.Response{data=model.EscalationSummary}
// @Router /api/reports/escalations [get]
func (c *ReportController) Escalations(ctx *gin.Context) {
	util.Success(ctx, c.ReportService.Escalations())
}
