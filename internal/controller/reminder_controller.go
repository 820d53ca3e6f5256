package controller

import (
	"scms_backend/internal/service"
	"scms_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ReminderController struct {
	Scheduler        *service.ReminderScheduler
	Hub              *service.NotificationHub
	ComplaintService *service.ComplaintService
}

func NewReminderController(scheduler *service.ReminderScheduler, hub *service.NotificationHub, complaintService *service.ComplaintService) *ReminderController {
	return &ReminderController{Scheduler: scheduler, Hub: hub, ComplaintService: complaintService}
}

type ReminderOverview struct {
	Scheduler service.ReminderStatus  `json:"scheduler"`
	Summary   service.ReminderSummary `json:"summary"`
}

// Overview godoc
// @Summary 逾期提醒概览
// @Description 返回调度器状态和按紧急程度分组的逾期投诉
// @Tags 提醒
// @Security BearerAuth
// @Produce json
// @Success 200 {object} util.Response{data=ReminderOverview}
// @Router /api/reminders [get]
func (c *ReminderController) Overview(ctx *gin.Context) {
	util.Success(ctx, ReminderOverview{
		Scheduler: c.Scheduler.Status(),
		Summary:   service.CollectReminders(c.ComplaintService.Snapshot()),
	})
}

// Subscribe godoc
// @Summary 订阅投诉事件与提醒 (WebSocket)
// @Description 令牌可放在 Authorization 头或 token 查询参数中
// @Tags 提醒
// @Security BearerAuth
// @Param token query string false "JWT"
// @Router /api/ws/notifications [get]
func (c *ReminderController) Subscribe(ctx *gin.Context) {
	actor, ok := util.GetActor(ctx)
	if !ok {
		util.Unauthorized(ctx)
		return
	}
	service.ServeWs(c.Hub, ctx.Writer, ctx.Request, actor)
}
