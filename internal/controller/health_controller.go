package controller

import (
	"context"
	"net/http"
	"time"

	"scms_backend/internal/service"
	"scms_backend/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

// HealthController DB 和 Redis 未启用时为 nil
type HealthController struct {
	DB          *gorm.DB
	Redis       *redis.Client
	Complaints  *service.ComplaintService
	Hub         *service.NotificationHub
	Persistence string
}

func NewHealthController(db *gorm.DB, rdb *redis.Client, complaints *service.ComplaintService, hub *service.NotificationHub, persistence string) *HealthController {
	return &HealthController{DB: db, Redis: rdb, Complaints: complaints, Hub: hub, Persistence: persistence}
}

// @Summary 健康检查
// @Description 检查服务状态
// @Tags 系统
// @Produce json
// @Success 200 {object} util.Response
// @Failure 503 {object} util.Response "依赖不可用"
// @Router /health [get]
func (c *HealthController) HealthCheck(ctx *gin.Context) {
	pingCtx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	components := gin.H{"persistence": c.Persistence}

	if c.DB != nil {
		sqlDB, err := c.DB.DB()
		if err != nil {
			util.InternalServerError(ctx)
			return
		}
		if err := sqlDB.PingContext(pingCtx); err != nil {
			util.Error(ctx, http.StatusServiceUnavailable, "Database unavailable")
			return
		}
		components["database"] = "up"
	}

	if c.Redis != nil {
		if err := c.Redis.Ping(pingCtx).Err(); err != nil {
			util.Error(ctx, http.StatusServiceUnavailable, "Redis unavailable")
			return
		}
		components["redis"] = "up"
	}

	data := gin.H{
		"status":     "ok",
		"components": components,
	}
	if c.Complaints != nil {
		data["complaints"] = c.Complaints.Count()
	}
	if c.Hub != nil {
		data["wsClients"] = c.Hub.ClientCount()
	}
	util.Success(ctx, data)
}
