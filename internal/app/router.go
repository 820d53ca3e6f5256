package app

import (
	"scms_backend/docs"
	"scms_backend/internal/config"
	"scms_backend/internal/middleware"
	"scms_backend/internal/model"
	"scms_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 1. 公共路由(无需登录)
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
	}

	// 2. 需要授权的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg.JWT.Secret))
	{
		registerComplaintRoutes(authGroup, c)

		departments := authGroup.Group("/departments")
		{
			departments.GET("", c.department.List)
			departments.GET("/suggest", c.department.Suggest)
		}

		// WebSocket 推送
		authGroup.GET("/ws/notifications",
			middleware.RoleMiddleware(model.Admin, model.DepartmentHead), c.reminder.Subscribe)
	}

	// 3. 管理员相关接口
	registerAdminRoutes(authGroup, c)
}

func registerComplaintRoutes(group *gin.RouterGroup, c *controllers) {
	complaints := group.Group("/complaints")
	{
		complaints.POST("", middleware.RoleMiddleware(model.Student), c.complaint.Submit)
		complaints.GET("", c.complaint.List)
		complaints.GET("/:id", c.complaint.Get)
		complaints.POST("/:id/comments", c.complaint.AddComment)

		// 部门负责人只能处理分配给本部门的投诉，权限在控制器中校验
		complaints.PUT("/:id/status",
			middleware.RoleMiddleware(model.Admin, model.DepartmentHead), c.complaint.UpdateStatus)

		complaints.POST("/:id/assign", middleware.RoleMiddleware(model.Admin), c.complaint.Assign)
		complaints.POST("/:id/escalate", middleware.RoleMiddleware(model.Admin), c.complaint.Escalate)
	}
}

func registerAdminRoutes(group *gin.RouterGroup, c *controllers) {
	reports := group.Group("/reports")
	reports.Use(middleware.RoleMiddleware(model.Admin))
	{
		reports.GET("/statistics", c.report.Statistics)
		reports.GET("/overview", c.report.AdminStats)
		reports.GET("/categories", c.report.Categories)
		reports.GET("/trends", c.report.Trends)
		reports.GET("/universities", c.report.Universities)
		reports.GET("/priorities", c.report.Priorities)
		reports.GET("/metrics", c.report.Metrics)
		reports.GET("/escalations", c.report.Escalations)
	}

	group.GET("/reminders", middleware.RoleMiddleware(model.Admin), c.reminder.Overview)
}
