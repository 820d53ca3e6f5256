package app

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"scms_backend/internal/config"
	"scms_backend/internal/controller"
	"scms_backend/internal/repository"
	"scms_backend/internal/service"
	"scms_backend/internal/util"
	"scms_backend/pkg/configwatcher"
	"scms_backend/pkg/database"
	"scms_backend/pkg/logger"
	"scms_backend/pkg/monitoring"
	"scms_backend/pkg/security"
	"scms_backend/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	Config     *config.Config
	ConfigFile string
	Router     *gin.Engine
	DB         *gorm.DB
	Redis      *redis.Client

	services        *services
	limiter         *security.IPRateLimiter
	tracer          *sdktrace.TracerProvider
	configCallbacks []func(*config.Config)
}

type services struct {
	complaint *service.ComplaintService
	aging     *service.AgingService
	reminder  *service.ReminderScheduler
	report    *service.ReportService
	hub       *service.NotificationHub
}

type controllers struct {
	complaint  *controller.ComplaintController
	department *controller.DepartmentController
	report     *controller.ReportController
	reminder   *controller.ReminderController
	health     *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

func (a *App) applyConfig(cfg *config.Config) {
	for _, cb := range a.configCallbacks {
		cb(cfg)
	}
}

func reminderPolicy(cfg *config.Config) service.ReminderPolicy {
	return service.ReminderPolicy{
		FrequentInterval:     cfg.Reminder.FrequentInterval,
		NormalInterval:       cfg.Reminder.NormalInterval,
		FrequentThreshold:    cfg.Reminder.FrequentThreshold,
		AlwaysAlertThreshold: cfg.Reminder.AlwaysAlertThreshold,
	}
}

func (a *App) initServices(cfg *config.Config, db *gorm.DB, rdb *redis.Client) *services {
	clock := service.SystemClock{}

	snapshots, err := repository.NewSnapshotStore(cfg, db, rdb)
	if err != nil {
		logger.Log.Fatal("Failed to initialize complaint storage", zap.Error(err))
	}

	complaint := service.NewComplaintService(service.ComplaintServiceOptions{
		Clock:              clock,
		IDs:                service.NewIDGenerator(cfg.Complaint.IDStrategy),
		Policy:             service.NewTransitionPolicy(cfg.Lifecycle.TransitionPolicy, cfg.Lifecycle.AllowReopen),
		Directory:          service.NewDirectory(cfg.Departments),
		Snapshots:          snapshots,
		RejectReassignment: cfg.Lifecycle.RejectReassignment,
	})

	hub := service.NewNotificationHub(rdb, cfg.Redis.EventsChannel)
	alerter := service.MultiAlerter{hub, service.LogAlerter{}}

	return &services{
		complaint: complaint,
		aging:     service.NewAgingService(complaint, clock, cfg.Aging.Interval),
		reminder:  service.NewReminderScheduler(complaint, alerter, clock, reminderPolicy(cfg)),
		report:    service.NewReportService(complaint, clock),
		hub:       hub,
	}
}

func (a *App) initControllers(s *services) *controllers {
	return &controllers{
		complaint:  controller.NewComplaintController(s.complaint),
		department: controller.NewDepartmentController(s.complaint.Directory()),
		report:     controller.NewReportController(s.report),
		reminder:   controller.NewReminderController(s.reminder, s.hub, s.complaint),
		health:     controller.NewHealthController(a.DB, a.Redis, s.complaint, s.hub, a.Config.Persistence.Type),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())

	window := time.Duration(cfg.RateLimit.WindowMinutes) * time.Minute
	a.limiter = security.NewIPRateLimiter(cfg.RateLimit.MaxRequests, window)
	router.Use(a.limiter.Middleware())

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

// registerConfigCallbacks 配置热更新只调整调度节奏，存储和策略需要重启生效
func (a *App) registerConfigCallbacks(s *services) {
	a.RegisterConfigCallback(func(cfg *config.Config) {
		if cfg.Aging.Interval != s.aging.Interval() {
			s.aging.SetInterval(cfg.Aging.Interval)
			logger.Log.Info("Aging interval updated", zap.Duration("interval", cfg.Aging.Interval))
		}
	})
	a.RegisterConfigCallback(func(cfg *config.Config) {
		s.reminder.SetPolicy(reminderPolicy(cfg))
	})
}

func NewApp(cfg *config.Config, configDir string) *App {
	logger.InitLogger(cfg)
	logger.Log.Info("Logger initialized successfully")

	app := &App{
		Config:     cfg,
		ConfigFile: filepath.Join(configDir, "config.yaml"),
	}

	if cfg.Persistence.Type == util.PersistenceDatabase || cfg.ForceMigrate {
		db, err := database.InitDB(&cfg.Database, cfg.Server.Mode == gin.DebugMode)
		if err != nil {
			logger.Log.Fatal("Failed to initialize database", zap.Error(err))
		}
		if cfg.ForceMigrate || cfg.Server.Mode != gin.ReleaseMode {
			if err := database.Migrate(db); err != nil {
				logger.Log.Fatal("Failed to migrate database", zap.Error(err))
			}
		}
		app.DB = db
	}
	if cfg.MigrateOnly {
		return app
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		logger.Log.Fatal("Failed to initialize redis", zap.Error(err))
	}
	app.Redis = rdb

	// 监控初始化
	monitoring.Init()

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer(cfg.Tracing.ServiceName, cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
		app.tracer = tp
	}

	app.services = app.initServices(cfg, app.DB, rdb)
	app.registerConfigCallbacks(app.services)
	controllers := app.initControllers(app.services)

	gin.SetMode(cfg.Server.Mode)
	router := gin.New()
	router.Use(gin.Recovery())
	app.Router = router

	app.setupMiddlewares(router, cfg)
	app.registerRoutes(router, controllers, cfg)

	return app
}

// loadComplaints 启动前从快照恢复，失败直接退出，避免空存储覆盖已有数据
func (a *App) loadComplaints(ctx context.Context) {
	ctx, span := tracing.StartSpan(ctx, "complaints.load")
	_, err := a.services.complaint.Load(ctx)
	tracing.EndSpan(span, err)
	if err != nil {
		logger.Log.Fatal("Failed to load complaints", zap.Error(err), zap.String("persistence", a.Config.Persistence.Type))
	}
}

func (a *App) startBackgroundTasks(ctx context.Context) {
	s := a.services

	s.complaint.Start(ctx)
	unsubscribe := s.complaint.Subscribe(s.hub.PublishEvent)
	go func() {
		<-ctx.Done()
		unsubscribe()
	}()

	go s.hub.Run(ctx)
	s.aging.Start(ctx)
	s.reminder.Start(ctx)

	go a.limiter.Cleanup(ctx)

	go func() {
		if err := configwatcher.WatchConfig(ctx, a.ConfigFile, a.applyConfig); err != nil {
			logger.Log.Warn("Config watcher disabled", zap.Error(err))
		}
	}()
}

func (a *App) shutdown() {
	s := a.services
	s.reminder.Stop()
	s.aging.Stop()
	s.complaint.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	ctx, span := tracing.StartSpan(ctx, "complaints.flush")
	err := s.complaint.Flush(ctx)
	tracing.EndSpan(span, err)
	if err != nil {
		logger.Log.Error("Failed to flush complaints", zap.Error(err))
	}

	if a.tracer != nil {
		if err := a.tracer.Shutdown(ctx); err != nil {
			logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}
	if a.Redis != nil {
		a.Redis.Close()
	}
	if a.DB != nil {
		if sqlDB, err := a.DB.DB(); err == nil {
			sqlDB.Close()
		}
	}
}

func (a *App) Run() {
	defer logger.Log.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	a.loadComplaints(ctx)
	a.startBackgroundTasks(ctx)

	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	// 启动服务器
	go func() {
		logger.Log.Info("Server running", zap.String("port", a.Config.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// 等待中断信号优雅地关闭服务器
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	httpCtx, httpCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer httpCancel()
	if err := srv.Shutdown(httpCtx); err != nil {
		logger.Log.Error("Server forced to shutdown", zap.Error(err))
	}

	// 先停止 HTTP 再关闭推送和调度，最后落盘
	cancel()
	a.shutdown()

	logger.Log.Info("Server exiting")
}
