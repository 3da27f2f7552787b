package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/hongyan02/ehs-new/internal/config"
	"github.com/hongyan02/ehs-new/internal/entity"
	"github.com/hongyan02/ehs-new/internal/handler"
	"github.com/hongyan02/ehs-new/internal/middleware"
	"github.com/hongyan02/ehs-new/internal/repository"
	"github.com/hongyan02/ehs-new/internal/scheduler"
	"github.com/hongyan02/ehs-new/internal/service"
	"github.com/hongyan02/ehs-new/internal/wecom"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	// 加载 .env 文件
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables")
	}

	// 加载配置
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 初始化日志
	zapLogger, err := initLogger(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer zapLogger.Sync()

	zapLogger.Info("Starting ehs-new service",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
	)

	// 初始化数据库
	db, err := initDatabase(cfg.Database)
	if err != nil {
		zapLogger.Fatal("Failed to connect to database", zap.Error(err))
	}

	if err := db.AutoMigrate(
		&entity.Application{},
		&entity.ApplicationDetail{},
		&entity.MaterialStore{},
		&entity.MaterialLog{},
		&entity.DutySchedule{},
		&entity.DutyLog{},
		&entity.DutySwap{},
		&entity.SchedulerTask{},
		&entity.UserPermission{},
	); err != nil {
		zapLogger.Warn("AutoMigrate warning", zap.Error(err))
	}

	// 初始化Redis
	rdb := initRedis(cfg.Redis)

	// 初始化依赖
	repos := repository.NewRepositories(db)
	engine := scheduler.NewEngine(repos.Scheduler, zapLogger)
	wecomClient := wecom.NewClient(cfg.WeCom.GatewayURL, cfg.WeCom.CorpID, cfg.WeCom.CorpSecret, cfg.WeCom.AgentID, rdb)
	services := service.NewServices(repos, db, engine, wecomClient, cfg)
	handlers := handler.NewHandlers(services, cfg)

	// 注册定时任务处理器
	registerJobs(engine, services)

	if err := engine.Start(context.Background()); err != nil {
		zapLogger.Error("Failed to start scheduler engine", zap.Error(err))
	}

	// 设置Gin模式
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// 创建路由
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(zapLogger))
	router.Use(middleware.CORS())
	router.Use(middleware.RequestID())
	router.Use(gzip.Gzip(gzip.DefaultCompression))

	registerRoutes(router, handlers, cfg)

	// 创建HTTP服务器
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// 启动服务器
	go func() {
		zapLogger.Info("Server starting", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("Shutting down server...")

	engine.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Error("Server forced to shutdown", zap.Error(err))
	}

	zapLogger.Info("Server exited")
}

// registerJobs 注册定时任务处理器，jobKey是闭合集合
func registerJobs(engine *scheduler.Engine, services *service.Services) {
	// 值班领导提醒，payload 可带 shift 和 content
	engine.Register("duty_leader_notify", func(ctx context.Context, payload []byte) error {
		var p struct {
			Shift   int    `json:"shift"`
			Content string `json:"content"`
		}
		if len(payload) > 0 {
			if err := json.Unmarshal(payload, &p); err != nil {
				return fmt.Errorf("解析任务payload失败: %w", err)
			}
		}
		_, err := services.Notify.NotifyDutyLeader(ctx, p.Shift, p.Content)
		return err
	})

	// 库存预警巡检
	engine.Register("material_threshold_check", func(ctx context.Context, payload []byte) error {
		_, err := services.Notify.NotifyLowStock(ctx)
		return err
	})
}

func registerRoutes(r *gin.Engine, h *handler.Handlers, cfg *config.Config) {
	// 健康检查
	r.GET("/health/live", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/health/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// 版本信息
	r.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"version":    Version,
			"build_time": BuildTime,
		})
	})

	api := r.Group("/api")
	{
		// 认证 (无需登录)
		auth := api.Group("/auth")
		{
			auth.POST("/login", h.Auth.Login)
			auth.POST("/logout", h.Auth.Logout)
		}

		// 需要认证的接口
		authorized := api.Group("")
		authorized.Use(middleware.JWTAuth(cfg.JWT.Secret))
		{
			// 当前用户
			authorized.GET("/auth/me", h.Auth.Me)

			// 物资申请单
			authorized.GET("/applications", h.Application.List)
			authorized.GET("/applications/pending", h.Application.ListPending)
			authorized.GET("/applications/:id", h.Application.Get)
			authorized.POST("/applications", h.Application.Create)
			authorized.PUT("/applications/:id", h.Application.Update)
			authorized.DELETE("/applications/:id", h.Application.Delete)
			authorized.POST("/applications/:id/finalize", h.Application.Finalize)

			// 申请单明细
			authorized.GET("/applications/code/:code/details", h.Application.ListDetails)
			authorized.POST("/application-details", h.Application.CreateDetail)
			authorized.PUT("/application-details/:id", h.Application.UpdateDetail)
			authorized.DELETE("/application-details/:id", h.Application.DeleteDetail)

			// 物资库
			authorized.GET("/materials", h.Material.List)
			authorized.GET("/materials/alerts", h.Material.Alerts)
			authorized.GET("/materials/export", h.Material.Export)
			authorized.GET("/materials/:id", h.Material.Get)
			authorized.POST("/materials", h.Material.Create)
			authorized.PUT("/materials/:id", h.Material.Update)

			// 出入库流水
			authorized.GET("/material-logs", h.Material.ListLogs)

			// 值班排班
			authorized.GET("/duty/schedules", h.Duty.ListSchedules)
			authorized.GET("/duty/schedules/:id", h.Duty.GetSchedule)
			authorized.POST("/duty/schedules", h.Duty.CreateSchedule)
			authorized.PUT("/duty/schedules/:id", h.Duty.UpdateSchedule)
			authorized.DELETE("/duty/schedules/:id", h.Duty.DeleteSchedule)

			// 值班日志
			authorized.GET("/duty/logs", h.Duty.ListLogs)
			authorized.GET("/duty/logs/inspect", h.Duty.InspectLogs)
			authorized.GET("/duty/logs/:id", h.Duty.GetLog)
			authorized.POST("/duty/logs", h.Duty.CreateLog)
			authorized.PUT("/duty/logs/:id", h.Duty.UpdateLog)
			authorized.DELETE("/duty/logs/:id", h.Duty.DeleteLog)

			// 换班
			authorized.POST("/duty/swaps", h.DutySwap.Create)
			authorized.GET("/duty/swaps", h.DutySwap.ListAll)
			authorized.GET("/duty/swaps/my", h.DutySwap.ListMine)
			authorized.POST("/duty/swaps/:id/approve", h.DutySwap.Approve)
			authorized.POST("/duty/swaps/:id/reject", h.DutySwap.Reject)
			authorized.POST("/duty/swaps/:id/cancel", h.DutySwap.Cancel)
			authorized.POST("/duty/swap", h.DutySwap.Swap)

			// 企业微信通知
			authorized.POST("/notify/duty-leader", h.Notify.NotifyDutyLeader)
			authorized.POST("/notify/low-stock", h.Notify.NotifyLowStock)

			// 定时任务，仅管理员
			tasks := authorized.Group("/scheduler")
			tasks.Use(middleware.RequirePermission("scheduler:manage"))
			{
				tasks.GET("/tasks", h.Scheduler.List)
				tasks.GET("/job-keys", h.Scheduler.JobKeys)
				tasks.GET("/tasks/:id", h.Scheduler.Get)
				tasks.POST("/tasks", h.Scheduler.Create)
				tasks.PUT("/tasks/:id", h.Scheduler.Update)
				tasks.DELETE("/tasks/:id", h.Scheduler.Delete)
				tasks.POST("/tasks/:id/trigger", h.Scheduler.Trigger)
			}
		}
	}
}

func initLogger(cfg config.LogConfig) (*zap.Logger, error) {
	var zapCfg zap.Config

	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}

	switch cfg.Level {
	case "debug":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "info":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	case "warn":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	}

	return zapCfg.Build()
}

func initDatabase(cfg config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode,
	)

	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	}

	db, err := gorm.Open(postgres.Open(dsn), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	return db, nil
}

func initRedis(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
}
