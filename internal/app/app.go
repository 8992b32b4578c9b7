package app

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"skillpath_backend/internal/catalog"
	"skillpath_backend/internal/config"
	"skillpath_backend/internal/controller"
	"skillpath_backend/internal/repository"
	"skillpath_backend/internal/service"
	"skillpath_backend/internal/util"
	"skillpath_backend/pkg/configwatcher"
	"skillpath_backend/pkg/database"
	"skillpath_backend/pkg/logger"
	"skillpath_backend/pkg/monitoring"
	"skillpath_backend/pkg/security"
	"skillpath_backend/pkg/tracing"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config          *config.Config
	Router          *gin.Engine
	DB              *gorm.DB
	Redis           *redis.Client
	Catalog         *catalog.Catalog
	services        *services
	configCallbacks []func(*config.Config)
	tracerShutdown  func(context.Context) error
}

type repositories struct {
	user    *repository.UserRepository
	intake  *repository.IntakeRepository
	mastery *repository.MasteryRepository
	roadmap *repository.RoadmapRepository
}

type services struct {
	auth      *service.AuthService
	user      *service.UserService
	storage   *service.StorageService
	ai        *service.AIService
	judge     *service.JudgeService
	grader    *service.GraderService
	mastery   *service.MasteryService
	roadmap   *service.RoadmapService
	intake    *service.IntakeService
	assistant *service.AssistantService
}

type controllers struct {
	auth      *controller.AuthController
	user      *controller.UserController
	intake    *controller.IntakeController
	mastery   *controller.MasteryController
	roadmap   *controller.RoadmapController
	catalog   *controller.CatalogController
	assistant *controller.AssistantController
	health    *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		user:    repository.NewUserRepository(db),
		intake:  repository.NewIntakeRepository(db),
		mastery: repository.NewMasteryRepository(db),
		roadmap: repository.NewRoadmapRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, rdb *redis.Client, cat *catalog.Catalog) *services {
	s := &services{}

	s.storage = service.NewStorageService(cfg)
	s.auth = service.NewAuthService(repos.user, cfg)
	s.user = service.NewUserService(repos.user)

	s.ai = service.NewAIService(cfg.AI, cfg.Grading)
	s.judge = service.NewJudgeService(cfg.Judge0)
	s.grader = service.NewGraderService(s.judge, s.ai, cfg.Grading)

	s.mastery = service.NewMasteryService(repos.mastery, cat, rdb)
	s.roadmap = service.NewRoadmapService(repos.roadmap, cat, cfg.Grading)
	s.intake = service.NewIntakeService(repos.intake, s.grader, s.mastery, s.roadmap, cat, cfg.Intake)
	s.assistant = service.NewAssistantService(s.ai, s.mastery, s.roadmap, cat)

	return s
}

func (a *App) initControllers(s *services, db *gorm.DB, cat *catalog.Catalog) *controllers {
	return &controllers{
		auth:      controller.NewAuthController(s.auth, s.user),
		user:      controller.NewUserController(s.user, s.storage),
		intake:    controller.NewIntakeController(s.intake),
		mastery:   controller.NewMasteryController(s.mastery),
		roadmap:   controller.NewRoadmapController(s.roadmap),
		catalog:   controller.NewCatalogController(cat),
		assistant: controller.NewAssistantController(s.assistant),
		health:    controller.NewHealthController(db),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())
	router.Use(security.RateLimiter(cfg.RateLimit.MaxRequests, time.Duration(cfg.RateLimit.WindowMinutes)*time.Minute))

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

// startBackgroundTasks 周期回收闲置超时的测评会话
func (a *App) startBackgroundTasks(s *services) {
	go func() {
		ticker := time.NewTicker(10 * time.Minute)
		for range ticker.C {
			if _, err := s.intake.ReapStale(); err != nil {
				logger.Log.Error("stale session reaper error", zap.Error(err))
			}
		}
	}()
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)
	defer logger.Log.Sync()

	logger.Log.Info("Logger initialized successfully")

	// 目录在启动时装载并校验一次；制作错误（含先修成环）直接终止
	cat := catalog.Default()
	logger.Log.Info("Catalog loaded",
		zap.String("version", cat.Version),
		zap.Int("steps", cat.TotalSteps()),
		zap.Int("skills", len(cat.Skills)),
		zap.Int("resources", len(cat.Resources)))

	db, err := database.InitDB(cfg)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
		log.Fatalf("Failed to initialize database: %v", err)
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		logger.Log.Fatal("Failed to initialize redis", zap.Error(err))
		log.Fatalf("Failed to initialize redis: %v", err)
	}

	app := &App{
		Config:  cfg,
		DB:      db,
		Redis:   rdb,
		Catalog: cat,
	}

	repos := app.initRepositories(db)
	services := app.initServices(repos, cfg, rdb, cat)
	app.services = services
	controllers := app.initControllers(services, db, cat)

	app.RegisterConfigCallback(func(c *config.Config) {
		services.grader.UpdateGradingConfig(c.Grading)
	})

	// 监控初始化
	monitoring.Init()

	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer("skillpath-backend", cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
		// 服务退出时才关停导出器，否则运行期的 span 一个都导不出去
		app.tracerShutdown = tp.Shutdown
	}

	app.registerRoutes(router, controllers, repos, cfg)

	if cfg.Storage.Type == util.StorageLocal {
		router.Static("/uploads", cfg.Storage.LocalPath)
	}

	app.startBackgroundTasks(services)

	// 配置热更新：评分置信度与阈值参数改动无需重启
	go configwatcher.WatchConfig("configs/config.yaml", cfg, func(newCfg interface{}) {
		reloaded, ok := newCfg.(*config.Config)
		if !ok {
			return
		}
		app.Config = reloaded
		for _, cb := range app.configCallbacks {
			cb(reloaded)
		}
		logger.Log.Info("Config reloaded")
	})

	return app
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	// 启动服务器
	go func() {
		log.Printf("Server running on port %s", a.Config.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// 等待中断信号优雅地关闭服务器（设置5秒的超时时间）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	a.flushTracer(ctx)

	log.Println("Server exiting")
}

// flushTracer 把剩余的 span 刷给收集器再退出；未开启追踪时为空操作
func (a *App) flushTracer(ctx context.Context) {
	if a.tracerShutdown == nil {
		return
	}
	if err := a.tracerShutdown(ctx); err != nil {
		logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
	}
}
