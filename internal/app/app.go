package app

import (
	"context"
	"cyberguard_backend/internal/config"
	"cyberguard_backend/internal/controller"
	"cyberguard_backend/internal/repository"
	"cyberguard_backend/internal/service"
	"cyberguard_backend/pkg/database"
	"cyberguard_backend/pkg/logger"
	"cyberguard_backend/pkg/monitoring"
	"cyberguard_backend/pkg/security"
	"cyberguard_backend/pkg/tracing"
	"log"
	"net/http"
	"os"
	"os/signal"
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
	services        *services
	configCallbacks []func(*config.Config)
}

type repositories struct {
	user       *repository.UserRepository
	assessment *repository.AssessmentRepository
	risk       *repository.RiskRepository
	asset      *repository.AssetRepository
	framework  *repository.FrameworkRepository
	dpia       *repository.DPIARepository
	report     *repository.ReportRepository
	setting    *repository.SettingRepository
	advisor    *repository.AdvisorRepository
}

type services struct {
	auth       *service.AuthService
	user       *service.UserService
	assessment *service.AssessmentService
	risk       *service.RiskService
	asset      *service.AssetService
	framework  *service.FrameworkService
	dpia       *service.DPIAService
	report     *service.ReportService
	setting    *service.SettingService
	ai         *service.AIService
	advisor    *service.AdvisorService
	advisorHub *service.AdvisorHub
	storage    service.StorageProvider
}

type controllers struct {
	auth       *controller.AuthController
	user       *controller.UserController
	assessment *controller.AssessmentController
	risk       *controller.RiskController
	asset      *controller.AssetController
	framework  *controller.FrameworkController
	dpia       *controller.DPIAController
	report     *controller.ReportController
	ai         *controller.AIController
	health     *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

// ReloadConfig configwatcher 的回调入口，把新配置分发给已注册组件
func (a *App) ReloadConfig(cfg *config.Config) {
	a.Config = cfg
	for _, cb := range a.configCallbacks {
		cb(cfg)
	}
	logger.Log.Info("configuration reloaded")
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		user:       repository.NewUserRepository(db),
		assessment: repository.NewAssessmentRepository(db),
		risk:       repository.NewRiskRepository(db),
		asset:      repository.NewAssetRepository(db),
		framework:  repository.NewFrameworkRepository(db),
		dpia:       repository.NewDPIARepository(db),
		report:     repository.NewReportRepository(db),
		setting:    repository.NewSettingRepository(db),
		advisor:    repository.NewAdvisorRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, rdb *redis.Client) *services {
	s := &services{}

	s.storage = service.NewStorageProvider(cfg)
	s.auth = service.NewAuthService(repos.user, cfg)
	s.user = service.NewUserService(repos.user)
	s.setting = service.NewSettingService(repos.setting, rdb)

	s.ai = service.NewAIService(cfg.AI)
	a.RegisterConfigCallback(func(newCfg *config.Config) {
		s.ai.UpdateConfig(newCfg.AI)
	})

	s.report = service.NewReportService(repos.report, s.ai, s.storage)
	s.assessment = service.NewAssessmentService(repos.assessment, repos.risk, s.report)
	s.risk = service.NewRiskService(repos.risk)
	s.asset = service.NewAssetService(repos.asset)
	s.framework = service.NewFrameworkService(repos.framework)
	s.dpia = service.NewDPIAService(repos.dpia)

	s.advisor = service.NewAdvisorService(repos.advisor, s.ai, s.setting)
	s.advisorHub = service.NewAdvisorHub(rdb, s.advisor)
	go s.advisorHub.Run()

	return s
}

func (a *App) initControllers(s *services, db *gorm.DB, rdb *redis.Client) *controllers {
	return &controllers{
		auth:       controller.NewAuthController(s.auth, a.Config),
		user:       controller.NewUserController(s.user, s.setting),
		assessment: controller.NewAssessmentController(s.assessment),
		risk:       controller.NewRiskController(s.risk),
		asset:      controller.NewAssetController(s.asset),
		framework:  controller.NewFrameworkController(s.framework),
		dpia:       controller.NewDPIAController(s.dpia),
		report:     controller.NewReportController(s.report),
		ai:         controller.NewAIController(s.ai, s.advisorHub, s.setting, s.report, s.assessment, s.advisor, s.storage, rdb),
		health:     controller.NewHealthController(db, rdb),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())

	maxRequests := cfg.RateLimit.MaxRequests
	if maxRequests <= 0 {
		maxRequests = 600
	}
	window := time.Duration(cfg.RateLimit.WindowMinutes) * time.Minute
	if window <= 0 {
		window = time.Minute
	}
	router.Use(security.RateLimiter(maxRequests, window))

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg.Server.Mode)
	defer logger.Log.Sync()

	logger.Log.Info("Logger initialized successfully")

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.InitDB(&cfg.Database, database.ShouldMigrate(cfg.Server.Mode, cfg.ForceMigrate))
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
		Config: cfg,
		DB:     db,
		Redis:  rdb,
	}

	repos := app.initRepositories(db)
	services := app.initServices(repos, cfg, rdb)
	app.services = services
	controllers := app.initControllers(services, db, rdb)

	// 监控初始化
	monitoring.Init()

	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		if _, err := tracing.InitTracer("cyberguard-platform", cfg.Tracing.CollectorEndpoint); err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
	}

	app.registerRoutes(router, controllers, repos, cfg)

	if cfg.Storage.Type == "local" {
		router.Static("/uploads", cfg.Storage.LocalPath)
	}

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

	// 清理 WebSocket连接和Redis在线状态
	if a.services != nil && a.services.advisorHub != nil {
		a.services.advisorHub.Stop()
	}

	// 关闭服务
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}
