package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/noah-isme/acadplan-api/api/swagger"
	"github.com/noah-isme/acadplan-api/internal/handler"
	"github.com/noah-isme/acadplan-api/internal/middleware"
	"github.com/noah-isme/acadplan-api/internal/repository"
	"github.com/noah-isme/acadplan-api/internal/service"
	"github.com/noah-isme/acadplan-api/pkg/cache"
	"github.com/noah-isme/acadplan-api/pkg/config"
	"github.com/noah-isme/acadplan-api/pkg/database"
	"github.com/noah-isme/acadplan-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/acadplan-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/acadplan-api/pkg/middleware/requestid"
)

// @title AcadPlan API
// @version 1.0
// @description Academic program planning and tracking API
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to database", "error", err)
	}
	defer db.Close()

	metricsService := service.NewMetricsService()

	var cacheRepo *repository.CacheRepository
	if cfg.Cache.Enabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, cache disabled", "error", err)
		} else {
			cacheRepo = repository.NewCacheRepository(redisClient, logr)
			defer cacheRepo.Close() //nolint:errcheck
		}
	}
	var cacheService *service.CacheService
	if cacheRepo != nil {
		cacheService = service.NewCacheService(cacheRepo, metricsService, cfg.Cache.TTL, logr, true)
	}

	userRepo := repository.NewUserRepository(db)
	periodRepo := repository.NewPeriodRepository(db)
	programRepo := repository.NewProgramRepository(db)
	moduleRepo := repository.NewModuleRepository(db)
	activityRepo := repository.NewActivityRepository(db)
	indicatorRepo := repository.NewIndicatorRepository(db)
	resultRepo := repository.NewResultRepository(db)
	preferenceRepo := repository.NewPreferenceRepository(db)

	authService := service.NewAuthService(userRepo, nil, logr, service.AuthConfig{
		Secret:            cfg.JWT.Secret,
		SessionExpiration: cfg.JWT.SessionExpiration,
		Issuer:            cfg.JWT.Issuer,
	})
	periodService := service.NewPeriodService(periodRepo, cacheService, nil, logr)
	programService := service.NewProgramService(programRepo, nil, logr)
	moduleService := service.NewModuleService(moduleRepo, programRepo, nil, logr)
	activityService := service.NewActivityService(activityRepo, programRepo, periodRepo, nil, logr)
	indicatorService := service.NewIndicatorService(indicatorRepo, programRepo, periodRepo, nil, logr)
	resultService := service.NewResultService(resultRepo, moduleRepo, nil, logr)
	preferenceService := service.NewPreferenceService(preferenceRepo, nil, logr)
	exportService := service.NewExportService(userRepo, programRepo, moduleRepo, metricsService, service.ExportConfig{
		SchemaVersion: cfg.Export.SchemaVersion,
	}, logr)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsService))
	r.Use(middleware.WithResponseMeta())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", gin.WrapH(metricsService.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	handler.RegisterRoutes(r, cfg.APIPrefix, handler.Handlers{
		Auth:       handler.NewAuthHandler(authService),
		Period:     handler.NewPeriodHandler(periodService),
		Program:    handler.NewProgramHandler(programService),
		Module:     handler.NewModuleHandler(moduleService),
		Activity:   handler.NewActivityHandler(activityService),
		Indicator:  handler.NewIndicatorHandler(indicatorService),
		Result:     handler.NewResultHandler(resultService),
		Preference: handler.NewPreferenceHandler(preferenceService),
		Export:     handler.NewExportHandler(exportService),
	}, authService, userRepo)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
