package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/EDRO-Technologies/Digital-Challenge-NVGU-6-32-43/api/swagger"
	"github.com/EDRO-Technologies/Digital-Challenge-NVGU-6-32-43/internal/bot"
	"github.com/EDRO-Technologies/Digital-Challenge-NVGU-6-32-43/internal/handler"
	"github.com/EDRO-Technologies/Digital-Challenge-NVGU-6-32-43/internal/middleware"
	"github.com/EDRO-Technologies/Digital-Challenge-NVGU-6-32-43/internal/repository"
	"github.com/EDRO-Technologies/Digital-Challenge-NVGU-6-32-43/internal/service"
	"github.com/EDRO-Technologies/Digital-Challenge-NVGU-6-32-43/pkg/cache"
	"github.com/EDRO-Technologies/Digital-Challenge-NVGU-6-32-43/pkg/config"
	"github.com/EDRO-Technologies/Digital-Challenge-NVGU-6-32-43/pkg/database"
	"github.com/EDRO-Technologies/Digital-Challenge-NVGU-6-32-43/pkg/export"
	"github.com/EDRO-Technologies/Digital-Challenge-NVGU-6-32-43/pkg/logger"
	corsmiddleware "github.com/EDRO-Technologies/Digital-Challenge-NVGU-6-32-43/pkg/middleware/cors"
	reqidmiddleware "github.com/EDRO-Technologies/Digital-Challenge-NVGU-6-32-43/pkg/middleware/requestid"
)

// @title Class Schedule API
// @version 1.0.0
// @description Schedule distribution and change-request workflow for the college timetable
// @BasePath /api/v1
// @schemes http

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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close()

	if err := database.Migrate(ctx, db, cfg.Database.MigrationsDir); err != nil {
		logr.Fatal("failed to apply migrations", zap.Error(err))
	}
	if version, err := database.MigrationVersion(ctx, db); err == nil {
		logr.Info("database ready", zap.Int64("schema_version", version))
	}

	cacheRepo := repository.NewCacheRepository(nil, logr)
	if cfg.Cache.Enabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, serving without cache", zap.Error(err))
		} else {
			cacheRepo = repository.NewCacheRepository(redisClient, logr)
			defer cacheRepo.Close() //nolint:errcheck
		}
	}

	validate := validator.New()

	userRepo := repository.NewUserRepository(db)
	scheduleRepo := repository.NewScheduleRepository(db)
	specialtyRepo := repository.NewSpecialtyRepository(db)
	requestRepo := repository.NewRequestRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	adminLogRepo := repository.NewAdminLogRepository(db)

	metrics := service.NewMetricsService()
	authService := service.NewAuthService(userRepo, validate, logr, cfg.JWT)
	userService := service.NewUserService(userRepo, logr)
	auditService := service.NewAuditService(adminLogRepo, logr)
	scheduleService := service.NewScheduleService(scheduleRepo, specialtyRepo, cacheRepo, adminLogRepo, validate, cfg.Cache.ScheduleTTL, logr)
	notificationService := service.NewNotificationService(notificationRepo, logr)
	requestService := service.NewRequestService(requestRepo, userRepo, scheduleRepo, validate, logr)

	requestService.AddListener(service.NewMetricsListener(metrics))
	requestService.AddListener(service.NewResolutionNotifier(notificationRepo, logr))
	requestService.AddListener(service.NewScheduleMaterializer(scheduleRepo, adminLogRepo, cacheRepo, logr))

	if cfg.Bot.Enabled {
		botCtl, err := bot.New(cfg.Bot.Token, userService, scheduleService, requestService, logr)
		if err != nil {
			logr.Fatal("failed to init bot", zap.Error(err))
		}
		dispatcher := service.NewNotificationDispatcher(botCtl.Sender(), userRepo,
			cfg.Notifications.DispatchWorkers, cfg.Notifications.DispatchRetries, logr)
		dispatcher.Start(ctx)
		defer dispatcher.Stop()
		requestService.AddListener(dispatcher)

		go botCtl.Start(ctx)
	}

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))

	csvExporter := export.NewCSVExporter()
	pdfExporter := export.NewPDFExporter()

	handler.RegisterRoutes(r, handler.Handlers{
		Auth:          handler.NewAuthHandler(authService),
		Requests:      handler.NewRequestHandler(requestService),
		Notifications: handler.NewNotificationHandler(notificationService),
		Schedule:      handler.NewScheduleHandler(scheduleService, csvExporter, pdfExporter),
		AdminLogs:     handler.NewAdminLogHandler(auditService, csvExporter, pdfExporter),
		Metrics:       handler.NewMetricsHandler(metrics),
	}, authService)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: r,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Warn("graceful shutdown failed", zap.Error(err))
	}
}
