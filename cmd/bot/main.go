package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/EDRO-Technologies/Digital-Challenge-NVGU-6-32-43/internal/bot"
	"github.com/EDRO-Technologies/Digital-Challenge-NVGU-6-32-43/internal/repository"
	"github.com/EDRO-Technologies/Digital-Challenge-NVGU-6-32-43/internal/service"
	"github.com/EDRO-Technologies/Digital-Challenge-NVGU-6-32-43/pkg/config"
	"github.com/EDRO-Technologies/Digital-Challenge-NVGU-6-32-43/pkg/database"
	"github.com/EDRO-Technologies/Digital-Challenge-NVGU-6-32-43/pkg/logger"
)

// Standalone bot runner for deployments that keep the chat front end
// separate from the API gateway. Push delivery of lifecycle events is
// only wired when the bot runs inside the gateway process.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if cfg.Bot.Token == "" {
		log.Fatal("BOT_TOKEN is required")
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

	validate := validator.New()
	userRepo := repository.NewUserRepository(db)
	scheduleRepo := repository.NewScheduleRepository(db)
	specialtyRepo := repository.NewSpecialtyRepository(db)
	adminLogRepo := repository.NewAdminLogRepository(db)
	requestRepo := repository.NewRequestRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	userService := service.NewUserService(userRepo, logr)
	scheduleService := service.NewScheduleService(scheduleRepo, specialtyRepo, nil, adminLogRepo, validate, cfg.Cache.ScheduleTTL, logr)
	requestService := service.NewRequestService(requestRepo, userRepo, scheduleRepo, validate, logr)
	requestService.AddListener(service.NewResolutionNotifier(notificationRepo, logr))
	requestService.AddListener(service.NewScheduleMaterializer(scheduleRepo, adminLogRepo, nil, logr))

	botCtl, err := bot.New(cfg.Bot.Token, userService, scheduleService, requestService, logr)
	if err != nil {
		logr.Fatal("failed to init bot", zap.Error(err))
	}

	logr.Sugar().Infow("bot starting", "env", cfg.Env)
	botCtl.Start(ctx)
}
