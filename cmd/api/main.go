package main

import (
	"context"
	"fmt"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/umutkarci/notify-manager/internal/adapter"
	"github.com/umutkarci/notify-manager/internal/auth"
	"github.com/umutkarci/notify-manager/internal/cache"
	"github.com/umutkarci/notify-manager/internal/config"
	"github.com/umutkarci/notify-manager/internal/handler"
	"github.com/umutkarci/notify-manager/internal/infra/postgresql"
	"github.com/umutkarci/notify-manager/internal/infra/postgresql/migrations"
	infraredis "github.com/umutkarci/notify-manager/internal/infra/redis"
	"github.com/umutkarci/notify-manager/internal/observability"
	"github.com/umutkarci/notify-manager/internal/repository"
	"github.com/umutkarci/notify-manager/internal/service"
	"github.com/umutkarci/notify-manager/internal/transport"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("failed to load config", zap.Error(err))
	}

	logger, err := observability.NewLogger(cfg.LogLevel)
	if err != nil {
		log.Fatal("failed to initialize logger", zap.Error(err))
	}
	defer logger.Sync() //nolint:errcheck

	db, err := postgresql.NewPostgres(cfg.DatabaseDSN)
	if err != nil {
		logger.Fatal("postgres initialization failed", zap.Error(err))
	}

	if err := migrations.Migrate(db); err != nil {
		logger.Fatal("database migrations failed", zap.Error(err))
	}

	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("postgres underlying db init failed", zap.Error(err))
	}
	defer sqlDB.Close()

	rdb, err := infraredis.NewRedis(cfg.RedisURL)
	if err != nil {
		logger.Fatal("redis initialization failed", zap.Error(err))
	}
	defer rdb.Close()

	accountRepo := repository.NewGormAccountRepo(db)
	destinationRepo := repository.NewGormDestinationRepo(db)
	templateRepo := repository.NewGormTemplateRepo(db)
	deliveryRepo := repository.NewGormDeliveryRepo(db)

	tokenCache := cache.New(rdb, logger)
	metrics := observability.NewMetrics()

	authenticator, err := auth.NewAuthenticator(accountRepo, tokenCache, logger)
	if err != nil {
		logger.Fatal("authenticator init failed", zap.Error(err))
	}
	authenticator.SetMetrics(metrics)

	registry := adapter.NewRegistry(time.Duration(cfg.AdapterTimeoutSeconds) * time.Second)

	dispatchService, err := service.NewDispatchService(
		destinationRepo, deliveryRepo, templateRepo, registry, tokenCache, cfg.SendConcurrency, logger,
	)
	if err != nil {
		logger.Fatal("dispatch service init failed", zap.Error(err))
	}
	dispatchService.SetMetrics(metrics)

	templateService, err := service.NewTemplateService(templateRepo, logger)
	if err != nil {
		logger.Fatal("template service init failed", zap.Error(err))
	}
	destinationService, err := service.NewDestinationService(destinationRepo, registry, logger)
	if err != nil {
		logger.Fatal("destination service init failed", zap.Error(err))
	}
	statsService, err := service.NewStatsService(destinationRepo, deliveryRepo, tokenCache, logger)
	if err != nil {
		logger.Fatal("stats service init failed", zap.Error(err))
	}
	accountService, err := service.NewAccountService(accountRepo, logger)
	if err != nil {
		logger.Fatal("account service init failed", zap.Error(err))
	}
	tokenService, err := service.NewTokenService(accountRepo, tokenCache, logger)
	if err != nil {
		logger.Fatal("token service init failed", zap.Error(err))
	}

	limiter, err := infraredis.NewRedisRateLimiter(rdb, cfg.RateLimitPerMin, logger)
	if err != nil {
		logger.Fatal("rate limiter init failed", zap.Error(err))
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: transport.ErrorHandler(logger),
	})
	app.Use(requestid.New())
	app.Use(metrics.HTTPMiddleware())

	handler.RegisterHealthRoutes(app, sqlDB, rdb)
	app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))

	dispatchHandler, err := handler.NewDispatchHandler(dispatchService, templateService, deliveryRepo, statsService)
	if err != nil {
		logger.Fatal("dispatch handler init failed", zap.Error(err))
	}
	templateHandler, err := handler.NewTemplateHandler(templateService)
	if err != nil {
		logger.Fatal("template handler init failed", zap.Error(err))
	}
	destinationHandler, err := handler.NewDestinationHandler(destinationService)
	if err != nil {
		logger.Fatal("destination handler init failed", zap.Error(err))
	}
	accountHandler, err := handler.NewAccountHandler(accountService, tokenService)
	if err != nil {
		logger.Fatal("account handler init failed", zap.Error(err))
	}

	api := app.Group("/api")
	handler.RegisterPublicAccountRoutes(api, accountHandler)

	authed := api.Group("", handler.AuthMiddleware(authenticator))
	handler.RegisterDispatchRoutes(authed, dispatchHandler, handler.RateLimitMiddleware(limiter))
	handler.RegisterTemplateRoutes(authed, templateHandler)
	handler.RegisterDestinationRoutes(authed, destinationHandler)
	handler.RegisterTokenRoutes(authed, accountHandler)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("notify-manager api started", zap.Int("port", cfg.APIPort))
		if err := app.Listen(fmt.Sprintf(":%d", cfg.APIPort)); err != nil {
			logger.Error("api server stopped", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}
