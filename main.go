package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/weatherhelper/weatherbot/internal/bot"
	"github.com/weatherhelper/weatherbot/internal/bot/handlers"
	"github.com/weatherhelper/weatherbot/internal/cache"
	"github.com/weatherhelper/weatherbot/internal/config"
	"github.com/weatherhelper/weatherbot/internal/database"
	"github.com/weatherhelper/weatherbot/internal/logger"
	"github.com/weatherhelper/weatherbot/internal/scheduler"
	"github.com/weatherhelper/weatherbot/internal/services"
	"github.com/weatherhelper/weatherbot/internal/weather"
)

func main() {
	if err := logger.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	if err := godotenv.Load(); err != nil {
		logger.Warn(".env file not found")
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	if err := logger.InitWithConfig(logger.Config{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	}); err != nil {
		logger.Error("failed to initialize logger", "error", err)
		os.Exit(1)
	}
	logger.Info("starting weather helper bot")

	db, err := database.NewPostgresDB(cfg.DB)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	logger.Info("database connection established and migrations completed")

	// Conversation state lives in Redis when one is configured; plain
	// Postgres rows otherwise.
	var store cache.Store
	if cfg.Redis.Host != "" {
		redisStore, err := cache.NewRedisStore(cfg.Redis.Host, cfg.Redis.Port, cfg.Retention)
		if err != nil {
			logger.Error("failed to connect to redis", "error", err)
			os.Exit(1)
		}
		defer redisStore.Close()
		store = redisStore
		logger.Info("conversation state backend: redis")
	} else {
		store = cache.NewDBStore(db)
		logger.Info("conversation state backend: postgres")
	}

	provider := weather.NewClient(cfg.OpenWeatherAPIKey, cfg.ProviderTimeout)
	userService := services.NewUserService(db)
	weatherService := services.NewWeatherService(provider)
	subscriptionService := services.NewSubscriptionService(db)
	logger.Info("services initialized")

	deps := handlers.Dependencies{
		UserService:     userService,
		WeatherSvc:      weatherService,
		SubscriptionSvc: subscriptionService,
		Cache:           store,
	}

	telegramBot, err := bot.NewBot(cfg.TelegramToken, deps)
	if err != nil {
		logger.Error("failed to create bot", "error", err)
		os.Exit(1)
	}

	jobs := scheduler.New(telegramBot.API(), weatherService, subscriptionService, store,
		cfg.SweepInterval, cfg.Retention, cfg.ProviderTimeout)
	if err := jobs.Start(); err != nil {
		logger.Error("failed to start scheduler", "error", err)
		os.Exit(1)
	}
	defer jobs.Stop()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := telegramBot.Start(ctx); err != nil && ctx.Err() == nil {
			logger.Error("bot stopped with error", "error", err)
			stop()
		}
	}()

	logger.Info("bot is running")
	wg.Wait()
	logger.Info("shutdown complete")
}
