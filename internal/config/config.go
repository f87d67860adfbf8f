package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/weatherhelper/weatherbot/internal/logger"
)

type Config struct {
	TelegramToken     string `validate:"required"`
	OpenWeatherAPIKey string `validate:"required"`
	DefaultLanguage   string `validate:"required,len=2"`

	// ProviderTimeout bounds every geocoding/weather HTTP call.
	ProviderTimeout time.Duration `validate:"required,min=1s"`

	// SweepInterval and Retention drive the background cleanup of
	// abandoned subscription rows and expired conversation state.
	// Retention must stay well above the one-minute push tick.
	SweepInterval time.Duration `validate:"required,min=1m"`
	Retention     time.Duration `validate:"required,min=1h"`

	DB     DBConfig
	Redis  RedisConfig
	Logger LoggerConfig
}

type DBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

// RedisConfig is optional: an empty Host keeps conversation state in
// Postgres rows instead of Redis.
type RedisConfig struct {
	Host string
	Port string
}

type LoggerConfig struct {
	Level      logger.LogLevel
	OutputPath string
	Format     string
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func parseLogLevel(level string) logger.LogLevel {
	switch strings.ToLower(level) {
	case "debug":
		return logger.LevelDebug
	case "info":
		return logger.LevelInfo
	case "warn", "warning":
		return logger.LevelWarn
	case "error":
		return logger.LevelError
	default:
		return logger.LevelInfo
	}
}

func Load() (*Config, error) {
	providerTimeout, err := getEnvDuration("PROVIDER_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}
	sweepInterval, err := getEnvDuration("SWEEP_INTERVAL", 30*time.Minute)
	if err != nil {
		return nil, err
	}
	retention, err := getEnvDuration("STATE_RETENTION", 24*time.Hour)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		TelegramToken:     os.Getenv("TELEGRAM_BOT_TOKEN"),
		OpenWeatherAPIKey: os.Getenv("OPENWEATHER_API_KEY"),
		DefaultLanguage:   getEnvOrDefault("DEFAULT_LANGUAGE", "en"),
		ProviderTimeout:   providerTimeout,
		SweepInterval:     sweepInterval,
		Retention:         retention,
		DB: DBConfig{
			Host:     getEnvOrDefault("DB_HOST", "localhost"),
			Port:     getEnvOrDefault("DB_PORT", "5432"),
			User:     getEnvOrDefault("DB_USER", "postgres"),
			Password: getEnvOrDefault("DB_PASSWORD", "postgres"),
			DBName:   getEnvOrDefault("DB_NAME", "weather_helper"),
		},
		Redis: RedisConfig{
			Host: os.Getenv("REDIS_HOST"),
			Port: getEnvOrDefault("REDIS_PORT", "6379"),
		},
		Logger: LoggerConfig{
			Level:      parseLogLevel(getEnvOrDefault("LOG_LEVEL", "info")),
			OutputPath: getEnvOrDefault("LOG_OUTPUT", "stdout"),
			Format:     getEnvOrDefault("LOG_FORMAT", "json"),
		},
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}
