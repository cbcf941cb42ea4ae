package config

import (
	"fmt"
	"strings"
	"time"

	"nbu-currency/internal/domain/model"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"
)

type Config struct {
	Server ServerConfig
	Feed   FeedConfig
	Bank   BankConfig
	Log    LogConfig
}

type ServerConfig struct {
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type FeedConfig struct {
	URL             string
	CachePath       string
	Timeout         time.Duration
	RefreshSchedule string
}

type BankConfig struct {
	Base     model.Currency
	Required []model.Currency
}

type LogConfig struct {
	Level      string
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVER_PORT", 8080)
	v.SetDefault("SERVER_READ_TIMEOUT", "5s")
	v.SetDefault("SERVER_WRITE_TIMEOUT", "10s")
	v.SetDefault("SERVER_IDLE_TIMEOUT", "120s")

	v.SetDefault("FEED_URL", "")
	v.SetDefault("FEED_CACHE_PATH", "")
	v.SetDefault("FEED_TIMEOUT", "10s")
	v.SetDefault("REFRESH_SCHEDULE", "@every 1h")

	v.SetDefault("BASE_CURRENCY", string(model.DefaultBase))
	v.SetDefault("REQUIRED_CURRENCIES", "USD,CAD,EUR,GBP,UAH")

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FILE", "")
	v.SetDefault("LOG_MAX_SIZE_MB", 10)
	v.SetDefault("LOG_MAX_BACKUPS", 7)
	v.SetDefault("LOG_MAX_AGE_DAYS", 28)
}

// LoadConfig reads configuration from the environment, after loading a
// .env file when one exists.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port: v.GetInt("SERVER_PORT"),
		},
		Feed: FeedConfig{
			URL:             strings.TrimSpace(v.GetString("FEED_URL")),
			CachePath:       strings.TrimSpace(v.GetString("FEED_CACHE_PATH")),
			RefreshSchedule: strings.TrimSpace(v.GetString("REFRESH_SCHEDULE")),
		},
		Log: LogConfig{
			Level:      v.GetString("LOG_LEVEL"),
			File:       v.GetString("LOG_FILE"),
			MaxSizeMB:  v.GetInt("LOG_MAX_SIZE_MB"),
			MaxBackups: v.GetInt("LOG_MAX_BACKUPS"),
			MaxAgeDays: v.GetInt("LOG_MAX_AGE_DAYS"),
		},
	}

	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return nil, fmt.Errorf("invalid SERVER_PORT: %d", cfg.Server.Port)
	}

	if cfg.Log.MaxSizeMB <= 0 {
		return nil, fmt.Errorf("LOG_MAX_SIZE_MB must be positive, got %d", cfg.Log.MaxSizeMB)
	}
	if cfg.Log.MaxBackups < 0 || cfg.Log.MaxAgeDays < 0 {
		return nil, fmt.Errorf("LOG_MAX_BACKUPS and LOG_MAX_AGE_DAYS must not be negative")
	}

	durations := []struct {
		key string
		dst *time.Duration
	}{
		{"SERVER_READ_TIMEOUT", &cfg.Server.ReadTimeout},
		{"SERVER_WRITE_TIMEOUT", &cfg.Server.WriteTimeout},
		{"SERVER_IDLE_TIMEOUT", &cfg.Server.IdleTimeout},
		{"FEED_TIMEOUT", &cfg.Feed.Timeout},
	}
	for _, d := range durations {
		value, err := parseDuration(v, d.key)
		if err != nil {
			return nil, err
		}
		*d.dst = value
	}

	if _, err := cron.ParseStandard(cfg.Feed.RefreshSchedule); err != nil {
		return nil, fmt.Errorf("invalid REFRESH_SCHEDULE %q: %w", cfg.Feed.RefreshSchedule, err)
	}

	cfg.Bank.Base = model.ParseCurrency(v.GetString("BASE_CURRENCY"))
	if !cfg.Bank.Base.IsValid() {
		return nil, fmt.Errorf("invalid BASE_CURRENCY %q", v.GetString("BASE_CURRENCY"))
	}

	for _, code := range strings.Split(v.GetString("REQUIRED_CURRENCIES"), ",") {
		currency := model.ParseCurrency(code)
		if currency == "" {
			continue
		}
		if !currency.IsValid() {
			return nil, fmt.Errorf("invalid currency %q in REQUIRED_CURRENCIES", code)
		}
		cfg.Bank.Required = append(cfg.Bank.Required, currency)
	}

	return cfg, nil
}

func parseDuration(v *viper.Viper, key string) (time.Duration, error) {
	raw := v.GetString(key)
	value, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid duration for %s (%q): %w", key, raw, err)
	}
	if value <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %s", key, value)
	}
	return value, nil
}
