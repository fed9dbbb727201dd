package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName          string
	AppEnv           string
	AppPort          string
	DatabaseURL      string
	RedisURL         string
	JWTSecret        string
	JWTTTL           time.Duration
	BcryptCost       int
	KPICacheTTL      time.Duration
	RetentionDays    int
	AuthRateLimit    int
	AuthRateWindow   time.Duration
	ExportRowLimit   int
	DefaultPageSize  int
	ActivityPageSize int
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("BULLETIN")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "Bulletin API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("jwt.ttl", "24h")
	v.SetDefault("bcrypt.cost", 12)
	v.SetDefault("kpi.cache_ttl", "5m")
	v.SetDefault("activity.retention_days", 90)
	v.SetDefault("auth.rate_limit", 10)
	v.SetDefault("auth.rate_window", "1m")
	v.SetDefault("export.row_limit", 1000)
	v.SetDefault("page.size", 10)
	v.SetDefault("activity.page_size", 50)

	jwtTTL, err := time.ParseDuration(v.GetString("jwt.ttl"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid jwt ttl: %w", err)
	}

	cacheTTL, err := time.ParseDuration(v.GetString("kpi.cache_ttl"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid kpi cache ttl: %w", err)
	}

	rateWindow, err := time.ParseDuration(v.GetString("auth.rate_window"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid auth rate window: %w", err)
	}

	cfg := Config{
		AppName:          v.GetString("app.name"),
		AppEnv:           v.GetString("app.env"),
		AppPort:          v.GetString("app.port"),
		DatabaseURL:      v.GetString("database.url"),
		RedisURL:         v.GetString("redis.url"),
		JWTSecret:        v.GetString("jwt.secret"),
		JWTTTL:           jwtTTL,
		BcryptCost:       v.GetInt("bcrypt.cost"),
		KPICacheTTL:      cacheTTL,
		RetentionDays:    v.GetInt("activity.retention_days"),
		AuthRateLimit:    v.GetInt("auth.rate_limit"),
		AuthRateWindow:   rateWindow,
		ExportRowLimit:   v.GetInt("export.row_limit"),
		DefaultPageSize:  v.GetInt("page.size"),
		ActivityPageSize: v.GetInt("activity.page_size"),
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}

	if cfg.RetentionDays <= 0 {
		cfg.RetentionDays = 90
	}

	if cfg.BcryptCost <= 0 {
		cfg.BcryptCost = 12
	}

	return cfg, nil
}
