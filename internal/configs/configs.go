package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

type Config struct {
	AppURL                 string
	DatabaseDSN            string
	MinimumWagePerHour     decimal.Decimal
	GracePeriod            time.Duration
	BonusFeeRate           decimal.Decimal
	RateLimit              int
	MarketplaceEndpoint    string
	MarketplaceSandbox     string
	RedisAddr              string
	RedisLockKey           string
	RunLockEnabled         bool
	SMTPHost               string
	SMTPPort               int
	SMTPUser               string
	SMTPPassword           string
	AdminEmail             string
	ShutdownTimeoutSeconds int
}

func Load() Config {
	appHost := getEnv("APP_HOST", "127.0.0.1")
	appPort := getEnv("APP_PORT", "8080")
	redisHost := getEnv("REDIS_HOST", "127.0.0.1")
	redisPort := getEnv("REDIS_PORT", "6379")

	cfg := Config{
		AppURL:                 fmt.Sprintf("%s:%s", appHost, appPort),
		DatabaseDSN:            getEnv("DATABASE_DSN", "fairwork.db"),
		MinimumWagePerHour:     getEnvAsDecimal("MINIMUM_WAGE_PER_HOUR", "11.00"),
		GracePeriod:            time.Duration(getEnvAsInt("GRACE_PERIOD_HOURS", 0)) * time.Hour,
		BonusFeeRate:           getEnvAsDecimal("BONUS_FEE_RATE", "0.20"),
		RateLimit:              getEnvAsInt("RATE_LIMIT_PER_MINUTE", 60),
		MarketplaceEndpoint:    getEnv("MARKETPLACE_ENDPOINT", "https://marketplace.example.com/v1"),
		MarketplaceSandbox:     getEnv("MARKETPLACE_SANDBOX_ENDPOINT", "https://sandbox.marketplace.example.com/v1"),
		RedisAddr:              fmt.Sprintf("%s:%s", redisHost, redisPort),
		RedisLockKey:           getEnv("REDIS_LOCK_KEY", "fairwork_run_lock"),
		RunLockEnabled:         getEnvAsBool("RUN_LOCK_ENABLED", false),
		SMTPHost:               getEnv("SMTP_HOST", ""),
		SMTPPort:               getEnvAsInt("SMTP_PORT", 587),
		SMTPUser:               getEnv("SMTP_USER", ""),
		SMTPPassword:           getEnv("SMTP_PASSWORD", ""),
		AdminEmail:             getEnv("ADMIN_EMAIL", "fairwork@localhost"),
		ShutdownTimeoutSeconds: getEnvAsInt("SHUTDOWN_TIMEOUT_SECONDS", 20),
	}

	validate(cfg)
	return cfg
}

func validate(cfg Config) {
	if cfg.AppURL == "" {
		log.Fatal("APP_URL must not be empty (e.g. 127.0.0.1:8080)")
	}
	if cfg.DatabaseDSN == "" {
		log.Fatal("DATABASE_DSN must not be empty")
	}
	if !cfg.MinimumWagePerHour.IsPositive() {
		log.Fatal("MINIMUM_WAGE_PER_HOUR must be greater than 0")
	}
	if cfg.GracePeriod < 0 {
		log.Fatal("GRACE_PERIOD_HOURS must not be negative")
	}
	if cfg.BonusFeeRate.IsNegative() {
		log.Fatal("BONUS_FEE_RATE must not be negative")
	}
	if cfg.RateLimit <= 0 {
		log.Fatal("RATE_LIMIT_PER_MINUTE must be greater than 0")
	}
}

func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err != nil {
			log.Fatalf("invalid integer value for %s", key)
		}
		return i
	}
	return defaultVal
}

func getEnvAsBool(key string, defaultVal bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			log.Fatalf("invalid boolean value for %s", key)
		}
		return b
	}
	return defaultVal
}

func getEnvAsDecimal(key, defaultVal string) decimal.Decimal {
	raw := getEnv(key, defaultVal)
	d, err := decimal.NewFromString(raw)
	if err != nil {
		log.Fatalf("invalid decimal value for %s", key)
	}
	return d
}
