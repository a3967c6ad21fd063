package infra

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"time"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv      string
	Port        string
	DatabaseURL string
	RedisURL    string
	JWTSecret   string
	GeoIPDBPath string

	GeminiAPIKey  string
	GeminiModel   string
	GeminiBaseURL string

	DailyLimit     int64
	PurchasedLimit int64
	DailyBudgetKrw int64
	UsdPerImage    float64
	FxKrwPerUsd    float64
	CostPerCallKrw int64

	PayPalClientID     string
	PayPalClientSecret string
	PayPalEnv          string

	AdminTestKey string

	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
	RateLimitPerMin  int
	MaxBodyBytes     int64
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:      getEnv("APP_ENV", "development"),
		Port:        getEnv("PORT", "8787"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		RedisURL:    os.Getenv("REDIS_URL"),
		JWTSecret:   os.Getenv("JWT_SECRET"),
		GeoIPDBPath: os.Getenv("GEOIP_DB_PATH"),

		GeminiAPIKey:  os.Getenv("GEMINI_API_KEY"),
		GeminiModel:   getEnv("GEMINI_MODEL", "gemini-2.5-flash-image-preview"),
		GeminiBaseURL: getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta"),

		DailyLimit:     int64(getEnvInt("DAILY_LIMIT", 3)),
		PurchasedLimit: int64(getEnvInt("PURCHASED_LIMIT", 20)),
		DailyBudgetKrw: int64(getEnvInt("DAILY_BUDGET_KRW", 10000)),
		UsdPerImage:    getEnvFloat("USD_PER_IMAGE", 0.039),
		FxKrwPerUsd:    getEnvFloat("FX_KRW_PER_USD", 1380),

		PayPalClientID:     os.Getenv("PAYPAL_CLIENT_ID"),
		PayPalClientSecret: os.Getenv("PAYPAL_CLIENT_SECRET"),
		PayPalEnv:          getEnv("PAYPAL_ENV", "sandbox"),

		AdminTestKey: os.Getenv("ADMIN_TEST_KEY"),

		HTTPReadTimeout:  time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout: time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 30)),
		HTTPIdleTimeout:  time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		RateLimitPerMin:  getEnvInt("RATE_LIMIT_PER_MINUTE", 30),
		MaxBodyBytes:     int64(getEnvInt("MAX_BODY_BYTES", 22*1024*1024)),
	}

	// A per-call override wins; otherwise the KRW cost is derived from the
	// provider unit price, rounded up so the budget never under-counts.
	cfg.CostPerCallKrw = int64(getEnvInt("COST_PER_CALL_KRW",
		int(math.Ceil(cfg.UsdPerImage*cfg.FxKrwPerUsd))))

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}
