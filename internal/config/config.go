package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration values for the application
type Config struct {
	Port           string
	AllowedOrigins []string
	LogLevel       string
	Environment    string

	DatabaseURL string
	RedisURL    string

	// Identity provider
	JWTSecret   string
	AdminEmails []string

	// Admission control
	EscalatePolicy  LimiterPolicy
	StatsPolicy     LimiterPolicy
	GlobalRateLimit float64 // requests per second across all callers
	GlobalBurst     int

	// Stats cache
	StatsCacheTTL time.Duration
	StoreTimeout  time.Duration
}

// LimiterPolicy is the immutable sliding-window configuration for one route
type LimiterPolicy struct {
	MaxAttempts int
	Window      time.Duration
	Lockout     time.Duration
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	return &Config{
		Port:           getEnv("PORT", "8080"),
		AllowedOrigins: parseList(getEnv("ALLOWED_ORIGINS", "http://localhost:5173,http://localhost:5174")),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		Environment:    getEnv("ENVIRONMENT", "production"),
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		RedisURL:       getEnv("REDIS_URL", ""),
		JWTSecret:      getEnv("JWT_SECRET", ""),
		AdminEmails:    parseList(getEnv("ADMIN_EMAILS", "")),
		EscalatePolicy: LimiterPolicy{
			MaxAttempts: getIntEnv("ESCALATE_MAX_ATTEMPTS", 5),
			Window:      getDurationEnv("ESCALATE_WINDOW", time.Minute),
			Lockout:     getDurationEnv("ESCALATE_LOCKOUT", 5*time.Minute),
		},
		StatsPolicy: LimiterPolicy{
			MaxAttempts: getIntEnv("STATS_MAX_ATTEMPTS", 30),
			Window:      getDurationEnv("STATS_WINDOW", time.Minute),
			Lockout:     getDurationEnv("STATS_LOCKOUT", time.Minute),
		},
		GlobalRateLimit: getFloatEnv("GLOBAL_RATE_LIMIT", 200),
		GlobalBurst:     getIntEnv("GLOBAL_RATE_BURST", 400),
		StatsCacheTTL:   getDurationEnv("STATS_CACHE_TTL", 30*time.Second),
		StoreTimeout:    getDurationEnv("STORE_TIMEOUT", 5*time.Second),
	}, nil
}

// getEnv gets an environment variable with a fallback value
func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// getIntEnv gets an integer environment variable with a fallback value
func getIntEnv(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

// getFloatEnv gets a float environment variable with a fallback value
func getFloatEnv(key string, fallback float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return fallback
}

// getDurationEnv gets a duration environment variable with a fallback value
func getDurationEnv(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return fallback
}

// parseList parses a comma-separated value into a slice
func parseList(raw string) []string {
	if raw == "" {
		return []string{}
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))

	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
