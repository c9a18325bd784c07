package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	ServerPort string
	GinMode    string
	LogLevel   string
	LogFormat  string

	// One MongoDB deployment per exam environment.
	MongoURIStaging    string
	MongoURIProduction string
	MongoDatabase      string
	MongoPoolSize      uint64

	// RedisURL set to "" disables the report cache.
	RedisURL        string
	MetricsCacheTTL time.Duration

	RequestTimeout     time.Duration
	RateLimitPerMinute int
	BrotliMinLength    int
	// AllowedOrigins controls HTTP CORS. Empty means all origins are permitted.
	AllowedOrigins []string
}

// Load reads configuration from environment variables with sensible defaults.
// A .env file is loaded if present.
func Load() *Config {
	_ = godotenv.Load() // .env is optional

	return &Config{
		ServerPort:         getEnv("SERVER_PORT", "8080"),
		GinMode:            getEnv("GIN_MODE", "debug"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		LogFormat:          getEnv("LOG_FORMAT", "pretty"),
		MongoURIStaging:    getEnv("MONGODB_URI_STAGING", "mongodb://localhost:27017"),
		MongoURIProduction: getEnv("MONGODB_URI_PRODUCTION", "mongodb://localhost:27018"),
		MongoDatabase:      getEnv("MONGODB_DATABASE", "exam-environment"),
		MongoPoolSize:      uint64(getEnvInt("MONGODB_POOL_SIZE", 16)),
		RedisURL:           getEnvAllowEmpty("REDIS_URL", "redis://localhost:6379/0"),
		MetricsCacheTTL:    getEnvDuration("METRICS_CACHE_TTL_MINUTES", 120, time.Minute),
		RequestTimeout:     getEnvDuration("REQUEST_TIMEOUT_SECONDS", 15, time.Second),
		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 60),
		BrotliMinLength:    getEnvInt("BROTLI_MIN_LENGTH", 1024),
		AllowedOrigins:     parseOrigins(getEnv("ALLOWED_ORIGINS", "")),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// getEnvAllowEmpty keeps an explicitly empty value; only an unset variable
// falls back.
func getEnvAllowEmpty(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvDuration(key string, fallback int, unit time.Duration) time.Duration {
	return time.Duration(getEnvInt(key, fallback)) * unit
}

// parseOrigins splits a comma-separated origins string into a trimmed slice.
// Returns nil (allow-all) if the input is empty.
func parseOrigins(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}
