package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port        string
	Environment string
	CORSOrigins string
	// Evaluation backend
	BackendURL string
	APIKey     string
	// Config cache
	CacheMaxAge time.Duration
	CacheDBPath string // empty disables the persisted tier
	// Debug flags
	Debug bool
}

func Load() *Config {
	env := getEnv("ENVIRONMENT", "dev")

	return &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: env,
		CORSOrigins: getEnv("CORS_ORIGINS", "http://localhost:3000"),
		BackendURL:  getEnv("KAAPI_BACKEND_URL", "http://localhost:9090"),
		APIKey:      getEnv("KAAPI_API_KEY", ""),
		CacheMaxAge: getDuration("CACHE_MAX_AGE", 5*time.Minute),
		CacheDBPath: getEnv("CACHE_DB_PATH", "konsole-cache.db"),
		// Debug defaults to true outside prod
		Debug: getEnv("DEBUG", getDefaultDebug(env)) == "true",
	}
}

// getDefaultDebug returns the default debug setting based on environment
func getDefaultDebug(env string) string {
	if env == "prod" {
		return "false"
	}
	return "true"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getDuration reads a duration env var, accepting Go duration strings
// ("5m", "90s") or a bare number of seconds.
func getDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil && d > 0 {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}
