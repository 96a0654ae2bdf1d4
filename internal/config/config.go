package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	Port string
	Env  string

	// Database
	DatabaseURL string

	// Redis
	RedisURL string

	// Session handles
	SessionSecret string

	// Quiz backend (the external generation API)
	BackendURL        string
	BackendTimeoutSec int
	HealthIntervalSec int
	HealthTimeoutSec  int
	WakeTimeoutSec    int

	// Gemini AI (optional; the backend's generate-content endpoint is
	// the fallback when no key is configured)
	GeminiAPIKey         string
	GeminiConcurrentReqs int

	// Frontend
	FrontendURL string
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	cfg := &Config{
		Port:                 getEnvOrDefault("PORT", "8080"),
		Env:                  getEnvOrDefault("ENV", "development"),
		DatabaseURL:          mustGetEnv("DATABASE_URL"),
		RedisURL:             mustGetEnv("REDIS_URL"),
		SessionSecret:        mustGetEnv("SESSION_SECRET"),
		BackendURL:           mustGetEnv("QUIZ_BACKEND_URL"),
		BackendTimeoutSec:    getEnvAsIntOrDefault("QUIZ_BACKEND_TIMEOUT_SECONDS", 30),
		HealthIntervalSec:    getEnvAsIntOrDefault("HEALTH_POLL_INTERVAL_SECONDS", 60),
		HealthTimeoutSec:     getEnvAsIntOrDefault("HEALTH_POLL_TIMEOUT_SECONDS", 5),
		WakeTimeoutSec:       getEnvAsIntOrDefault("WAKE_TIMEOUT_SECONDS", 60),
		GeminiAPIKey:         getEnvOrDefault("GEMINI_API_KEY", ""),
		GeminiConcurrentReqs: getEnvAsIntOrDefault("GEMINI_CONCURRENT_REQUESTS", 5),
		FrontendURL:          getEnvOrDefault("FRONTEND_URL", "http://localhost:3000"),
	}

	return cfg
}

func mustGetEnv(key string) string {
	val := os.Getenv(key)
	if val == "" {
		panic(fmt.Sprintf("required environment variable %s is not set", key))
	}
	return val
}

func getEnvOrDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func getEnvAsIntOrDefault(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return n
}
