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

	// Redis (optional; an in-process cache is used without it)
	RedisURL string

	// Viewer sessions
	SessionSecret      string
	ViewerIdleMinutes  int
	NotificationMillis int
	MaxViewerSessions  int

	// Gemini AI (optional; the sentence-based generator is used without it)
	GeminiAPIKey string
	GeminiModel  string

	// Flashcard service as seen by the viewer
	ServiceURL         string
	GenerateRatePerMin int
	GeminiConcurrency  int
	AllowedOrigins     string

	// Logging
	LogFile string
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	port := getEnvOrDefault("PORT", "8080")
	cfg := &Config{
		Port:               port,
		Env:                getEnvOrDefault("ENV", "development"),
		DatabaseURL:        mustGetEnv("DATABASE_URL"),
		RedisURL:           getEnvOrDefault("REDIS_URL", ""),
		SessionSecret:      mustGetEnv("SESSION_SECRET"),
		ViewerIdleMinutes:  getEnvAsIntOrDefault("VIEWER_IDLE_MINUTES", 60),
		NotificationMillis: getEnvAsIntOrDefault("NOTIFICATION_MS", 5000),
		MaxViewerSessions:  getEnvAsIntOrDefault("MAX_VIEWER_SESSIONS", 1000),
		GeminiAPIKey:       getEnvOrDefault("GEMINI_API_KEY", ""),
		GeminiModel:        getEnvOrDefault("GEMINI_MODEL", "gemini-2.0-flash"),
		ServiceURL:         getEnvOrDefault("SERVICE_URL", "http://localhost:"+port),
		GenerateRatePerMin: getEnvAsIntOrDefault("GENERATE_RATE_PER_MIN", 10),
		GeminiConcurrency:  getEnvAsIntOrDefault("GEMINI_CONCURRENT_REQUESTS", 3),
		AllowedOrigins:     getEnvOrDefault("ALLOWED_ORIGINS", "*"),
		LogFile:            getEnvOrDefault("LOG_FILE", "logs/flashdeck.log"),
	}

	return cfg
}

// IsProduction switches logging to JSON on the console.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
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
