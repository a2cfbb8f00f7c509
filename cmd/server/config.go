package main

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"strconv"

	"github.com/grupoquokka/diagnostico/internal/relay"
	"github.com/grupoquokka/diagnostico/internal/security"
	"github.com/joho/godotenv"
)

// Config is the server configuration read from the environment.
type Config struct {
	Port     string
	GinMode  string
	LogLevel string

	Relay         relay.Config
	ResendBaseURL string

	DataDir         string
	DiagnosticsFile string

	RedisAddr       string
	RedisPassword   string
	RateLimitPerMin int

	AllowedOrigins []string
	EnableHSTS     bool
}

// loadConfig reads an optional .env file and then the environment. Variables
// already set in the environment win over the file.
func loadConfig() Config {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("Failed to load .env file", "error", err)
	}

	return Config{
		Port:     getEnvOrDefault("PORT", "8080"),
		GinMode:  getEnvOrDefault("GIN_MODE", "release"),
		LogLevel: getEnvOrDefault("LOG_LEVEL", "info"),

		Relay: relay.Config{
			APIKey: os.Getenv("RESEND_API_KEY"),
			From:   os.Getenv("EMAIL_FROM"),
			To:     os.Getenv("EMAIL_TO"),
		},
		ResendBaseURL: getEnvOrDefault("RESEND_BASE_URL", relay.DefaultResendURL),

		DataDir:         os.Getenv("DATA_DIR"),
		DiagnosticsFile: os.Getenv("DIAGNOSTICS_FILE"),

		RedisAddr:       os.Getenv("REDIS_ADDR"),
		RedisPassword:   os.Getenv("REDIS_PASSWORD"),
		RateLimitPerMin: getEnvInt("RATE_LIMIT_PER_MIN", 10),

		AllowedOrigins: security.ParseOrigins(os.Getenv("ALLOWED_ORIGINS")),
		EnableHSTS:     os.Getenv("ENABLE_HSTS") == "true",
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		slog.Warn("Ignoring invalid integer setting", "key", key, "value", raw)
		return defaultValue
	}
	return n
}
