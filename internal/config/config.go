package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port        string
	Environment string
	DatabaseURL string
	DBMaxConns  int
	DBMinConns  int
	AuthURL     string
	JWKSURL     string // Constructed from AuthURL + /auth/v1/.well-known/jwks.json
	JWTSecret   string // HS256 secret for local development; used instead of JWKS when set
	CORSOrigins string
	TablePrefix string
	AutoMigrate bool
	// Logging
	LogDir      string // Empty disables file logging
	LogMaxFiles int
	// Chat
	ChatHistoryLimit int // Messages returned per list call
	// Debug flags
	Debug bool
}

func Load() *Config {
	env := getEnv("ENVIRONMENT", "dev")
	authURL := getEnv("AUTH_URL", "")

	return &Config{
		Port:             getEnv("PORT", "8080"),
		Environment:      env,
		DatabaseURL:      getEnv("DATABASE_URL", ""),
		DBMaxConns:       getEnvInt("DB_MAX_CONNS", 25),
		DBMinConns:       getEnvInt("DB_MIN_CONNS", 5),
		AuthURL:          authURL,
		JWKSURL:          authURL + "/auth/v1/.well-known/jwks.json",
		JWTSecret:        getEnv("JWT_SECRET", ""),
		CORSOrigins:      getEnv("CORS_ORIGINS", "http://localhost:3000"),
		TablePrefix:      getTablePrefix(env),
		AutoMigrate:      getEnv("AUTO_MIGRATE", getDefaultDebug(env)) == "true",
		LogDir:           getEnv("LOG_DIR", ""),
		LogMaxFiles:      getEnvInt("LOG_MAX_FILES", 10),
		ChatHistoryLimit: getEnvInt("CHAT_HISTORY_LIMIT", DefaultChatHistoryLimit),
		// Debug flags - default to true in dev/test, false in production
		Debug: getEnv("DEBUG", getDefaultDebug(env)) == "true",
	}
}

// ShutdownTimeout bounds graceful shutdown of the HTTP server.
const ShutdownTimeout = 10 * time.Second

// getDefaultDebug returns the default debug setting based on environment
func getDefaultDebug(env string) string {
	if env == "prod" {
		return "false"
	}
	return "true"
}

// getTablePrefix returns the table prefix based on environment
func getTablePrefix(env string) string {
	// Allow manual override via TABLE_PREFIX env var
	if prefix := os.Getenv("TABLE_PREFIX"); prefix != "" {
		return prefix
	}

	switch env {
	case "prod":
		return "prod_"
	case "test":
		return "test_"
	default:
		return "dev_"
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		return defaultValue
	}
	return n
}
