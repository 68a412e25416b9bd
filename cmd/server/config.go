package main

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// config is the server configuration read from the environment.
type config struct {
	DatabaseURL       string
	Port              string
	LogLevel          string
	Env               string
	JWTSecret         string
	DBMaxConns        int
	CompressThreshold int
	AutoMigrate       bool
	ShutdownTimeout   time.Duration
	PoolStatsInterval time.Duration
}

// loadConfig reads an optional .env file, then the environment. Variables
// already set in the environment win over the file.
func loadConfig() (config, error) {
	_ = godotenv.Load()

	cfg := config{
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		Port:              getEnv("APP_PORT", "8080"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		Env:               getEnv("APP_ENV", "development"),
		JWTSecret:         os.Getenv("JWT_SECRET"),
		DBMaxConns:        getEnvInt("DB_MAX_CONNS", 20),
		CompressThreshold: getEnvInt("JOURNAL_COMPRESS_THRESHOLD", 2048),
		AutoMigrate:       getEnv("DB_AUTO_MIGRATE", "false") == "true",
		ShutdownTimeout:   getEnvDuration("SHUTDOWN_TIMEOUT", 30*time.Second),
		PoolStatsInterval: getEnvDuration("POOL_STATS_INTERVAL", time.Minute),
	}

	if cfg.DatabaseURL == "" {
		return config{}, fmt.Errorf("required environment variable DATABASE_URL not set")
	}
	if cfg.JWTSecret == "" {
		if cfg.Env != "development" {
			return config{}, fmt.Errorf("required environment variable JWT_SECRET not set")
		}
		cfg.JWTSecret = "dev-secret-change-me"
	}
	return cfg, nil
}

func (c config) development() bool { return c.Env == "development" }

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var result int
		if _, err := fmt.Sscanf(value, "%d", &result); err == nil {
			return result
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
