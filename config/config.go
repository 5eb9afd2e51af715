// Package config loads application configuration from environment
// variables, with .env support via godotenv.
package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        int
	Environment string // "development" | "production"

	MongoURI string
	MongoDB  string

	JWTSecret        string
	JWTRefreshSecret string

	UploadDir   string
	MaxUploadMB int64

	AllowedOrigins []string

	// Path to a Firebase service-account file; empty disables push.
	FirebaseCredentials string
}

func Load() *Config {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	return &Config{
		Port:        getEnvInt("PORT", 8080),
		Environment: getEnv("ENVIRONMENT", "development"),

		MongoURI: getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:  getEnv("MONGO_DB", "civicpulse"),

		JWTSecret:        getEnv("JWT_SECRET_KEY", "dev-secret-change-in-production"),
		JWTRefreshSecret: getEnv("JWT_REFRESH_SECRET_KEY", "dev-refresh-secret"),

		UploadDir:   getEnv("UPLOAD_DIR", "./uploads"),
		MaxUploadMB: int64(getEnvInt("MAX_UPLOAD_MB", 8)),

		AllowedOrigins: strings.Split(getEnv("ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:5173"), ","),

		FirebaseCredentials: getEnv("FIREBASE_CREDENTIALS", ""),
	}
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
