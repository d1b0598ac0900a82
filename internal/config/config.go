package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Config holds all runtime settings, loaded from the environment with an
// optional .env file for local development.
type Config struct {
	Port        string
	MongoURI    string
	DBName      string
	JWTSecret   string
	TokenExpiry time.Duration
	UploadDir   string
	CORSOrigin  string
}

// LoadConfig reads configuration from the environment. Missing optional
// values fall back to development defaults.
func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		logrus.Info("No .env file found, reading configuration from environment")
	}

	return &Config{
		Port:        getEnv("PORT", "8080"),
		MongoURI:    getEnv("MONGO_URI", "mongodb://localhost:27017"),
		DBName:      getEnv("DB_NAME", "chatfun"),
		JWTSecret:   getEnv("JWT_SECRET", "dev-secret"),
		TokenExpiry: getDurationHours("TOKEN_EXPIRY_HOURS", 72),
		UploadDir:   getEnv("UPLOAD_DIR", "./uploads"),
		CORSOrigin:  getEnv("CORS_ORIGIN", "http://localhost:3000"),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getDurationHours(key string, fallback int) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return time.Duration(fallback) * time.Hour
	}
	hours, err := strconv.Atoi(value)
	if err != nil {
		logrus.WithField(key, value).Warn("Invalid duration value, using default")
		return time.Duration(fallback) * time.Hour
	}
	return time.Duration(hours) * time.Hour
}
