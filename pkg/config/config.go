package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort  string
	Environment string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	NatsURL string

	StorageBucket      string
	StorageProject     string
	StorageCredentials string

	RealtimeAppKey string
	RealtimeSecret string

	JWTSecret     string
	MaxUploadSize int64
}

func Load() (*Config, error) {
	godotenv.Load()

	config := &Config{
		ServerPort:  getEnv("SERVER_PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "teamline"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "teamline"),

		NatsURL: getEnv("NATS_URL", "nats://localhost:4222"),

		StorageBucket:      getEnv("STORAGE_BUCKET", ""),
		StorageProject:     getEnv("STORAGE_PROJECT_ID", ""),
		StorageCredentials: getEnv("STORAGE_CREDENTIALS_PATH", ""),

		RealtimeAppKey: getEnv("REALTIME_APP_KEY", "teamline-dev"),
		RealtimeSecret: getEnv("REALTIME_SECRET", ""),

		JWTSecret:     getEnv("JWT_SECRET", ""),
		MaxUploadSize: getEnvAsInt64("MAX_UPLOAD_SIZE", 10*1024*1024),
	}

	if config.RealtimeSecret == "" {
		return nil, fmt.Errorf("REALTIME_SECRET is required")
	}
	if config.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	return config, nil
}

// DatabaseDSN assembles the Postgres connection string from the DB_* parts.
func (c *Config) DatabaseDSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName)
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value, exists := os.LookupEnv(key); exists {
		intValue, err := strconv.ParseInt(value, 10, 64)
		if err == nil {
			return intValue
		}
	}
	return defaultValue
}
