package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	// ListenPort is fixed; the page is always served on it.
	ListenPort = 8181

	PoolMinConns = 1
	PoolMaxConns = 10
)

type Config struct {
	DatabaseHost     string
	DatabasePort     string
	DatabaseName     string
	DatabaseUser     string
	DatabasePassword string
	DatabaseSSLMode  string
	ConnectAttempts  int
	ConnectDelay     time.Duration
	DeployTime       string
	AppID            string
	StudentName      string
	RateLimit        int
	RateLimitWindow  time.Duration
	LogLevel         string
}

func Load() *Config {
	return &Config{
		DatabaseHost:     getEnv("DATABASE_HOST", "localhost"),
		DatabasePort:     getEnv("DATABASE_PORT", "5432"),
		DatabaseName:     getEnv("DATABASE_NAME", "devopsdb"),
		DatabaseUser:     getEnv("DATABASE_USER", "devopsuser"),
		DatabasePassword: getEnv("DATABASE_PASSWORD", "devopspass"),
		DatabaseSSLMode:  getEnv("DATABASE_SSLMODE", "prefer"),
		ConnectAttempts:  getEnvInt("DATABASE_CONNECT_ATTEMPTS", 10),
		ConnectDelay:     getEnvDuration("DATABASE_CONNECT_DELAY", 3*time.Second),
		DeployTime:       getEnv("DEPLOY_TIME", ""),
		AppID:            getEnv("HOSTNAME", "N/A"),
		StudentName:      getEnv("STUDENT_NAME", "dik"),
		RateLimit:        getEnvInt("RATE_LIMIT", 0),
		RateLimitWindow:  getEnvDuration("RATE_LIMIT_WINDOW", time.Minute),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
	}
}

// LoadDotEnv populates the environment from .env style files. Variables that
// are already set win over file values.
func LoadDotEnv(files ...string) error {
	if err := godotenv.Load(files...); err != nil {
		return fmt.Errorf("load env file: %w", err)
	}
	return nil
}

func (c *Config) ListenAddr() string {
	return fmt.Sprintf(":%d", ListenPort)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
