package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/banseok/hajaro"
)

// Config holds all application configuration.
type Config struct {
	// Server settings
	Host        string
	Port        int
	Environment string
	LogLevel    string

	// Database settings
	DBUser     string
	DBPassword string
	DBHost     string
	DBPort     string
	DBName     string

	// Session settings
	SessionDuration time.Duration

	// Email settings
	EmailProvider        string
	EmailPostmarkToken   string
	EmailPostmarkAccount string
	EmailFromAddress     string
	EmailFromName        string
	EmailLoginURL        string

	// Push settings
	PushProvider  string
	PushServerKey string
	PushTimeout   time.Duration

	// Storage settings
	StorageProvider  string
	StorageLocalPath string
	StorageLocalURL  string
	StorageS3Bucket  string
	StorageS3Region  string
	StorageS3BaseURL string

	// Queue settings
	QueueWorkerCount      int
	QueuePollInterval     time.Duration
	QueueJobTimeout       time.Duration
	QueueShutdownTimeout  time.Duration
	QueueCleanupInterval  time.Duration
	QueueCleanupRetention time.Duration
}

// LoadConfig loads configuration from environment variables.
func LoadConfig(getenv func(string) string) (*Config, error) {
	cfg := &Config{
		// Server settings
		Host:        envString(getenv, "SERVER_HOST", "localhost"),
		Port:        envInt(getenv, "SERVER_PORT", 8080),
		Environment: envString(getenv, "ENVIRONMENT", "dev"),
		LogLevel:    envString(getenv, "LOG_LEVEL", "info"),

		// Database settings
		DBUser:     envString(getenv, "DB_USER", "postgres"),
		DBPassword: envString(getenv, "DB_PASSWORD", ""),
		DBHost:     envString(getenv, "DB_HOSTNAME", "localhost"),
		DBPort:     envString(getenv, "DB_PORT", "5432"),
		DBName:     envString(getenv, "DB_NAME", "hajaro"),

		// Session settings
		SessionDuration: envDuration(getenv, "SESSION_DURATION", hajaro.DefaultSessionDuration),

		// Email settings
		EmailProvider:        envString(getenv, "EMAIL_PROVIDER", "mock"),
		EmailPostmarkToken:   envString(getenv, "POSTMARK_SERVER_TOKEN", ""),
		EmailPostmarkAccount: envString(getenv, "POSTMARK_ACCOUNT_TOKEN", ""),
		EmailFromAddress:     envString(getenv, "EMAIL_FROM_ADDRESS", "noreply@example.com"),
		EmailFromName:        envString(getenv, "EMAIL_FROM_NAME", "Hajaro"),
		EmailLoginURL:        envString(getenv, "EMAIL_LOGIN_URL", "http://localhost:8080"),

		// Push settings
		PushProvider:  envString(getenv, "PUSH_PROVIDER", "mock"),
		PushServerKey: envString(getenv, "FCM_SERVER_KEY", ""),
		PushTimeout:   envDuration(getenv, "PUSH_TIMEOUT", 10*time.Second),

		// Storage settings
		StorageProvider:  envString(getenv, "STORAGE_PROVIDER", "local"),
		StorageLocalPath: envString(getenv, "STORAGE_LOCAL_PATH", "./uploads"),
		StorageLocalURL:  envString(getenv, "STORAGE_LOCAL_URL", "http://localhost:8080/uploads"),
		StorageS3Bucket:  envString(getenv, "STORAGE_S3_BUCKET", ""),
		StorageS3Region:  envString(getenv, "STORAGE_S3_REGION", "ap-northeast-2"),
		StorageS3BaseURL: envString(getenv, "STORAGE_S3_BASE_URL", ""),

		// Queue settings
		QueueWorkerCount:      envInt(getenv, "QUEUE_WORKER_COUNT", 3),
		QueuePollInterval:     envDuration(getenv, "QUEUE_POLL_INTERVAL", time.Second),
		QueueJobTimeout:       envDuration(getenv, "QUEUE_JOB_TIMEOUT", 60*time.Second),
		QueueShutdownTimeout:  10 * time.Second,
		QueueCleanupInterval:  time.Hour,
		QueueCleanupRetention: 7 * 24 * time.Hour,
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// DatabaseURL returns the PostgreSQL connection string.
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgresql://%s:%s@%s:%s/%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName)
}

// validate checks production requirements.
func (c *Config) validate() error {
	if c.Environment == "prod" || c.Environment == "production" {
		if c.EmailProvider == "postmark" && c.EmailPostmarkToken == "" {
			return fmt.Errorf("POSTMARK_SERVER_TOKEN must be set when EMAIL_PROVIDER=postmark")
		}
		if c.PushProvider == "fcm" && c.PushServerKey == "" {
			return fmt.Errorf("FCM_SERVER_KEY must be set when PUSH_PROVIDER=fcm")
		}
		if c.StorageProvider == "s3" && c.StorageS3Bucket == "" {
			return fmt.Errorf("STORAGE_S3_BUCKET must be set when STORAGE_PROVIDER=s3")
		}
	}
	return nil
}

// Helper functions for loading environment variables with defaults.

func envString(getenv func(string) string, key, defaultValue string) string {
	if value := getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func envInt(getenv func(string) string, key string, defaultValue int) int {
	if value := getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func envDuration(getenv func(string) string, key string, defaultValue time.Duration) time.Duration {
	if value := getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
