// Package config provides configuration management for the application.
package config

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"hotel-comparables-engine/internal/models"
)

// Config holds all configuration values for the application.
type Config struct {
	// AWS
	AWSRegion    string
	S3Bucket     string
	UploadPrefix string
	ReportPrefix string

	// Database
	DBHost     string
	DBPort     int
	DBName     string
	DBUser     string
	DBPassword string

	// Notifications
	SESSenderEmail   string
	ReportRecipients []string
	ReportWebhookURL string

	// Matching
	RatioBandPolicy string
	OrderingPolicy  string
	ReportWorkers   int

	// Application
	Stage    string
	LogLevel string
	Port     string
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	// Load .env file if it exists (for local development)
	_ = godotenv.Load()

	cfg := &Config{
		// AWS
		AWSRegion:    getEnv("AWS_REGION", "us-east-1"),
		S3Bucket:     getEnv("S3_BUCKET", "hotel-comparables-dev"),
		UploadPrefix: getEnv("UPLOAD_PREFIX", "uploads/"),
		ReportPrefix: getEnv("REPORT_PREFIX", "reports/"),

		// Database
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnvInt("DB_PORT", 5432),
		DBName:     getEnv("DB_NAME", "comparables"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),

		// Notifications
		SESSenderEmail:   getEnv("SES_SENDER_EMAIL", ""),
		ReportRecipients: getEnvList("REPORT_RECIPIENTS"),
		ReportWebhookURL: getEnv("REPORT_WEBHOOK_URL", ""),

		// Matching
		RatioBandPolicy: getEnv("RATIO_BAND_POLICY", string(models.DefaultRatioBandPolicy)),
		OrderingPolicy:  getEnv("ORDERING_POLICY", string(models.DefaultOrderingPolicy)),
		ReportWorkers:   getEnvInt("REPORT_WORKERS", runtime.GOMAXPROCS(0)),

		// Application
		Stage:    getEnv("STAGE", "dev"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		Port:     getEnv("PORT", "8080"),
	}

	if _, _, err := cfg.Policies(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Policies parses the configured ratio band and ordering policies.
func (c *Config) Policies() (models.RatioBandPolicy, models.OrderingPolicy, error) {
	band, err := models.ParseRatioBandPolicy(c.RatioBandPolicy)
	if err != nil {
		return "", "", fmt.Errorf("invalid RATIO_BAND_POLICY: %w", err)
	}
	ordering, err := models.ParseOrderingPolicy(c.OrderingPolicy)
	if err != nil {
		return "", "", fmt.Errorf("invalid ORDERING_POLICY: %w", err)
	}
	return band, ordering, nil
}

// DatabaseURL returns the PostgreSQL connection string.
// DATABASE_URL takes precedence over the individual DB_* settings.
func (c *Config) DatabaseURL() string {
	if url := os.Getenv("DATABASE_URL"); url != "" {
		return url
	}
	sslMode := "require" // Use SSL for RDS
	if c.DBHost == "localhost" || c.DBHost == "127.0.0.1" {
		sslMode = "disable" // Disable SSL for local development
	}
	return "postgres://" + c.DBUser + ":" + c.DBPassword + "@" + c.DBHost + ":" + strconv.Itoa(c.DBPort) + "/" + c.DBName + "?sslmode=" + sslMode
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt retrieves an environment variable as int or returns a default value.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvList splits a comma separated environment variable.
func getEnvList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
