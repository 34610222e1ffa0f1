package internal

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env        string
	Port       int // admin console
	ReaderPort int // public reader site
	LogLevel   string

	// Story API
	APIBaseURL   string
	APITimeout   time.Duration
	APIRateLimit float64 // outbound requests per second, 0 disables
	APIRateBurst int

	// Pagination window sizes
	PaginationLimitTop int
	PaginationLimitEnd int

	// Console view-state sessions
	SessionTTL  time.Duration
	MaxSessions int

	// Inbound per-client rate limit
	RequestRateLimit float64
	RequestRateBurst int

	// Storage Configuration
	StorageProvider string // "local" or "r2"

	// Local Storage (development)
	LocalStoragePath string
	LocalStorageURL  string

	// R2 Storage (production)
	R2AccountID       string
	R2AccessKeyID     string
	R2SecretAccessKey string
	R2BucketName      string
	R2PublicURL       string // Optional custom domain URL

	// Lifetime of presigned picture URLs
	PictureURLTTL time.Duration

	// Metrics endpoint authentication
	// If both are empty, the /metrics endpoint will be unprotected (not recommended)
	MetricsUsername string
	MetricsPassword string
}

func NewConfig() (*Config, error) {
	// Load .env file if it exists (ignored in production)
	_ = godotenv.Load()

	cfg := &Config{
		Env:        getEnv("ENV", "development"),
		Port:       getEnvInt("PORT", 8080),
		ReaderPort: getEnvInt("READER_PORT", 8081),
		LogLevel:   getEnv("LOG_LEVEL", "debug"),

		APITimeout:   getEnvDuration("API_TIMEOUT", 10*time.Second),
		APIRateLimit: getEnvFloat("API_RATE_LIMIT", 20),
		APIRateBurst: getEnvInt("API_RATE_BURST", 40),

		PaginationLimitTop: getEnvInt("PAGINATION_LIMIT_TOP", 2),
		PaginationLimitEnd: getEnvInt("PAGINATION_LIMIT_END", 2),

		SessionTTL:  getEnvDuration("SESSION_TTL", 30*time.Minute),
		MaxSessions: getEnvInt("SESSION_MAX", 1000),

		RequestRateLimit: getEnvFloat("REQUEST_RATE_LIMIT", 10),
		RequestRateBurst: getEnvInt("REQUEST_RATE_BURST", 30),

		// Storage defaults to local filesystem for development
		StorageProvider:  getEnv("STORAGE_PROVIDER", "local"),
		LocalStoragePath: getEnv("LOCAL_STORAGE_PATH", "./storage"),
		LocalStorageURL:  getEnv("LOCAL_STORAGE_URL", "http://localhost:8080/files"),

		// R2 configuration (production only)
		R2AccountID:       getEnv("R2_ACCOUNT_ID", ""),
		R2AccessKeyID:     getEnv("R2_ACCESS_KEY_ID", ""),
		R2SecretAccessKey: getEnv("R2_SECRET_ACCESS_KEY", ""),
		R2BucketName:      getEnv("R2_BUCKET_NAME", ""),
		R2PublicURL:       getEnv("R2_PUBLIC_URL", ""),

		PictureURLTTL: getEnvDuration("PICTURE_URL_TTL", 15*time.Minute),

		// Metrics authentication
		MetricsUsername: getEnv("METRICS_USERNAME", ""),
		MetricsPassword: getEnv("METRICS_PASSWORD", ""),
	}

	cfg.APIBaseURL = os.Getenv("API_BASE_URL")

	if cfg.PaginationLimitTop < 1 || cfg.PaginationLimitEnd < 1 {
		return nil, fmt.Errorf("PAGINATION_LIMIT_TOP and PAGINATION_LIMIT_END must be positive, got %d and %d",
			cfg.PaginationLimitTop, cfg.PaginationLimitEnd)
	}

	if cfg.SessionTTL <= 0 {
		return nil, fmt.Errorf("SESSION_TTL must be positive, got %s", cfg.SessionTTL)
	}
	if cfg.MaxSessions < 1 {
		return nil, fmt.Errorf("SESSION_MAX must be positive, got %d", cfg.MaxSessions)
	}

	// Validate storage configuration
	if cfg.StorageProvider == "r2" {
		if cfg.R2AccountID == "" {
			return nil, fmt.Errorf("R2_ACCOUNT_ID is required when STORAGE_PROVIDER is 'r2'")
		}
		if cfg.R2AccessKeyID == "" {
			return nil, fmt.Errorf("R2_ACCESS_KEY_ID is required when STORAGE_PROVIDER is 'r2'")
		}
		if cfg.R2SecretAccessKey == "" {
			return nil, fmt.Errorf("R2_SECRET_ACCESS_KEY is required when STORAGE_PROVIDER is 'r2'")
		}
		if cfg.R2BucketName == "" {
			return nil, fmt.Errorf("R2_BUCKET_NAME is required when STORAGE_PROVIDER is 'r2'")
		}
	} else if cfg.StorageProvider != "local" {
		return nil, fmt.Errorf("STORAGE_PROVIDER must be either 'local' or 'r2', got: %s", cfg.StorageProvider)
	}

	return cfg, nil
}

// RequireStoryAPI reports an error when the story API is not configured.
// Only the admin console talks to the API; the reader site serves bundled
// data.
func (c *Config) RequireStoryAPI() error {
	if c.APIBaseURL == "" {
		return fmt.Errorf("API_BASE_URL is required")
	}
	return nil
}

// IsDevelopment reports whether ENV is development.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}
