package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Port          string
	MaxUploadMB   int
	DBAutoMigrate bool

	// Database configuration
	DBType               string // mysql, postgres, sqlite, sqlserver
	DBHost               string
	DBPort               string
	DBAppDatabase        string
	DBAppUser            string
	DBAppPassword        string
	DBAppConnectionLimit int

	// Identity configuration
	AuthProvider        string // local, authorizer
	SessionSecret       string
	SessionTTL          time.Duration
	SessionSecureCookie bool
	AuthzURL            string
	AuthzClientID       string

	// Attachment storage
	StorageDriver  string // local, s3
	StorageDir     string
	StorageBaseURL string
	S3Bucket       string
	S3Region       string
	S3Endpoint     string
	S3Prefix       string
	S3PublicURL    string

	// Password reset
	RecaptchaSecretKey string
	RecaptchaRequired  bool
}

// Load loads configuration from environment variables.
// When ENV_FILE is set, that file is loaded first without overriding the process environment.
func Load() (*Config, error) {
	if envFile := os.Getenv("ENV_FILE"); envFile != "" {
		if err := LoadFile(envFile); err != nil {
			return nil, err
		}
	}

	cfg := &Config{
		Port:                 getEnv("PORT", "3000"),
		MaxUploadMB:          getEnvAsInt("MAX_UPLOAD_MB", 10),
		DBAutoMigrate:        getEnvAsBool("DB_AUTO_MIGRATE", true),
		DBType:               strings.ToLower(getEnv("DB_TYPE", "mysql")),
		DBHost:               getEnv("DB_HOST", "localhost"),
		DBPort:               getEnv("DB_PORT", "3306"),
		DBAppDatabase:        getEnv("DB_APP_DATABASE", ""),
		DBAppUser:            getEnv("DB_APP_USER", ""),
		DBAppPassword:        getEnv("DB_APP_PASSWORD", ""),
		DBAppConnectionLimit: getEnvAsInt("DB_APP_CONNECTION_LIMIT", 5),
		AuthProvider:         strings.ToLower(getEnv("AUTH_PROVIDER", "local")),
		SessionSecret:        getEnv("SESSION_SECRET", ""),
		SessionTTL:           getEnvAsDuration("SESSION_TTL", 24*time.Hour),
		SessionSecureCookie:  getEnvAsBool("SESSION_SECURE_COOKIE", false),
		AuthzURL:             getEnv("AUTHZ_URL", ""),
		AuthzClientID:        getEnv("AUTHZ_CLIENT_ID", ""),
		StorageDriver:        strings.ToLower(getEnv("STORAGE_DRIVER", "local")),
		StorageDir:           getEnv("STORAGE_DIR", "./storage"),
		StorageBaseURL:       getEnv("STORAGE_BASE_URL", "/storage"),
		S3Bucket:             getEnv("S3_BUCKET", ""),
		S3Region:             getEnv("S3_REGION", "us-east-1"),
		S3Endpoint:           getEnv("S3_ENDPOINT", ""),
		S3Prefix:             getEnv("S3_PREFIX", ""),
		S3PublicURL:          getEnv("S3_PUBLIC_URL", ""),
		RecaptchaSecretKey:   getEnv("RECAPTCHA_SECRET_KEY", ""),
		RecaptchaRequired:    getEnvAsBool("RECAPTCHA_REQUIRED", true),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFile loads a .env file into the process environment
func LoadFile(path string) error {
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}
	return nil
}

// Validate checks the required fields for the selected drivers
func (cfg *Config) Validate() error {
	if cfg.DBAppDatabase == "" {
		return fmt.Errorf("DB_APP_DATABASE is required")
	}
	if cfg.DBType != "sqlite" && cfg.DBAppUser == "" {
		return fmt.Errorf("DB_APP_USER is required")
	}

	switch cfg.AuthProvider {
	case "local":
		if cfg.SessionSecret == "" {
			return fmt.Errorf("SESSION_SECRET is required for the local auth provider")
		}
	case "authorizer":
		if cfg.AuthzURL == "" {
			return fmt.Errorf("AUTHZ_URL is required")
		}
		if cfg.AuthzClientID == "" {
			return fmt.Errorf("AUTHZ_CLIENT_ID is required")
		}
	default:
		return fmt.Errorf("unsupported auth provider: %s", cfg.AuthProvider)
	}

	switch cfg.StorageDriver {
	case "local":
	case "s3":
		if cfg.S3Bucket == "" {
			return fmt.Errorf("S3_BUCKET is required for the s3 storage driver")
		}
	default:
		return fmt.Errorf("unsupported storage driver: %s", cfg.StorageDriver)
	}

	if cfg.RecaptchaRequired && cfg.RecaptchaSecretKey == "" {
		return fmt.Errorf("RECAPTCHA_SECRET_KEY is required unless RECAPTCHA_REQUIRED=false")
	}

	return nil
}

// MaxUploadBytes is the largest accepted attachment upload
func (cfg *Config) MaxUploadBytes() int {
	return cfg.MaxUploadMB * 1024 * 1024
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
