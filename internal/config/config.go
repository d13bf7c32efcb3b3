// Package config provides configuration for the application
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Supported asset storage drivers
const (
	StorageDriverCloudinary = "cloudinary"
	StorageDriverLocal      = "local"
)

// Config holds all configuration for the application
type Config struct {
	Env       string
	Server    ServerConfig
	Logging   LoggingConfig
	CORS      CORSConfig
	Mongo     MongoConfig
	JWT       JWTConfig
	Storage   StorageConfig
	Image     ImageConfig
	SeedAdmin SeedAdminConfig
}

// ServerConfig holds server settings
type ServerConfig struct {
	Port int
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	Level string
}

// CORSConfig holds CORS settings
type CORSConfig struct {
	AllowedOrigins []string
}

// MongoConfig holds document database connection settings
type MongoConfig struct {
	URI      string
	Database string
	Timeout  time.Duration
}

// JWTConfig holds session token settings
type JWTConfig struct {
	Secret string
	Expiry time.Duration
}

// StorageConfig holds asset store settings
type StorageConfig struct {
	Driver     string
	Cloudinary CloudinaryConfig
	LocalPath  string
	PublicURL  string
}

// CloudinaryConfig holds Cloudinary credentials
type CloudinaryConfig struct {
	CloudName string
	APIKey    string
	APISecret string
	Folder    string
}

// ImageConfig holds limits applied to uploaded images
type ImageConfig struct {
	MaxDimension int
	MaxBytes     int64
}

// SeedAdminConfig holds credentials used by the seed-admin command
type SeedAdminConfig struct {
	Username string
	Email    string
	Password string
}

// IsDevelopment reports whether error details may be exposed to clients
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// .env is optional, variables may come from the environment directly
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	cfg := &Config{}

	cfg.Env = getEnv("APP_ENV", "production")
	if cfg.Env != "development" && cfg.Env != "production" {
		return nil, fmt.Errorf("invalid APP_ENV: %q", cfg.Env)
	}

	// Server configuration
	serverPort, err := strconv.Atoi(getEnv("SERVER_PORT", "5000"))
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT: %w", err)
	}
	cfg.Server.Port = serverPort

	// Logging configuration
	cfg.Logging.Level = getEnv("LOG_LEVEL", "info")

	// CORS configuration
	cfg.CORS.AllowedOrigins = parseOrigins(os.Getenv("CORS_ALLOWED_ORIGINS"))

	// MongoDB configuration
	cfg.Mongo.URI = os.Getenv("MONGODB_URI")
	if cfg.Mongo.URI == "" {
		return nil, fmt.Errorf("MONGODB_URI is required")
	}
	cfg.Mongo.Database = getEnv("MONGODB_DATABASE", "events")
	mongoTimeout, err := time.ParseDuration(getEnv("MONGODB_TIMEOUT", "10s"))
	if err != nil {
		return nil, fmt.Errorf("invalid MONGODB_TIMEOUT: %w", err)
	}
	cfg.Mongo.Timeout = mongoTimeout

	// JWT configuration
	cfg.JWT.Secret = os.Getenv("JWT_SECRET")
	if cfg.JWT.Secret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	jwtExpiry, err := time.ParseDuration(getEnv("JWT_EXPIRY", "168h"))
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_EXPIRY: %w", err)
	}
	cfg.JWT.Expiry = jwtExpiry

	// Storage configuration
	cfg.Storage.Driver = getEnv("STORAGE_DRIVER", StorageDriverCloudinary)
	switch cfg.Storage.Driver {
	case StorageDriverCloudinary:
		cfg.Storage.Cloudinary = CloudinaryConfig{
			CloudName: os.Getenv("CLOUDINARY_CLOUD_NAME"),
			APIKey:    os.Getenv("CLOUDINARY_API_KEY"),
			APISecret: os.Getenv("CLOUDINARY_API_SECRET"),
		}
		if cfg.Storage.Cloudinary.CloudName == "" || cfg.Storage.Cloudinary.APIKey == "" || cfg.Storage.Cloudinary.APISecret == "" {
			return nil, fmt.Errorf("CLOUDINARY_CLOUD_NAME, CLOUDINARY_API_KEY and CLOUDINARY_API_SECRET are required for the cloudinary storage driver")
		}
	case StorageDriverLocal:
		cfg.Storage.LocalPath = getEnv("STORAGE_LOCAL_PATH", "./uploads")
		cfg.Storage.PublicURL = strings.TrimRight(
			getEnv("STORAGE_PUBLIC_URL", fmt.Sprintf("http://localhost:%d/uploads", cfg.Server.Port)), "/")
	default:
		return nil, fmt.Errorf("invalid STORAGE_DRIVER: %q", cfg.Storage.Driver)
	}
	cfg.Storage.Cloudinary.Folder = getEnv("CLOUDINARY_FOLDER", "events")

	// Image limits
	maxDimension, err := strconv.Atoi(getEnv("IMAGE_MAX_DIMENSION", "1200"))
	if err != nil || maxDimension <= 0 {
		return nil, fmt.Errorf("invalid IMAGE_MAX_DIMENSION: %q", os.Getenv("IMAGE_MAX_DIMENSION"))
	}
	cfg.Image.MaxDimension = maxDimension

	maxBytes, err := strconv.ParseInt(getEnv("IMAGE_MAX_BYTES", "10485760"), 10, 64) // 10MB
	if err != nil || maxBytes <= 0 {
		return nil, fmt.Errorf("invalid IMAGE_MAX_BYTES: %q", os.Getenv("IMAGE_MAX_BYTES"))
	}
	cfg.Image.MaxBytes = maxBytes

	// Seed admin credentials (optional, used only by seed-admin)
	cfg.SeedAdmin = SeedAdminConfig{
		Username: getEnv("SEED_ADMIN_USERNAME", "admin"),
		Email:    os.Getenv("SEED_ADMIN_EMAIL"),
		Password: os.Getenv("SEED_ADMIN_PASSWORD"),
	}

	return cfg, nil
}

// getEnv returns the value of key or fallback when it is unset or empty
func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// parseOrigins splits a comma-separated origins list.
// An empty list allows all origins.
func parseOrigins(raw string) []string {
	origins := make([]string, 0)
	for _, origin := range strings.Split(raw, ",") {
		origin = strings.TrimSpace(origin)
		if origin != "" {
			origins = append(origins, origin)
		}
	}
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}
