package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setRequiredEnv sets the minimal environment for Load to succeed with the local storage driver
func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("MONGODB_URI", "mongodb://localhost:27017")
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("STORAGE_DRIVER", "local")
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "production", cfg.Env)
	assert.False(t, cfg.IsDevelopment())
	assert.Equal(t, 5000, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, []string{"*"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, "events", cfg.Mongo.Database)
	assert.Equal(t, 10*time.Second, cfg.Mongo.Timeout)
	assert.Equal(t, 168*time.Hour, cfg.JWT.Expiry)
	assert.Equal(t, StorageDriverLocal, cfg.Storage.Driver)
	assert.Equal(t, "./uploads", cfg.Storage.LocalPath)
	assert.Equal(t, "http://localhost:5000/uploads", cfg.Storage.PublicURL)
	assert.Equal(t, "events", cfg.Storage.Cloudinary.Folder)
	assert.Equal(t, 1200, cfg.Image.MaxDimension)
	assert.Equal(t, int64(10*1024*1024), cfg.Image.MaxBytes)
	assert.Equal(t, "admin", cfg.SeedAdmin.Username)
}

func TestLoad_Overrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("APP_ENV", "development")
	t.Setenv("SERVER_PORT", "8080")
	t.Setenv("CORS_ALLOWED_ORIGINS", " https://a.example.com, ,https://b.example.com ")
	t.Setenv("JWT_EXPIRY", "1h")
	t.Setenv("STORAGE_PUBLIC_URL", "https://cdn.example.com/uploads/")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, time.Hour, cfg.JWT.Expiry)
	assert.Equal(t, "https://cdn.example.com/uploads", cfg.Storage.PublicURL)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name          string
		env           map[string]string
		errorContains string
	}{
		{
			name:          "missing mongo uri",
			env:           map[string]string{"MONGODB_URI": ""},
			errorContains: "MONGODB_URI is required",
		},
		{
			name:          "missing jwt secret",
			env:           map[string]string{"JWT_SECRET": ""},
			errorContains: "JWT_SECRET is required",
		},
		{
			name:          "invalid port",
			env:           map[string]string{"SERVER_PORT": "abc"},
			errorContains: "invalid SERVER_PORT",
		},
		{
			name:          "invalid env",
			env:           map[string]string{"APP_ENV": "staging"},
			errorContains: "invalid APP_ENV",
		},
		{
			name:          "invalid jwt expiry",
			env:           map[string]string{"JWT_EXPIRY": "forever"},
			errorContains: "invalid JWT_EXPIRY",
		},
		{
			name:          "unknown storage driver",
			env:           map[string]string{"STORAGE_DRIVER": "s3"},
			errorContains: "invalid STORAGE_DRIVER",
		},
		{
			name:          "cloudinary without credentials",
			env:           map[string]string{"STORAGE_DRIVER": "cloudinary"},
			errorContains: "CLOUDINARY_CLOUD_NAME",
		},
		{
			name:          "invalid image dimension",
			env:           map[string]string{"IMAGE_MAX_DIMENSION": "-5"},
			errorContains: "invalid IMAGE_MAX_DIMENSION",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequiredEnv(t)
			for key, value := range tt.env {
				t.Setenv(key, value)
			}

			cfg, err := Load()
			require.Error(t, err)
			assert.Nil(t, cfg)
			assert.Contains(t, err.Error(), tt.errorContains)
		})
	}
}
