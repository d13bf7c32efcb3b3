package cmd

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/eventboard/backend/internal/auth/middleware"
	"github.com/eventboard/backend/internal/auth/service"
	"github.com/eventboard/backend/internal/config"
	"github.com/eventboard/backend/internal/handlers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type okPinger struct{}

func (okPinger) Ping(ctx context.Context) error { return nil }

func newTestRouter(t *testing.T, uploadsDir string) http.Handler {
	t.Helper()
	cfg := &config.Config{
		Server: config.ServerConfig{Port: 5000},
		CORS:   config.CORSConfig{AllowedOrigins: []string{"*"}},
		Image:  config.ImageConfig{MaxDimension: 1200, MaxBytes: 1 << 20},
	}
	base := handlers.BaseHandler{Logger: zap.NewNop()}
	tokenGenerator := service.NewTokenGenerator("test-secret", time.Hour)

	return newRouter(routerDeps{
		cfg:            cfg,
		logger:         zap.NewNop(),
		base:           base,
		authHandler:    handlers.NewAuthHandler(nil, base),
		eventHandler:   handlers.NewEventHandler(nil, base),
		healthHandler:  handlers.NewHealthHandler(okPinger{}, base),
		authMiddleware: middleware.AuthMiddleware(tokenVerifier{tokenGenerator}),
		uploadsDir:     uploadsDir,
	})
}

// tokenVerifier adapts TokenGenerator to the middleware interface
type tokenVerifier struct {
	tg *service.TokenGenerator
}

func (v tokenVerifier) VerifyToken(token string) (*service.Claims, error) {
	return v.tg.ValidateToken(token)
}

func TestRouter(t *testing.T) {
	uploadsDir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(uploadsDir, "events"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(uploadsDir, "events", "poster.txt"), []byte("poster"), 0644))

	router := newTestRouter(t, uploadsDir)

	tests := []struct {
		name           string
		method         string
		path           string
		expectedStatus int
		expectedBody   string
	}{
		{name: "health", method: http.MethodGet, path: "/api/health", expectedStatus: http.StatusOK, expectedBody: "Server is running"},
		{name: "unknown route", method: http.MethodGet, path: "/api/nope", expectedStatus: http.StatusNotFound, expectedBody: "Route not found"},
		{name: "unknown top-level route", method: http.MethodGet, path: "/nope", expectedStatus: http.StatusNotFound, expectedBody: "Route not found"},
		{name: "create requires token", method: http.MethodPost, path: "/api/events", expectedStatus: http.StatusUnauthorized, expectedBody: "Not authorized, no token"},
		{name: "delete requires token", method: http.MethodDelete, path: "/api/events/abc", expectedStatus: http.StatusUnauthorized},
		{name: "toggle requires token", method: http.MethodPatch, path: "/api/events/abc/toggle-active", expectedStatus: http.StatusUnauthorized},
		{name: "me requires token", method: http.MethodGet, path: "/api/auth/me", expectedStatus: http.StatusUnauthorized},
		{name: "metrics", method: http.MethodGet, path: "/metrics", expectedStatus: http.StatusOK, expectedBody: "go_goroutines"},
		{name: "local uploads", method: http.MethodGet, path: "/uploads/events/poster.txt", expectedStatus: http.StatusOK, expectedBody: "poster"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
			if tt.expectedBody != "" {
				assert.Contains(t, w.Body.String(), tt.expectedBody)
			}
		})
	}
}

func TestRouter_UploadsOnlyForLocalStore(t *testing.T) {
	router := newTestRouter(t, "")

	req := httptest.NewRequest(http.MethodGet, "/uploads/events/poster.txt", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), "Route not found"))
}

func TestNewAssetStore_Local(t *testing.T) {
	cfg := &config.Config{
		Storage: config.StorageConfig{
			Driver:     config.StorageDriverLocal,
			LocalPath:  t.TempDir(),
			PublicURL:  "http://localhost:5000/uploads",
			Cloudinary: config.CloudinaryConfig{Folder: "events"},
		},
		Image: config.ImageConfig{MaxDimension: 1200, MaxBytes: 1 << 20},
	}

	store, uploadsDir, err := newAssetStore(cfg)

	require.NoError(t, err)
	assert.NotNil(t, store)
	assert.Equal(t, cfg.Storage.LocalPath, uploadsDir)
}

func TestFirstNonEmpty(t *testing.T) {
	assert.Equal(t, "flag", firstNonEmpty("flag", "env"))
	assert.Equal(t, "env", firstNonEmpty("", "env"))
	assert.Equal(t, "", firstNonEmpty("", ""))
}
