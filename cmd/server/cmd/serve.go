package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/eventboard/backend/docs"
	"github.com/eventboard/backend/internal/auth/middleware"
	"github.com/eventboard/backend/internal/auth/service"
	"github.com/eventboard/backend/internal/config"
	"github.com/eventboard/backend/internal/database"
	"github.com/eventboard/backend/internal/handlers"
	"github.com/eventboard/backend/internal/logger"
	loggerMiddleware "github.com/eventboard/backend/internal/logger/middleware"
	"github.com/eventboard/backend/internal/metrics"
	"github.com/eventboard/backend/internal/middlewares"
	"github.com/eventboard/backend/internal/repositories"
	"github.com/eventboard/backend/internal/services"
	"github.com/eventboard/backend/internal/storage"
	"github.com/go-chi/chi/v5"
	"github.com/spf13/cobra"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"
)

// serverPort overrides SERVER_PORT when set
var serverPort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Start the HTTP server and begin accepting API requests.

The server will:
- Load configuration from environment variables (and an optional .env file)
- Connect to MongoDB and create the admins and events indexes
- Serve the API under /api, metrics at /metrics and docs at /swagger/
- Handle graceful shutdown on SIGINT/SIGTERM`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServer()
	},
}

func init() {
	// Registered on the root command too, since it runs serve when no subcommand is given
	for _, c := range []*cobra.Command{rootCmd, serveCmd} {
		c.Flags().IntVar(&serverPort, "port", 0, "server port, overrides SERVER_PORT")
	}
}

func runServer() error {
	cfg, appLogger, err := setup()
	if err != nil {
		return err
	}
	defer logger.Sync(appLogger)

	if serverPort != 0 {
		cfg.Server.Port = serverPort
	}

	appLogger.Info("Starting Events API", zap.String("env", cfg.Env))

	client, db, err := connectDatabase(context.Background(), cfg)
	if err != nil {
		appLogger.Error("Failed to connect to database", zap.Error(err))
		return err
	}
	defer disconnect(client, appLogger)

	// Initialize repositories
	adminRepo := repositories.NewAdminRepository(db)
	eventRepo := repositories.NewEventRepository(db)

	indexCtx, cancel := context.WithTimeout(context.Background(), cfg.Mongo.Timeout)
	defer cancel()
	if err := adminRepo.EnsureIndexes(indexCtx); err != nil {
		return err
	}
	if err := eventRepo.EnsureIndexes(indexCtx); err != nil {
		return err
	}

	// Initialize asset store
	store, uploadsDir, err := newAssetStore(cfg)
	if err != nil {
		appLogger.Error("Failed to initialize asset store", zap.Error(err))
		return err
	}
	appLogger.Info("Asset store ready", zap.String("driver", cfg.Storage.Driver))

	// Initialize services
	tokenGenerator := service.NewTokenGenerator(cfg.JWT.Secret, cfg.JWT.Expiry)
	authService := services.NewAuthService(adminRepo, tokenGenerator, appLogger)
	eventService := services.NewEventService(eventRepo, store, appLogger)

	// Initialize handlers
	base := handlers.BaseHandler{Logger: appLogger, Development: cfg.IsDevelopment()}

	router := newRouter(routerDeps{
		cfg:            cfg,
		logger:         appLogger,
		base:           base,
		authHandler:    handlers.NewAuthHandler(authService, base),
		eventHandler:   handlers.NewEventHandler(eventService, base),
		healthHandler:  handlers.NewHealthHandler(database.NewPinger(client), base),
		authMiddleware: middleware.AuthMiddleware(authService),
		uploadsDir:     uploadsDir,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	serverErr := make(chan error, 1)
	go func() {
		appLogger.Info("Server starting", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Wait for interrupt signal or a listener failure
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-serverErr:
		appLogger.Error("Server failed to start", zap.Error(err))
		return err
	case <-quit:
	}

	appLogger.Info("Shutting down server...")

	// Graceful shutdown
	ctx, cancelShutdown := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelShutdown()

	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Error("Server forced to shutdown", zap.Error(err))
	}

	appLogger.Info("Server exited")
	return nil
}

// newAssetStore builds the configured asset store wrapped with image validation.
// The returned directory is non-empty only for the local driver, whose files are served at /uploads.
func newAssetStore(cfg *config.Config) (storage.Store, string, error) {
	var (
		store      storage.Store
		uploadsDir string
	)

	switch cfg.Storage.Driver {
	case config.StorageDriverLocal:
		local, err := storage.NewLocalStore(cfg.Storage.LocalPath, cfg.Storage.Cloudinary.Folder, cfg.Storage.PublicURL)
		if err != nil {
			return nil, "", err
		}
		store, uploadsDir = local, local.BasePath()
	default:
		cloud, err := storage.NewCloudinaryStore(
			cfg.Storage.Cloudinary.CloudName,
			cfg.Storage.Cloudinary.APIKey,
			cfg.Storage.Cloudinary.APISecret,
			cfg.Storage.Cloudinary.Folder,
		)
		if err != nil {
			return nil, "", err
		}
		store = cloud
	}

	return storage.NewImageStore(store, cfg.Image.MaxDimension, cfg.Image.MaxBytes), uploadsDir, nil
}

// routerDeps holds everything newRouter mounts
type routerDeps struct {
	cfg            *config.Config
	logger         *zap.Logger
	base           handlers.BaseHandler
	authHandler    *handlers.AuthHandler
	eventHandler   *handlers.EventHandler
	healthHandler  *handlers.HealthHandler
	authMiddleware func(http.Handler) http.Handler
	uploadsDir     string
}

func newRouter(d routerDeps) chi.Router {
	r := chi.NewRouter()

	// Apply middleware
	r.Use(middlewares.RequestIDMiddleware)
	r.Use(loggerMiddleware.LoggerMiddleware(d.logger))
	r.Use(middlewares.RecoveryMiddleware(d.logger))
	r.Use(middlewares.CORSMiddleware(d.cfg.CORS.AllowedOrigins))
	// Leave room for the multipart envelope around the largest accepted image
	r.Use(middlewares.RequestSizeLimitMiddleware(d.cfg.Image.MaxBytes + 1<<20))
	r.Use(metrics.HTTPMiddleware)

	r.NotFound(d.base.NotFound)

	r.Handle("/metrics", metrics.Handler())

	// Swagger documentation
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL(fmt.Sprintf("http://localhost:%d/swagger/doc.json", d.cfg.Server.Port)),
	))

	if d.uploadsDir != "" {
		r.Handle("/uploads/*", http.StripPrefix("/uploads", http.FileServer(http.Dir(d.uploadsDir))))
	}

	// Scope router to /api
	r.Route("/api", func(r chi.Router) {
		d.healthHandler.RegisterRoutes(r)
		d.authHandler.RegisterRoutes(r, d.authMiddleware)
		d.eventHandler.RegisterRoutes(r, d.authMiddleware)
	})

	return r
}
