package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/eventboard/backend/internal/config"
	"github.com/eventboard/backend/internal/database"
	"github.com/eventboard/backend/internal/logger"
	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

var (
	// Global flags
	logLevel string

	// rootCmd represents the base command when called without any subcommands
	rootCmd = &cobra.Command{
		Use:   "events-api",
		Short: "Events API - admin backend for promotional events",
		Long: `Events API serves a REST backend for managing events and their images.

Admins authenticate with a bearer token to create, update, delete and toggle events.
Event images are kept in Cloudinary, or on the local filesystem during development.`,
		SilenceUsage: true,
		// Run the serve command by default if no subcommand is specified
		RunE: func(cmd *cobra.Command, args []string) error {
			return serveCmd.RunE(cmd, args)
		},
	}
)

// Execute adds all child commands to the root command and runs it.
// This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error), overrides LOG_LEVEL")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(seedAdminCmd)
}

// setup loads configuration and builds the logger shared by all commands
func setup() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}

	appLogger, err := logger.New(cfg.Logging.Level, cfg.IsDevelopment())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return cfg, appLogger, nil
}

// connectDatabase connects to MongoDB and returns the client with the configured database
func connectDatabase(ctx context.Context, cfg *config.Config) (*mongo.Client, *mongo.Database, error) {
	client, err := database.Connect(ctx, cfg.Mongo.URI, cfg.Mongo.Timeout)
	if err != nil {
		return nil, nil, err
	}
	return client, client.Database(cfg.Mongo.Database), nil
}

// disconnect closes the MongoDB client, logging any failure
func disconnect(client *mongo.Client, appLogger *zap.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := client.Disconnect(ctx); err != nil {
		appLogger.Error("failed to disconnect from database", zap.Error(err))
	}
}

