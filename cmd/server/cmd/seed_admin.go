package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/eventboard/backend/internal/auth/service"
	"github.com/eventboard/backend/internal/logger"
	"github.com/eventboard/backend/internal/repositories"
	"github.com/eventboard/backend/internal/services"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	seedUsername string
	seedEmail    string
	seedPassword string
)

var seedAdminCmd = &cobra.Command{
	Use:   "seed-admin",
	Short: "Create the initial superadmin account",
	Long: `Create a superadmin account unless an admin with the same email already exists.

Credentials are taken from flags, falling back to SEED_ADMIN_USERNAME,
SEED_ADMIN_EMAIL and SEED_ADMIN_PASSWORD.

Examples:
  events-api seed-admin --email admin@example.com --password 's3cret!'`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSeedAdmin(cmd)
	},
}

func init() {
	seedAdminCmd.Flags().StringVar(&seedUsername, "username", "", "admin username (default: SEED_ADMIN_USERNAME or \"admin\")")
	seedAdminCmd.Flags().StringVar(&seedEmail, "email", "", "admin email (default: SEED_ADMIN_EMAIL)")
	seedAdminCmd.Flags().StringVar(&seedPassword, "password", "", "admin password (default: SEED_ADMIN_PASSWORD)")
}

func runSeedAdmin(cmd *cobra.Command) error {
	cfg, appLogger, err := setup()
	if err != nil {
		return err
	}
	defer logger.Sync(appLogger)

	username := firstNonEmpty(seedUsername, cfg.SeedAdmin.Username)
	email := firstNonEmpty(seedEmail, cfg.SeedAdmin.Email)
	password := firstNonEmpty(seedPassword, cfg.SeedAdmin.Password)
	if email == "" || password == "" {
		return errors.New("admin email and password are required (flags or SEED_ADMIN_EMAIL/SEED_ADMIN_PASSWORD)")
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Mongo.Timeout)
	defer cancel()

	client, db, err := connectDatabase(ctx, cfg)
	if err != nil {
		return err
	}
	defer disconnect(client, appLogger)

	adminRepo := repositories.NewAdminRepository(db)
	if err := adminRepo.EnsureIndexes(ctx); err != nil {
		return err
	}

	tokenGenerator := service.NewTokenGenerator(cfg.JWT.Secret, cfg.JWT.Expiry)
	authService := services.NewAuthService(adminRepo, tokenGenerator, appLogger)

	admin, created, err := authService.SeedAdmin(ctx, username, email, password)
	if err != nil {
		return fmt.Errorf("failed to seed admin: %w", err)
	}

	if !created {
		appLogger.Info("Admin already exists", zap.String("email", admin.Email))
		fmt.Fprintf(cmd.OutOrStdout(), "Admin %s already exists\n", admin.Email)
		return nil
	}

	appLogger.Info("Admin created", zap.String("email", admin.Email), zap.String("admin_id", admin.ID.Hex()))
	fmt.Fprintf(cmd.OutOrStdout(), "Created %s %s (%s)\n", admin.Role, admin.Username, admin.Email)
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
