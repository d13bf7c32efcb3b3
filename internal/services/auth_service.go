package services

import (
	"context"
	"errors"
	"strings"

	"github.com/eventboard/backend/internal/apperrors"
	"github.com/eventboard/backend/internal/auth/service"
	"github.com/eventboard/backend/internal/metrics"
	"github.com/eventboard/backend/internal/models"
	"github.com/eventboard/backend/internal/repositories"
	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// AdminRepository is the interface that wraps methods for admins collection data access
type AdminRepository interface {
	// Method Create inserts a new admin and assigns its ID and timestamps.
	//
	// If the email or username is already taken, an error wrapping repositories.ErrDuplicate is returned.
	Create(ctx context.Context, admin *models.Admin) error
	// Method GetByEmail retrieves an admin by email.
	//
	// If no admin has this email, repositories.ErrNotFound is returned together with "nil" value.
	GetByEmail(ctx context.Context, email string) (*models.Admin, error)
	// Method GetByID retrieves an admin by ID.
	//
	// Please reference GetByEmail method for more information about error values.
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Admin, error)
	// Method ExistsByEmailOrUsername checks whether the email or the username is already registered.
	ExistsByEmailOrUsername(ctx context.Context, email, username string) (bool, error)
	// Method UpdatePassword replaces the password hash of the admin with the given ID.
	//
	// If no admin has this ID, repositories.ErrNotFound is returned.
	UpdatePassword(ctx context.Context, id primitive.ObjectID, passwordHash string) error
}

const invalidCredentialsMessage = "Invalid credentials"

type authService struct {
	adminRepo      AdminRepository
	tokenGenerator *service.TokenGenerator
	validate       *validator.Validate
	logger         *zap.Logger
	bcryptCost     int
	// dummyHash is compared against when the email is unknown so both login failures cost the same
	dummyHash []byte
}

// NewAuthService creates a new auth service
func NewAuthService(adminRepo AdminRepository, tokenGenerator *service.TokenGenerator, logger *zap.Logger) *authService {
	return newAuthService(adminRepo, tokenGenerator, logger, bcrypt.DefaultCost)
}

func newAuthService(adminRepo AdminRepository, tokenGenerator *service.TokenGenerator, logger *zap.Logger, cost int) *authService {
	dummyHash, err := bcrypt.GenerateFromPassword([]byte("dummy-password-for-timing"), cost)
	if err != nil {
		// GenerateFromPassword only fails for invalid costs or passwords over 72 bytes
		panic(err)
	}
	return &authService{
		adminRepo:      adminRepo,
		tokenGenerator: tokenGenerator,
		validate:       newValidator(),
		logger:         logger,
		bcryptCost:     cost,
		dummyHash:      dummyHash,
	}
}

// Register creates a new admin account
//
// Username and email must be unused. Role defaults to "admin".
// The returned admin carries only the password hash, which is never serialized.
func (s *authService) Register(ctx context.Context, req *models.RegisterRequest) (*models.Admin, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = normalizeEmail(req.Email)
	if req.Role == "" {
		req.Role = models.RoleAdmin
	}

	if err := validateStruct(s.validate, req); err != nil {
		return nil, err
	}

	exists, err := s.adminRepo.ExistsByEmailOrUsername(ctx, req.Email, req.Username)
	if err != nil {
		s.logger.Error("failed to check admin existence", zap.Error(err))
		return nil, apperrors.Unexpected("Failed to register admin", err)
	}
	if exists {
		return nil, apperrors.Validation("Admin with this email or username already exists")
	}

	hash, err := s.hashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	admin := &models.Admin{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: string(hash),
		Role:         req.Role,
	}
	if err := s.adminRepo.Create(ctx, admin); err != nil {
		// Lost a race with a concurrent registration
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, apperrors.Validation("Admin with this email or username already exists")
		}
		s.logger.Error("failed to create admin", zap.Error(err))
		return nil, apperrors.Unexpected("Failed to register admin", err)
	}

	s.logger.Info("admin registered", zap.String("admin_id", admin.ID.Hex()), zap.String("role", string(admin.Role)))
	return admin, nil
}

// Login verifies credentials and issues a session token
//
// Unknown email and wrong password fail with the same AuthError message.
func (s *authService) Login(ctx context.Context, req *models.LoginRequest) (*models.AuthResponse, error) {
	req.Email = normalizeEmail(req.Email)
	if err := validateStruct(s.validate, req); err != nil {
		return nil, err
	}

	admin, err := s.adminRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(req.Password))
			metrics.LoginAttempts.WithLabelValues("rejected").Inc()
			return nil, apperrors.Auth(invalidCredentialsMessage)
		}
		s.logger.Error("failed to get admin by email", zap.Error(err))
		return nil, apperrors.Unexpected("Failed to login", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(req.Password)); err != nil {
		metrics.LoginAttempts.WithLabelValues("rejected").Inc()
		return nil, apperrors.Auth(invalidCredentialsMessage)
	}

	token, err := s.tokenGenerator.GenerateToken(admin.ID.Hex(), string(admin.Role))
	if err != nil {
		s.logger.Error("failed to generate token", zap.Error(err))
		return nil, apperrors.Unexpected("Failed to login", err)
	}

	metrics.LoginAttempts.WithLabelValues("accepted").Inc()
	return &models.AuthResponse{Token: token, Admin: admin}, nil
}

// VerifyToken validates a session token and returns its claims
func (s *authService) VerifyToken(token string) (*service.Claims, error) {
	claims, err := s.tokenGenerator.ValidateToken(token)
	if err != nil {
		s.logger.Debug("token rejected", zap.Error(err))
		return nil, apperrors.Auth("Not authorized, token failed")
	}
	return claims, nil
}

// GetAdmin retrieves the admin identified by a token's admin ID
func (s *authService) GetAdmin(ctx context.Context, adminID string) (*models.Admin, error) {
	id, err := primitive.ObjectIDFromHex(adminID)
	if err != nil {
		return nil, apperrors.NotFound("Admin not found")
	}

	admin, err := s.adminRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperrors.NotFound("Admin not found")
		}
		s.logger.Error("failed to get admin", zap.Error(err))
		return nil, apperrors.Unexpected("Failed to get admin", err)
	}
	return admin, nil
}

// UpdatePassword replaces the admin's password after checking the current one
func (s *authService) UpdatePassword(ctx context.Context, adminID string, req *models.UpdatePasswordRequest) error {
	if err := validateStruct(s.validate, req); err != nil {
		return err
	}

	admin, err := s.GetAdmin(ctx, adminID)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		return apperrors.Auth("Current password is incorrect")
	}

	hash, err := s.hashPassword(req.NewPassword)
	if err != nil {
		return err
	}

	if err := s.adminRepo.UpdatePassword(ctx, admin.ID, string(hash)); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return apperrors.NotFound("Admin not found")
		}
		s.logger.Error("failed to update password", zap.Error(err))
		return apperrors.Unexpected("Failed to update password", err)
	}

	s.logger.Info("admin password updated", zap.String("admin_id", admin.ID.Hex()))
	return nil
}

// SeedAdmin creates a superadmin unless an admin with the email already exists.
// The boolean result reports whether a new admin was created.
func (s *authService) SeedAdmin(ctx context.Context, username, email, password string) (*models.Admin, bool, error) {
	existing, err := s.adminRepo.GetByEmail(ctx, normalizeEmail(email))
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return nil, false, apperrors.Unexpected("Failed to check existing admin", err)
	}

	admin, err := s.Register(ctx, &models.RegisterRequest{
		Username: username,
		Email:    email,
		Password: password,
		Role:     models.RoleSuperAdmin,
	})
	if err != nil {
		return nil, false, err
	}
	return admin, true, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// hashPassword hashes a password with the configured bcrypt cost
func (s *authService) hashPassword(password string) ([]byte, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return nil, apperrors.Validation("password must be at most 72 bytes")
	}
	if err != nil {
		return nil, apperrors.Unexpected("Failed to hash password", err)
	}
	return hash, nil
}
