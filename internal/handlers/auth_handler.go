package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/eventboard/backend/internal/auth/middleware"
	"github.com/eventboard/backend/internal/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// AuthService is the interface that wraps methods for admin authentication business logic.
type AuthService interface {
	// Method Register validates the request and creates a new admin with a hashed password.
	//
	// "req" parameter contains username, email, password and an optional role.
	//
	// If the request is invalid or the username or email is already taken, a validation error is returned together with "nil" value.
	Register(ctx context.Context, req *models.RegisterRequest) (*models.Admin, error)
	// Method Login verifies the credentials and returns a session token together with the admin.
	//
	// Unknown email and wrong password return the same authentication error.
	Login(ctx context.Context, req *models.LoginRequest) (*models.AuthResponse, error)
	// Method GetAdmin retrieves the admin identified by "adminID".
	//
	// If the admin no longer exists, a not found error is returned together with "nil" value.
	GetAdmin(ctx context.Context, adminID string) (*models.Admin, error)
	// Method UpdatePassword replaces the password of the admin identified by "adminID".
	//
	// If the current password does not match, an authentication error is returned.
	UpdatePassword(ctx context.Context, adminID string, req *models.UpdatePasswordRequest) error
}

// AuthHandler handles admin authentication HTTP requests
type AuthHandler struct {
	BaseHandler
	authService AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService AuthService, base BaseHandler) *AuthHandler {
	return &AuthHandler{
		BaseHandler: base,
		authService: authService,
	}
}

// RegisterRoutes registers all auth handler routes
// Note: This assumes the router is already scoped to /api
func (h *AuthHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.Register)
		r.Post("/login", h.Login)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware)
			r.Get("/me", h.Me)
			r.Put("/update-password", h.UpdatePassword)
		})
	})
}

// Register handles POST /auth/register
// @Summary Register a new admin
// @Description Create an admin account. Role defaults to "admin".
// @Tags auth
// @Accept json
// @Produce json
// @Param request body models.RegisterRequest true "Register request"
// @Success 201 {object} Response{data=models.Admin}
// @Failure 400 {object} Response "Invalid request or admin already exists"
// @Failure 500 {object} Response
// @Router /auth/register [post]
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	admin, err := h.authService.Register(r.Context(), &req)
	if err != nil {
		h.RespondServiceError(w, r, err)
		return
	}

	h.Logger.Info("admin registered", zap.String("admin_id", admin.ID.Hex()))
	h.RespondSuccess(w, http.StatusCreated, admin, "Admin registered successfully")
}

// Login handles POST /auth/login
// @Summary Login admin
// @Description Authenticate with email and password and receive a bearer token.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body models.LoginRequest true "Login request"
// @Success 200 {object} Response{data=models.AuthResponse}
// @Failure 400 {object} Response "Invalid request body"
// @Failure 401 {object} Response "Invalid credentials"
// @Router /auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	resp, err := h.authService.Login(r.Context(), &req)
	if err != nil {
		h.RespondServiceError(w, r, err)
		return
	}

	h.RespondSuccess(w, http.StatusOK, resp, "")
}

// Me handles GET /auth/me
// @Summary Get current admin
// @Tags auth
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} Response{data=models.Admin}
// @Failure 401 {object} Response
// @Failure 404 {object} Response
// @Router /auth/me [get]
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetClaims(r.Context())
	if !ok {
		h.RespondError(w, http.StatusUnauthorized, "Not authorized, no token")
		return
	}

	admin, err := h.authService.GetAdmin(r.Context(), claims.AdminID)
	if err != nil {
		h.RespondServiceError(w, r, err)
		return
	}

	h.RespondSuccess(w, http.StatusOK, admin, "")
}

// UpdatePassword handles PUT /auth/update-password
// @Summary Change password
// @Description Replace the current admin's password after checking the current one.
// @Tags auth
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body models.UpdatePasswordRequest true "Password update request"
// @Success 200 {object} Response
// @Failure 400 {object} Response
// @Failure 401 {object} Response "Not authorized or current password is incorrect"
// @Router /auth/update-password [put]
func (h *AuthHandler) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetClaims(r.Context())
	if !ok {
		h.RespondError(w, http.StatusUnauthorized, "Not authorized, no token")
		return
	}

	var req models.UpdatePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.authService.UpdatePassword(r.Context(), claims.AdminID, &req); err != nil {
		h.RespondServiceError(w, r, err)
		return
	}

	h.RespondSuccess(w, http.StatusOK, nil, "Password updated successfully")
}
