package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/eventboard/backend/internal/apperrors"
	"github.com/eventboard/backend/internal/models"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// mockAuthService is a mock implementation of AuthService
type mockAuthService struct {
	admin        *models.Admin
	authResponse *models.AuthResponse
	err          error

	registerReq       *models.RegisterRequest
	loginReq          *models.LoginRequest
	getAdminID        string
	updatePasswordID  string
	updatePasswordReq *models.UpdatePasswordRequest
	calls             int
}

func (m *mockAuthService) Register(ctx context.Context, req *models.RegisterRequest) (*models.Admin, error) {
	m.calls++
	m.registerReq = req
	return m.admin, m.err
}

func (m *mockAuthService) Login(ctx context.Context, req *models.LoginRequest) (*models.AuthResponse, error) {
	m.calls++
	m.loginReq = req
	return m.authResponse, m.err
}

func (m *mockAuthService) GetAdmin(ctx context.Context, adminID string) (*models.Admin, error) {
	m.calls++
	m.getAdminID = adminID
	return m.admin, m.err
}

func (m *mockAuthService) UpdatePassword(ctx context.Context, adminID string, req *models.UpdatePasswordRequest) error {
	m.calls++
	m.updatePasswordID = adminID
	m.updatePasswordReq = req
	return m.err
}

func newAuthRouter(svc AuthService, adminID string) chi.Router {
	r := chi.NewRouter()
	NewAuthHandler(svc, testBase()).RegisterRoutes(r, testAuthMiddleware(adminID))
	return r
}

func testAdmin() *models.Admin {
	return &models.Admin{
		ID:           primitive.NewObjectID(),
		Username:     "admin",
		Email:        "admin@example.com",
		PasswordHash: "$2a$10$hash",
		Role:         models.RoleAdmin,
	}
}

func TestAuthHandler_Register(t *testing.T) {
	tests := []struct {
		name            string
		body            string
		svc             *mockAuthService
		expectedStatus  int
		expectedMessage string
		expectCall      bool
	}{
		{
			name:            "success",
			body:            `{"username":"admin","email":"admin@example.com","password":"secret1"}`,
			svc:             &mockAuthService{admin: testAdmin()},
			expectedStatus:  http.StatusCreated,
			expectedMessage: "Admin registered successfully",
			expectCall:      true,
		},
		{
			name:            "invalid json",
			body:            `{"username":`,
			svc:             &mockAuthService{},
			expectedStatus:  http.StatusBadRequest,
			expectedMessage: "Invalid request body",
		},
		{
			name:            "duplicate admin",
			body:            `{"username":"admin","email":"admin@example.com","password":"secret1"}`,
			svc:             &mockAuthService{err: apperrors.Validation("Admin already exists")},
			expectedStatus:  http.StatusBadRequest,
			expectedMessage: "Admin already exists",
			expectCall:      true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newAuthRouter(tt.svc, "")
			req := httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			body := decodeResponse(t, w)
			assert.Equal(t, tt.expectedMessage, body["message"])
			assert.NotContains(t, w.Body.String(), "passwordHash")
			assert.NotContains(t, w.Body.String(), "$2a$10$hash")
			if tt.expectCall {
				require.NotNil(t, tt.svc.registerReq)
				assert.Equal(t, "admin@example.com", tt.svc.registerReq.Email)
			} else {
				assert.Equal(t, 0, tt.svc.calls)
			}
		})
	}
}

func TestAuthHandler_Login(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		admin := testAdmin()
		svc := &mockAuthService{authResponse: &models.AuthResponse{Token: "jwt-token", Admin: admin}}
		r := newAuthRouter(svc, "")

		req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"email":"admin@example.com","password":"secret1"}`))
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		body := decodeResponse(t, w)
		assert.Equal(t, true, body["success"])
		data, ok := body["data"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "jwt-token", data["token"])
		assert.Equal(t, "secret1", svc.loginReq.Password)
		assert.NotContains(t, w.Body.String(), "$2a$10$hash")
	})

	t.Run("invalid credentials", func(t *testing.T) {
		svc := &mockAuthService{err: apperrors.Auth("Invalid credentials")}
		r := newAuthRouter(svc, "")

		req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"email":"admin@example.com","password":"wrong"}`))
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "Invalid credentials", decodeResponse(t, w)["message"])
	})
}

func TestAuthHandler_Me(t *testing.T) {
	admin := testAdmin()

	t.Run("returns the authenticated admin", func(t *testing.T) {
		svc := &mockAuthService{admin: admin}
		r := newAuthRouter(svc, admin.ID.Hex())

		req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
		req.Header.Set("Authorization", "Bearer "+testToken)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, admin.ID.Hex(), svc.getAdminID)
		data, ok := decodeResponse(t, w)["data"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "admin", data["username"])
	})

	t.Run("missing token", func(t *testing.T) {
		svc := &mockAuthService{admin: admin}
		r := newAuthRouter(svc, admin.ID.Hex())

		req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, 0, svc.calls)
	})

	t.Run("admin deleted", func(t *testing.T) {
		svc := &mockAuthService{err: apperrors.NotFound("Admin not found")}
		r := newAuthRouter(svc, admin.ID.Hex())

		req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
		req.Header.Set("Authorization", "Bearer "+testToken)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestAuthHandler_UpdatePassword(t *testing.T) {
	adminID := primitive.NewObjectID().Hex()

	tests := []struct {
		name           string
		token          string
		body           string
		svc            *mockAuthService
		expectedStatus int
		expectCall     bool
	}{
		{
			name:           "success",
			token:          testToken,
			body:           `{"currentPassword":"secret1","newPassword":"secret2"}`,
			svc:            &mockAuthService{},
			expectedStatus: http.StatusOK,
			expectCall:     true,
		},
		{
			name:           "wrong current password",
			token:          testToken,
			body:           `{"currentPassword":"nope","newPassword":"secret2"}`,
			svc:            &mockAuthService{err: apperrors.Auth("Current password is incorrect")},
			expectedStatus: http.StatusUnauthorized,
			expectCall:     true,
		},
		{
			name:           "invalid token",
			token:          "forged",
			body:           `{"currentPassword":"secret1","newPassword":"secret2"}`,
			svc:            &mockAuthService{},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "invalid json",
			token:          testToken,
			body:           `nope`,
			svc:            &mockAuthService{},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newAuthRouter(tt.svc, adminID)
			req := httptest.NewRequest(http.MethodPut, "/auth/update-password", strings.NewReader(tt.body))
			req.Header.Set("Authorization", "Bearer "+tt.token)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectCall {
				assert.Equal(t, adminID, tt.svc.updatePasswordID)
				require.NotNil(t, tt.svc.updatePasswordReq)
				assert.Equal(t, "secret2", tt.svc.updatePasswordReq.NewPassword)
			} else {
				assert.Equal(t, 0, tt.svc.calls)
			}
		})
	}
}
