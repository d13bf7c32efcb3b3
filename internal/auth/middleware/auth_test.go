package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/eventboard/backend/internal/auth/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockVerifier is a mock implementation of TokenVerifier
type mockVerifier struct {
	claims    *service.Claims
	err       error
	lastToken string
	calls     int
}

func (m *mockVerifier) VerifyToken(token string) (*service.Claims, error) {
	m.calls++
	m.lastToken = token
	if m.err != nil {
		return nil, m.err
	}
	return m.claims, nil
}

func TestAuthMiddleware(t *testing.T) {
	claims := &service.Claims{AdminID: "65a1f0c2e4b0a1b2c3d4e5f6", Role: "admin"}

	tests := []struct {
		name            string
		authHeader      string
		verifier        *mockVerifier
		expectedStatus  int
		expectNext      bool
		expectVerify    bool
		expectedToken   string
		expectedMessage string
	}{
		{
			name:           "valid bearer token",
			authHeader:     "Bearer good-token",
			verifier:       &mockVerifier{claims: claims},
			expectedStatus: http.StatusOK,
			expectNext:     true,
			expectVerify:   true,
			expectedToken:  "good-token",
		},
		{
			name:           "lower case scheme",
			authHeader:     "bearer good-token",
			verifier:       &mockVerifier{claims: claims},
			expectedStatus: http.StatusOK,
			expectNext:     true,
			expectVerify:   true,
			expectedToken:  "good-token",
		},
		{
			name:            "missing header",
			authHeader:      "",
			verifier:        &mockVerifier{claims: claims},
			expectedStatus:  http.StatusUnauthorized,
			expectedMessage: "Not authorized, no token",
		},
		{
			name:            "wrong scheme",
			authHeader:      "Basic dXNlcjpwYXNz",
			verifier:        &mockVerifier{claims: claims},
			expectedStatus:  http.StatusUnauthorized,
			expectedMessage: "Not authorized, no token",
		},
		{
			name:            "scheme without token",
			authHeader:      "Bearer ",
			verifier:        &mockVerifier{claims: claims},
			expectedStatus:  http.StatusUnauthorized,
			expectedMessage: "Not authorized, no token",
		},
		{
			name:            "verification fails",
			authHeader:      "Bearer expired-token",
			verifier:        &mockVerifier{err: errors.New("token expired")},
			expectedStatus:  http.StatusUnauthorized,
			expectVerify:    true,
			expectedToken:   "expired-token",
			expectedMessage: "Not authorized, token failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nextCalled := false
			var gotClaims *service.Claims
			handler := AuthMiddleware(tt.verifier)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				nextCalled = true
				gotClaims, _ = GetClaims(r.Context())
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest(http.MethodDelete, "/api/events/1", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Equal(t, tt.expectNext, nextCalled)
			assert.Equal(t, tt.expectVerify, tt.verifier.calls == 1)
			if tt.expectVerify {
				assert.Equal(t, tt.expectedToken, tt.verifier.lastToken)
			}

			if tt.expectNext {
				assert.Equal(t, claims, gotClaims)
				return
			}

			var body map[string]any
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, false, body["success"])
			assert.Equal(t, tt.expectedMessage, body["message"])
		})
	}
}

func TestGetClaims_Missing(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	claims, ok := GetClaims(req.Context())
	assert.False(t, ok)
	assert.Nil(t, claims)
}
