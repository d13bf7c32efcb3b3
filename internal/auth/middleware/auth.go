package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/eventboard/backend/internal/auth/service"
)

type contextKey string

const claimsKey contextKey = "adminClaims"

// TokenVerifier verifies a session token and returns the admin claims it carries
type TokenVerifier interface {
	VerifyToken(token string) (*service.Claims, error)
}

// AuthMiddleware validates the bearer token and stores the admin claims in the request context.
// Requests without a valid token are rejected with 401 before reaching the next handler.
func AuthMiddleware(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				writeUnauthorized(w, "Not authorized, no token")
				return
			}

			claims, err := verifier.VerifyToken(token)
			if err != nil {
				writeUnauthorized(w, "Not authorized, token failed")
				return
			}

			ctx := context.WithValue(r.Context(), claimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetClaims retrieves the verified admin claims from context
func GetClaims(ctx context.Context) (*service.Claims, bool) {
	claims, ok := ctx.Value(claimsKey).(*service.Claims)
	return claims, ok
}

// bearerToken extracts the token from an "Authorization: Bearer <token>" header
func bearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(authHeader, " ")
	if !found || !strings.EqualFold(scheme, "bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

func writeUnauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"success": false,
		"message": message,
	})
}
