package middlewares

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRequestIDMiddleware(t *testing.T) {
	tests := []struct {
		name       string
		incoming   string
		expectSame bool
	}{
		{name: "propagates incoming id", incoming: "abc-123", expectSame: true},
		{name: "generates id when missing", incoming: ""},
		{name: "replaces malformed id", incoming: "bad id\nwith newline"},
		{name: "replaces overlong id", incoming: strings.Repeat("a", 129)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen string
			handler := RequestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seen = GetRequestID(r.Context())
			}))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.incoming != "" {
				req.Header.Set("X-Request-ID", tt.incoming)
			}
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			require.NotEmpty(t, seen)
			assert.Equal(t, seen, w.Header().Get("X-Request-ID"))
			if tt.expectSame {
				assert.Equal(t, tt.incoming, seen)
			} else {
				assert.NotEqual(t, tt.incoming, seen)
			}
		})
	}
}

func TestRecoveryMiddleware(t *testing.T) {
	handler := RecoveryMiddleware(zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Server Error", body["message"])
}

func TestCORSMiddleware(t *testing.T) {
	tests := []struct {
		name            string
		allowed         []string
		origin          string
		method          string
		requestMethod   string
		expectedOrigin  string
		expectedStatus  int
		expectPreflight bool
		expectNext      bool
	}{
		{
			name:           "wildcard",
			allowed:        []string{"*"},
			origin:         "https://site.example.com",
			method:         http.MethodGet,
			expectedOrigin: "*",
			expectedStatus: http.StatusOK,
			expectNext:     true,
		},
		{
			name:           "listed origin case insensitive",
			allowed:        []string{" https://Admin.example.com "},
			origin:         "https://admin.example.com",
			method:         http.MethodGet,
			expectedOrigin: "https://admin.example.com",
			expectedStatus: http.StatusOK,
			expectNext:     true,
		},
		{
			name:           "unlisted origin",
			allowed:        []string{"https://admin.example.com"},
			origin:         "https://evil.example.com",
			method:         http.MethodGet,
			expectedOrigin: "",
			expectedStatus: http.StatusOK,
			expectNext:     true,
		},
		{
			name:           "no origin header",
			allowed:        []string{"*"},
			method:         http.MethodGet,
			expectedOrigin: "",
			expectedStatus: http.StatusOK,
			expectNext:     true,
		},
		{
			name:            "preflight short circuits",
			allowed:         []string{"*"},
			origin:          "https://site.example.com",
			method:          http.MethodOptions,
			requestMethod:   http.MethodPatch,
			expectedOrigin:  "*",
			expectedStatus:  http.StatusNoContent,
			expectPreflight: true,
		},
		{
			name:           "preflight from unlisted origin gets no grants",
			allowed:        []string{"https://admin.example.com"},
			origin:         "https://evil.example.com",
			method:         http.MethodOptions,
			requestMethod:  http.MethodDelete,
			expectedOrigin: "",
			expectedStatus: http.StatusNoContent,
		},
		{
			name:           "plain options passes through",
			allowed:        []string{"*"},
			origin:         "https://site.example.com",
			method:         http.MethodOptions,
			expectedOrigin: "*",
			expectedStatus: http.StatusOK,
			expectNext:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			handler := CORSMiddleware(tt.allowed)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest(tt.method, "/api/events", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			if tt.requestMethod != "" {
				req.Header.Set("Access-Control-Request-Method", tt.requestMethod)
			}
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Equal(t, tt.expectNext, called)
			assert.Equal(t, tt.expectedOrigin, w.Header().Get("Access-Control-Allow-Origin"))
			assert.Contains(t, w.Header().Values("Vary"), "Origin")

			if tt.expectedOrigin != "" {
				assert.Equal(t, RequestIDHeader, w.Header().Get("Access-Control-Expose-Headers"))
			} else {
				assert.Empty(t, w.Header().Get("Access-Control-Expose-Headers"))
			}

			if tt.expectPreflight {
				assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "PATCH")
				assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), "Authorization")
				assert.Equal(t, "3600", w.Header().Get("Access-Control-Max-Age"))
				assert.Contains(t, w.Header().Values("Vary"), "Access-Control-Request-Method")
			} else {
				assert.Empty(t, w.Header().Get("Access-Control-Allow-Methods"))
			}
		})
	}
}

func TestRequestSizeLimitMiddleware(t *testing.T) {
	handler := RequestSizeLimitMiddleware(10)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := io.ReadAll(r.Body); err != nil {
			w.WriteHeader(http.StatusRequestEntityTooLarge)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("within limit", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("small"))
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("declared length too large", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("this body is too large"))
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
		assert.Contains(t, w.Body.String(), "Request body too large")
		assert.Equal(t, "close", w.Header().Get("Connection"))
	})

	t.Run("unknown length enforced while reading", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("this body is too large"))
		req.ContentLength = -1
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	})
}
