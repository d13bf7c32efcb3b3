package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// pingTimeout bounds the database check of a health request
const pingTimeout = 2 * time.Second

// Pinger reports whether a dependency is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthResponse is the body of GET /health
type HealthResponse struct {
	Success   bool      `json:"success"`
	Message   string    `json:"message"`
	Database  string    `json:"database"`
	Timestamp time.Time `json:"timestamp"`
}

// HealthHandler reports service liveness
type HealthHandler struct {
	BaseHandler
	db  Pinger
	now func() time.Time
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(db Pinger, base BaseHandler) *HealthHandler {
	return &HealthHandler{BaseHandler: base, db: db, now: time.Now}
}

// RegisterRoutes registers the health route
func (h *HealthHandler) RegisterRoutes(r chi.Router) {
	r.Get("/health", h.Health)
}

// Health handles GET /health
// @Summary Health check
// @Tags health
// @Produce json
// @Success 200 {object} HealthResponse
// @Failure 503 {object} HealthResponse
// @Router /health [get]
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), pingTimeout)
	defer cancel()

	resp := HealthResponse{
		Success:   true,
		Message:   "Server is running",
		Database:  "connected",
		Timestamp: h.now().UTC(),
	}
	status := http.StatusOK

	if err := h.db.Ping(ctx); err != nil {
		h.Logger.Warn("database ping failed", zap.Error(err))
		resp.Success = false
		resp.Message = "Database unavailable"
		resp.Database = "disconnected"
		status = http.StatusServiceUnavailable
	}

	h.RespondJSON(w, status, resp)
}
