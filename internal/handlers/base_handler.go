package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/eventboard/backend/internal/apperrors"
	"go.uber.org/zap"
)

// Response is the envelope of every JSON response
type Response struct {
	Success bool   `json:"success"`
	Count   *int   `json:"count,omitempty"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// BaseHandler provides common handler functionality
type BaseHandler struct {
	Logger *zap.Logger
	// Development exposes the cause of 5xx errors in the "error" field
	Development bool
}

// RespondJSON sends a JSON response
func (h *BaseHandler) RespondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.Logger.Error("failed to encode JSON response", zap.Error(err))
	}
}

// RespondSuccess sends a successful envelope carrying data and an optional message
func (h *BaseHandler) RespondSuccess(w http.ResponseWriter, status int, data any, message string) {
	h.RespondJSON(w, status, Response{Success: true, Data: data, Message: message})
}

// RespondError sends an error envelope
func (h *BaseHandler) RespondError(w http.ResponseWriter, status int, message string) {
	h.RespondJSON(w, status, Response{Success: false, Message: message})
}

// RespondServiceError maps a service error to its status code and envelope.
// Unexpected and storage failures are logged; their cause is only exposed in development.
func (h *BaseHandler) RespondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status := apperrors.StatusCode(err)
	resp := Response{Success: false, Message: apperrors.Message(err)}

	if status >= http.StatusInternalServerError {
		h.Logger.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		if h.Development {
			if cause := apperrors.Cause(err); cause != nil {
				resp.Error = cause.Error()
			}
		}
	}

	h.RespondJSON(w, status, resp)
}

// NotFound responds to requests that matched no route
func (h *BaseHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	h.RespondError(w, http.StatusNotFound, "Route not found")
}
