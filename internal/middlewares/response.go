package middlewares

import (
	"encoding/json"
	"net/http"
)

// writeJSONError writes the failure envelope shared with the handlers package
func writeJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"success": false,
		"message": message,
	})
}
