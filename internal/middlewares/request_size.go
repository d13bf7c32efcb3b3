package middlewares

import (
	"net/http"
)

// RequestSizeLimitMiddleware rejects request bodies larger than maxRequestSize bytes with 413.
// A declared Content-Length is checked up front; bodies of unknown length are capped while read.
func RequestSizeLimitMiddleware(maxRequestSize int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > maxRequestSize {
				// The body is left unread, so the connection cannot be reused
				w.Header().Set("Connection", "close")
				writeJSONError(w, http.StatusRequestEntityTooLarge, "Request body too large")
				return
			}

			if r.Body != nil && r.Body != http.NoBody {
				r.Body = http.MaxBytesReader(w, r.Body, maxRequestSize)
			}
			next.ServeHTTP(w, r)
		})
	}
}
