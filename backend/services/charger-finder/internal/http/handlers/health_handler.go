package handlers

import (
	"net/http"
	"time"
)

// NewHealthHandler returns GET /api/health handler.
func NewHealthHandler() http.HandlerFunc {
	type response struct {
		Status    string `json:"status"`
		Message   string `json:"message"`
		Timestamp string `json:"timestamp"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, response{
			Status:    "OK",
			Message:   "Backend is running",
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		})
	}
}

// NewRootHandler answers GET / with a plain liveness line.
func NewRootHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("MarkEv backend up"))
	}
}

// NewNotFoundHandler answers unknown paths.
func NewNotFoundHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "Not found")
	}
}
