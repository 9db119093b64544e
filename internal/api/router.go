package api

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// NewRouter registers every endpoint on a ServeMux and wraps it in the
// middleware chain.
func NewRouter(svc Service, log zerolog.Logger) http.Handler {
	h := NewHandlers(svc, log)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", h.Health)
	mux.HandleFunc("POST /run-all-agents", h.RunAll)
	mux.HandleFunc("GET /notifications", h.ListNotifications)
	mux.HandleFunc("PUT /notifications/{id}/mark-read", h.MarkRead)
	mux.HandleFunc("DELETE /notifications/{id}", h.Delete)
	mux.Handle("GET /metrics", promhttp.Handler())

	return Chain(mux, Recovery(log), Logging(log))
}

// NewServer returns an HTTP server for handler with conservative timeouts.
func NewServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      2 * time.Minute,
		IdleTimeout:       60 * time.Second,
	}
}
