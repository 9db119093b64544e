// Package api exposes the rule engine over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/nhle/equipment-alerts/internal/engine"
	"github.com/nhle/equipment-alerts/internal/model"
	"github.com/nhle/equipment-alerts/internal/store"
)

// serviceName is reported by the health endpoint.
const serviceName = "agents"

// Service is the engine surface the handlers depend on.
type Service interface {
	RunAll(ctx context.Context) engine.Report
	ListNotifications(ctx context.Context, read bool) ([]model.Notification, error)
	MarkRead(ctx context.Context, id int64) error
	Delete(ctx context.Context, id int64) error
}

// Handlers wraps dependencies for HTTP handlers.
type Handlers struct {
	svc Service
	log zerolog.Logger
}

// NewHandlers creates a new handlers instance.
func NewHandlers(svc Service, log zerolog.Logger) *Handlers {
	return &Handlers{svc: svc, log: log}
}

type healthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Health reports liveness.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "healthy", Service: serviceName})
}

// RunAll evaluates every rule and returns the run report. Rule failures are
// part of the report, so this endpoint answers 200 even when some failed.
func (h *Handlers) RunAll(w http.ResponseWriter, r *http.Request) {
	report := h.svc.RunAll(r.Context())
	writeJSON(w, http.StatusOK, report)
}

// ListNotifications returns notifications filtered by the read query
// parameter, which defaults to false.
func (h *Handlers) ListNotifications(w http.ResponseWriter, r *http.Request) {
	read := false
	if raw := r.URL.Query().Get("read"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "read must be true or false")
			return
		}
		read = parsed
	}

	notifications, err := h.svc.ListNotifications(r.Context(), read)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, notifications)
}

// MarkRead marks the notification named by the id path parameter as read.
func (h *Handlers) MarkRead(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.svc.MarkRead(r.Context(), id); err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "notification marked as read"})
}

// Delete removes the notification named by the id path parameter.
func (h *Handlers) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.svc.Delete(r.Context(), id); err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "notification deleted"})
}

func (h *Handlers) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	event := h.log.Error()
	if status < http.StatusInternalServerError {
		event = h.log.Debug()
	}
	event.Err(err).Str("path", r.URL.Path).Int("status", status).Msg("request failed")

	if status == http.StatusInternalServerError {
		writeError(w, status, "internal error")
		return
	}
	writeError(w, status, err.Error())
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, store.ErrUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "id must be a positive integer")
		return 0, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
