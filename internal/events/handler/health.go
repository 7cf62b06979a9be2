package handler

import (
	"context"
	"net/http"
	"time"

	httputil "capirelay/pkg/http"
	"capirelay/pkg/logger"

	"github.com/julienschmidt/httprouter"
)

type HealthResponse struct {
	Status  string            `json:"status"`
	Service string            `json:"service,omitempty"`
	Checks  map[string]string `json:"checks,omitempty"`
}

// ReadinessCheck reports whether a dependency is usable.
type ReadinessCheck func(ctx context.Context) error

type HealthHandler struct {
	service string
	checks  map[string]ReadinessCheck
	log     *logger.Logger
}

func NewHealthHandler(service string, checks map[string]ReadinessCheck, log *logger.Logger) *HealthHandler {
	return &HealthHandler{
		service: service,
		checks:  checks,
		log:     log,
	}
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if err := httputil.WriteJSON(w, http.StatusOK, HealthResponse{
		Status:  "healthy",
		Service: h.service,
	}); err != nil {
		h.log.Error("failed to write JSON response", "handler", "Health", "operation", "WriteJSON", "error", err)
	}
}

func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	resp := HealthResponse{Status: "ready", Checks: map[string]string{}}

	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			h.log.Error("Readiness check failed",
				"check", name,
				"error", err,
				"path", r.URL.Path,
			)
			resp.Checks[name] = "error"
			resp.Status = "unavailable"
			status = http.StatusServiceUnavailable
			continue
		}
		resp.Checks[name] = "ok"
	}

	if err := httputil.WriteJSON(w, status, resp); err != nil {
		h.log.Error("failed to write JSON response", "handler", "Ready", "operation", "WriteJSON", "error", err)
	}
}

func (h *HealthHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/health", h.Health)
	router.GET("/ready", h.Ready)
}
