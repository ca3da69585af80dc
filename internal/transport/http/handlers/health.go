package handlers

import (
	"context"
	"net/http"

	"github.com/baechuer/orderflow/internal/health"
	"github.com/baechuer/orderflow/internal/transport/http/response"
)

type HealthChecker interface {
	Check(ctx context.Context) health.Report
}

type HealthHandler struct {
	checker HealthChecker
}

func NewHealthHandler(c HealthChecker) *HealthHandler { return &HealthHandler{checker: c} }

// Healthz is liveness only.
func (h *HealthHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	response.Data(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Health reports every component. DOWN answers 503 so load balancers drain
// the instance.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	rep := h.checker.Check(r.Context())
	status := http.StatusOK
	if rep.Status == health.StatusDown {
		status = http.StatusServiceUnavailable
	}
	response.JSON(w, status, rep)
}
