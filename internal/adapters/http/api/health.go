package api

import (
	"context"
	"net/http"

	"github.com/okian/cupstats/internal/domain/dataset"
	"github.com/okian/cupstats/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// CountsProvider reports the loaded dataset sizes.
type CountsProvider interface {
	Counts(ctx context.Context) (dataset.Counts, error)
}

// HealthHandler handles health check and metrics requests.
type HealthHandler struct {
	counts CountsProvider
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(counts CountsProvider) *HealthHandler {
	return &HealthHandler{counts: counts}
}

type healthResponse struct {
	Status string `json:"status"`
	dataset.Counts
}

// HandleHealth handles GET /healthz requests. It answers 503 until the
// dataset is loaded.
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	counts, err := h.counts.Counts(r.Context())
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "unavailable", err)
		return
	}
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Counts: counts})
}

// MetricsHandler serves the custom metrics registry.
func (h *HealthHandler) MetricsHandler() http.Handler {
	return promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{})
}
