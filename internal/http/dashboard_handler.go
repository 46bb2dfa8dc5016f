package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/fjod/go_restaurant/internal/dashboard"
	"github.com/fjod/go_restaurant/internal/domain"
)

type DashboardService interface {
	Stats(ctx context.Context, period string) (domain.RevenueStats, error)
	Overview(ctx context.Context) (domain.Overview, error)
	Invalidate()
}

type DashboardHandler struct {
	svc DashboardService
}

func NewDashboardHandler(svc DashboardService) *DashboardHandler {
	return &DashboardHandler{svc: svc}
}

func (h *DashboardHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Stats(r.Context(), r.URL.Query().Get("period"))
	if err != nil {
		if errors.Is(err, dashboard.ErrInvalidPeriod) {
			respondError(w, http.StatusBadRequest, "invalid_period", "period must be one of day, week, month, year")
			return
		}
		handleUpstreamError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, stats)
}

func (h *DashboardHandler) Overview(w http.ResponseWriter, r *http.Request) {
	ov, err := h.svc.Overview(r.Context())
	if err != nil {
		handleUpstreamError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, ov)
}

// Refresh drops cached analytics so the next read is fresh.
func (h *DashboardHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	h.svc.Invalidate()
	w.WriteHeader(http.StatusNoContent)
}
