package handler

import (
	"net/http"
	"time"

	"bistro/internal/model"
	"bistro/internal/service"

	"github.com/rs/zerolog"
)

// DashboardHandler serves the staff landing page and promo management.
type DashboardHandler struct {
	dashboard service.DashboardService
	promos    service.PromoService
	logger    zerolog.Logger
	now       func() time.Time
}

// NewDashboardHandler creates a new dashboard handler.
func NewDashboardHandler(dashboard service.DashboardService, promos service.PromoService, logger zerolog.Logger) *DashboardHandler {
	return &DashboardHandler{
		dashboard: dashboard,
		promos:    promos,
		logger:    logger.With().Str("handler", "dashboard").Logger(),
		now:       time.Now,
	}
}

// Summary handles GET /api/dashboard/summary.
func (h *DashboardHandler) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.dashboard.Summary(r.Context(), h.now())
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// ListPromos handles GET /api/dashboard/promos.
func (h *DashboardHandler) ListPromos(w http.ResponseWriter, r *http.Request) {
	promos, err := h.promos.List(r.Context())
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, promos)
}

// CreatePromo handles POST /api/dashboard/promos.
func (h *DashboardHandler) CreatePromo(w http.ResponseWriter, r *http.Request) {
	var req model.PromoCodeRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	promo, err := h.promos.Create(r.Context(), &req)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusCreated, promo)
}

// TogglePromo handles POST /api/dashboard/promos/{id}/toggle.
func (h *DashboardHandler) TogglePromo(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	promo, err := h.promos.ToggleActive(r.Context(), id)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, promo)
}
