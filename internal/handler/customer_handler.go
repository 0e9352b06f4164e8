package handler

import (
	"net/http"

	"bistro/internal/model"
	"bistro/internal/service"

	"github.com/rs/zerolog"
)

// CustomerHandler serves the dashboard customer directory.
type CustomerHandler struct {
	service service.CustomerService
	logger  zerolog.Logger
}

// NewCustomerHandler creates a new customer handler.
func NewCustomerHandler(service service.CustomerService, logger zerolog.Logger) *CustomerHandler {
	return &CustomerHandler{
		service: service,
		logger:  logger.With().Str("handler", "customer").Logger(),
	}
}

// List handles GET /api/dashboard/customers?search=&sort=&page= requests.
func (h *CustomerHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	listing, err := h.service.List(r.Context(), model.CustomerQuery{
		Search: q.Get("search"),
		Sort:   model.CustomerSort(q.Get("sort")),
		Page:   queryInt(r, "page", 1),
	})
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, listing)
}

// Detail handles GET /api/dashboard/customers/{email} requests.
func (h *CustomerHandler) Detail(w http.ResponseWriter, r *http.Request) {
	detail, err := h.service.Detail(r.Context(), r.PathValue("email"))
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

// Block handles POST /api/dashboard/customers/blocked requests.
func (h *CustomerHandler) Block(w http.ResponseWriter, r *http.Request) {
	var req model.BlockRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	created, err := h.service.Block(r.Context(), &req, accountID(r))
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(w, status, map[string]any{"email": req.Email, "blocked": true})
}

// Unblock handles DELETE /api/dashboard/customers/blocked/{email} requests.
func (h *CustomerHandler) Unblock(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Unblock(r.Context(), r.PathValue("email")); err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
