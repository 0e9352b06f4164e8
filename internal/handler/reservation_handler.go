package handler

import (
	"context"
	"net/http"

	"bistro/internal/model"
	"bistro/internal/service"

	"github.com/rs/zerolog"
)

// ReservationHandler handles table bookings.
type ReservationHandler struct {
	service service.ReservationService
	logger  zerolog.Logger
}

// NewReservationHandler creates a new reservation handler.
func NewReservationHandler(service service.ReservationService, logger zerolog.Logger) *ReservationHandler {
	return &ReservationHandler{
		service: service,
		logger:  logger.With().Str("handler", "reservation").Logger(),
	}
}

// Create handles POST /api/reservations requests.
func (h *ReservationHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.ReservationRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	reservation, err := h.service.Create(r.Context(), &req)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusCreated, reservation)
}

// GetByID handles GET /api/reservations/{id} and GET /api/dashboard/reservations/{id}.
func (h *ReservationHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, h.service.GetByID)
}

// List handles GET /api/dashboard/reservations?status=&date=&search= requests.
func (h *ReservationHandler) List(w http.ResponseWriter, r *http.Request) {
	date, err := queryDate(r, "date")
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	q := r.URL.Query()
	listing, err := h.service.List(r.Context(), model.ReservationFilter{
		Status: model.ReservationStatus(q.Get("status")),
		Date:   date,
		Search: q.Get("search"),
	})
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, listing)
}

// Approve handles POST /api/dashboard/reservations/{id}/approve requests.
func (h *ReservationHandler) Approve(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, h.service.Approve)
}

// Reject handles POST /api/dashboard/reservations/{id}/reject requests.
func (h *ReservationHandler) Reject(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, h.service.Reject)
}

// Cancel handles POST /api/dashboard/reservations/{id}/cancel requests.
func (h *ReservationHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, h.service.Cancel)
}

// AddNote handles PUT /api/dashboard/reservations/{id}/note requests.
func (h *ReservationHandler) AddNote(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	var req model.StaffNoteRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	reservation, err := h.service.AddNote(r.Context(), id, req.Note)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, reservation)
}

// respond runs a single-reservation action keyed by the {id} path value.
func (h *ReservationHandler) respond(w http.ResponseWriter, r *http.Request, action func(ctx context.Context, id int64) (*model.Reservation, error)) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	reservation, err := action(r.Context(), id)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, reservation)
}
