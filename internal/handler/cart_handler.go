package handler

import (
	"net/http"

	"bistro/internal/cart"
	"bistro/internal/model"
	"bistro/internal/service"

	"github.com/rs/zerolog"
)

// CartSessionHeader identifies the caller's cart.
const CartSessionHeader = "X-Cart-Session"

// CartHandler serves the session cart.
type CartHandler struct {
	service service.CartService
	logger  zerolog.Logger
}

// NewCartHandler creates a new cart handler.
func NewCartHandler(service service.CartService, logger zerolog.Logger) *CartHandler {
	return &CartHandler{
		service: service,
		logger:  logger.With().Str("handler", "cart").Logger(),
	}
}

// session returns the request's cart session, issuing one when absent.
// The token is always echoed so clients can store it.
func session(w http.ResponseWriter, r *http.Request) string {
	id := r.Header.Get(CartSessionHeader)
	if id == "" || len(id) > 64 {
		id = cart.NewSessionID()
	}
	w.Header().Set(CartSessionHeader, id)
	return id
}

// Get handles GET /api/cart.
func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.Get(r.Context(), session(w, r))
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// Add handles POST /api/cart/items.
func (h *CartHandler) Add(w http.ResponseWriter, r *http.Request) {
	sid := session(w, r)
	var req model.AddToCartRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	summary, err := h.service.Add(r.Context(), sid, &req)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// Update handles PUT /api/cart/items/{key}.
func (h *CartHandler) Update(w http.ResponseWriter, r *http.Request) {
	sid := session(w, r)
	var req model.UpdateCartRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	summary, err := h.service.UpdateQuantity(r.Context(), sid, r.PathValue("key"), req.Quantity)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// Remove handles DELETE /api/cart/items/{key}.
func (h *CartHandler) Remove(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.Remove(r.Context(), session(w, r), r.PathValue("key"))
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// Clear handles DELETE /api/cart.
func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Clear(r.Context(), session(w, r)); err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ApplyPromo handles POST /api/cart/promo.
func (h *CartHandler) ApplyPromo(w http.ResponseWriter, r *http.Request) {
	sid := session(w, r)
	var req model.ApplyPromoRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	summary, err := h.service.ApplyPromo(r.Context(), sid, req.Code)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// RemovePromo handles DELETE /api/cart/promo.
func (h *CartHandler) RemovePromo(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.RemovePromo(r.Context(), session(w, r))
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}
