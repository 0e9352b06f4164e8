package handler

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"bistro/internal/export"
	"bistro/internal/model"
	"bistro/internal/service"

	"github.com/rs/zerolog"
)

const (
	maxWebhookBytes = 64 << 10
	signatureHeader = "Stripe-Signature"
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// PaymentHandler handles checkout callbacks and payment management.
type PaymentHandler struct {
	service service.PaymentService
	logger  zerolog.Logger
	now     func() time.Time
}

// NewPaymentHandler creates a new payment handler.
func NewPaymentHandler(service service.PaymentService, logger zerolog.Logger) *PaymentHandler {
	return &PaymentHandler{
		service: service,
		logger:  logger.With().Str("handler", "payment").Logger(),
		now:     time.Now,
	}
}

// Webhook handles POST /api/payments/webhook requests from the gateway.
func (h *PaymentHandler) Webhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBytes))
	if err != nil {
		writeError(w, r, model.NewValidationError("Could not read webhook payload"), h.logger)
		return
	}

	if err := h.service.HandleWebhook(r.Context(), payload, r.Header.Get(signatureHeader)); err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"received": true})
}

// CheckoutSuccess handles GET /api/checkout/success?session_id= after the hosted checkout.
func (h *PaymentHandler) CheckoutSuccess(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session_id")
	if sessionID == "" {
		writeError(w, r, model.NewValidationError("session_id is required"), h.logger)
		return
	}

	order, err := h.service.ReconcileSession(r.Context(), sessionID)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func paymentFilter(r *http.Request) (model.PaymentFilter, error) {
	date, err := queryDate(r, "date")
	if err != nil {
		return model.PaymentFilter{}, err
	}
	q := r.URL.Query()
	return model.PaymentFilter{
		Search: q.Get("search"),
		Status: q.Get("status"),
		Date:   date,
		Page:   queryInt(r, "page", 1),
	}, nil
}

// List handles GET /api/dashboard/payments requests.
func (h *PaymentHandler) List(w http.ResponseWriter, r *http.Request) {
	filter, err := paymentFilter(r)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	listing, err := h.service.List(r.Context(), filter)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, listing)
}

// Detail handles GET /api/dashboard/payments/{id} requests.
func (h *PaymentHandler) Detail(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	detail, err := h.service.Detail(r.Context(), id)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

// Refund handles POST /api/dashboard/payments/{id}/refund requests.
func (h *PaymentHandler) Refund(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	var req model.RefundRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	refund, err := h.service.Refund(r.Context(), id, &req)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, refund)
}

// Export handles GET /api/dashboard/payments/export?format=csv|xlsx requests.
func (h *PaymentHandler) Export(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "csv"
	}
	if format != "csv" && format != "xlsx" {
		writeError(w, r, model.NewValidationError("format must be csv or xlsx"), h.logger)
		return
	}

	filter, err := paymentFilter(r)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	orders, err := h.service.Export(r.Context(), filter)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, export.Filename(h.now(), format)))
	if format == "xlsx" {
		w.Header().Set("Content-Type", xlsxContentType)
		err = export.WriteXLSX(w, orders)
	} else {
		w.Header().Set("Content-Type", "text/csv")
		err = export.WriteCSV(w, orders)
	}
	if err != nil {
		// Headers are already out; the client sees a truncated file.
		h.logger.Error().Err(err).Str("format", format).Msg("failed to write export")
	}
}
