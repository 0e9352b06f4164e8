package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"bistro/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/client"
	"github.com/stripe/stripe-go/v82/webhook"
)

type stripeGateway struct {
	api           *client.API
	webhookSecret string
	logger        zerolog.Logger
}

// NewStripeGateway creates a Gateway backed by Stripe Checkout.
func NewStripeGateway(secretKey, webhookSecret string, logger zerolog.Logger) Gateway {
	api := &client.API{}
	api.Init(secretKey, nil)

	return &stripeGateway{
		api:           api,
		webhookSecret: webhookSecret,
		logger:        logger.With().Str("component", "stripe-gateway").Logger(),
	}
}

func (g *stripeGateway) CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*model.CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:          stripe.String(string(stripe.CheckoutSessionModePayment)),
		CustomerEmail: stripe.String(req.Email),
		SuccessURL:    stripe.String(req.SuccessURL),
		CancelURL:     stripe.String(req.CancelURL),
	}
	params.Context = ctx
	params.AddMetadata(MetadataOrderID, req.OrderID.String())

	for _, l := range req.Lines {
		params.LineItems = append(params.LineItems, &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String(req.Currency),
				UnitAmount: stripe.Int64(toMinorUnits(l.UnitPrice)),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(l.Name),
				},
			},
			Quantity: stripe.Int64(int64(l.Quantity)),
		})
	}

	s, err := g.api.CheckoutSessions.New(params)
	if err != nil {
		g.logger.Error().Err(err).Str("order_id", req.OrderID.String()).Msg("failed to create checkout session")
		return nil, fmt.Errorf("failed to create checkout session: %w", err)
	}

	g.logger.Info().
		Str("order_id", req.OrderID.String()).
		Str("session_id", s.ID).
		Msg("checkout session created")

	return toSession(s), nil
}

func (g *stripeGateway) GetCheckoutSession(ctx context.Context, id string) (*model.CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx

	s, err := g.api.CheckoutSessions.Get(id, params)
	if err != nil {
		g.logger.Error().Err(err).Str("session_id", id).Msg("failed to retrieve checkout session")
		return nil, fmt.Errorf("failed to retrieve checkout session: %w", err)
	}
	return toSession(s), nil
}

func (g *stripeGateway) ParseWebhook(payload []byte, signature string) (*WebhookEvent, error) {
	event, err := webhook.ConstructEventWithOptions(payload, signature, g.webhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		g.logger.Warn().Err(err).Msg("rejected webhook")
		return nil, errors.Join(model.ErrInvalidSignature, err)
	}

	out := &WebhookEvent{ID: event.ID, Type: string(event.Type)}
	if out.Type == EventCheckoutCompleted {
		var s stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &s); err != nil {
			return nil, fmt.Errorf("failed to decode checkout session: %w", err)
		}
		out.Session = toSession(&s)
	}

	return out, nil
}

func (g *stripeGateway) Refund(ctx context.Context, paymentIntentID string, amount *decimal.Decimal) (*model.Refund, error) {
	params := &stripe.RefundParams{PaymentIntent: stripe.String(paymentIntentID)}
	params.Context = ctx
	if amount != nil {
		params.Amount = stripe.Int64(toMinorUnits(*amount))
	}

	r, err := g.api.Refunds.New(params)
	if err != nil {
		g.logger.Error().Err(err).Str("payment_intent", paymentIntentID).Msg("refund failed")
		return nil, fmt.Errorf("refund failed: %w", err)
	}

	g.logger.Info().
		Str("payment_intent", paymentIntentID).
		Str("refund_id", r.ID).
		Int64("amount", r.Amount).
		Msg("refund issued")

	return &model.Refund{ID: r.ID, Amount: fromMinorUnits(r.Amount), Status: string(r.Status)}, nil
}

func toSession(s *stripe.CheckoutSession) *model.CheckoutSession {
	out := &model.CheckoutSession{
		ID:            s.ID,
		URL:           s.URL,
		PaymentStatus: string(s.PaymentStatus),
		AmountTotal:   fromMinorUnits(s.AmountTotal),
		Currency:      string(s.Currency),
	}
	if s.PaymentIntent != nil {
		out.PaymentIntent = s.PaymentIntent.ID
	}
	if raw, ok := s.Metadata[MetadataOrderID]; ok {
		if id, err := uuid.Parse(raw); err == nil {
			out.OrderID = &id
		}
	}
	return out
}
