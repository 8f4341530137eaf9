package payment

import (
	"context"
	"errors"
	"fmt"

	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/client"
	"github.com/stripe/stripe-go/v81/webhook"
)

// Stripe creates payment intents through the Stripe API
type Stripe struct {
	api           *client.API
	webhookSecret string
}

// ErrMissingWebhookSecret is returned by NewStripe; without a secret any caller
// could sign webhook events.
var ErrMissingWebhookSecret = errors.New("stripe: webhook secret is required")

func NewStripe(secretKey, webhookSecret string) (*Stripe, error) {
	if webhookSecret == "" {
		return nil, ErrMissingWebhookSecret
	}
	return &Stripe{
		api:           client.New(secretKey, nil),
		webhookSecret: webhookSecret,
	}, nil
}

func (s *Stripe) CreatePaymentIntent(ctx context.Context, req IntentRequest) (Intent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(req.AmountMinor),
		Currency: stripe.String(req.Currency),
	}
	params.Context = ctx
	for k, v := range req.Metadata {
		params.AddMetadata(k, v)
	}

	pi, err := s.api.PaymentIntents.New(params)
	if err != nil {
		return Intent{}, fmt.Errorf("stripe: create payment intent: %w", err)
	}
	return Intent{ID: pi.ID, ClientSecret: pi.ClientSecret}, nil
}

func (s *Stripe) ParseEvent(payload []byte, signature string) (Event, error) {
	ev, err := webhook.ConstructEventWithOptions(payload, signature, s.webhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return Event{}, fmt.Errorf("%w: %v", ErrInvalidEvent, err)
	}
	return eventFromStripe(ev)
}
