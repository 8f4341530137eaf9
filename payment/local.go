package payment

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v81"
)

// Local issues intents without contacting a processor. It is selected when no
// Stripe key is configured, and accepts unsigned Stripe-shaped webhook bodies.
type Local struct{}

func NewLocal() *Local { return &Local{} }

func (l *Local) CreatePaymentIntent(_ context.Context, req IntentRequest) (Intent, error) {
	if req.AmountMinor <= 0 {
		return Intent{}, fmt.Errorf("local gateway: amount must be positive, got %d", req.AmountMinor)
	}
	id := "pi_" + compactUUID()
	return Intent{ID: id, ClientSecret: id + "_secret_" + compactUUID()}, nil
}

func (l *Local) ParseEvent(payload []byte, _ string) (Event, error) {
	var ev stripe.Event
	if err := json.Unmarshal(payload, &ev); err != nil {
		return Event{}, fmt.Errorf("%w: %v", ErrInvalidEvent, err)
	}
	return eventFromStripe(ev)
}

func compactUUID() string {
	u := uuid.New()
	return fmt.Sprintf("%x", u[:])
}
