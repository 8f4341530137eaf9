package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v81"
)

// EventType names the processor callbacks the service reacts to
type EventType string

const (
	EventPaymentSucceeded EventType = "payment_intent.succeeded"
	EventPaymentFailed    EventType = "payment_intent.payment_failed"
)

var ErrInvalidEvent = errors.New("invalid payment event")

// IntentRequest carries the amount already converted to minor units
type IntentRequest struct {
	AmountMinor int64
	Currency    string
	Metadata    map[string]string
}

// Intent is the part of a payment intent a client needs to complete payment
type Intent struct {
	ID           string
	ClientSecret string
}

// Event is a processor callback reduced to what the order service needs
type Event struct {
	Type            EventType
	PaymentIntentID string
	OrderID         uint
}

// Gateway is the external payment processor
type Gateway interface {
	CreatePaymentIntent(ctx context.Context, req IntentRequest) (Intent, error)
	ParseEvent(payload []byte, signature string) (Event, error)
}

// ToMinorUnits converts a major-unit amount to the processor's integer
// convention, rounding half away from zero.
func ToMinorUnits(amount decimal.Decimal) int64 {
	return amount.Shift(2).Round(0).IntPart()
}

// eventFromStripe extracts the payment intent from a processor event.
func eventFromStripe(ev stripe.Event) (Event, error) {
	if ev.Data == nil || len(ev.Data.Raw) == 0 {
		return Event{}, fmt.Errorf("%w: missing data object", ErrInvalidEvent)
	}
	var pi stripe.PaymentIntent
	if err := json.Unmarshal(ev.Data.Raw, &pi); err != nil {
		return Event{}, fmt.Errorf("%w: %v", ErrInvalidEvent, err)
	}
	if pi.ID == "" {
		return Event{}, fmt.Errorf("%w: missing payment intent id", ErrInvalidEvent)
	}

	out := Event{Type: EventType(ev.Type), PaymentIntentID: pi.ID}
	if raw, ok := pi.Metadata["orderId"]; ok {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return Event{}, fmt.Errorf("%w: bad orderId metadata %q", ErrInvalidEvent, raw)
		}
		out.OrderID = uint(id)
	}
	return out, nil
}
