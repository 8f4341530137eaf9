package events

import (
	"context"
	"time"

	"food-ordering-api/logger"
	"food-ordering-api/models"

	"go.uber.org/zap"
)

type EventType string

const (
	OrderCreated        EventType = "order.created"
	OrderStatusChanged  EventType = "order.status_changed"
	OrderPaymentUpdated EventType = "order.payment_updated"
)

// OrderEvent is the message emitted whenever an order changes
type OrderEvent struct {
	Type          EventType            `json:"type"`
	OrderID       uint                 `json:"orderId"`
	RestaurantID  uint                 `json:"restaurantId"`
	BranchID      uint                 `json:"branchId"`
	UserID        uint                 `json:"userId"`
	Status        string               `json:"status"`
	PaymentStatus models.PaymentStatus `json:"paymentStatus"`
	ChangedBy     uint                 `json:"changedBy,omitempty"`
	OccurredAt    time.Time            `json:"occurredAt"`
}

// NewOrderEvent snapshots an order into an event of the given type
func NewOrderEvent(t EventType, o *models.Order, changedBy uint) OrderEvent {
	return OrderEvent{
		Type:          t,
		OrderID:       o.ID,
		RestaurantID:  o.RestaurantID,
		BranchID:      o.BranchID,
		UserID:        o.UserID,
		Status:        o.Status,
		PaymentStatus: o.PaymentStatus,
		ChangedBy:     changedBy,
		OccurredAt:    time.Now().UTC(),
	}
}

// Publisher delivers order events to interested consumers
type Publisher interface {
	Publish(ctx context.Context, ev OrderEvent) error
	Close() error
}

// LogPublisher writes events to the log when no broker is configured
type LogPublisher struct {
	log *logger.Logger
}

func NewLogPublisher(log *logger.Logger) *LogPublisher {
	return &LogPublisher{log: log}
}

func (p *LogPublisher) Publish(ctx context.Context, ev OrderEvent) error {
	p.log.Info(ctx, "event_published", "order event",
		zap.String("type", string(ev.Type)),
		zap.Uint64("order_id", uint64(ev.OrderID)),
		zap.String("status", ev.Status),
		zap.String("payment_status", string(ev.PaymentStatus)),
	)
	return nil
}

func (p *LogPublisher) Close() error { return nil }
