package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"food-ordering-api/logger"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

const ordersExchange = "orders_topic"

// RabbitPublisher publishes order events to a topic exchange
type RabbitPublisher struct {
	conn *amqp.Connection
	ch   *amqp.Channel
	log  *logger.Logger
}

// DialRabbit connects and declares the orders exchange
func DialRabbit(url string, log *logger.Logger) (*RabbitPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(ordersExchange, "topic", true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange %s: %w", ordersExchange, err)
	}
	return &RabbitPublisher{conn: conn, ch: ch, log: log}, nil
}

// RoutingKey is <event type>.<restaurantID>, e.g. order.created.12
func RoutingKey(ev OrderEvent) string {
	return fmt.Sprintf("%s.%d", ev.Type, ev.RestaurantID)
}

func (p *RabbitPublisher) Publish(ctx context.Context, ev OrderEvent) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	key := RoutingKey(ev)
	err = p.ch.PublishWithContext(ctx, ordersExchange, key, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    ev.OccurredAt,
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("failed to publish %s: %w", key, err)
	}

	p.log.Debug(ctx, "event_published", "published order event",
		zap.String("exchange", ordersExchange),
		zap.String("routing_key", key),
		zap.Int("message_size", len(body)),
	)
	return nil
}

func (p *RabbitPublisher) Close() error {
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}
