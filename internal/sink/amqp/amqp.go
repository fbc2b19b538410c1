package amqp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	amqp091 "github.com/rabbitmq/amqp091-go"

	"github.com/silverpine/tapline/internal/model"
)

// Sink publishes JSON-encoded events to a topic exchange with a fixed
// routing key. The connection is established and the exchange declared
// once at construction; a single publish failure is surfaced to the
// handler, which falls back to HTTP rather than reconnecting here.
type Sink struct {
	conn       *amqp091.Connection
	channel    *amqp091.Channel
	exchange   string
	routingKey string
}

// New dials the broker, opens a channel, and declares the exchange.
func New(url, exchange, routingKey string) (*Sink, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("amqp: dial: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("amqp: channel: %w", err)
	}

	if err := channel.ExchangeDeclare(exchange, "topic", false, false, false, false, nil); err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("amqp: declare exchange %q: %w", exchange, err)
	}

	return &Sink{
		conn:       conn,
		channel:    channel,
		exchange:   exchange,
		routingKey: routingKey,
	}, nil
}

func (s *Sink) Name() string { return "broker" }

// Attempt publishes one event.
func (s *Sink) Attempt(ctx context.Context, event model.Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("amqp: marshal: %w", err)
	}

	err = s.channel.PublishWithContext(ctx, s.exchange, s.routingKey, false, false, amqp091.Publishing{
		ContentType: "application/json",
		MessageId:   uuid.NewString(),
		Timestamp:   event.Timestamp,
		Body:        body,
	})
	if err != nil {
		return fmt.Errorf("amqp: publish: %w", err)
	}
	return nil
}

func (s *Sink) Close() error {
	return errors.Join(s.channel.Close(), s.conn.Close())
}
