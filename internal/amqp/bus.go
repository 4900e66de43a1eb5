// Package amqp carries change events between clients over RabbitMQ.
// Writes fan out on a durable exchange; each client consumes them from
// its own exclusive queue, so every running session converges on the
// same state.
package amqp

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"flux/internal/store"

	"github.com/rabbitmq/amqp091-go"
)

type Bus struct {
	url          string
	conn         *amqp091.Connection
	channel      *amqp091.Channel
	exchangeName string
	queueName    string
}

var _ store.EventPublisher = (*Bus)(nil)

func NewBus(url, exchangeName string) (*Bus, error) {
	bus := &Bus{
		url:          url,
		exchangeName: exchangeName,
	}
	if err := bus.connect(); err != nil {
		return nil, err
	}
	return bus, nil
}

func (b *Bus) connect() error {
	conn, err := amqp091.Dial(b.url)
	if err != nil {
		return fmt.Errorf("dial AMQP: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return fmt.Errorf("open channel: %w", err)
	}

	b.conn = conn
	b.channel = channel

	if err := b.setup(); err != nil {
		b.Close()
		return fmt.Errorf("setup exchange and queue: %w", err)
	}

	return nil
}

func (b *Bus) setup() error {
	err := b.channel.ExchangeDeclare(
		b.exchangeName, // name
		"fanout",       // type: every client sees every change
		true,           // durable
		false,          // auto-deleted
		false,          // internal
		false,          // no-wait
		nil,            // arguments
	)
	if err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}

	// Server-named exclusive queue: one per client session, deleted on
	// disconnect. Change events are only useful to live sessions.
	q, err := b.channel.QueueDeclare(
		"",    // name
		false, // durable
		true,  // delete when unused
		true,  // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}
	b.queueName = q.Name

	err = b.channel.QueueBind(
		b.queueName,
		"", // fanout ignores routing keys
		b.exchangeName,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("bind queue: %w", err)
	}

	return nil
}

// PublishChange pushes one change event to every connected client,
// including the publisher itself; the echo is value-identical and safe
// to re-apply.
func (b *Bus) PublishChange(ctx context.Context, ev store.ChangeEvent) error {
	body, err := ev.ToJSON()
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err = b.channel.PublishWithContext(
		ctx,
		b.exchangeName,
		"",    // routing key
		false, // mandatory
		false, // immediate
		amqp091.Publishing{
			ContentType: "application/json",
			Timestamp:   time.Now(),
			Body:        body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish event: %w", err)
	}

	slog.DebugContext(ctx, "Published change event",
		"table", ev.Table,
		"kind", ev.Kind,
		"month", ev.Month,
		"exchange", b.exchangeName)

	return nil
}

// Consume delivers inbound change events to handler until ctx is done,
// reconnecting with exponential backoff when the broker drops the
// connection. A handler error drops the event; every payload is a full
// snapshot, so the next event for the same row supersedes it anyway.
func (b *Bus) Consume(ctx context.Context, handler func(store.ChangeEvent) error) error {
	attempt := 0
	for {
		err := b.consumeOnce(ctx, handler)
		if ctx.Err() != nil {
			return ctx.Err()
		}

		attempt++
		backoff := exponentialBackoff(attempt - 1)
		slog.WarnContext(ctx, "Event consumption interrupted, reconnecting",
			"error", err,
			"attempt", attempt,
			"backoff", backoff)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}

		if err := b.connect(); err != nil {
			continue
		}
		attempt = 0
	}
}

func (b *Bus) consumeOnce(ctx context.Context, handler func(store.ChangeEvent) error) error {
	msgs, err := b.channel.Consume(
		b.queueName,
		"",    // consumer
		false, // auto-ack
		true,  // exclusive
		false, // no-local
		false, // no-wait
		nil,   // args
	)
	if err != nil {
		return fmt.Errorf("start consuming: %w", err)
	}

	slog.InfoContext(ctx, "Started consuming change events", "queue", b.queueName)

	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "Stopping event consumption", "reason", ctx.Err())
			return ctx.Err()
		case delivery, ok := <-msgs:
			if !ok {
				return fmt.Errorf("message channel closed")
			}

			ev, err := store.ChangeEventFromJSON(delivery.Body)
			if err != nil {
				slog.ErrorContext(ctx, "Failed to unmarshal change event", "error", err)
				delivery.Nack(false, false)
				continue
			}

			if err := handler(ev); err != nil {
				slog.ErrorContext(ctx, "Failed to apply change event",
					"error", err,
					"table", ev.Table,
					"month", ev.Month)
				delivery.Nack(false, false)
				continue
			}

			delivery.Ack(false)
		}
	}
}

// exponentialBackoff doubles from one second per attempt, capped at 30s.
func exponentialBackoff(attempt int) time.Duration {
	if attempt >= 5 {
		return 30 * time.Second
	}
	return time.Second * time.Duration(1<<uint(attempt))
}

func (b *Bus) Close() error {
	if b.channel != nil {
		b.channel.Close()
	}
	if b.conn != nil {
		return b.conn.Close()
	}
	return nil
}
