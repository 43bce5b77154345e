package listener

import (
	"context"
	"fmt"
	"log"

	amqp "github.com/rabbitmq/amqp091-go"

	"meetup-client/internal/observability"
)

// Subscriber opens one push subscription per signed-in identity over the
// backend's row-change feed. Deliveries are opaque nudges: the payload is
// never trusted, each one just triggers a forced re-fetch of both
// observations.
type Subscriber interface {
	Subscribe(ctx context.Context, userID string, onChange func()) (func(), error)
	Close() error
}

// NewSubscriber connects to the change-feed exchange, or degrades to a noop
// subscriber when AMQP is not configured or unreachable. Polling alone still
// converges; the feed only reduces latency.
func NewSubscriber(amqpURL, exchange string) Subscriber {
	if amqpURL == "" {
		log.Printf("change feed disabled, using noop: empty amqp url")
		return noopSubscriber{reason: "empty amqp url"}
	}

	conn, err := amqp.Dial(amqpURL)
	if err != nil {
		log.Printf("change feed disabled, using noop: %v", err)
		return noopSubscriber{reason: err.Error()}
	}

	log.Printf("change feed connected exchange=%s", exchange)
	return &amqpSubscriber{conn: conn, exchange: exchange}
}

type amqpSubscriber struct {
	conn     *amqp.Connection
	exchange string
}

// Subscribe binds an exclusive queue to the three feeds that concern the
// user: requests they sent, requests addressed to them, and their meeting
// participation rows. The returned release function tears the subscription
// down; it is also torn down when ctx is cancelled.
func (s *amqpSubscriber) Subscribe(ctx context.Context, userID string, onChange func()) (func(), error) {
	ch, err := s.conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open channel: %w", err)
	}

	if err := ch.ExchangeDeclare(s.exchange, "topic", true, false, false, false, nil); err != nil {
		ch.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	queue, err := ch.QueueDeclare("", false, true, true, false, nil)
	if err != nil {
		ch.Close()
		return nil, fmt.Errorf("declare queue: %w", err)
	}

	routingKeys := []string{
		"meeting_requests.from." + userID,
		"meeting_requests.to." + userID,
		"meeting_participants." + userID,
	}
	for _, key := range routingKeys {
		if err := ch.QueueBind(queue.Name, key, s.exchange, false, nil); err != nil {
			ch.Close()
			return nil, fmt.Errorf("bind %s: %w", key, err)
		}
	}

	deliveries, err := ch.Consume(queue.Name, "", true, true, false, false, nil)
	if err != nil {
		ch.Close()
		return nil, fmt.Errorf("consume: %w", err)
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-deliveries:
				if !ok {
					observability.IncAMQPConsumeError()
					log.Printf("change feed closed for user %s", userID)
					return
				}
				onChange()
			}
		}
	}()

	released := false
	return func() {
		if released {
			return
		}
		released = true
		if err := ch.Close(); err != nil {
			log.Printf("change feed channel close: %v", err)
		}
	}, nil
}

func (s *amqpSubscriber) Close() error {
	return s.conn.Close()
}

type noopSubscriber struct {
	reason string
}

func (noopSubscriber) Subscribe(ctx context.Context, userID string, onChange func()) (func(), error) {
	return func() {}, nil
}

func (noopSubscriber) Close() error {
	return nil
}

// Mode reports the subscriber mode for logging.
func Mode(s Subscriber) string {
	switch s.(type) {
	case *amqpSubscriber:
		return "amqp"
	case noopSubscriber:
		return "noop"
	default:
		return "unknown"
	}
}

// NoopReason returns why a noop subscriber was chosen.
func NoopReason(s Subscriber) string {
	if sub, ok := s.(noopSubscriber); ok {
		return sub.reason
	}
	return ""
}
