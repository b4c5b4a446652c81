package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"

	"mnemo/internal/eventstream"
)

// ErrNoBrokers is returned by NewPublisher when no broker address is configured.
var ErrNoBrokers = errors.New("kafka: no brokers configured")

// MessageWriter is the subset of *kafka.Writer the publisher needs.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Publisher writes log events to one topic, keyed by user id so a user's
// events stay on one partition in order.
type Publisher struct {
	writer MessageWriter
}

// NewPublisher returns a publisher over an async writer. Delivery failures are
// logged from the completion callback. WriteMessages can still wait on a
// metadata lookup, so callers on a request path put it behind an
// eventstream.Queue.
func NewPublisher(brokers []string, topic string) (*Publisher, error) {
	if len(brokers) == 0 {
		return nil, ErrNoBrokers
	}
	return NewPublisherWithWriter(&kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
		Async:        true,
		Completion:   logFailures,
	}), nil
}

func NewPublisherWithWriter(w MessageWriter) *Publisher {
	return &Publisher{writer: w}
}

func logFailures(msgs []kafka.Message, err error) {
	if err != nil {
		slog.Warn("kafka: delivering events", "count", len(msgs), "error", err)
	}
}

func (p *Publisher) PublishTurn(ctx context.Context, event *eventstream.TurnAppendedEvent) error {
	if event == nil {
		return eventstream.ErrNilEvent
	}
	return p.write(ctx, event.UserID, event)
}

func (p *Publisher) PublishCleared(ctx context.Context, event *eventstream.HistoryClearedEvent) error {
	if event == nil {
		return eventstream.ErrNilEvent
	}
	return p.write(ctx, event.UserID, event)
}

func (p *Publisher) write(ctx context.Context, key string, event any) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(key),
		Value: payload,
	})
	if err != nil {
		return fmt.Errorf("write event to kafka: %w", err)
	}
	return nil
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}
