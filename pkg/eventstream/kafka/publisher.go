// Package kafka publishes pipeline events to a Kafka topic.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/segmentio/kafka-go"

	"github.com/petalhealth/petal/pkg/eventstream"
)

// DefaultTopic is the topic events are written to when none is configured.
const DefaultTopic = "petal.events"

// Config holds Kafka publisher settings.
type Config struct {
	// Brokers is the list of bootstrap broker addresses.
	Brokers []string

	// Topic is the destination topic.
	Topic string

	// Logger is the logger for publish diagnostics.
	Logger *slog.Logger
}

// Publisher writes events to Kafka as JSON messages. Turn events are keyed by
// user id so one user's turns stay ordered within a partition.
type Publisher struct {
	writer *kafka.Writer
	logger *slog.Logger
}

// NewPublisher creates a Kafka-backed publisher.
func NewPublisher(c *Config) (*Publisher, error) {
	if len(c.Brokers) == 0 {
		return nil, fmt.Errorf("no kafka brokers configured")
	}
	if c.Topic == "" {
		c.Topic = DefaultTopic
	}

	writer := &kafka.Writer{
		Addr:     kafka.TCP(c.Brokers...),
		Topic:    c.Topic,
		Balancer: &kafka.LeastBytes{},
	}

	return &Publisher{writer: writer, logger: c.Logger}, nil
}

// PublishTurn writes a turn-persisted event.
func (p *Publisher) PublishTurn(ctx context.Context, event *eventstream.TurnPersistedEvent) error {
	if event == nil {
		return eventstream.ErrNilEvent
	}
	return p.publish(ctx, event.EventType, []byte(event.UserID), event)
}

// PublishCorpusIndexed writes a corpus-indexed event.
func (p *Publisher) PublishCorpusIndexed(ctx context.Context, event *eventstream.CorpusIndexedEvent) error {
	if event == nil {
		return eventstream.ErrNilEvent
	}
	return p.publish(ctx, event.EventType, []byte(event.EventType), event)
}

func (p *Publisher) publish(ctx context.Context, eventType string, key []byte, payload any) error {
	value, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding %s event: %w", eventType, err)
	}

	if err := p.writer.WriteMessages(ctx, kafka.Message{Key: key, Value: value}); err != nil {
		return fmt.Errorf("publishing %s event: %w", eventType, err)
	}

	p.logger.Debug("event published", "event_type", eventType, "topic", p.writer.Topic)
	return nil
}

// Close flushes and closes the underlying writer.
func (p *Publisher) Close() error {
	return p.writer.Close()
}

// Ensure Publisher implements eventstream.Publisher
var _ eventstream.Publisher = (*Publisher)(nil)
