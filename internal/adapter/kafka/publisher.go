package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/sales-feed-service/internal/config"
	"github.com/couchcryptid/sales-feed-service/internal/domain"
	"github.com/couchcryptid/storm-data-shared/retry"
	kafkago "github.com/segmentio/kafka-go"
)

const (
	maxAttempts    = 3
	initialBackoff = 200 * time.Millisecond
	maxBackoff     = time.Second
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Publisher produces each generated sale to a Kafka topic.
// It implements feed.Publisher.
type Publisher struct {
	writer  messageWriter
	logger  *slog.Logger
	backoff time.Duration
}

// NewPublisher creates a Kafka producer for the configured sales topic.
func NewPublisher(cfg *config.Config, logger *slog.Logger) *Publisher {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
		BatchTimeout: 10 * time.Millisecond,
		WriteTimeout: 2 * time.Second,
	}
	return &Publisher{writer: w, logger: logger, backoff: initialBackoff}
}

// Publish writes one sale, retrying transient failures a few times with
// exponential backoff. The sale is keyed by city so a city's sales stay in order.
func (p *Publisher) Publish(ctx context.Context, sale domain.Sale) error {
	msg, err := serializeToMessage(sale)
	if err != nil {
		return err
	}

	backoff := p.backoff
	for attempt := 1; ; attempt++ {
		err = p.writer.WriteMessages(ctx, msg)
		if err == nil {
			return nil
		}
		if attempt == maxAttempts || ctx.Err() != nil {
			return fmt.Errorf("publish sale after %d attempts: %w", attempt, err)
		}
		p.logger.Debug("publish sale failed, retrying", "attempt", attempt, "backoff", backoff, "error", err)
		if !retry.SleepWithContext(ctx, backoff) {
			return fmt.Errorf("publish sale: %w", ctx.Err())
		}
		backoff = retry.NextBackoff(backoff, maxBackoff)
	}
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

// serializeToMessage marshals a Sale into a Kafka message.
func serializeToMessage(sale domain.Sale) (kafkago.Message, error) {
	data, err := json.Marshal(sale)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize sale: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(sale.City),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "item", Value: []byte(sale.Item)},
			{Key: "sold_at", Value: []byte(sale.Timestamp.Format(time.RFC3339))},
		},
	}, nil
}
