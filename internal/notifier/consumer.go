package notifier

import (
	"context"
	"encoding/json"
	"time"

	skafka "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/spec-kit/user-lifecycle/internal/config"
	"github.com/spec-kit/user-lifecycle/internal/events"
	"github.com/spec-kit/user-lifecycle/internal/observability"
)

const (
	handleTimeout = 30 * time.Second
	fetchBackoff  = time.Second
)

// Reader is the subset of segmentio kafka.Reader the consumer needs.
type Reader interface {
	FetchMessage(ctx context.Context) (skafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...skafka.Message) error
	Close() error
}

// Consumer reads lifecycle events from the user-events topic and dispatches
// them to the Mailer, one message at a time. A failed send leaves the offset
// uncommitted so the broker redelivers the message (at-least-once). Duplicate
// deliveries therefore cause duplicate emails; this is accepted, not masked.
type Consumer struct {
	reader  Reader
	mailer  *Mailer
	logger  *zap.Logger
	metrics *observability.Metrics
}

// NewConsumer joins the configured consumer group on the user-events topic.
func NewConsumer(cfg config.KafkaConfig, mailer *Mailer, logger *zap.Logger, metrics *observability.Metrics) *Consumer {
	reader := skafka.NewReader(skafka.ReaderConfig{
		Brokers:  cfg.Brokers,
		Topic:    cfg.Topic,
		GroupID:  cfg.GroupID,
		MinBytes: 1,
		MaxBytes: 10e6,
	})
	return &Consumer{reader: reader, mailer: mailer, logger: logger, metrics: metrics}
}

// NewConsumerWithReader allows injecting a test reader.
func NewConsumerWithReader(reader Reader, mailer *Mailer, logger *zap.Logger, metrics *observability.Metrics) *Consumer {
	return &Consumer{reader: reader, mailer: mailer, logger: logger, metrics: metrics}
}

// Run processes messages until ctx is cancelled.
func (c *Consumer) Run(ctx context.Context) {
	c.logger.Info("notification consumer started")

	for {
		if ctx.Err() != nil {
			return
		}

		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			c.logger.Warn("fetch message failed", zap.Error(err))
			time.Sleep(fetchBackoff)
			continue
		}

		handleCtx, cancel := context.WithTimeout(ctx, handleTimeout)
		err = c.Handle(handleCtx, msg.Value)
		cancel()

		if err != nil {
			// Leave the offset uncommitted; the broker will redeliver.
			c.logger.Error("event processing failed, awaiting redelivery",
				zap.Int64("offset", msg.Offset), zap.Error(err))
			continue
		}

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			c.logger.Error("commit failed", zap.Int64("offset", msg.Offset), zap.Error(err))
		}
	}
}

// Handle processes one raw event payload. Malformed payloads, blank emails
// and unknown operations are terminal: they are logged and dropped without
// triggering redelivery. Only mail transport failures propagate.
func (c *Consumer) Handle(ctx context.Context, value []byte) error {
	var event events.UserEvent
	if err := json.Unmarshal(value, &event); err != nil {
		c.logger.Warn("discarding malformed event", zap.Error(err))
		c.metrics.RecordEvent("malformed", "dropped")
		return nil
	}

	if event.Email == "" {
		c.logger.Warn("discarding event without email", zap.String("operation", string(event.Operation)))
		c.metrics.RecordEvent(string(event.Operation), "dropped")
		return nil
	}

	c.logger.Info("received user event",
		zap.String("operation", string(event.Operation)),
		zap.String("email", event.Email))

	switch event.Operation {
	case events.OperationCreate:
		if err := c.mailer.SendCreated(ctx, event.Email); err != nil {
			c.metrics.RecordEvent(string(event.Operation), "failed")
			return err
		}
	case events.OperationDelete:
		if err := c.mailer.SendDeleted(ctx, event.Email); err != nil {
			c.metrics.RecordEvent(string(event.Operation), "failed")
			return err
		}
	default:
		c.logger.Warn("discarding event with unknown operation", zap.String("operation", string(event.Operation)))
		c.metrics.RecordEvent(string(event.Operation), "dropped")
		return nil
	}

	c.metrics.RecordEvent(string(event.Operation), "sent")
	return nil
}

// Close releases the underlying reader.
func (c *Consumer) Close() error {
	return c.reader.Close()
}
