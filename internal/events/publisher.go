package events

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	skafka "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const (
	publishTimeout = 10 * time.Second
	queueSize      = 256
)

// Writer is the subset of segmentio kafka.Writer the publisher needs.
// Narrowing the dependency keeps the publisher testable.
type Writer interface {
	WriteMessages(ctx context.Context, msgs ...skafka.Message) error
	Close() error
}

// Publisher is the interface the user service uses to announce lifecycle
// changes. Delivery is best-effort: one attempt, failures are logged and
// never surfaced to the mutating caller.
type Publisher interface {
	PublishAsync(op Operation, email string)
	Close() error
}

// KafkaPublisher writes lifecycle events to the user-events topic, keyed by
// email so per-user ordering is preserved. A single worker goroutine drains
// the queue, which keeps enqueue order equal to send order.
type KafkaPublisher struct {
	writer Writer
	logger *zap.Logger
	queue  chan UserEvent
	done   chan struct{}
	once   sync.Once
}

// NewKafkaPublisher creates a publisher writing to the given brokers/topic.
func NewKafkaPublisher(brokers []string, topic string, logger *zap.Logger) *KafkaPublisher {
	w := &skafka.Writer{
		Addr:     skafka.TCP(brokers...),
		Topic:    topic,
		Balancer: &skafka.Hash{},
	}
	return newPublisher(w, logger)
}

// NewKafkaPublisherWithWriter allows injecting a test writer.
func NewKafkaPublisherWithWriter(w Writer, logger *zap.Logger) *KafkaPublisher {
	return newPublisher(w, logger)
}

func newPublisher(w Writer, logger *zap.Logger) *KafkaPublisher {
	p := &KafkaPublisher{
		writer: w,
		logger: logger,
		queue:  make(chan UserEvent, queueSize),
		done:   make(chan struct{}),
	}
	go p.run()
	return p
}

// PublishAsync hands the event to the channel without blocking the caller
// past enqueue. Completion is logged; there is no retry and no backoff. A
// full queue drops the event, which is within the best-effort contract.
func (p *KafkaPublisher) PublishAsync(op Operation, email string) {
	event := NewUserEvent(op, email)
	select {
	case p.queue <- event:
	default:
		p.logger.Error("event queue full, dropping event",
			zap.String("operation", string(op)),
			zap.String("email", email))
	}
}

func (p *KafkaPublisher) run() {
	defer close(p.done)
	for event := range p.queue {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		err := p.send(ctx, event)
		cancel()

		if err != nil {
			p.logger.Error("failed to publish user event",
				zap.String("operation", string(event.Operation)),
				zap.String("email", event.Email),
				zap.Error(err))
			continue
		}
		p.logger.Info("user event published",
			zap.String("operation", string(event.Operation)),
			zap.String("email", event.Email))
	}
}

func (p *KafkaPublisher) send(ctx context.Context, event UserEvent) error {
	value, err := json.Marshal(event)
	if err != nil {
		return err
	}
	msg := skafka.Message{
		Key:   []byte(event.Email),
		Value: value,
		Time:  event.Timestamp,
	}
	return p.writer.WriteMessages(ctx, msg)
}

// Publish sends one event synchronously, bypassing the queue. Exposed for
// callers that need to observe the outcome, such as tests.
func (p *KafkaPublisher) Publish(ctx context.Context, op Operation, email string) error {
	return p.send(ctx, NewUserEvent(op, email))
}

// Close stops the worker after draining queued events and closes the writer.
func (p *KafkaPublisher) Close() error {
	p.once.Do(func() {
		close(p.queue)
	})
	<-p.done
	return p.writer.Close()
}
