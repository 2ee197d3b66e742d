// Package events publishes domain events to Kafka for downstream consumers.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"aurachat/internal/observability"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

// Event types emitted by the services.
const (
	UserRegistered = "user.registered"
	PostCreated    = "post.created"
	PostLiked      = "post.liked"
	UserFollowed   = "user.followed"
)

const (
	DefaultTopic  = "aurachat.events"
	queueSize     = 1024
	writeTimeout  = 10 * time.Second
	batchMaxCount = 100
)

// ErrClosed is returned by Publish after Close.
var ErrClosed = errors.New("event publisher closed")

// Event is the JSON document written as the Kafka message value. ActorID is
// also the message key so one user's events stay ordered within a partition.
type Event struct {
	ID         string         `json:"id"`
	Type       string         `json:"type"`
	ActorID    uint           `json:"actor_id"`
	Data       map[string]any `json:"data,omitempty"`
	OccurredAt time.Time      `json:"occurred_at"`
}

// New builds an event with a fresh id and timestamp.
func New(eventType string, actorID uint, data map[string]any) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		ActorID:    actorID,
		Data:       data,
		OccurredAt: time.Now().UTC(),
	}
}

// Publisher accepts events for delivery.
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
	Close() error
}

// MessageWriter is the subset of *kafka.Writer the publisher needs.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Noop drops every event. It is used when no brokers are configured.
type Noop struct{}

func (Noop) Publish(context.Context, Event) error { return nil }
func (Noop) Close() error                         { return nil }

// KafkaPublisher queues events in memory and writes them from a single
// background goroutine, so request handlers never wait on the brokers.
type KafkaPublisher struct {
	writer MessageWriter
	queue  chan Event
	done   chan struct{}

	mu     sync.RWMutex
	closed bool
}

// NewPublisher returns a Kafka-backed publisher, or Noop when brokers is empty.
func NewPublisher(brokers []string, topic string) Publisher {
	if len(brokers) == 0 {
		return Noop{}
	}
	if topic == "" {
		topic = DefaultTopic
	}
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		BatchSize:              batchMaxCount,
		BatchTimeout:           50 * time.Millisecond,
		WriteTimeout:           writeTimeout,
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}
	return NewKafkaPublisher(w)
}

// NewKafkaPublisher starts the delivery loop over w.
func NewKafkaPublisher(w MessageWriter) *KafkaPublisher {
	p := &KafkaPublisher{
		writer: w,
		queue:  make(chan Event, queueSize),
		done:   make(chan struct{}),
	}
	go p.run()
	return p
}

// Publish enqueues ev. It never blocks: a full queue drops the event.
func (p *KafkaPublisher) Publish(_ context.Context, ev Event) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrClosed
	}
	select {
	case p.queue <- ev:
		return nil
	default:
		observability.DomainEvents.WithLabelValues(ev.Type, "dropped").Inc()
		return fmt.Errorf("event queue full, dropped %s", ev.Type)
	}
}

func (p *KafkaPublisher) run() {
	defer close(p.done)
	for ev := range p.queue {
		p.write(ev)
	}
}

func (p *KafkaPublisher) write(ev Event) {
	value, err := json.Marshal(ev)
	if err != nil {
		observability.DomainEvents.WithLabelValues(ev.Type, "error").Inc()
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(strconv.FormatUint(uint64(ev.ActorID), 10)),
		Value: value,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(ev.Type)},
		},
		Time: ev.OccurredAt,
	})
	observability.DomainEvents.WithLabelValues(ev.Type, observability.Outcome(err)).Inc()
	if err != nil {
		slog.Warn("domain event write failed",
			slog.String("event_type", ev.Type),
			slog.String("event_id", ev.ID),
			slog.String("error", err.Error()))
	}
}

// Close stops accepting events, flushes the queue and closes the writer.
func (p *KafkaPublisher) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.queue)
	p.mu.Unlock()

	<-p.done
	return p.writer.Close()
}
