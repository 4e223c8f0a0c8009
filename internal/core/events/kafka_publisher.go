package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"storefront-api/internal/core/logger"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// ErrPublisherClosed is returned by Publish after Close.
var ErrPublisherClosed = errors.New("publisher closed")

// ErrBufferFull is returned when the outbound buffer cannot take more messages.
var ErrBufferFull = errors.New("event buffer full")

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher buffers envelopes and writes them from a single goroutine.
type KafkaPublisher struct {
	w      messageWriter
	inbox  chan kafka.Message
	done   chan struct{}
	mu     sync.RWMutex
	closed bool
}

// NewKafkaPublisher creates a publisher for topic and starts its writer loop.
func NewKafkaPublisher(brokers []string, topic string, buf int) *KafkaPublisher {
	return newKafkaPublisher(&kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		BatchTimeout: 50 * time.Millisecond,
	}, buf)
}

func newKafkaPublisher(w messageWriter, buf int) *KafkaPublisher {
	p := &KafkaPublisher{
		w:     w,
		inbox: make(chan kafka.Message, buf),
		done:  make(chan struct{}),
	}
	go p.loop()
	return p
}

func (p *KafkaPublisher) loop() {
	defer close(p.done)
	for m := range p.inbox {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := p.w.WriteMessages(ctx, m); err != nil {
			logger.Get().Error("Failed to write event",
				zap.String("key", string(m.Key)),
				zap.Error(err),
			)
		}
		cancel()
	}
}

// Publish wraps payload in an Envelope keyed by key and enqueues it without blocking.
func (p *KafkaPublisher) Publish(_ context.Context, eventType, key string, payload any) error {
	env, err := NewEnvelope(eventType, key, payload)
	if err != nil {
		return fmt.Errorf("build envelope: %w", err)
	}
	value, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal envelope: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: value,
		Time:  env.OccurredAt,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(eventType)},
		},
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrPublisherClosed
	}

	select {
	case p.inbox <- msg:
		return nil
	default:
		return ErrBufferFull
	}
}

// Close flushes buffered messages and closes the writer.
func (p *KafkaPublisher) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.inbox)
	p.mu.Unlock()

	<-p.done
	return p.w.Close()
}
