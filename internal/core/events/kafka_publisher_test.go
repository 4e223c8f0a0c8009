package events

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingWriter struct {
	mu       sync.Mutex
	messages []kafka.Message
	closed   bool
}

func (w *recordingWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *recordingWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closed = true
	return nil
}

func TestKafkaPublisher_PublishAndFlush(t *testing.T) {
	w := &recordingWriter{}
	p := newKafkaPublisher(w, 8)

	err := p.Publish(context.Background(), OrderPaid, "order-1", map[string]string{"order_id": "order-1"})
	require.NoError(t, err)
	require.NoError(t, p.Close())

	require.Len(t, w.messages, 1)
	assert.True(t, w.closed)

	msg := w.messages[0]
	assert.Equal(t, "order-1", string(msg.Key))

	var env Envelope
	require.NoError(t, json.Unmarshal(msg.Value, &env))
	assert.Equal(t, OrderPaid, env.EventType)
	assert.Equal(t, 1, env.EventVersion)
	assert.Equal(t, "order-1", env.CorrelationID)
	assert.NotEmpty(t, env.EventID)
	assert.JSONEq(t, `{"order_id":"order-1"}`, string(env.Payload))
}

func TestKafkaPublisher_PublishAfterClose(t *testing.T) {
	p := newKafkaPublisher(&recordingWriter{}, 1)
	require.NoError(t, p.Close())
	require.NoError(t, p.Close())

	err := p.Publish(context.Background(), OrderCreated, "k", struct{}{})
	assert.ErrorIs(t, err, ErrPublisherClosed)
}

func TestNopPublisher(t *testing.T) {
	var p Publisher = NopPublisher{}
	assert.NoError(t, p.Publish(context.Background(), OrderCreated, "k", nil))
	assert.NoError(t, p.Close())
}
