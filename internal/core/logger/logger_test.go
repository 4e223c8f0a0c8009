package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

// TestInit verifies logger initialization for different environments.
func TestInit(t *testing.T) {
	t.Run("Development", func(t *testing.T) {
		err := Init("development", "debug")
		require.NoError(t, err)
		assert.NotNil(t, globalLogger)
		assert.True(t, globalLogger.Core().Enabled(zap.DebugLevel))
	})

	t.Run("Production", func(t *testing.T) {
		err := Init("production", "info")
		require.NoError(t, err)
		assert.NotNil(t, globalLogger)
		assert.False(t, globalLogger.Core().Enabled(zap.DebugLevel))
		assert.True(t, globalLogger.Core().Enabled(zap.InfoLevel))
	})

	t.Run("InvalidLevel", func(t *testing.T) {
		err := Init("development", "invalid_level")
		require.NoError(t, err)
	})
}

// TestGet verifies that Get returns the global logger.
func TestGet(t *testing.T) {
	globalLogger = nil
	assert.NotNil(t, Get())

	Init("development", "info")
	assert.NotNil(t, Get())
	assert.Same(t, globalLogger, Get())
}

func TestFromContext(t *testing.T) {
	t.Run("FallsBackToGlobal", func(t *testing.T) {
		Init("development", "info")
		assert.Same(t, globalLogger, FromContext(context.Background()))
	})

	t.Run("ReturnsScopedLogger", func(t *testing.T) {
		core, logs := observer.New(zap.InfoLevel)
		scoped := zap.New(core).With(zap.String("ray_id", "abc"))

		ctx := WithContext(context.Background(), scoped)
		FromContext(ctx).Info("hello")

		require.Equal(t, 1, logs.Len())
		assert.Equal(t, "abc", logs.All()[0].ContextMap()["ray_id"])
	})

	t.Run("TagsActiveSpan", func(t *testing.T) {
		core, logs := observer.New(zap.InfoLevel)
		ctx := WithContext(context.Background(), zap.New(core))

		traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
		spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
		ctx = trace.ContextWithSpanContext(ctx, trace.NewSpanContext(trace.SpanContextConfig{
			TraceID:    traceID,
			SpanID:     spanID,
			TraceFlags: trace.FlagsSampled,
		}))
		FromContext(ctx).Info("hello")

		require.Equal(t, 1, logs.Len())
		fields := logs.All()[0].ContextMap()
		assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", fields["trace_id"])
		assert.Equal(t, "00f067aa0ba902b7", fields["span_id"])
	})

	t.Run("NilLoggerIgnored", func(t *testing.T) {
		ctx := context.Background()
		assert.Equal(t, ctx, WithContext(ctx, nil))
	})
}

// TestSync verifies that Sync does not panic even if logger is nil.
func TestSync(t *testing.T) {
	globalLogger = nil
	Sync()

	Init("development", "info")
	Sync()
}
