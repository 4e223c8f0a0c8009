package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockReconciler struct {
	mock.Mock
}

func (m *MockReconciler) RetryDueShipments(ctx context.Context, limit int) (int, error) {
	args := m.Called(ctx, limit)
	return args.Int(0), args.Error(1)
}

func (m *MockReconciler) ReconcileStalePending(ctx context.Context, olderThan time.Duration, limit int) (int, error) {
	args := m.Called(ctx, olderThan, limit)
	return args.Int(0), args.Error(1)
}

func TestReconciliationWorker_Process(t *testing.T) {
	t.Run("RunsBothPasses", func(t *testing.T) {
		rec := new(MockReconciler)
		rec.On("RetryDueShipments", mock.Anything, 20).Return(2, nil).Once()
		rec.On("ReconcileStalePending", mock.Anything, 30*time.Minute, 20).Return(1, nil).Once()

		w := NewReconciliationWorker(rec, Config{Interval: time.Minute, StaleAfter: 30 * time.Minute, BatchSize: 20})
		w.process(context.Background())

		rec.AssertExpectations(t)
	})

	t.Run("ShipmentErrorDoesNotSkipPayments", func(t *testing.T) {
		rec := new(MockReconciler)
		rec.On("RetryDueShipments", mock.Anything, 50).Return(0, errors.New("db down")).Once()
		rec.On("ReconcileStalePending", mock.Anything, time.Hour, 50).Return(0, nil).Once()

		w := NewReconciliationWorker(rec, Config{Interval: time.Minute, StaleAfter: time.Hour})
		w.process(context.Background())

		rec.AssertExpectations(t)
	})

	t.Run("StalePassDisabled", func(t *testing.T) {
		rec := new(MockReconciler)
		rec.On("RetryDueShipments", mock.Anything, 50).Return(0, nil).Once()

		w := NewReconciliationWorker(rec, Config{Interval: time.Minute})
		w.process(context.Background())

		rec.AssertExpectations(t)
		rec.AssertNotCalled(t, "ReconcileStalePending", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestReconciliationWorker_Run(t *testing.T) {
	t.Run("TicksUntilCancelled", func(t *testing.T) {
		rec := new(MockReconciler)
		ticked := make(chan struct{}, 1)
		rec.On("RetryDueShipments", mock.Anything, 50).Return(0, nil).Run(func(mock.Arguments) {
			select {
			case ticked <- struct{}{}:
			default:
			}
		})

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan struct{})
		go func() {
			NewReconciliationWorker(rec, Config{Interval: 5 * time.Millisecond}).Run(ctx)
			close(done)
		}()

		select {
		case <-ticked:
		case <-time.After(2 * time.Second):
			t.Fatal("worker never ticked")
		}
		cancel()

		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("worker did not stop")
		}
	})

	t.Run("DisabledReturnsImmediately", func(t *testing.T) {
		rec := new(MockReconciler)
		NewReconciliationWorker(rec, Config{}).Run(context.Background())
		assert.Empty(t, rec.Calls)
	})
}
