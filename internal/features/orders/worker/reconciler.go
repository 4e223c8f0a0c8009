package worker

import (
	"context"
	"time"

	"storefront-api/internal/core/logger"

	"go.uber.org/zap"
)

// Reconciler is the slice of the order service the worker drives.
type Reconciler interface {
	RetryDueShipments(ctx context.Context, limit int) (int, error)
	ReconcileStalePending(ctx context.Context, olderThan time.Duration, limit int) (int, error)
}

// Config tunes the reconciliation loop.
type Config struct {
	Interval   time.Duration
	StaleAfter time.Duration
	BatchSize  int
}

// ReconciliationWorker periodically retries pending shipments and re-verifies
// online orders stuck in PAYMENT_PENDING.
type ReconciliationWorker struct {
	orders Reconciler
	cfg    Config
}

func NewReconciliationWorker(orders Reconciler, cfg Config) *ReconciliationWorker {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}
	return &ReconciliationWorker{orders: orders, cfg: cfg}
}

// Run blocks until ctx is cancelled. A non-positive interval disables the loop.
func (rw *ReconciliationWorker) Run(ctx context.Context) {
	log := logger.Get()
	if rw.cfg.Interval <= 0 {
		log.Info("Reconciliation worker disabled")
		return
	}

	ticker := time.NewTicker(rw.cfg.Interval)
	defer ticker.Stop()

	log.Info("Reconciliation worker started", zap.Duration("interval", rw.cfg.Interval))

	for {
		select {
		case <-ctx.Done():
			log.Info("Reconciliation worker stopped")
			return
		case <-ticker.C:
			rw.process(ctx)
		}
	}
}

// process runs one reconciliation pass. Failures are logged and retried on the next tick.
func (rw *ReconciliationWorker) process(ctx context.Context) {
	log := logger.Get()

	shipped, err := rw.orders.RetryDueShipments(ctx, rw.cfg.BatchSize)
	if err != nil {
		log.Error("Shipment retry pass failed", zap.Error(err))
	} else if shipped > 0 {
		log.Info("Retried due shipments", zap.Int("count", shipped))
	}

	if rw.cfg.StaleAfter <= 0 {
		return
	}
	settled, err := rw.orders.ReconcileStalePending(ctx, rw.cfg.StaleAfter, rw.cfg.BatchSize)
	if err != nil {
		log.Error("Stale payment reconciliation failed", zap.Error(err))
	} else if settled > 0 {
		log.Info("Reconciled stale pending orders", zap.Int("count", settled))
	}
}
