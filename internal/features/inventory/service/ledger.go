package service

import (
	"context"
	"errors"
	"fmt"

	"storefront-api/internal/core/logger"
	"storefront-api/internal/core/metrics"
	"storefront-api/internal/features/inventory/domain"
	"storefront-api/internal/features/inventory/ports"

	"go.uber.org/zap"
)

// Ledger debits and restores product stock for orders.
// Every debit is tagged with a key (the merchant order id) so a replay is a no-op.
type Ledger struct {
	repo    ports.ProductRepository
	metrics *metrics.Metrics
}

// NewLedger creates a Ledger over repo. m may be nil.
func NewLedger(repo ports.ProductRepository, m *metrics.Metrics) *Ledger {
	return &Ledger{repo: repo, metrics: m}
}

// Resolve checks that every line names an existing product.
func (l *Ledger) Resolve(ctx context.Context, lines []domain.StockLine) error {
	for _, line := range domain.MergeLines(lines) {
		if _, err := l.repo.GetByName(ctx, line.ProductName); err != nil {
			return fmt.Errorf("resolve %q: %w", line.ProductName, err)
		}
	}
	return nil
}

// CheckAvailability is a read-only pre-check over all lines. It reports every
// short line at once. The authoritative guard is Debit.
func (l *Ledger) CheckAvailability(ctx context.Context, lines []domain.StockLine) error {
	var shortages []domain.Shortage
	for _, line := range domain.MergeLines(lines) {
		p, err := l.repo.GetByName(ctx, line.ProductName)
		if err != nil {
			return fmt.Errorf("check %q: %w", line.ProductName, err)
		}
		if p.Stock < line.Quantity {
			shortages = append(shortages, domain.Shortage{
				ProductName: line.ProductName,
				Required:    line.Quantity,
				Available:   p.Stock,
			})
		}
	}
	if len(shortages) > 0 {
		return &domain.InsufficientStockError{Shortages: shortages}
	}
	return nil
}

// Debit applies all lines under key or none of them. Lines already applied under
// the same key count as done, so retrying a crashed debit completes it.
func (l *Ledger) Debit(ctx context.Context, key string, lines []domain.StockLine) error {
	merged := domain.MergeLines(lines)
	applied := make([]domain.StockLine, 0, len(merged))

	for _, line := range merged {
		err := l.repo.DebitStock(ctx, line.ProductName, line.Quantity, key)
		switch {
		case err == nil:
			l.metrics.StockDebit("applied")
			applied = append(applied, line)
		case errors.Is(err, domain.ErrDebitAlreadyApplied):
			l.metrics.StockDebit("replayed")
			applied = append(applied, line)
		default:
			l.compensate(ctx, key, applied)
			if errors.Is(err, domain.ErrInsufficientStock) {
				l.metrics.StockDebit("insufficient")
				return l.shortage(ctx, line)
			}
			l.metrics.StockDebit("error")
			return fmt.Errorf("debit %q: %w", line.ProductName, err)
		}
	}
	return nil
}

// Release restores every line debited under key.
func (l *Ledger) Release(ctx context.Context, key string, lines []domain.StockLine) error {
	var errs []error
	for _, line := range domain.MergeLines(lines) {
		if err := l.repo.RestoreStock(ctx, line.ProductName, line.Quantity, key); err != nil {
			errs = append(errs, fmt.Errorf("restore %q: %w", line.ProductName, err))
		}
	}
	return errors.Join(errs...)
}

// Settle drops the debit markers kept under key once the order can no longer
// be cancelled. Stock is left as it is.
func (l *Ledger) Settle(ctx context.Context, key string, lines []domain.StockLine) error {
	var errs []error
	for _, line := range domain.MergeLines(lines) {
		if err := l.repo.SettleDebit(ctx, line.ProductName, key); err != nil {
			errs = append(errs, fmt.Errorf("settle %q: %w", line.ProductName, err))
		}
	}
	return errors.Join(errs...)
}

func (l *Ledger) compensate(ctx context.Context, key string, applied []domain.StockLine) {
	if len(applied) == 0 {
		return
	}
	if err := l.Release(context.WithoutCancel(ctx), key, applied); err != nil {
		logger.FromContext(ctx).Error("Failed to compensate partial debit",
			zap.String("debit_key", key),
			zap.Error(err),
		)
	}
}

func (l *Ledger) shortage(ctx context.Context, line domain.StockLine) error {
	available := 0
	if p, err := l.repo.GetByName(ctx, line.ProductName); err == nil {
		available = p.Stock
	}
	return &domain.InsufficientStockError{Shortages: []domain.Shortage{{
		ProductName: line.ProductName,
		Required:    line.Quantity,
		Available:   available,
	}}}
}
