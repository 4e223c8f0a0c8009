package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"storefront-api/internal/core/metrics"
	"storefront-api/internal/features/inventory/adapters"
	"storefront-api/internal/features/inventory/domain"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLedger(t *testing.T, stock map[string]int) (*Ledger, *adapters.MemoryProductRepository) {
	t.Helper()
	repo := adapters.NewMemoryProductRepository()
	for name, qty := range stock {
		p, err := domain.NewProduct(name, "oils", "", nil, qty, nil)
		require.NoError(t, err)
		require.NoError(t, repo.Create(context.Background(), p))
	}
	return NewLedger(repo, metrics.New(prometheus.NewRegistry())), repo
}

func stockOf(t *testing.T, repo *adapters.MemoryProductRepository, name string) (int, int) {
	t.Helper()
	p, err := repo.GetByName(context.Background(), name)
	require.NoError(t, err)
	return p.Stock, p.SoldStock
}

func TestLedger_Debit(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		ledger, repo := newLedger(t, map[string]int{"Sesame Oil 1L": 10})

		err := ledger.Debit(ctx, "ORD_1", []domain.StockLine{{ProductName: "Sesame Oil 1L", Quantity: 2}})
		require.NoError(t, err)

		stock, sold := stockOf(t, repo, "Sesame Oil 1L")
		assert.Equal(t, 8, stock)
		assert.Equal(t, 2, sold)
	})

	t.Run("ReplayIsNoop", func(t *testing.T) {
		ledger, repo := newLedger(t, map[string]int{"Sesame Oil 1L": 10})
		lines := []domain.StockLine{{ProductName: "Sesame Oil 1L", Quantity: 2}}

		require.NoError(t, ledger.Debit(ctx, "ORD_1", lines))
		require.NoError(t, ledger.Debit(ctx, "ORD_1", lines))

		stock, sold := stockOf(t, repo, "Sesame Oil 1L")
		assert.Equal(t, 8, stock)
		assert.Equal(t, 2, sold)
	})

	t.Run("AllOrNothing", func(t *testing.T) {
		ledger, repo := newLedger(t, map[string]int{"Sesame Oil 1L": 10, "Coconut Oil": 1})

		err := ledger.Debit(ctx, "ORD_1", []domain.StockLine{
			{ProductName: "Sesame Oil 1L", Quantity: 2},
			{ProductName: "Coconut Oil", Quantity: 3},
		})

		var stockErr *domain.InsufficientStockError
		require.True(t, errors.As(err, &stockErr))
		assert.Equal(t, []domain.Shortage{{ProductName: "Coconut Oil", Required: 3, Available: 1}}, stockErr.Shortages)

		stock, sold := stockOf(t, repo, "Sesame Oil 1L")
		assert.Equal(t, 10, stock)
		assert.Equal(t, 0, sold)
	})

	t.Run("UnknownProduct", func(t *testing.T) {
		ledger, _ := newLedger(t, nil)

		err := ledger.Debit(ctx, "ORD_1", []domain.StockLine{{ProductName: "Ghee", Quantity: 1}})
		assert.ErrorIs(t, err, domain.ErrProductNotFound)
	})
}

func TestLedger_Debit_ConcurrentOrdersSameProduct(t *testing.T) {
	ledger, repo := newLedger(t, map[string]int{"Sesame Oil 1L": 5})
	lines := []domain.StockLine{{ProductName: "Sesame Oil 1L", Quantity: 5}}

	var wg sync.WaitGroup
	results := make([]error, 2)
	for i, key := range []string{"ORD_A", "ORD_B"} {
		wg.Add(1)
		go func(i int, key string) {
			defer wg.Done()
			results[i] = ledger.Debit(context.Background(), key, lines)
		}(i, key)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range results {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	}
	assert.Equal(t, 1, succeeded)

	stock, sold := stockOf(t, repo, "Sesame Oil 1L")
	assert.Equal(t, 0, stock)
	assert.Equal(t, 5, sold)
}

func TestLedger_CheckAvailability(t *testing.T) {
	ledger, _ := newLedger(t, map[string]int{"Sesame Oil 1L": 3, "Coconut Oil": 1})

	err := ledger.CheckAvailability(context.Background(), []domain.StockLine{
		{ProductName: "Sesame Oil 1L", Quantity: 5},
		{ProductName: "Coconut Oil", Quantity: 2},
	})

	var stockErr *domain.InsufficientStockError
	require.True(t, errors.As(err, &stockErr))
	assert.Len(t, stockErr.Shortages, 2)

	assert.NoError(t, ledger.CheckAvailability(context.Background(), []domain.StockLine{
		{ProductName: "Sesame Oil 1L", Quantity: 3},
	}))
}

func TestLedger_ResolveAndRelease(t *testing.T) {
	ledger, repo := newLedger(t, map[string]int{"Sesame Oil 1L": 10})
	ctx := context.Background()
	lines := []domain.StockLine{{ProductName: "Sesame Oil 1L", Quantity: 4}}

	assert.NoError(t, ledger.Resolve(ctx, lines))
	assert.ErrorIs(t, ledger.Resolve(ctx, []domain.StockLine{{ProductName: "Ghee", Quantity: 1}}), domain.ErrProductNotFound)

	require.NoError(t, ledger.Debit(ctx, "ORD_1", lines))
	require.NoError(t, ledger.Release(ctx, "ORD_1", lines))

	stock, sold := stockOf(t, repo, "Sesame Oil 1L")
	assert.Equal(t, 10, stock)
	assert.Equal(t, 0, sold)
}

func TestLedger_Settle(t *testing.T) {
	ledger, repo := newLedger(t, map[string]int{"Sesame Oil 1L": 10, "Coconut Oil": 5})
	ctx := context.Background()
	lines := []domain.StockLine{
		{ProductName: "Sesame Oil 1L", Quantity: 2},
		{ProductName: "Coconut Oil", Quantity: 1},
	}

	require.NoError(t, ledger.Debit(ctx, "ORD_1", lines))
	require.NoError(t, ledger.Settle(ctx, "ORD_1", lines))

	// A settled debit is final.
	require.NoError(t, ledger.Release(ctx, "ORD_1", lines))
	stock, sold := stockOf(t, repo, "Sesame Oil 1L")
	assert.Equal(t, 8, stock)
	assert.Equal(t, 2, sold)
	stock, _ = stockOf(t, repo, "Coconut Oil")
	assert.Equal(t, 4, stock)
}
