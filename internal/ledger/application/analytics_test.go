package application

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wyfcoding/stocktrading/internal/ledger/domain"
	"github.com/wyfcoding/stocktrading/internal/ledger/infrastructure/persistence/memory"
)

func seedSnapshots(t *testing.T, store *memory.Store, accountID string, values []string) {
	t.Helper()
	uow := memory.NewUnitOfWork(store)
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	err := uow.Execute(context.Background(), func(r domain.Repositories) error {
		for i, v := range values {
			snapshot := &domain.PerformanceSnapshot{
				AccountID:    accountID,
				SnapshotDate: base.AddDate(0, 0, i),
				TotalValue:   d(v),
			}
			if err := r.Snapshots.Upsert(context.Background(), snapshot); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)
}

func TestGetAnalyticsConstantSeries(t *testing.T) {
	service, store := newTestLedger(t)
	accountID := createAccount(t, service, "10000")
	seedSnapshots(t, store, accountID, []string{"100", "100", "100", "100"})

	analytics, err := NewAnalyticsService(memory.NewUnitOfWork(store)).GetAnalytics(context.Background(), accountID)
	require.NoError(t, err)
	assert.Zero(t, analytics.TotalReturn)
	assert.Zero(t, analytics.Volatility)
	assert.Zero(t, analytics.MaxDrawdown)
	assert.Zero(t, analytics.SharpeRatio)
}

func TestGetAnalyticsMonotoneSeriesHasZeroDrawdown(t *testing.T) {
	service, store := newTestLedger(t)
	accountID := createAccount(t, service, "10000")
	seedSnapshots(t, store, accountID, []string{"100", "105", "111", "120"})

	analytics, err := NewAnalyticsService(memory.NewUnitOfWork(store)).GetAnalytics(context.Background(), accountID)
	require.NoError(t, err)
	assert.Zero(t, analytics.MaxDrawdown)
	assert.InDelta(t, 20.0, analytics.TotalReturn, 1e-9)
	assert.Positive(t, analytics.AnnualizedReturn)
	assert.Positive(t, analytics.Volatility)
}

func TestGetAnalyticsDrawdownFromPeak(t *testing.T) {
	service, store := newTestLedger(t)
	accountID := createAccount(t, service, "10000")
	seedSnapshots(t, store, accountID, []string{"100", "120", "90", "110"})

	analytics, err := NewAnalyticsService(memory.NewUnitOfWork(store)).GetAnalytics(context.Background(), accountID)
	require.NoError(t, err)
	assert.InDelta(t, 25.0, analytics.MaxDrawdown, 1e-9, "(120-90)/120")
}

func TestGetAnalyticsTooFewSnapshots(t *testing.T) {
	service, store := newTestLedger(t)
	accountID := createAccount(t, service, "10000")
	seedSnapshots(t, store, accountID, []string{"100"})

	analytics, err := NewAnalyticsService(memory.NewUnitOfWork(store)).GetAnalytics(context.Background(), accountID)
	require.NoError(t, err)
	assert.Zero(t, analytics.TotalReturn)
	assert.Zero(t, analytics.Volatility)
	assert.Zero(t, analytics.MaxDrawdown)
}

func TestGetAnalyticsUnknownAccount(t *testing.T) {
	_, store := newTestLedger(t)
	_, err := NewAnalyticsService(memory.NewUnitOfWork(store)).GetAnalytics(context.Background(), "NOPE")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGetAnalyticsWinRate(t *testing.T) {
	service, store := newTestLedger(t)
	ctx := context.Background()
	accountID := createAccount(t, service, "100000")

	_, err := service.ApplyTransaction(ctx, ApplyTransactionInput{
		AccountID: accountID, Type: domain.TransactionBuy, Symbol: "AAPL",
		Quantity: d("10"), Price: d("100"),
	})
	require.NoError(t, err)
	for i := 0; i < 2; i++ {
		_, err := service.ApplyTransaction(ctx, ApplyTransactionInput{
			TransactionID: fmt.Sprintf("TXN-SELL-%d", i),
			AccountID:     accountID, Type: domain.TransactionSell, Symbol: "AAPL",
			Quantity: d("2"), Price: d("110"),
		})
		require.NoError(t, err)
	}

	analytics, err := NewAnalyticsService(memory.NewUnitOfWork(store)).GetAnalytics(ctx, accountID)
	require.NoError(t, err)
	// 2 positive sells out of 3 buy-or-sell rows.
	assert.InDelta(t, 100.0*2/3, analytics.WinRate, 1e-9)
}

func TestMaxDrawdownBounds(t *testing.T) {
	assert.Zero(t, maxDrawdown([]float64{1, 2, 3, 4}))
	assert.InDelta(t, 100.0, maxDrawdown([]float64{100, 0}), 1e-9)

	got := maxDrawdown([]float64{50, 80, 40, 70, 30})
	assert.GreaterOrEqual(t, got, 0.0)
	assert.LessOrEqual(t, got, 100.0)
	assert.InDelta(t, 62.5, got, 1e-9, "(80-30)/80")
}

func TestDailyReturnsSkipsNonPositiveBase(t *testing.T) {
	returns := dailyReturns([]float64{0, 100, 110})
	require.Len(t, returns, 1)
	assert.InDelta(t, 0.1, returns[0], 1e-9)
}

func TestAnnualizedVolatilityConstantSeries(t *testing.T) {
	assert.Zero(t, annualizedVolatility([]float64{100, 100, 100}))
}
