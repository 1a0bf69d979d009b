package application

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wyfcoding/stocktrading/internal/ledger/domain"
	"github.com/wyfcoding/stocktrading/internal/ledger/infrastructure/persistence/memory"
)

func TestRecordDailyUpsertsOneRowPerDay(t *testing.T) {
	service, store := newTestLedger(t)
	ctx := context.Background()
	accountID := createAccount(t, service, "10000")
	snapshots := NewSnapshotService(service, memory.NewUnitOfWork(store), nil)

	first, err := snapshots.RecordDaily(ctx, accountID)
	require.NoError(t, err)
	assert.Equal(t, "10000", first.TotalValue)

	// Move value, record again the same day: the row updates, no duplicate.
	_, err = service.ApplyTransaction(ctx, ApplyTransactionInput{
		AccountID: accountID, Type: domain.TransactionBuy, Symbol: "AAPL",
		Quantity: d("10"), Price: d("100"),
	})
	require.NoError(t, err)

	second, err := snapshots.RecordDaily(ctx, accountID)
	require.NoError(t, err)
	assert.Equal(t, first.SnapshotDate, second.SnapshotDate)
	assert.Equal(t, "10500", second.TotalValue, "9000 cash + 10*150 market")

	series, err := snapshots.List(ctx, accountID, nil, nil)
	require.NoError(t, err)
	require.Len(t, series, 1)
	assert.Equal(t, "10500", series[0].TotalValue)
}

func TestSnapshotListRangeFilter(t *testing.T) {
	service, store := newTestLedger(t)
	accountID := createAccount(t, service, "10000")
	seedSnapshots(t, store, accountID, []string{"100", "110", "120"})
	snapshots := NewSnapshotService(service, memory.NewUnitOfWork(store), nil)

	from := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)
	series, err := snapshots.List(context.Background(), accountID, &from, nil)
	require.NoError(t, err)
	assert.Len(t, series, 2)

	to := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	series, err = snapshots.List(context.Background(), accountID, nil, &to)
	require.NoError(t, err)
	assert.Len(t, series, 1)
}

func TestRecordDailyUnknownAccount(t *testing.T) {
	service, store := newTestLedger(t)
	snapshots := NewSnapshotService(service, memory.NewUnitOfWork(store), nil)
	_, err := snapshots.RecordDaily(context.Background(), "NOPE")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
