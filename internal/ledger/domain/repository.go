package domain

import (
	"context"
	"time"
)

// HoldingRepository persists holdings keyed by (account, symbol).
// Get returns (nil, nil) when no holding exists yet.
type HoldingRepository interface {
	Get(ctx context.Context, accountID, symbol string) (*Holding, error)
	ListByAccount(ctx context.Context, accountID string) ([]*Holding, error)
	Save(ctx context.Context, holding *Holding) error
}

// TransactionRepository is the append-only journal. Delete physically removes
// a row; callers are responsible for the compensating ledger reversal first.
type TransactionRepository interface {
	Save(ctx context.Context, transaction *Transaction) error
	Get(ctx context.Context, accountID, transactionID string) (*Transaction, error)
	Exists(ctx context.Context, transactionID string) (bool, error)
	List(ctx context.Context, accountID string, filter TransactionFilter) ([]*Transaction, int64, error)
	Delete(ctx context.Context, transactionID string) error
	// CountTradeStats returns the number of sells with positive total amount
	// and the number of buy-or-sell rows, for the win-rate proxy.
	CountTradeStats(ctx context.Context, accountID string) (wins, trades int64, err error)
}

// AccountRepository persists accounts. Get returns (nil, nil) when absent.
type AccountRepository interface {
	Create(ctx context.Context, account *Account) error
	Get(ctx context.Context, accountID string) (*Account, error)
	ListByUser(ctx context.Context, userID string) ([]*Account, error)
	Save(ctx context.Context, account *Account) error
	// ClearDefault unsets the default flag on all of the user's accounts.
	ClearDefault(ctx context.Context, userID string) error
}

// SnapshotRepository persists the per-day valuation series. Upsert keeps at
// most one row per (account, date).
type SnapshotRepository interface {
	Upsert(ctx context.Context, snapshot *PerformanceSnapshot) error
	ListByAccount(ctx context.Context, accountID string, from, to *time.Time) ([]*PerformanceSnapshot, error)
}

// Repositories bundles the ledger repositories bound to one transactional
// scope.
type Repositories struct {
	Holdings     HoldingRepository
	Transactions TransactionRepository
	Accounts     AccountRepository
	Snapshots    SnapshotRepository
}

// UnitOfWork runs fn against a transactional Repositories set: every mutation
// inside fn commits together or not at all. This is the all-or-nothing
// boundary for holding + cash + journal updates.
type UnitOfWork interface {
	Execute(ctx context.Context, fn func(r Repositories) error) error
}
