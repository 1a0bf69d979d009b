// Package memory provides map-backed implementations of the ledger
// repositories. It backs unit tests and local development without a
// database; rollback is implemented by snapshotting the maps before each
// unit of work.
package memory

import (
	"context"
	"sync"

	"github.com/wyfcoding/stocktrading/internal/ledger/domain"
)

// Store holds all ledger state in memory.
type Store struct {
	mu           sync.Mutex
	holdings     map[string]*domain.Holding             // accountID|symbol
	transactions map[string]*domain.Transaction         // transactionID
	accounts     map[string]*domain.Account             // accountID
	snapshots    map[string]*domain.PerformanceSnapshot // accountID|date
	nextRowID    uint
}

// NewStore creates an empty in-memory ledger store.
func NewStore() *Store {
	return &Store{
		holdings:     make(map[string]*domain.Holding),
		transactions: make(map[string]*domain.Transaction),
		accounts:     make(map[string]*domain.Account),
		snapshots:    make(map[string]*domain.PerformanceSnapshot),
		nextRowID:    1,
	}
}

func holdingKey(accountID, symbol string) string {
	return accountID + "|" + domain.NormalizeSymbol(symbol)
}

func snapshotKey(s *domain.PerformanceSnapshot) string {
	return s.AccountID + "|" + s.SnapshotDate.Format("2006-01-02")
}

func (s *Store) rowID() uint {
	id := s.nextRowID
	s.nextRowID++
	return id
}

// UnitOfWork executes ledger use cases against the store, restoring the
// previous state when fn returns an error.
type UnitOfWork struct {
	store *Store
}

// NewUnitOfWork creates the in-memory transactional boundary over store.
func NewUnitOfWork(store *Store) *UnitOfWork {
	return &UnitOfWork{store: store}
}

// Execute runs fn against the store's repositories. On error the state is
// rolled back to what it was when Execute started.
func (u *UnitOfWork) Execute(ctx context.Context, fn func(r domain.Repositories) error) error {
	u.store.mu.Lock()
	defer u.store.mu.Unlock()

	backup := u.store.copyState()
	err := fn(domain.Repositories{
		Holdings:     &holdingRepository{store: u.store},
		Transactions: &transactionRepository{store: u.store},
		Accounts:     &accountRepository{store: u.store},
		Snapshots:    &snapshotRepository{store: u.store},
	})
	if err != nil {
		u.store.restoreState(backup)
		return err
	}
	return nil
}

type storeState struct {
	holdings     map[string]*domain.Holding
	transactions map[string]*domain.Transaction
	accounts     map[string]*domain.Account
	snapshots    map[string]*domain.PerformanceSnapshot
	nextRowID    uint
}

func (s *Store) copyState() storeState {
	state := storeState{
		holdings:     make(map[string]*domain.Holding, len(s.holdings)),
		transactions: make(map[string]*domain.Transaction, len(s.transactions)),
		accounts:     make(map[string]*domain.Account, len(s.accounts)),
		snapshots:    make(map[string]*domain.PerformanceSnapshot, len(s.snapshots)),
		nextRowID:    s.nextRowID,
	}
	for k, v := range s.holdings {
		clone := *v
		state.holdings[k] = &clone
	}
	for k, v := range s.transactions {
		clone := *v
		state.transactions[k] = &clone
	}
	for k, v := range s.accounts {
		clone := *v
		state.accounts[k] = &clone
	}
	for k, v := range s.snapshots {
		clone := *v
		state.snapshots[k] = &clone
	}
	return state
}

func (s *Store) restoreState(state storeState) {
	s.holdings = state.holdings
	s.transactions = state.transactions
	s.accounts = state.accounts
	s.snapshots = state.snapshots
	s.nextRowID = state.nextRowID
}
