package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/wyfcoding/stocktrading/internal/ledger/domain"
)

type holdingRepository struct {
	store *Store
}

func (r *holdingRepository) Get(ctx context.Context, accountID, symbol string) (*domain.Holding, error) {
	holding, ok := r.store.holdings[holdingKey(accountID, symbol)]
	if !ok {
		return nil, nil
	}
	clone := *holding
	return &clone, nil
}

func (r *holdingRepository) ListByAccount(ctx context.Context, accountID string) ([]*domain.Holding, error) {
	var holdings []*domain.Holding
	for _, h := range r.store.holdings {
		if h.AccountID == accountID {
			clone := *h
			holdings = append(holdings, &clone)
		}
	}
	sort.Slice(holdings, func(i, j int) bool { return holdings[i].Symbol < holdings[j].Symbol })
	return holdings, nil
}

func (r *holdingRepository) Save(ctx context.Context, holding *domain.Holding) error {
	clone := *holding
	if clone.ID == 0 {
		if existing, ok := r.store.holdings[holdingKey(clone.AccountID, clone.Symbol)]; ok {
			clone.ID = existing.ID
		} else {
			clone.ID = r.store.rowID()
		}
	}
	r.store.holdings[holdingKey(clone.AccountID, clone.Symbol)] = &clone
	return nil
}

type transactionRepository struct {
	store *Store
}

func (r *transactionRepository) Save(ctx context.Context, transaction *domain.Transaction) error {
	if _, ok := r.store.transactions[transaction.TransactionID]; ok {
		return fmt.Errorf("%w: %s", domain.ErrDuplicateTransaction, transaction.TransactionID)
	}
	clone := *transaction
	if clone.ID == 0 {
		clone.ID = r.store.rowID()
	}
	r.store.transactions[clone.TransactionID] = &clone
	return nil
}

func (r *transactionRepository) Get(ctx context.Context, accountID, transactionID string) (*domain.Transaction, error) {
	transaction, ok := r.store.transactions[transactionID]
	if !ok || transaction.AccountID != accountID {
		return nil, nil
	}
	clone := *transaction
	return &clone, nil
}

func (r *transactionRepository) Exists(ctx context.Context, transactionID string) (bool, error) {
	_, ok := r.store.transactions[transactionID]
	return ok, nil
}

func (r *transactionRepository) List(ctx context.Context, accountID string, filter domain.TransactionFilter) ([]*domain.Transaction, int64, error) {
	var matched []*domain.Transaction
	for _, t := range r.store.transactions {
		if t.AccountID != accountID {
			continue
		}
		if filter.Symbol != "" && t.Symbol != domain.NormalizeSymbol(filter.Symbol) {
			continue
		}
		if filter.Type != "" && t.Type != filter.Type {
			continue
		}
		if filter.From != nil && t.ExecutedAt.Before(*filter.From) {
			continue
		}
		if filter.To != nil && t.ExecutedAt.After(*filter.To) {
			continue
		}
		clone := *t
		matched = append(matched, &clone)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ExecutedAt.After(matched[j].ExecutedAt) })

	total := int64(len(matched))
	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize < 1 {
		pageSize = 20
	}
	start := (page - 1) * pageSize
	if start >= len(matched) {
		return nil, total, nil
	}
	end := start + pageSize
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

func (r *transactionRepository) Delete(ctx context.Context, transactionID string) error {
	if _, ok := r.store.transactions[transactionID]; !ok {
		return fmt.Errorf("%w: transaction %s", domain.ErrNotFound, transactionID)
	}
	delete(r.store.transactions, transactionID)
	return nil
}

func (r *transactionRepository) CountTradeStats(ctx context.Context, accountID string) (int64, int64, error) {
	var wins, trades int64
	for _, t := range r.store.transactions {
		if t.AccountID != accountID {
			continue
		}
		switch t.Type {
		case domain.TransactionSell:
			trades++
			if t.TotalAmount.IsPositive() {
				wins++
			}
		case domain.TransactionBuy:
			trades++
		}
	}
	return wins, trades, nil
}

type accountRepository struct {
	store *Store
}

func (r *accountRepository) Create(ctx context.Context, account *domain.Account) error {
	if _, ok := r.store.accounts[account.AccountID]; ok {
		return fmt.Errorf("account %s already exists", account.AccountID)
	}
	clone := *account
	clone.ID = r.store.rowID()
	r.store.accounts[clone.AccountID] = &clone
	return nil
}

func (r *accountRepository) Get(ctx context.Context, accountID string) (*domain.Account, error) {
	account, ok := r.store.accounts[accountID]
	if !ok {
		return nil, nil
	}
	clone := *account
	return &clone, nil
}

func (r *accountRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Account, error) {
	var accounts []*domain.Account
	for _, a := range r.store.accounts {
		if a.UserID == userID {
			clone := *a
			accounts = append(accounts, &clone)
		}
	}
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].ID < accounts[j].ID })
	return accounts, nil
}

func (r *accountRepository) Save(ctx context.Context, account *domain.Account) error {
	clone := *account
	if clone.ID == 0 {
		if existing, ok := r.store.accounts[clone.AccountID]; ok {
			clone.ID = existing.ID
		} else {
			clone.ID = r.store.rowID()
		}
	}
	r.store.accounts[clone.AccountID] = &clone
	return nil
}

func (r *accountRepository) ClearDefault(ctx context.Context, userID string) error {
	for _, a := range r.store.accounts {
		if a.UserID == userID && a.IsDefault {
			a.IsDefault = false
		}
	}
	return nil
}

type snapshotRepository struct {
	store *Store
}

func (r *snapshotRepository) Upsert(ctx context.Context, snapshot *domain.PerformanceSnapshot) error {
	clone := *snapshot
	key := snapshotKey(&clone)
	if existing, ok := r.store.snapshots[key]; ok {
		clone.ID = existing.ID
	} else if clone.ID == 0 {
		clone.ID = r.store.rowID()
	}
	r.store.snapshots[key] = &clone
	return nil
}

func (r *snapshotRepository) ListByAccount(ctx context.Context, accountID string, from, to *time.Time) ([]*domain.PerformanceSnapshot, error) {
	var snapshots []*domain.PerformanceSnapshot
	for _, s := range r.store.snapshots {
		if s.AccountID != accountID {
			continue
		}
		if from != nil && s.SnapshotDate.Before(*from) {
			continue
		}
		if to != nil && s.SnapshotDate.After(*to) {
			continue
		}
		clone := *s
		snapshots = append(snapshots, &clone)
	}
	sort.Slice(snapshots, func(i, j int) bool { return snapshots[i].SnapshotDate.Before(snapshots[j].SnapshotDate) })
	return snapshots, nil
}
