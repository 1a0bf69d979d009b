// Package memory provides map-backed implementations of the trading
// repositories for tests and local development.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/wyfcoding/stocktrading/internal/trading/domain"
)

// OrderRepository is a map-backed order store.
type OrderRepository struct {
	mu     sync.Mutex
	orders map[string]*domain.Order
	nextID uint
}

// NewOrderRepository creates an empty in-memory order store.
func NewOrderRepository() *OrderRepository {
	return &OrderRepository{orders: make(map[string]*domain.Order), nextID: 1}
}

func (r *OrderRepository) Save(ctx context.Context, order *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	clone := *order
	if clone.ID == 0 {
		if existing, ok := r.orders[clone.OrderID]; ok {
			clone.ID = existing.ID
		} else {
			clone.ID = r.nextID
			r.nextID++
		}
	}
	r.orders[clone.OrderID] = &clone
	return nil
}

func (r *OrderRepository) Get(ctx context.Context, orderID string) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[orderID]
	if !ok {
		return nil, nil
	}
	clone := *order
	return &clone, nil
}

func (r *OrderRepository) GetByClientOrderID(ctx context.Context, accountID, clientOrderID string) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, o := range r.orders {
		if o.AccountID == accountID && o.ClientOrderID == clientOrderID {
			clone := *o
			return &clone, nil
		}
	}
	return nil, nil
}

func (r *OrderRepository) ListByAccount(ctx context.Context, accountID string, filter domain.OrderFilter) ([]*domain.Order, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var matched []*domain.Order
	for _, o := range r.orders {
		if o.AccountID != accountID {
			continue
		}
		if filter.Status != "" && o.Status != filter.Status {
			continue
		}
		if filter.Symbol != "" && o.Symbol != filter.Symbol {
			continue
		}
		clone := *o
		matched = append(matched, &clone)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].SubmittedAt.After(matched[j].SubmittedAt) })

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

// PositionRepository is a map-backed position store.
type PositionRepository struct {
	mu        sync.Mutex
	positions map[string]*domain.Position
	nextID    uint
}

// NewPositionRepository creates an empty in-memory position store.
func NewPositionRepository() *PositionRepository {
	return &PositionRepository{positions: make(map[string]*domain.Position), nextID: 1}
}

func positionKey(accountID, symbol string) string {
	return accountID + "|" + symbol
}

func (r *PositionRepository) Get(ctx context.Context, accountID, symbol string) (*domain.Position, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	position, ok := r.positions[positionKey(accountID, symbol)]
	if !ok {
		return nil, nil
	}
	clone := *position
	return &clone, nil
}

func (r *PositionRepository) ListByAccount(ctx context.Context, accountID string) ([]*domain.Position, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var positions []*domain.Position
	for _, p := range r.positions {
		if p.AccountID == accountID {
			clone := *p
			positions = append(positions, &clone)
		}
	}
	sort.Slice(positions, func(i, j int) bool { return positions[i].Symbol < positions[j].Symbol })
	return positions, nil
}

func (r *PositionRepository) Save(ctx context.Context, position *domain.Position) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	clone := *position
	if clone.ID == 0 {
		if existing, ok := r.positions[positionKey(clone.AccountID, clone.Symbol)]; ok {
			clone.ID = existing.ID
		} else {
			clone.ID = r.nextID
			r.nextID++
		}
	}
	r.positions[positionKey(clone.AccountID, clone.Symbol)] = &clone
	return nil
}
