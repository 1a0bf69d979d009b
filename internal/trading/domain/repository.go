package domain

import "context"

// OrderFilter narrows order queries. Zero values mean no filtering.
type OrderFilter struct {
	Status   OrderStatus
	Symbol   string
	Page     int
	PageSize int
}

// OrderRepository persists orders. Get returns (nil, nil) when absent.
type OrderRepository interface {
	Save(ctx context.Context, order *Order) error
	Get(ctx context.Context, orderID string) (*Order, error)
	GetByClientOrderID(ctx context.Context, accountID, clientOrderID string) (*Order, error)
	ListByAccount(ctx context.Context, accountID string, filter OrderFilter) ([]*Order, int64, error)
}

// PositionRepository persists signed positions keyed by (account, symbol).
// Get returns (nil, nil) when no position exists yet.
type PositionRepository interface {
	Get(ctx context.Context, accountID, symbol string) (*Position, error)
	ListByAccount(ctx context.Context, accountID string) ([]*Position, error)
	Save(ctx context.Context, position *Position) error
}
