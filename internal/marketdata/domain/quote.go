// Package domain defines the quote contract consumed by the ledger and the
// execution engine. The core never depends on a concrete feed.
package domain

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// Quote source errors.
var (
	// ErrUnknownSymbol means the source cannot resolve the symbol.
	ErrUnknownSymbol = errors.New("unknown symbol")
	// ErrUnavailable means the source timed out or failed; callers must fail
	// closed, never treat this as a zero price.
	ErrUnavailable = errors.New("quote source unavailable")
)

// Quote is one point-in-time price observation for a symbol.
type Quote struct {
	Symbol           string          `json:"symbol"`
	Price            decimal.Decimal `json:"price"`
	Bid              decimal.Decimal `json:"bid"`
	Ask              decimal.Decimal `json:"ask"`
	DayChange        decimal.Decimal `json:"day_change"`
	DayChangePercent decimal.Decimal `json:"day_change_percent"`
	Timestamp        time.Time       `json:"timestamp"`
}

// QuoteSource supplies quotes. Implementations must honor ctx cancellation;
// callers bound every lookup with a timeout.
type QuoteSource interface {
	GetQuote(ctx context.Context, symbol string) (*Quote, error)
}
