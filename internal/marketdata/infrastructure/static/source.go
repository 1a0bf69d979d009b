// Package static implements a quote source backed by a fixed price table.
// It exists for tests that need deterministic prices.
package static

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/wyfcoding/stocktrading/internal/marketdata/domain"
)

// Source returns the same quote for a symbol on every lookup.
type Source struct {
	mu     sync.RWMutex
	quotes map[string]*domain.Quote
}

// NewSource builds a source from symbol -> price. Bid and ask equal the
// price and the day change is zero.
func NewSource(prices map[string]decimal.Decimal) *Source {
	quotes := make(map[string]*domain.Quote, len(prices))
	for symbol, price := range prices {
		quotes[symbol] = &domain.Quote{
			Symbol:           symbol,
			Price:            price,
			Bid:              price,
			Ask:              price,
			DayChange:        decimal.Zero,
			DayChangePercent: decimal.Zero,
			Timestamp:        time.Now(),
		}
	}
	return &Source{quotes: quotes}
}

// SetQuote replaces the full quote for one symbol.
func (s *Source) SetQuote(quote *domain.Quote) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quotes[quote.Symbol] = quote
}

// GetQuote returns the stored quote for symbol.
func (s *Source) GetQuote(ctx context.Context, symbol string) (*domain.Quote, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUnavailable, err)
	}
	s.mu.RLock()
	quote, ok := s.quotes[symbol]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownSymbol, symbol)
	}
	return quote, nil
}
