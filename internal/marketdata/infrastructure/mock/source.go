// Package mock implements a seeded random-walk quote feed over a fixed
// symbol universe. Prices drift a little on every lookup, which is enough to
// exercise valuation and execution paths without a live feed.
package mock

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/wyfcoding/stocktrading/internal/marketdata/domain"
)

// spreadBps is the half-spread applied around the mid price, in basis points.
const spreadBps = 5

type symbolState struct {
	price     decimal.Decimal
	openPrice decimal.Decimal
}

// Source is a deterministic (per seed) random-walk feed.
type Source struct {
	mu      sync.Mutex
	rng     *rand.Rand
	symbols map[string]*symbolState
}

// NewSource seeds one random walk per symbol. Starting prices are drawn from
// the seeded generator so runs with the same seed reproduce the same series.
func NewSource(symbols []string, seed int64) *Source {
	rng := rand.New(rand.NewSource(seed))
	states := make(map[string]*symbolState, len(symbols))
	for _, symbol := range symbols {
		start := decimal.NewFromFloat(20 + rng.Float64()*480).Round(2)
		states[symbol] = &symbolState{price: start, openPrice: start}
	}
	return &Source{rng: rng, symbols: states}
}

// GetQuote advances the symbol's walk one step and returns the new quote.
func (s *Source) GetQuote(ctx context.Context, symbol string) (*domain.Quote, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUnavailable, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	state, ok := s.symbols[symbol]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownSymbol, symbol)
	}

	// Step within +/-0.5% of the current price, floored at one cent.
	step := decimal.NewFromFloat((s.rng.Float64() - 0.5) / 100)
	state.price = state.price.Mul(decimal.NewFromInt(1).Add(step))
	if state.price.LessThan(decimal.NewFromFloat(0.01)) {
		state.price = decimal.NewFromFloat(0.01)
	}

	halfSpread := state.price.Mul(decimal.NewFromInt(spreadBps)).Div(decimal.NewFromInt(10000))
	dayChange := state.price.Sub(state.openPrice)
	dayChangePercent := decimal.Zero
	if state.openPrice.IsPositive() {
		dayChangePercent = dayChange.Div(state.openPrice).Mul(decimal.NewFromInt(100))
	}

	return &domain.Quote{
		Symbol:           symbol,
		Price:            state.price,
		Bid:              state.price.Sub(halfSpread),
		Ask:              state.price.Add(halfSpread),
		DayChange:        dayChange,
		DayChangePercent: dayChangePercent,
		Timestamp:        time.Now(),
	}, nil
}
