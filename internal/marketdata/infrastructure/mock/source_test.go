package mock

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wyfcoding/stocktrading/internal/marketdata/domain"
)

func TestSourceReproducibleForSeed(t *testing.T) {
	symbols := []string{"AAPL", "MSFT"}
	a := NewSource(symbols, 42)
	b := NewSource(symbols, 42)

	for i := 0; i < 10; i++ {
		qa, err := a.GetQuote(context.Background(), "AAPL")
		require.NoError(t, err)
		qb, err := b.GetQuote(context.Background(), "AAPL")
		require.NoError(t, err)
		assert.True(t, qa.Price.Equal(qb.Price), "step %d diverged", i)
	}
}

func TestSourceQuoteShape(t *testing.T) {
	source := NewSource([]string{"AAPL"}, 7)
	quote, err := source.GetQuote(context.Background(), "AAPL")
	require.NoError(t, err)

	assert.True(t, quote.Price.IsPositive())
	assert.True(t, quote.Bid.LessThan(quote.Ask))
	assert.True(t, quote.Bid.LessThanOrEqual(quote.Price))
	assert.True(t, quote.Ask.GreaterThanOrEqual(quote.Price))
}

func TestSourceUnknownSymbol(t *testing.T) {
	source := NewSource([]string{"AAPL"}, 7)
	_, err := source.GetQuote(context.Background(), "NOPE")
	assert.ErrorIs(t, err, domain.ErrUnknownSymbol)
}

func TestSourceHonorsCancelledContext(t *testing.T) {
	source := NewSource([]string{"AAPL"}, 7)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := source.GetQuote(ctx, "AAPL")
	assert.ErrorIs(t, err, domain.ErrUnavailable)
}
