package static

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wyfcoding/stocktrading/internal/marketdata/domain"
)

func TestSourceReturnsFixedPrices(t *testing.T) {
	source := NewSource(map[string]decimal.Decimal{
		"AAPL": decimal.RequireFromString("150"),
	})

	quote, err := source.GetQuote(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.True(t, quote.Price.Equal(decimal.RequireFromString("150")))
	assert.True(t, quote.Bid.Equal(quote.Ask))

	_, err = source.GetQuote(context.Background(), "NOPE")
	assert.ErrorIs(t, err, domain.ErrUnknownSymbol)
}

func TestSourceConcurrentSetAndGet(t *testing.T) {
	source := NewSource(map[string]decimal.Decimal{
		"AAPL": decimal.RequireFromString("150"),
	})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			source.SetQuote(&domain.Quote{
				Symbol: "AAPL",
				Price:  decimal.RequireFromString("151"),
				Bid:    decimal.RequireFromString("150.9"),
				Ask:    decimal.RequireFromString("151.1"),
			})
		}()
		go func() {
			defer wg.Done()
			quote, err := source.GetQuote(context.Background(), "AAPL")
			require.NoError(t, err)
			assert.True(t, quote.Price.IsPositive())
		}()
	}
	wg.Wait()
}
