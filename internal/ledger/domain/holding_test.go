package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestHoldingBuyThenAverageUp(t *testing.T) {
	h := NewHolding("ACC1", "aapl")
	assert.Equal(t, "AAPL", h.Symbol)

	require.NoError(t, h.ApplyBuy(d("10"), d("100")))
	assert.True(t, h.Quantity.Equal(d("10")))
	assert.True(t, h.AverageCost.Equal(d("100")))
	assert.True(t, h.TotalCost.Equal(d("1000")))

	require.NoError(t, h.ApplyBuy(d("10"), d("120")))
	assert.True(t, h.Quantity.Equal(d("20")))
	assert.True(t, h.AverageCost.Equal(d("110")))
	assert.True(t, h.TotalCost.Equal(d("2200")))
}

func TestHoldingSellRealizesAgainstAverageCost(t *testing.T) {
	h := NewHolding("ACC1", "AAPL")
	require.NoError(t, h.ApplyBuy(d("10"), d("100")))
	require.NoError(t, h.ApplyBuy(d("10"), d("120")))

	require.NoError(t, h.ApplySell(d("5"), d("150")))
	assert.True(t, h.Quantity.Equal(d("15")))
	assert.True(t, h.AverageCost.Equal(d("110")), "average cost unchanged by a sell")
	assert.True(t, h.TotalCost.Equal(d("1650")))
	assert.True(t, h.RealizedGainLoss.Equal(d("200")), "750 proceeds - 550 sold cost")
}

func TestHoldingReverseSellRestoresPriorState(t *testing.T) {
	h := NewHolding("ACC1", "AAPL")
	require.NoError(t, h.ApplyBuy(d("10"), d("100")))
	require.NoError(t, h.ApplyBuy(d("10"), d("120")))
	require.NoError(t, h.ApplySell(d("5"), d("150")))

	require.NoError(t, h.ReverseSell(d("5"), d("150")))
	assert.True(t, h.Quantity.Equal(d("20")))
	assert.True(t, h.AverageCost.Equal(d("110")))
	assert.True(t, h.TotalCost.Equal(d("2200")))
	assert.True(t, h.RealizedGainLoss.IsZero())
}

func TestHoldingReverseBuyRestoresPriorState(t *testing.T) {
	h := NewHolding("ACC1", "AAPL")
	require.NoError(t, h.ApplyBuy(d("10"), d("100")))
	require.NoError(t, h.ApplyBuy(d("10"), d("120")))

	require.NoError(t, h.ReverseBuy(d("10"), d("120")))
	assert.True(t, h.Quantity.Equal(d("10")))
	assert.True(t, h.AverageCost.Equal(d("100")))
	assert.True(t, h.TotalCost.Equal(d("1000")))

	require.NoError(t, h.ReverseBuy(d("10"), d("100")))
	assert.True(t, h.Quantity.IsZero())
	assert.True(t, h.AverageCost.IsZero())
	assert.True(t, h.TotalCost.IsZero())
}

func TestHoldingSellToZeroResetsCostFields(t *testing.T) {
	h := NewHolding("ACC1", "AAPL")
	require.NoError(t, h.ApplyBuy(d("10"), d("100")))
	require.NoError(t, h.ApplyBuy(d("10"), d("120")))

	require.NoError(t, h.ApplySell(d("20"), d("130")))
	assert.True(t, h.Quantity.IsZero())
	assert.True(t, h.AverageCost.IsZero())
	assert.True(t, h.TotalCost.IsZero())
	assert.True(t, h.RealizedGainLoss.Equal(d("400")), "2600 proceeds - 2200 cost")
	assert.False(t, h.IsActive())

	// The emptied holding stays usable for a later rebuy.
	require.NoError(t, h.ApplyBuy(d("3"), d("90")))
	assert.True(t, h.AverageCost.Equal(d("90")))
	assert.True(t, h.RealizedGainLoss.Equal(d("400")), "realized gain survives the reset")
}

func TestHoldingOversellRejectedAndStateUntouched(t *testing.T) {
	h := NewHolding("ACC1", "AAPL")
	require.NoError(t, h.ApplyBuy(d("10"), d("100")))
	before := *h

	err := h.ApplySell(d("11"), d("100"))
	require.ErrorIs(t, err, ErrInvalidOperation)
	assert.True(t, h.Quantity.Equal(before.Quantity))
	assert.True(t, h.AverageCost.Equal(before.AverageCost))
	assert.True(t, h.TotalCost.Equal(before.TotalCost))
	assert.True(t, h.RealizedGainLoss.Equal(before.RealizedGainLoss))
}

func TestHoldingReverseBuyBelowZeroRejected(t *testing.T) {
	h := NewHolding("ACC1", "AAPL")
	require.NoError(t, h.ApplyBuy(d("5"), d("100")))
	assert.ErrorIs(t, h.ReverseBuy(d("6"), d("100")), ErrInvalidOperation)
}

func TestHoldingSplitSpreadsCostBasis(t *testing.T) {
	h := NewHolding("ACC1", "AAPL")
	require.NoError(t, h.ApplyBuy(d("10"), d("100")))

	// 2-for-1 split credits 10 extra shares at zero cost.
	require.NoError(t, h.ApplySplit(d("10")))
	assert.True(t, h.Quantity.Equal(d("20")))
	assert.True(t, h.AverageCost.Equal(d("50")))
	assert.True(t, h.TotalCost.Equal(d("1000")))

	require.NoError(t, h.ReverseSplit(d("10")))
	assert.True(t, h.Quantity.Equal(d("10")))
	assert.True(t, h.AverageCost.Equal(d("100")))
}

func TestHoldingSplitOnEmptyHoldingRejected(t *testing.T) {
	h := NewHolding("ACC1", "AAPL")
	assert.ErrorIs(t, h.ApplySplit(d("10")), ErrInvalidOperation)
}

func TestHoldingWeightedAverageInvariant(t *testing.T) {
	// Over any buy sequence, totalCost == sum(qty*price) and
	// averageCost == totalCost / quantity.
	buys := []struct{ qty, price string }{
		{"3", "17.25"}, {"11", "42"}, {"0.5", "200"}, {"7", "33.33"}, {"100", "1.07"},
	}

	h := NewHolding("ACC1", "XYZ")
	wantCost := decimal.Zero
	wantQty := decimal.Zero
	for _, b := range buys {
		require.NoError(t, h.ApplyBuy(d(b.qty), d(b.price)))
		wantCost = wantCost.Add(d(b.qty).Mul(d(b.price)))
		wantQty = wantQty.Add(d(b.qty))

		assert.True(t, h.TotalCost.Equal(wantCost))
		assert.True(t, h.Quantity.Equal(wantQty))
		assert.True(t, h.AverageCost.Equal(wantCost.Div(wantQty)))
	}
}

func TestHoldingMarketValueAndUnrealized(t *testing.T) {
	h := NewHolding("ACC1", "AAPL")
	require.NoError(t, h.ApplyBuy(d("10"), d("100")))

	assert.True(t, h.MarketValue(d("110")).Equal(d("1100")))
	assert.True(t, h.UnrealizedGainLoss(d("110")).Equal(d("100")))
	assert.True(t, h.UnrealizedGainLoss(d("90")).Equal(d("-100")))
}
