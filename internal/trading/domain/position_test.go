package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPositionSameDirectionWeightedAverage(t *testing.T) {
	p := NewPosition("ACC1", "AAPL")
	p.AddFill(SideBuy, d("10"), d("100"))
	p.AddFill(SideBuy, d("10"), d("120"))

	assert.True(t, p.Quantity.Equal(d("20")))
	assert.True(t, p.AverageCost.Equal(d("110")))
	assert.True(t, p.RealizedPnL.IsZero())
}

func TestPositionPartialCloseRealizesPnL(t *testing.T) {
	p := NewPosition("ACC1", "AAPL")
	p.AddFill(SideBuy, d("20"), d("110"))
	p.AddFill(SideSell, d("5"), d("150"))

	assert.True(t, p.Quantity.Equal(d("15")))
	assert.True(t, p.AverageCost.Equal(d("110")), "entry price of the open remainder is unchanged")
	assert.True(t, p.RealizedPnL.Equal(d("200")), "5 * (150-110)")
}

func TestPositionFullCloseResets(t *testing.T) {
	p := NewPosition("ACC1", "AAPL")
	p.AddFill(SideBuy, d("10"), d("100"))
	p.AddFill(SideSell, d("10"), d("90"))

	assert.True(t, p.IsFlat())
	assert.True(t, p.AverageCost.IsZero())
	assert.True(t, p.RealizedPnL.Equal(d("-100")))
}

func TestPositionCrossZeroFlip(t *testing.T) {
	p := NewPosition("ACC1", "AAPL")
	p.AddFill(SideBuy, d("10"), d("100"))
	p.AddFill(SideSell, d("15"), d("120"))

	assert.True(t, p.Quantity.Equal(d("-5")), "flipped short by the excess")
	assert.True(t, p.AverageCost.Equal(d("120")), "short side opens at the fill price")
	assert.True(t, p.RealizedPnL.Equal(d("200")), "10 * (120-100) on the closed long")
}

func TestPositionShortSideRealization(t *testing.T) {
	p := NewPosition("ACC1", "AAPL")
	p.AddFill(SideSell, d("10"), d("100"))
	assert.True(t, p.Quantity.Equal(d("-10")))
	assert.True(t, p.AverageCost.Equal(d("100")))

	// Covering at a lower price profits a short.
	p.AddFill(SideBuy, d("10"), d("80"))
	assert.True(t, p.IsFlat())
	assert.True(t, p.RealizedPnL.Equal(d("200")))
}

func TestPositionUnrealizedPnL(t *testing.T) {
	long := NewPosition("ACC1", "AAPL")
	long.AddFill(SideBuy, d("10"), d("100"))
	assert.True(t, long.UnrealizedPnL(d("110")).Equal(d("100")))

	short := NewPosition("ACC1", "MSFT")
	short.AddFill(SideSell, d("10"), d("100"))
	assert.True(t, short.UnrealizedPnL(d("90")).Equal(d("100")))
	assert.True(t, short.UnrealizedPnL(d("110")).Equal(d("-100")))

	flat := NewPosition("ACC1", "JPM")
	assert.True(t, flat.UnrealizedPnL(d("50")).IsZero())
}
