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

func newTestOrder() *Order {
	return NewOrder("ORD1", "client-1", "ACC1", "AAPL", SideBuy, TypeMarket, d("10"), decimal.Zero)
}

func TestOrderFillFromPending(t *testing.T) {
	order := newTestOrder()
	require.Equal(t, StatusPending, order.Status)

	require.NoError(t, order.Fill(d("101.5"), d("1.05")))
	assert.Equal(t, StatusFilled, order.Status)
	assert.True(t, order.FilledQuantity.Equal(d("10")))
	assert.True(t, order.FillPrice.Equal(d("101.5")))
	assert.NotNil(t, order.FilledAt)
	assert.False(t, order.IsOpen())
}

func TestOrderCancelOnlyWhileOpen(t *testing.T) {
	order := newTestOrder()
	require.NoError(t, order.Cancel())
	assert.Equal(t, StatusCancelled, order.Status)

	// Terminal states refuse every further transition.
	assert.ErrorIs(t, order.Fill(d("100"), d("1")), ErrInvalidTransition)
	assert.ErrorIs(t, order.Cancel(), ErrInvalidTransition)
	assert.ErrorIs(t, order.Reject("late"), ErrInvalidTransition)
	assert.ErrorIs(t, order.Expire(), ErrInvalidTransition)
}

func TestOrderPartialFillStaysOpen(t *testing.T) {
	order := newTestOrder()
	require.NoError(t, order.FillPartial(d("4"), d("100"), d("0.5")))
	assert.Equal(t, StatusPartiallyFilled, order.Status)
	assert.True(t, order.IsOpen())

	require.NoError(t, order.FillPartial(d("3"), d("101"), d("0.5")))
	assert.True(t, order.FilledQuantity.Equal(d("7")))
	assert.True(t, order.Commission.Equal(d("1")))

	require.NoError(t, order.Cancel())
	assert.Equal(t, StatusCancelled, order.Status)
}

func TestOrderRejectRecordsReason(t *testing.T) {
	order := newTestOrder()
	require.NoError(t, order.Reject("quote unavailable"))
	assert.Equal(t, StatusRejected, order.Status)
	assert.Equal(t, "quote unavailable", order.RejectReason)
}

func TestCanTransitionTable(t *testing.T) {
	tests := []struct {
		from, to OrderStatus
		want     bool
	}{
		{StatusPending, StatusFilled, true},
		{StatusPending, StatusCancelled, true},
		{StatusPending, StatusRejected, true},
		{StatusPending, StatusExpired, true},
		{StatusPartiallyFilled, StatusFilled, true},
		{StatusPartiallyFilled, StatusCancelled, true},
		{StatusPartiallyFilled, StatusRejected, false},
		{StatusFilled, StatusCancelled, false},
		{StatusCancelled, StatusFilled, false},
		{StatusRejected, StatusPending, false},
		{StatusExpired, StatusFilled, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CanTransition(tt.from, tt.to), "%s -> %s", tt.from, tt.to)
	}
}
