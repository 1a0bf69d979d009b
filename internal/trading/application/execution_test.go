package application

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ledgerapp "github.com/wyfcoding/stocktrading/internal/ledger/application"
	ledgerdomain "github.com/wyfcoding/stocktrading/internal/ledger/domain"
	ledgermemory "github.com/wyfcoding/stocktrading/internal/ledger/infrastructure/persistence/memory"
	mddomain "github.com/wyfcoding/stocktrading/internal/marketdata/domain"
	"github.com/wyfcoding/stocktrading/internal/marketdata/infrastructure/static"
	"github.com/wyfcoding/stocktrading/internal/trading/domain"
	"github.com/wyfcoding/stocktrading/internal/trading/infrastructure/persistence/memory"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

type fixture struct {
	execution *ExecutionService
	ledger    *ledgerapp.LedgerService
	accountID string
}

func newFixture(t *testing.T, quotes mddomain.QuoteSource) *fixture {
	t.Helper()
	store := ledgermemory.NewStore()
	ledger := ledgerapp.NewLedgerService(ledgermemory.NewUnitOfWork(store), quotes, nil, nil, 50*time.Millisecond)

	account, err := ledger.CreateAccount(context.Background(), "U1", "main", "USD", d("100000"))
	require.NoError(t, err)

	execution := NewExecutionService(
		memory.NewOrderRepository(),
		memory.NewPositionRepository(),
		ledger,
		quotes,
		nil,
		nil,
		d("1.00"),
		d("0.005"),
		50*time.Millisecond,
	)
	return &fixture{execution: execution, ledger: ledger, accountID: account.AccountID}
}

func staticQuotes() *static.Source {
	source := static.NewSource(nil)
	source.SetQuote(&mddomain.Quote{
		Symbol: "AAPL",
		Price:  d("150"),
		Bid:    d("149.9"),
		Ask:    d("150.1"),
	})
	return source
}

func TestMarketBuyFillsAtAsk(t *testing.T) {
	f := newFixture(t, staticQuotes())
	ctx := context.Background()

	order, err := f.execution.PlaceOrder(ctx, PlaceOrderInput{
		AccountID: f.accountID,
		Symbol:    "aapl",
		Side:      domain.SideBuy,
		Type:      domain.TypeMarket,
		Quantity:  d("10"),
	})
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusFilled), order.Status)
	assert.Equal(t, "150.1", order.FillPrice)
	assert.Equal(t, "1.05", order.Commission, "1.00 base + 0.005*10")

	// The fill landed in the ledger: notional 1501 + commission 1.05.
	account, err := f.ledger.GetAccount(ctx, f.accountID)
	require.NoError(t, err)
	assert.Equal(t, "98497.95", account.CashBalance)

	holdings, err := f.ledger.ListHoldings(ctx, f.accountID)
	require.NoError(t, err)
	require.Len(t, holdings, 1)
	assert.Equal(t, "10", holdings[0].Quantity)

	positions, err := f.execution.ListPositions(ctx, f.accountID)
	require.NoError(t, err)
	require.Len(t, positions, 1)
	assert.Equal(t, "10", positions[0].Quantity)
	assert.Equal(t, "150.1", positions[0].AverageCost)
}

func TestMarketSellFillsAtBid(t *testing.T) {
	f := newFixture(t, staticQuotes())
	ctx := context.Background()

	_, err := f.execution.PlaceOrder(ctx, PlaceOrderInput{
		AccountID: f.accountID, Symbol: "AAPL", Side: domain.SideBuy,
		Type: domain.TypeMarket, Quantity: d("10"),
	})
	require.NoError(t, err)

	order, err := f.execution.PlaceOrder(ctx, PlaceOrderInput{
		AccountID: f.accountID, Symbol: "AAPL", Side: domain.SideSell,
		Type: domain.TypeMarket, Quantity: d("4"),
	})
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusFilled), order.Status)
	assert.Equal(t, "149.9", order.FillPrice)
}

func TestMarketOversellRejectedNotErrored(t *testing.T) {
	f := newFixture(t, staticQuotes())

	order, err := f.execution.PlaceOrder(context.Background(), PlaceOrderInput{
		AccountID: f.accountID, Symbol: "AAPL", Side: domain.SideSell,
		Type: domain.TypeMarket, Quantity: d("10"),
	})
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusRejected), order.Status)
	assert.NotEmpty(t, order.RejectReason)
}

type stalledSource struct{}

func (stalledSource) GetQuote(ctx context.Context, symbol string) (*mddomain.Quote, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestMarketOrderFailsClosedWhenQuoteTimesOut(t *testing.T) {
	f := newFixture(t, stalledSource{})

	order, err := f.execution.PlaceOrder(context.Background(), PlaceOrderInput{
		AccountID: f.accountID, Symbol: "AAPL", Side: domain.SideBuy,
		Type: domain.TypeMarket, Quantity: d("10"),
	})
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusRejected), order.Status)
	assert.Contains(t, order.RejectReason, "quote unavailable")

	// Nothing reached the ledger.
	holdings, err := f.ledger.ListHoldings(context.Background(), f.accountID)
	require.NoError(t, err)
	assert.Empty(t, holdings)
}

func TestUnknownSymbolPropagates(t *testing.T) {
	f := newFixture(t, staticQuotes())

	_, err := f.execution.PlaceOrder(context.Background(), PlaceOrderInput{
		AccountID: f.accountID, Symbol: "NOPE", Side: domain.SideBuy,
		Type: domain.TypeMarket, Quantity: d("1"),
	})
	assert.ErrorIs(t, err, mddomain.ErrUnknownSymbol)
}

func TestUnknownSymbolRejectedBeforePendingOrderIsStored(t *testing.T) {
	f := newFixture(t, staticQuotes())
	ctx := context.Background()

	for _, orderType := range []domain.OrderType{domain.TypeLimit, domain.TypeStop, domain.TypeStopLimit, domain.TypeTrailingStop} {
		t.Run(string(orderType), func(t *testing.T) {
			_, err := f.execution.PlaceOrder(ctx, PlaceOrderInput{
				AccountID:  f.accountID,
				Symbol:     "NOPE",
				Side:       domain.SideBuy,
				Type:       orderType,
				Quantity:   d("1"),
				LimitPrice: d("100"),
			})
			assert.ErrorIs(t, err, mddomain.ErrUnknownSymbol)
		})
	}

	// Nothing was stored.
	orders, _, err := f.execution.ListOrders(ctx, f.accountID, domain.OrderFilter{})
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestPendingOrderFailsClosedWhenQuoteTimesOut(t *testing.T) {
	f := newFixture(t, stalledSource{})

	order, err := f.execution.PlaceOrder(context.Background(), PlaceOrderInput{
		AccountID: f.accountID, Symbol: "AAPL", Side: domain.SideBuy,
		Type: domain.TypeLimit, Quantity: d("10"), LimitPrice: d("140"),
	})
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusRejected), order.Status)
	assert.Contains(t, order.RejectReason, "quote unavailable")
}

func TestLimitOrderAcceptedPendingAndCancellable(t *testing.T) {
	f := newFixture(t, staticQuotes())
	ctx := context.Background()

	order, err := f.execution.PlaceOrder(ctx, PlaceOrderInput{
		AccountID:  f.accountID,
		Symbol:     "AAPL",
		Side:       domain.SideBuy,
		Type:       domain.TypeLimit,
		Quantity:   d("10"),
		LimitPrice: d("140"),
	})
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusPending), order.Status)

	cancelled, err := f.execution.CancelOrder(ctx, order.OrderID)
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusCancelled), cancelled.Status)

	_, err = f.execution.CancelOrder(ctx, order.OrderID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestStopLimitAndTrailingStopAcceptedPending(t *testing.T) {
	f := newFixture(t, staticQuotes())
	ctx := context.Background()

	for _, orderType := range []domain.OrderType{domain.TypeStopLimit, domain.TypeTrailingStop} {
		t.Run(string(orderType), func(t *testing.T) {
			order, err := f.execution.PlaceOrder(ctx, PlaceOrderInput{
				AccountID:  f.accountID,
				Symbol:     "AAPL",
				Side:       domain.SideSell,
				Type:       orderType,
				Quantity:   d("5"),
				LimitPrice: d("160"),
			})
			require.NoError(t, err)
			assert.Equal(t, string(domain.StatusPending), order.Status)

			cancelled, err := f.execution.CancelOrder(ctx, order.OrderID)
			require.NoError(t, err)
			assert.Equal(t, string(domain.StatusCancelled), cancelled.Status)
		})
	}
}

func TestCancelFilledOrderRejected(t *testing.T) {
	f := newFixture(t, staticQuotes())
	ctx := context.Background()

	order, err := f.execution.PlaceOrder(ctx, PlaceOrderInput{
		AccountID: f.accountID, Symbol: "AAPL", Side: domain.SideBuy,
		Type: domain.TypeMarket, Quantity: d("1"),
	})
	require.NoError(t, err)
	require.Equal(t, string(domain.StatusFilled), order.Status)

	_, err = f.execution.CancelOrder(ctx, order.OrderID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestPlaceOrderValidation(t *testing.T) {
	f := newFixture(t, staticQuotes())
	ctx := context.Background()

	tests := []struct {
		name  string
		input PlaceOrderInput
	}{
		{"missing account", PlaceOrderInput{Symbol: "AAPL", Side: domain.SideBuy, Type: domain.TypeMarket, Quantity: d("1")}},
		{"missing symbol", PlaceOrderInput{AccountID: f.accountID, Side: domain.SideBuy, Type: domain.TypeMarket, Quantity: d("1")}},
		{"bad side", PlaceOrderInput{AccountID: f.accountID, Symbol: "AAPL", Side: "HOLD", Type: domain.TypeMarket, Quantity: d("1")}},
		{"bad type", PlaceOrderInput{AccountID: f.accountID, Symbol: "AAPL", Side: domain.SideBuy, Type: "ICEBERG", Quantity: d("1")}},
		{"zero quantity", PlaceOrderInput{AccountID: f.accountID, Symbol: "AAPL", Side: domain.SideBuy, Type: domain.TypeMarket}},
		{"limit without price", PlaceOrderInput{AccountID: f.accountID, Symbol: "AAPL", Side: domain.SideBuy, Type: domain.TypeLimit, Quantity: d("1")}},
		{"stop without price", PlaceOrderInput{AccountID: f.accountID, Symbol: "AAPL", Side: domain.SideBuy, Type: domain.TypeStop, Quantity: d("1")}},
		{"stop-limit without price", PlaceOrderInput{AccountID: f.accountID, Symbol: "AAPL", Side: domain.SideBuy, Type: domain.TypeStopLimit, Quantity: d("1")}},
		{"trailing stop without price", PlaceOrderInput{AccountID: f.accountID, Symbol: "AAPL", Side: domain.SideBuy, Type: domain.TypeTrailingStop, Quantity: d("1")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.execution.PlaceOrder(ctx, tt.input)
			assert.ErrorIs(t, err, domain.ErrMissingField)
		})
	}
}

func TestPlaceOrderClientIDIdempotent(t *testing.T) {
	f := newFixture(t, staticQuotes())
	ctx := context.Background()

	input := PlaceOrderInput{
		ClientOrderID: "client-retry",
		AccountID:     f.accountID,
		Symbol:        "AAPL",
		Side:          domain.SideBuy,
		Type:          domain.TypeMarket,
		Quantity:      d("10"),
	}
	first, err := f.execution.PlaceOrder(ctx, input)
	require.NoError(t, err)
	second, err := f.execution.PlaceOrder(ctx, input)
	require.NoError(t, err)
	assert.Equal(t, first.OrderID, second.OrderID)

	// The retry did not fill twice.
	positions, err := f.execution.ListPositions(ctx, f.accountID)
	require.NoError(t, err)
	require.Len(t, positions, 1)
	assert.Equal(t, "10", positions[0].Quantity)
}

func TestPlaceOrderUnknownAccount(t *testing.T) {
	f := newFixture(t, staticQuotes())
	_, err := f.execution.PlaceOrder(context.Background(), PlaceOrderInput{
		AccountID: "NOPE", Symbol: "AAPL", Side: domain.SideBuy,
		Type: domain.TypeMarket, Quantity: d("1"),
	})
	assert.ErrorIs(t, err, ledgerdomain.ErrNotFound)
}

func TestListOrdersFilterByStatus(t *testing.T) {
	f := newFixture(t, staticQuotes())
	ctx := context.Background()

	_, err := f.execution.PlaceOrder(ctx, PlaceOrderInput{
		AccountID: f.accountID, Symbol: "AAPL", Side: domain.SideBuy,
		Type: domain.TypeMarket, Quantity: d("1"),
	})
	require.NoError(t, err)
	_, err = f.execution.PlaceOrder(ctx, PlaceOrderInput{
		AccountID: f.accountID, Symbol: "AAPL", Side: domain.SideBuy,
		Type: domain.TypeLimit, Quantity: d("1"), LimitPrice: d("140"),
	})
	require.NoError(t, err)

	all, pagination, err := f.execution.ListOrders(ctx, f.accountID, domain.OrderFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)
	assert.Equal(t, int64(2), pagination.Total)

	pending, _, err := f.execution.ListOrders(ctx, f.accountID, domain.OrderFilter{Status: domain.StatusPending})
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, string(domain.TypeLimit), pending[0].Type)
}
