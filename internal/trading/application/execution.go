// Package application implements the order execution use cases: validating,
// filling and cancelling orders and maintaining signed positions.
package application

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	ledgerapp "github.com/wyfcoding/stocktrading/internal/ledger/application"
	ledgerdomain "github.com/wyfcoding/stocktrading/internal/ledger/domain"
	mddomain "github.com/wyfcoding/stocktrading/internal/marketdata/domain"
	"github.com/wyfcoding/stocktrading/internal/trading/domain"
	"github.com/wyfcoding/stocktrading/pkg/logger"
	"github.com/wyfcoding/stocktrading/pkg/metrics"
	"github.com/wyfcoding/stocktrading/pkg/utils"
)

// ExecutionService validates and executes orders. Market orders fill
// immediately against the quote source; other order types are accepted
// pending, there is no background matching.
type ExecutionService struct {
	orders             domain.OrderRepository
	positions          domain.PositionRepository
	ledger             *ledgerapp.LedgerService
	quotes             mddomain.QuoteSource
	publisher          ledgerapp.EventPublisher
	metrics            *metrics.Metrics
	idgen              *utils.SnowflakeID
	commissionBase     decimal.Decimal
	commissionPerShare decimal.Decimal
	quoteTimeout       time.Duration
}

// NewExecutionService wires the execution use cases. publisher and m may be
// nil.
func NewExecutionService(
	orders domain.OrderRepository,
	positions domain.PositionRepository,
	ledger *ledgerapp.LedgerService,
	quotes mddomain.QuoteSource,
	publisher ledgerapp.EventPublisher,
	m *metrics.Metrics,
	commissionBase, commissionPerShare decimal.Decimal,
	quoteTimeout time.Duration,
) *ExecutionService {
	return &ExecutionService{
		orders:             orders,
		positions:          positions,
		ledger:             ledger,
		quotes:             quotes,
		publisher:          publisher,
		metrics:            m,
		idgen:              utils.NewSnowflakeID(2),
		commissionBase:     commissionBase,
		commissionPerShare: commissionPerShare,
		quoteTimeout:       quoteTimeout,
	}
}

// PlaceOrder validates the request and executes it. Market orders fill at the
// current ask (buy) or bid (sell); a quote feed failure rejects the order
// instead of guessing a price. Other order types are stored pending once the
// symbol resolves against the quote source.
func (s *ExecutionService) PlaceOrder(ctx context.Context, input PlaceOrderInput) (*OrderDTO, error) {
	if err := validateOrder(input); err != nil {
		return nil, err
	}
	symbol := ledgerdomain.NormalizeSymbol(input.Symbol)

	// The ledger account must exist before any order is accepted.
	if _, err := s.ledger.GetAccount(ctx, input.AccountID); err != nil {
		return nil, err
	}

	clientOrderID := input.ClientOrderID
	if clientOrderID == "" {
		clientOrderID = uuid.NewString()
	} else {
		existing, err := s.orders.GetByClientOrderID(ctx, input.AccountID, clientOrderID)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return toOrderDTO(existing), nil
		}
	}

	order := domain.NewOrder(s.nextID(), clientOrderID, input.AccountID, symbol,
		input.Side, input.Type, input.Quantity, input.LimitPrice)

	if input.Type != domain.TypeMarket {
		// The symbol must resolve before any order is stored. An unknown
		// symbol is a caller error; a feed failure rejects the order the
		// same way a market order fails closed.
		if _, err := s.getQuote(ctx, symbol); err != nil {
			if errors.Is(err, mddomain.ErrUnknownSymbol) {
				return nil, err
			}
			return s.reject(ctx, order, "quote unavailable: "+err.Error())
		}
		if err := s.orders.Save(ctx, order); err != nil {
			return nil, err
		}
		s.countOrder(order.Status)
		logger.Info(ctx, "order accepted", "order_id", order.OrderID, "type", order.Type, "symbol", symbol)
		return toOrderDTO(order), nil
	}

	return s.executeMarket(ctx, order)
}

// executeMarket fills a market order now or rejects it. Rejection persists the
// order with its reason; the caller gets the rejected order, not an error.
func (s *ExecutionService) executeMarket(ctx context.Context, order *domain.Order) (*OrderDTO, error) {
	quote, err := s.getQuote(ctx, order.Symbol)
	if err != nil {
		if errors.Is(err, mddomain.ErrUnknownSymbol) {
			return nil, err
		}
		return s.reject(ctx, order, "quote unavailable: "+err.Error())
	}

	price := quote.Ask
	if order.Side == domain.SideSell {
		price = quote.Bid
	}
	if price.LessThanOrEqual(decimal.Zero) {
		price = quote.Price
	}
	commission := s.commissionBase.Add(s.commissionPerShare.Mul(order.Quantity))

	transactionType := ledgerdomain.TransactionBuy
	if order.Side == domain.SideSell {
		transactionType = ledgerdomain.TransactionSell
	}
	_, err = s.ledger.ApplyTransaction(ctx, ledgerapp.ApplyTransactionInput{
		TransactionID: "TXN-" + order.OrderID,
		AccountID:     order.AccountID,
		Type:          transactionType,
		Symbol:        order.Symbol,
		Quantity:      order.Quantity,
		Price:         price,
		Commission:    commission,
		OrderID:       order.OrderID,
	})
	if err != nil {
		if errors.Is(err, ledgerdomain.ErrInvalidOperation) || errors.Is(err, ledgerdomain.ErrNotFound) {
			return s.reject(ctx, order, err.Error())
		}
		return nil, err
	}

	if err := order.Fill(price, commission); err != nil {
		return nil, err
	}
	if err := s.orders.Save(ctx, order); err != nil {
		return nil, err
	}
	if err := s.updatePosition(ctx, order, price); err != nil {
		return nil, err
	}

	s.countOrder(order.Status)
	s.publishFill(ctx, order)
	logger.Info(ctx, "order filled",
		"order_id", order.OrderID,
		"account_id", order.AccountID,
		"symbol", order.Symbol,
		"side", order.Side,
		"fill_price", price.String(),
	)
	return toOrderDTO(order), nil
}

func (s *ExecutionService) reject(ctx context.Context, order *domain.Order, reason string) (*OrderDTO, error) {
	if err := order.Reject(reason); err != nil {
		return nil, err
	}
	if err := s.orders.Save(ctx, order); err != nil {
		return nil, err
	}
	s.countOrder(order.Status)
	logger.Warn(ctx, "order rejected", "order_id", order.OrderID, "reason", reason)
	return toOrderDTO(order), nil
}

func (s *ExecutionService) updatePosition(ctx context.Context, order *domain.Order, price decimal.Decimal) error {
	position, err := s.positions.Get(ctx, order.AccountID, order.Symbol)
	if err != nil {
		return err
	}
	if position == nil {
		position = domain.NewPosition(order.AccountID, order.Symbol)
	}
	position.AddFill(order.Side, order.Quantity, price)
	return s.positions.Save(ctx, position)
}

// CancelOrder cancels an open order. Terminal orders cannot be cancelled.
func (s *ExecutionService) CancelOrder(ctx context.Context, orderID string) (*OrderDTO, error) {
	order, err := s.orders.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, fmt.Errorf("%w: order %s", domain.ErrNotFound, orderID)
	}
	if err := order.Cancel(); err != nil {
		return nil, err
	}
	if err := s.orders.Save(ctx, order); err != nil {
		return nil, err
	}
	s.countOrder(order.Status)
	logger.Info(ctx, "order cancelled", "order_id", orderID)
	return toOrderDTO(order), nil
}

// GetOrder returns one order.
func (s *ExecutionService) GetOrder(ctx context.Context, orderID string) (*OrderDTO, error) {
	order, err := s.orders.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, fmt.Errorf("%w: order %s", domain.ErrNotFound, orderID)
	}
	return toOrderDTO(order), nil
}

// ListOrders returns an account's orders, newest first.
func (s *ExecutionService) ListOrders(ctx context.Context, accountID string, filter domain.OrderFilter) ([]*OrderDTO, *utils.Pagination, error) {
	orders, total, err := s.orders.ListByAccount(ctx, accountID, filter)
	if err != nil {
		return nil, nil, err
	}
	dtos := make([]*OrderDTO, 0, len(orders))
	for _, o := range orders {
		dtos = append(dtos, toOrderDTO(o))
	}
	return dtos, utils.NewPagination(filter.Page, filter.PageSize, total), nil
}

// ListPositions returns an account's signed positions.
func (s *ExecutionService) ListPositions(ctx context.Context, accountID string) ([]*PositionDTO, error) {
	positions, err := s.positions.ListByAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	dtos := make([]*PositionDTO, 0, len(positions))
	for _, p := range positions {
		dtos = append(dtos, toPositionDTO(p))
	}
	return dtos, nil
}

func (s *ExecutionService) getQuote(ctx context.Context, symbol string) (*mddomain.Quote, error) {
	qctx, cancel := context.WithTimeout(ctx, s.quoteTimeout)
	defer cancel()

	quote, err := s.quotes.GetQuote(qctx, symbol)
	if err != nil {
		if qctx.Err() != nil {
			return nil, fmt.Errorf("%w: quote lookup for %s timed out", mddomain.ErrUnavailable, symbol)
		}
		return nil, err
	}
	return quote, nil
}

func (s *ExecutionService) publishFill(ctx context.Context, order *domain.Order) {
	if s.publisher == nil {
		return
	}
	event := domain.NewOrderFilledEvent(order)
	if err := s.publisher.SendMessage(ctx, domain.TopicOrderFilled, order.AccountID, event); err != nil {
		logger.Warn(ctx, "failed to publish fill event", "order_id", order.OrderID, "error", err)
	}
}

func (s *ExecutionService) countOrder(status domain.OrderStatus) {
	if s.metrics != nil {
		s.metrics.OrdersTotal.WithLabelValues(string(status)).Inc()
	}
}

func (s *ExecutionService) nextID() string {
	return "ORD" + strconv.FormatInt(s.idgen.Generate(), 10)
}

func validateOrder(input PlaceOrderInput) error {
	if input.AccountID == "" {
		return fmt.Errorf("%w: account_id", domain.ErrMissingField)
	}
	if input.Symbol == "" {
		return fmt.Errorf("%w: symbol", domain.ErrMissingField)
	}
	if !domain.ValidSide(input.Side) {
		return fmt.Errorf("%w: side must be BUY or SELL", domain.ErrMissingField)
	}
	if !domain.ValidType(input.Type) {
		return fmt.Errorf("%w: type must be MARKET, LIMIT, STOP, STOP_LIMIT or TRAILING_STOP", domain.ErrMissingField)
	}
	if input.Quantity.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("%w: quantity must be positive", domain.ErrMissingField)
	}
	if input.Type != domain.TypeMarket && input.LimitPrice.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("%w: %s orders require a positive price", domain.ErrMissingField, input.Type)
	}
	return nil
}
