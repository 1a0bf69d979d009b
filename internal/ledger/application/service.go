// Package application implements the ledger use cases: applying and reversing
// journal events, account valuation, snapshots and performance analytics.
package application

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/wyfcoding/stocktrading/internal/ledger/domain"
	mddomain "github.com/wyfcoding/stocktrading/internal/marketdata/domain"
	"github.com/wyfcoding/stocktrading/pkg/logger"
	"github.com/wyfcoding/stocktrading/pkg/metrics"
	"github.com/wyfcoding/stocktrading/pkg/utils"
)

// EventPublisher publishes domain events after a commit. A nil publisher
// disables publication.
type EventPublisher interface {
	SendMessage(ctx context.Context, topic, key string, value interface{}) error
}

// LedgerService owns all per-account state transitions. Writes to one account
// are serialized by a keyed mutex; the UnitOfWork makes holding + cash +
// journal mutations one atomic unit.
type LedgerService struct {
	uow          domain.UnitOfWork
	quotes       mddomain.QuoteSource
	publisher    EventPublisher
	metrics      *metrics.Metrics
	idgen        *utils.SnowflakeID
	locks        *accountLocks
	quoteTimeout time.Duration
}

// NewLedgerService wires the ledger use cases. publisher and m may be nil.
func NewLedgerService(uow domain.UnitOfWork, quotes mddomain.QuoteSource, publisher EventPublisher, m *metrics.Metrics, quoteTimeout time.Duration) *LedgerService {
	return &LedgerService{
		uow:          uow,
		quotes:       quotes,
		publisher:    publisher,
		metrics:      m,
		idgen:        utils.NewSnowflakeID(1),
		locks:        newAccountLocks(),
		quoteTimeout: quoteTimeout,
	}
}

// CreateAccount opens an account with the given opening cash balance.
func (s *LedgerService) CreateAccount(ctx context.Context, userID, name, currency string, openingCash decimal.Decimal) (*AccountDTO, error) {
	if userID == "" || name == "" {
		return nil, fmt.Errorf("%w: user_id and name are required", domain.ErrInsufficientData)
	}
	if openingCash.IsNegative() {
		return nil, fmt.Errorf("%w: opening cash must not be negative", domain.ErrInsufficientData)
	}
	if currency == "" {
		currency = "USD"
	}

	account := domain.NewAccount(s.nextID("ACC"), userID, name, currency, openingCash)

	err := s.uow.Execute(ctx, func(r domain.Repositories) error {
		existing, err := r.Accounts.ListByUser(ctx, userID)
		if err != nil {
			return err
		}
		// The first account becomes the user's default.
		account.IsDefault = len(existing) == 0
		return r.Accounts.Create(ctx, account)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	logger.Info(ctx, "account created", "account_id", account.AccountID, "user_id", userID)
	return toAccountDTO(account), nil
}

// GetAccount returns one account.
func (s *LedgerService) GetAccount(ctx context.Context, accountID string) (*AccountDTO, error) {
	var dto *AccountDTO
	err := s.uow.Execute(ctx, func(r domain.Repositories) error {
		account, err := r.Accounts.Get(ctx, accountID)
		if err != nil {
			return err
		}
		if account == nil {
			return fmt.Errorf("%w: account %s", domain.ErrNotFound, accountID)
		}
		dto = toAccountDTO(account)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dto, nil
}

// SetDefaultAccount flags the account as the user's default, atomically
// unsetting any prior default.
func (s *LedgerService) SetDefaultAccount(ctx context.Context, accountID string) error {
	return s.uow.Execute(ctx, func(r domain.Repositories) error {
		account, err := r.Accounts.Get(ctx, accountID)
		if err != nil {
			return err
		}
		if account == nil {
			return fmt.Errorf("%w: account %s", domain.ErrNotFound, accountID)
		}
		if err := r.Accounts.ClearDefault(ctx, account.UserID); err != nil {
			return err
		}
		account.IsDefault = true
		return r.Accounts.Save(ctx, account)
	})
}

// ApplyTransaction validates the event, applies it to the holding and the
// cash balance and appends it to the journal, all inside one unit of work.
// Re-applying an already-recorded transaction ID returns the existing row.
func (s *LedgerService) ApplyTransaction(ctx context.Context, input ApplyTransactionInput) (*TransactionDTO, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	unlock := s.locks.acquire(input.AccountID)
	defer unlock()

	transactionID := input.TransactionID
	if transactionID == "" {
		transactionID = s.nextID("TXN")
	}

	var result *domain.Transaction
	err := s.uow.Execute(ctx, func(r domain.Repositories) error {
		if input.TransactionID != "" {
			existing, err := r.Transactions.Get(ctx, input.AccountID, input.TransactionID)
			if err != nil {
				return err
			}
			if existing != nil {
				result = existing
				return nil
			}
		}

		account, err := r.Accounts.Get(ctx, input.AccountID)
		if err != nil {
			return err
		}
		if account == nil {
			return fmt.Errorf("%w: account %s", domain.ErrNotFound, input.AccountID)
		}

		transaction, err := domain.NewTransaction(transactionID, input.AccountID, input.Type,
			input.Symbol, input.Quantity, input.Price, input.Commission, input.OrderID)
		if err != nil {
			return err
		}

		if err := s.applyToHolding(ctx, r, transaction); err != nil {
			return err
		}

		account.ApplyCash(transaction)
		if err := r.Accounts.Save(ctx, account); err != nil {
			return err
		}
		if err := r.Transactions.Save(ctx, transaction); err != nil {
			return err
		}
		result = transaction
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.TransactionsApplied.WithLabelValues(string(result.Type)).Inc()
	}
	s.publish(ctx, domain.TopicTransactionApplied, result)

	logger.Info(ctx, "transaction applied",
		"transaction_id", result.TransactionID,
		"account_id", result.AccountID,
		"type", result.Type,
		"symbol", result.Symbol,
	)
	return toTransactionDTO(result), nil
}

// applyToHolding routes the event to the holding it touches, if any.
func (s *LedgerService) applyToHolding(ctx context.Context, r domain.Repositories, t *domain.Transaction) error {
	switch t.Type {
	case domain.TransactionBuy:
		holding, err := r.Holdings.Get(ctx, t.AccountID, t.Symbol)
		if err != nil {
			return err
		}
		if holding == nil {
			holding = domain.NewHolding(t.AccountID, t.Symbol)
		}
		if err := holding.ApplyBuy(t.Quantity, t.Price); err != nil {
			return err
		}
		return r.Holdings.Save(ctx, holding)

	case domain.TransactionSell:
		holding, err := r.Holdings.Get(ctx, t.AccountID, t.Symbol)
		if err != nil {
			return err
		}
		if holding == nil {
			return fmt.Errorf("%w: no holding of %s to sell", domain.ErrNotFound, t.Symbol)
		}
		if err := holding.ApplySell(t.Quantity, t.Price); err != nil {
			return err
		}
		return r.Holdings.Save(ctx, holding)

	case domain.TransactionSplit:
		holding, err := r.Holdings.Get(ctx, t.AccountID, t.Symbol)
		if err != nil {
			return err
		}
		if holding == nil {
			return fmt.Errorf("%w: no holding of %s to split", domain.ErrNotFound, t.Symbol)
		}
		if err := holding.ApplySplit(t.Quantity); err != nil {
			return err
		}
		return r.Holdings.Save(ctx, holding)

	default:
		// Cash-only events leave holdings untouched.
		return nil
	}
}

// ReverseTransaction deletes a journal row via compensation: the holding and
// cash effects are undone with the exact inverse operations, then the row is
// removed. Serialized per account so the same row cannot be reversed twice.
func (s *LedgerService) ReverseTransaction(ctx context.Context, accountID, transactionID string) error {
	unlock := s.locks.acquire(accountID)
	defer unlock()

	var reversed *domain.Transaction
	err := s.uow.Execute(ctx, func(r domain.Repositories) error {
		transaction, err := r.Transactions.Get(ctx, accountID, transactionID)
		if err != nil {
			return err
		}
		if transaction == nil {
			return fmt.Errorf("%w: transaction %s", domain.ErrNotFound, transactionID)
		}

		account, err := r.Accounts.Get(ctx, accountID)
		if err != nil {
			return err
		}
		if account == nil {
			return fmt.Errorf("%w: account %s", domain.ErrNotFound, accountID)
		}

		if err := s.reverseOnHolding(ctx, r, transaction); err != nil {
			return err
		}

		account.ReverseCash(transaction)
		if err := r.Accounts.Save(ctx, account); err != nil {
			return err
		}
		if err := r.Transactions.Delete(ctx, transactionID); err != nil {
			return err
		}
		reversed = transaction
		return nil
	})
	if err != nil {
		return err
	}

	if s.metrics != nil {
		s.metrics.TransactionsReversed.Inc()
	}
	s.publish(ctx, domain.TopicTransactionReversed, reversed)

	logger.Info(ctx, "transaction reversed",
		"transaction_id", transactionID,
		"account_id", accountID,
		"type", reversed.Type,
	)
	return nil
}

func (s *LedgerService) reverseOnHolding(ctx context.Context, r domain.Repositories, t *domain.Transaction) error {
	switch t.Type {
	case domain.TransactionBuy, domain.TransactionSell, domain.TransactionSplit:
		holding, err := r.Holdings.Get(ctx, t.AccountID, t.Symbol)
		if err != nil {
			return err
		}
		if holding == nil {
			return fmt.Errorf("%w: no holding of %s to reverse against", domain.ErrNotFound, t.Symbol)
		}

		switch t.Type {
		case domain.TransactionBuy:
			err = holding.ReverseBuy(t.Quantity, t.Price)
		case domain.TransactionSell:
			err = holding.ReverseSell(t.Quantity, t.Price)
		default:
			err = holding.ReverseSplit(t.Quantity)
		}
		if err != nil {
			return err
		}
		return r.Holdings.Save(ctx, holding)

	default:
		return nil
	}
}

// ListTransactions returns the journal for one account, newest first.
func (s *LedgerService) ListTransactions(ctx context.Context, accountID string, filter domain.TransactionFilter) ([]*TransactionDTO, *utils.Pagination, error) {
	var dtos []*TransactionDTO
	var total int64
	err := s.uow.Execute(ctx, func(r domain.Repositories) error {
		transactions, n, err := r.Transactions.List(ctx, accountID, filter)
		if err != nil {
			return err
		}
		total = n
		dtos = make([]*TransactionDTO, 0, len(transactions))
		for _, t := range transactions {
			dtos = append(dtos, toTransactionDTO(t))
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return dtos, utils.NewPagination(filter.Page, filter.PageSize, total), nil
}

// ListHoldings returns the account's holdings marked to market.
func (s *LedgerService) ListHoldings(ctx context.Context, accountID string) ([]*HoldingDTO, error) {
	var holdings []*domain.Holding
	err := s.uow.Execute(ctx, func(r domain.Repositories) error {
		account, err := r.Accounts.Get(ctx, accountID)
		if err != nil {
			return err
		}
		if account == nil {
			return fmt.Errorf("%w: account %s", domain.ErrNotFound, accountID)
		}
		holdings, err = r.Holdings.ListByAccount(ctx, accountID)
		return err
	})
	if err != nil {
		return nil, err
	}

	dtos := make([]*HoldingDTO, 0, len(holdings))
	for _, h := range holdings {
		dto := &HoldingDTO{
			AccountID:        h.AccountID,
			Symbol:           h.Symbol,
			Quantity:         h.Quantity.String(),
			AverageCost:      h.AverageCost.String(),
			TotalCost:        h.TotalCost.String(),
			RealizedGainLoss: h.RealizedGainLoss.String(),
			LastUpdated:      h.LastUpdated.Unix(),
		}
		if h.IsActive() {
			quote, err := s.getQuote(ctx, h.Symbol)
			if err != nil {
				return nil, err
			}
			dto.CurrentPrice = quote.Price.String()
			dto.MarketValue = h.MarketValue(quote.Price).String()
			dto.UnrealizedGainLoss = h.UnrealizedGainLoss(quote.Price).String()
		} else {
			dto.CurrentPrice = "0"
			dto.MarketValue = "0"
			dto.UnrealizedGainLoss = "0"
		}
		dtos = append(dtos, dto)
	}
	return dtos, nil
}

// GetSummary values the account: cash plus holdings at current quotes.
func (s *LedgerService) GetSummary(ctx context.Context, accountID string) (*domain.Summary, error) {
	var account *domain.Account
	var holdings []*domain.Holding
	err := s.uow.Execute(ctx, func(r domain.Repositories) error {
		var err error
		account, err = r.Accounts.Get(ctx, accountID)
		if err != nil {
			return err
		}
		if account == nil {
			return fmt.Errorf("%w: account %s", domain.ErrNotFound, accountID)
		}
		holdings, err = r.Holdings.ListByAccount(ctx, accountID)
		return err
	})
	if err != nil {
		return nil, err
	}

	marketValue := decimal.Zero
	invested := decimal.Zero
	dayGainLoss := decimal.Zero
	for _, h := range holdings {
		if !h.IsActive() {
			continue
		}
		quote, err := s.getQuote(ctx, h.Symbol)
		if err != nil {
			return nil, err
		}
		marketValue = marketValue.Add(h.MarketValue(quote.Price))
		invested = invested.Add(h.TotalCost)
		dayGainLoss = dayGainLoss.Add(h.Quantity.Mul(quote.DayChange))
	}

	currentValue := account.CashBalance.Add(marketValue)
	return &domain.Summary{
		AccountID:      accountID,
		CashBalance:    account.CashBalance,
		CurrentValue:   currentValue,
		InvestedAmount: invested,
		TotalGainLoss:  currentValue.Sub(account.InitialValue),
		DayGainLoss:    dayGainLoss,
	}, nil
}

// getQuote fetches one quote under the configured timeout. Errors propagate
// so a dead feed never silently values a position at zero.
func (s *LedgerService) getQuote(ctx context.Context, symbol string) (*mddomain.Quote, error) {
	qctx, cancel := context.WithTimeout(ctx, s.quoteTimeout)
	defer cancel()

	start := time.Now()
	quote, err := s.quotes.GetQuote(qctx, symbol)
	if s.metrics != nil {
		s.metrics.QuoteLookupDuration.Observe(time.Since(start).Seconds())
		outcome := "ok"
		if err != nil {
			outcome = "error"
		}
		s.metrics.QuoteLookupsTotal.WithLabelValues(outcome).Inc()
	}
	if err != nil {
		if qctx.Err() != nil {
			return nil, fmt.Errorf("%w: quote lookup for %s timed out", mddomain.ErrUnavailable, symbol)
		}
		return nil, err
	}
	return quote, nil
}

func (s *LedgerService) publish(ctx context.Context, topic string, t *domain.Transaction) {
	if s.publisher == nil {
		return
	}
	event := domain.NewTransactionEvent(t)
	if err := s.publisher.SendMessage(ctx, topic, t.AccountID, event); err != nil {
		// Event publication is best-effort; the journal is the source of truth.
		logger.Warn(ctx, "failed to publish ledger event",
			"topic", topic,
			"transaction_id", t.TransactionID,
			"error", err,
		)
	}
}

func (s *LedgerService) nextID(prefix string) string {
	return prefix + strconv.FormatInt(s.idgen.Generate(), 10)
}

func validateInput(input ApplyTransactionInput) error {
	if input.AccountID == "" {
		return fmt.Errorf("%w: account_id is required", domain.ErrInsufficientData)
	}
	if !domain.ValidTransactionType(input.Type) {
		return fmt.Errorf("%w: unknown transaction type %q", domain.ErrInsufficientData, input.Type)
	}
	if input.Commission.IsNegative() {
		return fmt.Errorf("%w: commission must not be negative", domain.ErrInsufficientData)
	}

	switch input.Type {
	case domain.TransactionBuy, domain.TransactionSell:
		if input.Symbol == "" {
			return fmt.Errorf("%w: symbol is required for %s", domain.ErrInsufficientData, input.Type)
		}
		if input.Quantity.LessThanOrEqual(decimal.Zero) || input.Price.LessThanOrEqual(decimal.Zero) {
			return fmt.Errorf("%w: %s requires positive quantity and price", domain.ErrInsufficientData, input.Type)
		}
	case domain.TransactionSplit:
		if input.Symbol == "" {
			return fmt.Errorf("%w: symbol is required for SPLIT", domain.ErrInsufficientData)
		}
		if input.Quantity.LessThanOrEqual(decimal.Zero) {
			return fmt.Errorf("%w: SPLIT requires positive quantity", domain.ErrInsufficientData)
		}
	case domain.TransactionFee:
		if input.Commission.LessThanOrEqual(decimal.Zero) {
			return fmt.Errorf("%w: FEE requires positive commission", domain.ErrInsufficientData)
		}
	default:
		// DEPOSIT, WITHDRAWAL, DIVIDEND, INTEREST move qty x price of cash.
		if input.Quantity.Mul(input.Price).LessThanOrEqual(decimal.Zero) {
			return fmt.Errorf("%w: %s requires a positive amount", domain.ErrInsufficientData, input.Type)
		}
	}
	return nil
}
