package application

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/wyfcoding/stocktrading/internal/ledger/domain"
)

// ApplyTransactionInput carries one journal event to apply. TransactionID is
// optional; when set, re-applying the same ID is a no-op returning the
// original row (retry safety).
type ApplyTransactionInput struct {
	TransactionID string
	AccountID     string
	Type          domain.TransactionType
	Symbol        string
	Quantity      decimal.Decimal
	Price         decimal.Decimal
	Commission    decimal.Decimal
	OrderID       string
}

// TransactionDTO is the journal row shape returned to the interface layer.
// Decimals travel as strings.
type TransactionDTO struct {
	TransactionID string `json:"transaction_id"`
	AccountID     string `json:"account_id"`
	Type          string `json:"type"`
	Symbol        string `json:"symbol,omitempty"`
	Quantity      string `json:"quantity"`
	Price         string `json:"price"`
	Commission    string `json:"commission"`
	TotalAmount   string `json:"total_amount"`
	OrderID       string `json:"order_id,omitempty"`
	ExecutedAt    int64  `json:"executed_at"`
}

func toTransactionDTO(t *domain.Transaction) *TransactionDTO {
	return &TransactionDTO{
		TransactionID: t.TransactionID,
		AccountID:     t.AccountID,
		Type:          string(t.Type),
		Symbol:        t.Symbol,
		Quantity:      t.Quantity.String(),
		Price:         t.Price.String(),
		Commission:    t.Commission.String(),
		TotalAmount:   t.TotalAmount.String(),
		OrderID:       t.OrderID,
		ExecutedAt:    t.ExecutedAt.Unix(),
	}
}

// HoldingDTO is a holding enriched with the latest quote.
type HoldingDTO struct {
	AccountID          string `json:"account_id"`
	Symbol             string `json:"symbol"`
	Quantity           string `json:"quantity"`
	AverageCost        string `json:"average_cost"`
	TotalCost          string `json:"total_cost"`
	RealizedGainLoss   string `json:"realized_gain_loss"`
	CurrentPrice       string `json:"current_price"`
	MarketValue        string `json:"market_value"`
	UnrealizedGainLoss string `json:"unrealized_gain_loss"`
	LastUpdated        int64  `json:"last_updated"`
}

// AccountDTO is the account shape returned to the interface layer.
type AccountDTO struct {
	AccountID    string `json:"account_id"`
	UserID       string `json:"user_id"`
	Name         string `json:"name"`
	Currency     string `json:"currency"`
	CashBalance  string `json:"cash_balance"`
	InitialValue string `json:"initial_value"`
	IsDefault    bool   `json:"is_default"`
}

func toAccountDTO(a *domain.Account) *AccountDTO {
	return &AccountDTO{
		AccountID:    a.AccountID,
		UserID:       a.UserID,
		Name:         a.Name,
		Currency:     a.Currency,
		CashBalance:  a.CashBalance.String(),
		InitialValue: a.InitialValue.String(),
		IsDefault:    a.IsDefault,
	}
}

// SnapshotDTO is one valuation row of the performance series.
type SnapshotDTO struct {
	AccountID      string `json:"account_id"`
	SnapshotDate   string `json:"snapshot_date"`
	TotalValue     string `json:"total_value"`
	CashBalance    string `json:"cash_balance"`
	InvestedAmount string `json:"invested_amount"`
	DayGainLoss    string `json:"day_gain_loss"`
	TotalGainLoss  string `json:"total_gain_loss"`
}

func toSnapshotDTO(s *domain.PerformanceSnapshot) *SnapshotDTO {
	return &SnapshotDTO{
		AccountID:      s.AccountID,
		SnapshotDate:   s.SnapshotDate.Format(time.DateOnly),
		TotalValue:     s.TotalValue.String(),
		CashBalance:    s.CashBalance.String(),
		InvestedAmount: s.InvestedAmount.String(),
		DayGainLoss:    s.DayGainLoss.String(),
		TotalGainLoss:  s.TotalGainLoss.String(),
	}
}
