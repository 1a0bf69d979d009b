package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// TransactionType enumerates the journal event types.
type TransactionType string

const (
	TransactionBuy        TransactionType = "BUY"
	TransactionSell       TransactionType = "SELL"
	TransactionDividend   TransactionType = "DIVIDEND"
	TransactionSplit      TransactionType = "SPLIT"
	TransactionDeposit    TransactionType = "DEPOSIT"
	TransactionWithdrawal TransactionType = "WITHDRAWAL"
	TransactionFee        TransactionType = "FEE"
	TransactionInterest   TransactionType = "INTEREST"
)

// ValidTransactionType reports whether t is a known type.
func ValidTransactionType(t TransactionType) bool {
	switch t {
	case TransactionBuy, TransactionSell, TransactionDividend, TransactionSplit,
		TransactionDeposit, TransactionWithdrawal, TransactionFee, TransactionInterest:
		return true
	}
	return false
}

// Transaction is one append-only journal row. Rows are immutable once created;
// deletion goes through the compensating reversal in the ledger service.
type Transaction struct {
	gorm.Model
	TransactionID string          `gorm:"column:transaction_id;type:varchar(32);uniqueIndex;not null" json:"transaction_id"`
	AccountID     string          `gorm:"column:account_id;type:varchar(32);index:idx_account_date;not null" json:"account_id"`
	Type          TransactionType `gorm:"column:type;type:varchar(20);index;not null" json:"type"`
	Symbol        string          `gorm:"column:symbol;type:varchar(20);index" json:"symbol"`
	Quantity      decimal.Decimal `gorm:"column:quantity;type:decimal(32,18);not null" json:"quantity"`
	Price         decimal.Decimal `gorm:"column:price;type:decimal(32,18);not null" json:"price"`
	Commission    decimal.Decimal `gorm:"column:commission;type:decimal(32,18);not null" json:"commission"`
	TotalAmount   decimal.Decimal `gorm:"column:total_amount;type:decimal(32,18);not null" json:"total_amount"`
	OrderID       string          `gorm:"column:order_id;type:varchar(32);index" json:"order_id,omitempty"`
	ExecutedAt    time.Time       `gorm:"column:executed_at;type:datetime;index:idx_account_date;not null" json:"executed_at"`
}

// TableName sets the transactions table.
func (Transaction) TableName() string { return "transactions" }

// TotalAmountFor derives the journal amount for a transaction type:
// buys add commission on top of the notional, sells net it out, cash events
// ignore it, and fees are commission only.
func TotalAmountFor(t TransactionType, qty, price, commission decimal.Decimal) decimal.Decimal {
	notional := qty.Mul(price)
	switch t {
	case TransactionBuy:
		return notional.Add(commission)
	case TransactionSell:
		return notional.Sub(commission)
	case TransactionFee:
		return commission
	case TransactionSplit:
		return decimal.Zero
	default:
		// DEPOSIT, WITHDRAWAL, DIVIDEND, INTEREST
		return notional
	}
}

// NewTransaction builds a journal row with the derived total amount.
func NewTransaction(transactionID, accountID string, t TransactionType, symbol string, qty, price, commission decimal.Decimal, orderID string) (*Transaction, error) {
	if !ValidTransactionType(t) {
		return nil, fmt.Errorf("%w: unknown transaction type %q", ErrInsufficientData, t)
	}

	return &Transaction{
		TransactionID: transactionID,
		AccountID:     accountID,
		Type:          t,
		Symbol:        NormalizeSymbol(symbol),
		Quantity:      qty,
		Price:         price,
		Commission:    commission,
		TotalAmount:   TotalAmountFor(t, qty, price, commission),
		OrderID:       orderID,
		ExecutedAt:    time.Now(),
	}, nil
}

// TransactionFilter narrows journal queries. Zero values mean no filtering.
type TransactionFilter struct {
	Symbol   string
	Type     TransactionType
	From     *time.Time
	To       *time.Time
	Page     int
	PageSize int
}
