package domain

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Account is the portfolio aggregate: cash balance plus an immutable initial
// value baseline. The ledger records cash movements without enforcing buying
// power; overdraft policy belongs to the execution layer.
type Account struct {
	gorm.Model
	AccountID    string          `gorm:"column:account_id;type:varchar(32);uniqueIndex;not null" json:"account_id"`
	UserID       string          `gorm:"column:user_id;type:varchar(32);index;not null" json:"user_id"`
	Name         string          `gorm:"column:name;type:varchar(128);not null" json:"name"`
	Currency     string          `gorm:"column:currency;type:varchar(3);not null;default:'USD'" json:"currency"`
	CashBalance  decimal.Decimal `gorm:"column:cash_balance;type:decimal(32,18);not null" json:"cash_balance"`
	InitialValue decimal.Decimal `gorm:"column:initial_value;type:decimal(32,18);not null" json:"initial_value"`
	IsDefault    bool            `gorm:"column:is_default;not null;default:false" json:"is_default"`
}

// TableName sets the accounts table.
func (Account) TableName() string { return "accounts" }

// NewAccount creates an account with the given opening cash, which also fixes
// the initial value baseline.
func NewAccount(accountID, userID, name, currency string, openingCash decimal.Decimal) *Account {
	return &Account{
		AccountID:    accountID,
		UserID:       userID,
		Name:         name,
		Currency:     currency,
		CashBalance:  openingCash,
		InitialValue: openingCash,
	}
}

// CashEffect returns the signed cash delta of applying t.
//
// A SELL's TotalAmount is already net of commission, so it is credited as-is:
// commission is deducted exactly once, at journal creation. SPLIT moves no
// cash.
func CashEffect(t *Transaction) decimal.Decimal {
	switch t.Type {
	case TransactionBuy, TransactionWithdrawal, TransactionFee:
		return t.TotalAmount.Neg()
	case TransactionSell, TransactionDeposit, TransactionDividend, TransactionInterest:
		return t.TotalAmount
	default:
		// SPLIT
		return decimal.Zero
	}
}

// ApplyCash applies t's cash effect to the balance.
func (a *Account) ApplyCash(t *Transaction) {
	a.CashBalance = a.CashBalance.Add(CashEffect(t))
}

// ReverseCash undoes t's cash effect.
func (a *Account) ReverseCash(t *Transaction) {
	a.CashBalance = a.CashBalance.Sub(CashEffect(t))
}

// PerformanceSnapshot is one valuation row per account per calendar day.
// Recording twice on the same day updates the existing row.
type PerformanceSnapshot struct {
	gorm.Model
	AccountID      string          `gorm:"column:account_id;type:varchar(32);uniqueIndex:idx_account_snapdate;not null" json:"account_id"`
	SnapshotDate   time.Time       `gorm:"column:snapshot_date;type:date;uniqueIndex:idx_account_snapdate;not null" json:"snapshot_date"`
	TotalValue     decimal.Decimal `gorm:"column:total_value;type:decimal(32,18);not null" json:"total_value"`
	CashBalance    decimal.Decimal `gorm:"column:cash_balance;type:decimal(32,18);not null" json:"cash_balance"`
	InvestedAmount decimal.Decimal `gorm:"column:invested_amount;type:decimal(32,18);not null" json:"invested_amount"`
	DayGainLoss    decimal.Decimal `gorm:"column:day_gain_loss;type:decimal(32,18);not null" json:"day_gain_loss"`
	TotalGainLoss  decimal.Decimal `gorm:"column:total_gain_loss;type:decimal(32,18);not null" json:"total_gain_loss"`
}

// TableName sets the performance snapshots table.
func (PerformanceSnapshot) TableName() string { return "performance_snapshots" }

// Summary is the account valuation view assembled from cash, holdings and
// live quotes.
type Summary struct {
	AccountID      string          `json:"account_id"`
	CashBalance    decimal.Decimal `json:"cash_balance"`
	CurrentValue   decimal.Decimal `json:"current_value"`
	InvestedAmount decimal.Decimal `json:"invested_amount"`
	TotalGainLoss  decimal.Decimal `json:"total_gain_loss"`
	DayGainLoss    decimal.Decimal `json:"day_gain_loss"`
}

// Analytics carries the derived performance statistics, all in percent except
// the Sharpe ratio.
type Analytics struct {
	AccountID        string  `json:"account_id"`
	TotalReturn      float64 `json:"total_return"`
	AnnualizedReturn float64 `json:"annualized_return"`
	Volatility       float64 `json:"volatility"`
	MaxDrawdown      float64 `json:"max_drawdown"`
	SharpeRatio      float64 `json:"sharpe_ratio"`
	WinRate          float64 `json:"win_rate"`
}
