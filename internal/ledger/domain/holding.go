// Package domain contains the ledger's entities: holdings, transactions,
// accounts and performance snapshots, plus the repository contracts.
package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Holding is an account's running stake in one symbol. Quantity is always
// non-negative; average cost is the weighted-average purchase price.
// TotalCost is maintained incrementally, never recomputed from scratch, so
// that applying a transaction and reversing it restores the exact prior state.
type Holding struct {
	gorm.Model
	AccountID        string          `gorm:"column:account_id;type:varchar(32);uniqueIndex:idx_account_symbol;not null" json:"account_id"`
	Symbol           string          `gorm:"column:symbol;type:varchar(20);uniqueIndex:idx_account_symbol;not null" json:"symbol"`
	Quantity         decimal.Decimal `gorm:"column:quantity;type:decimal(32,18);not null" json:"quantity"`
	AverageCost      decimal.Decimal `gorm:"column:average_cost;type:decimal(32,18);not null" json:"average_cost"`
	TotalCost        decimal.Decimal `gorm:"column:total_cost;type:decimal(32,18);not null" json:"total_cost"`
	RealizedGainLoss decimal.Decimal `gorm:"column:realized_gain_loss;type:decimal(32,18);not null" json:"realized_gain_loss"`
	LastUpdated      time.Time       `gorm:"column:last_updated;type:datetime;not null" json:"last_updated"`
}

// TableName sets the holdings table.
func (Holding) TableName() string { return "holdings" }

// NewHolding creates an empty holding for account+symbol. Holdings are created
// on first buy and never deleted; quantity may return to zero and be rebought.
func NewHolding(accountID, symbol string) *Holding {
	return &Holding{
		AccountID:        accountID,
		Symbol:           NormalizeSymbol(symbol),
		Quantity:         decimal.Zero,
		AverageCost:      decimal.Zero,
		TotalCost:        decimal.Zero,
		RealizedGainLoss: decimal.Zero,
		LastUpdated:      time.Now(),
	}
}

// NormalizeSymbol upper-cases and trims a ticker symbol.
func NormalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// ApplyBuy adds qty units at price and reweights the average cost.
func (h *Holding) ApplyBuy(qty, price decimal.Decimal) error {
	if qty.LessThanOrEqual(decimal.Zero) || price.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("%w: buy requires positive quantity and price", ErrInsufficientData)
	}

	newTotalCost := h.TotalCost.Add(qty.Mul(price))
	newQty := h.Quantity.Add(qty)
	h.AverageCost = newTotalCost.Div(newQty)
	h.Quantity = newQty
	h.TotalCost = newTotalCost
	h.LastUpdated = time.Now()
	return nil
}

// ApplySell removes qty units sold at price, realizing gain/loss against the
// average cost basis. The sold portion's cost leaves TotalCost; AverageCost is
// unchanged unless the holding empties, in which case cost fields reset to
// zero (realized gain/loss is preserved).
func (h *Holding) ApplySell(qty, price decimal.Decimal) error {
	if qty.LessThanOrEqual(decimal.Zero) || price.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("%w: sell requires positive quantity and price", ErrInsufficientData)
	}
	if qty.GreaterThan(h.Quantity) {
		return fmt.Errorf("%w: selling %s of %s would result in negative holdings (held %s)",
			ErrInvalidOperation, qty, h.Symbol, h.Quantity)
	}

	soldCost := h.AverageCost.Mul(qty)
	h.RealizedGainLoss = h.RealizedGainLoss.Add(price.Mul(qty).Sub(soldCost))
	h.Quantity = h.Quantity.Sub(qty)
	h.TotalCost = h.TotalCost.Sub(soldCost)

	if h.Quantity.IsZero() {
		h.AverageCost = decimal.Zero
		h.TotalCost = decimal.Zero
	}
	h.LastUpdated = time.Now()
	return nil
}

// ReverseBuy is the exact inverse of ApplyBuy, used when deleting a buy
// transaction.
func (h *Holding) ReverseBuy(qty, price decimal.Decimal) error {
	newQty := h.Quantity.Sub(qty)
	if newQty.IsNegative() {
		return fmt.Errorf("%w: reversing buy of %s %s would result in negative holdings (held %s)",
			ErrInvalidOperation, qty, h.Symbol, h.Quantity)
	}

	if newQty.IsZero() {
		h.Quantity = decimal.Zero
		h.AverageCost = decimal.Zero
		h.TotalCost = decimal.Zero
	} else {
		h.TotalCost = h.TotalCost.Sub(qty.Mul(price))
		h.AverageCost = h.TotalCost.Div(newQty)
		h.Quantity = newQty
	}
	h.LastUpdated = time.Now()
	return nil
}

// ReverseSell is the exact inverse of ApplySell. The sold cost is re-derived
// from the current post-sell average cost, the same way ApplySell computed it.
func (h *Holding) ReverseSell(qty, price decimal.Decimal) error {
	if qty.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("%w: reverse sell requires positive quantity", ErrInsufficientData)
	}

	soldCost := h.AverageCost.Mul(qty)
	h.Quantity = h.Quantity.Add(qty)
	h.TotalCost = h.TotalCost.Add(soldCost)
	h.RealizedGainLoss = h.RealizedGainLoss.Sub(price.Mul(qty).Sub(soldCost))
	if h.Quantity.IsPositive() {
		h.AverageCost = h.TotalCost.Div(h.Quantity)
	}
	h.LastUpdated = time.Now()
	return nil
}

// ApplySplit credits qty additional shares at zero cost; the cost basis is
// spread across the larger position.
func (h *Holding) ApplySplit(qty decimal.Decimal) error {
	if qty.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("%w: split requires positive additional quantity", ErrInsufficientData)
	}
	if h.Quantity.IsZero() {
		return fmt.Errorf("%w: split on empty holding %s", ErrInvalidOperation, h.Symbol)
	}

	h.Quantity = h.Quantity.Add(qty)
	h.AverageCost = h.TotalCost.Div(h.Quantity)
	h.LastUpdated = time.Now()
	return nil
}

// ReverseSplit removes the shares credited by ApplySplit.
func (h *Holding) ReverseSplit(qty decimal.Decimal) error {
	newQty := h.Quantity.Sub(qty)
	if newQty.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("%w: reversing split of %s %s would empty the holding", ErrInvalidOperation, qty, h.Symbol)
	}

	h.Quantity = newQty
	h.AverageCost = h.TotalCost.Div(newQty)
	h.LastUpdated = time.Now()
	return nil
}

// MarketValue is quantity times the given price.
func (h *Holding) MarketValue(price decimal.Decimal) decimal.Decimal {
	return h.Quantity.Mul(price)
}

// UnrealizedGainLoss is the mark-to-market gain against cost basis.
func (h *Holding) UnrealizedGainLoss(price decimal.Decimal) decimal.Decimal {
	return h.Quantity.Mul(price).Sub(h.TotalCost)
}

// IsActive reports whether any quantity is held.
func (h *Holding) IsActive() bool {
	return h.Quantity.IsPositive()
}
