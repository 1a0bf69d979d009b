package domain

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Position is the signed net exposure in one symbol: positive quantity is
// long, negative is short. AverageCost is the weighted-average entry price of
// the open side; RealizedPnL accumulates the profit of every closed portion.
type Position struct {
	gorm.Model
	AccountID   string          `gorm:"column:account_id;type:varchar(32);uniqueIndex:idx_account_symbol;not null" json:"account_id"`
	Symbol      string          `gorm:"column:symbol;type:varchar(20);uniqueIndex:idx_account_symbol;not null" json:"symbol"`
	Quantity    decimal.Decimal `gorm:"column:quantity;type:decimal(32,18);not null" json:"quantity"`
	AverageCost decimal.Decimal `gorm:"column:average_cost;type:decimal(32,18);not null" json:"average_cost"`
	RealizedPnL decimal.Decimal `gorm:"column:realized_pnl;type:decimal(32,18);not null" json:"realized_pnl"`
	LastUpdated time.Time       `gorm:"column:last_updated;type:datetime;not null" json:"last_updated"`
}

// TableName sets the positions table.
func (Position) TableName() string { return "positions" }

// NewPosition creates a flat position for account+symbol.
func NewPosition(accountID, symbol string) *Position {
	return &Position{
		AccountID:   accountID,
		Symbol:      symbol,
		Quantity:    decimal.Zero,
		AverageCost: decimal.Zero,
		RealizedPnL: decimal.Zero,
		LastUpdated: time.Now(),
	}
}

// AddFill applies one fill to the position. A buy adds positive quantity, a
// sell negative. Same-direction fills reweight the average entry price;
// opposite-direction fills first close existing quantity, realizing P&L on
// the closed portion, and a fill larger than the open quantity flips the
// position with the remainder opening at the fill price.
func (p *Position) AddFill(side OrderSide, qty, price decimal.Decimal) {
	delta := qty
	if side == SideSell {
		delta = qty.Neg()
	}

	switch {
	case p.Quantity.IsZero():
		p.Quantity = delta
		p.AverageCost = price

	case p.Quantity.Sign() == delta.Sign():
		// Extending the position: weighted average over the absolute sizes.
		totalCost := p.Quantity.Abs().Mul(p.AverageCost).Add(delta.Abs().Mul(price))
		p.Quantity = p.Quantity.Add(delta)
		p.AverageCost = totalCost.Div(p.Quantity.Abs())

	default:
		closed := decimal.Min(delta.Abs(), p.Quantity.Abs())
		// Long closes profit when price rises, short when it falls.
		perUnit := price.Sub(p.AverageCost)
		if p.Quantity.IsNegative() {
			perUnit = p.AverageCost.Sub(price)
		}
		p.RealizedPnL = p.RealizedPnL.Add(perUnit.Mul(closed))

		remaining := p.Quantity.Add(delta)
		switch remaining.Sign() {
		case 0:
			p.Quantity = decimal.Zero
			p.AverageCost = decimal.Zero
		case p.Quantity.Sign():
			// Partial close: entry price of what stays open is unchanged.
			p.Quantity = remaining
		default:
			// Flip: the excess opens a new position at the fill price.
			p.Quantity = remaining
			p.AverageCost = price
		}
	}
	p.LastUpdated = time.Now()
}

// UnrealizedPnL marks the open quantity against price.
func (p *Position) UnrealizedPnL(price decimal.Decimal) decimal.Decimal {
	if p.Quantity.IsZero() {
		return decimal.Zero
	}
	perUnit := price.Sub(p.AverageCost)
	if p.Quantity.IsNegative() {
		perUnit = p.AverageCost.Sub(price)
	}
	return perUnit.Mul(p.Quantity.Abs())
}

// IsFlat reports whether no quantity is open.
func (p *Position) IsFlat() bool {
	return p.Quantity.IsZero()
}
