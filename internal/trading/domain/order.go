// Package domain contains the trading entities: orders with their state
// machine and signed positions.
package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OrderSide is the direction of an order.
type OrderSide string

const (
	SideBuy  OrderSide = "BUY"
	SideSell OrderSide = "SELL"
)

// ValidSide reports whether s is a known side.
func ValidSide(s OrderSide) bool {
	return s == SideBuy || s == SideSell
}

// OrderType is the execution style of an order.
type OrderType string

const (
	TypeMarket       OrderType = "MARKET"
	TypeLimit        OrderType = "LIMIT"
	TypeStop         OrderType = "STOP"
	TypeStopLimit    OrderType = "STOP_LIMIT"
	TypeTrailingStop OrderType = "TRAILING_STOP"
)

// ValidType reports whether t is a known order type.
func ValidType(t OrderType) bool {
	switch t {
	case TypeMarket, TypeLimit, TypeStop, TypeStopLimit, TypeTrailingStop:
		return true
	}
	return false
}

// OrderStatus is a node in the order state machine.
type OrderStatus string

const (
	StatusPending         OrderStatus = "PENDING"
	StatusFilled          OrderStatus = "FILLED"
	StatusPartiallyFilled OrderStatus = "PARTIALLY_FILLED"
	StatusCancelled       OrderStatus = "CANCELLED"
	StatusRejected        OrderStatus = "REJECTED"
	StatusExpired         OrderStatus = "EXPIRED"
)

// transitions lists the legal status changes. FILLED, CANCELLED, REJECTED and
// EXPIRED are terminal.
var transitions = map[OrderStatus][]OrderStatus{
	StatusPending:         {StatusFilled, StatusPartiallyFilled, StatusCancelled, StatusRejected, StatusExpired},
	StatusPartiallyFilled: {StatusFilled, StatusPartiallyFilled, StatusCancelled, StatusExpired},
}

// CanTransition reports whether an order may move from one status to another.
func CanTransition(from, to OrderStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Order is one client order and its lifecycle state.
type Order struct {
	gorm.Model
	OrderID        string          `gorm:"column:order_id;type:varchar(32);uniqueIndex;not null" json:"order_id"`
	ClientOrderID  string          `gorm:"column:client_order_id;type:varchar(64);index" json:"client_order_id,omitempty"`
	AccountID      string          `gorm:"column:account_id;type:varchar(32);index;not null" json:"account_id"`
	Symbol         string          `gorm:"column:symbol;type:varchar(20);index;not null" json:"symbol"`
	Side           OrderSide       `gorm:"column:side;type:varchar(10);not null" json:"side"`
	Type           OrderType       `gorm:"column:type;type:varchar(20);not null" json:"type"`
	Status         OrderStatus     `gorm:"column:status;type:varchar(20);index;not null" json:"status"`
	Quantity       decimal.Decimal `gorm:"column:quantity;type:decimal(32,18);not null" json:"quantity"`
	FilledQuantity decimal.Decimal `gorm:"column:filled_quantity;type:decimal(32,18);not null" json:"filled_quantity"`
	LimitPrice     decimal.Decimal `gorm:"column:limit_price;type:decimal(32,18);not null" json:"limit_price"`
	FillPrice      decimal.Decimal `gorm:"column:fill_price;type:decimal(32,18);not null" json:"fill_price"`
	Commission     decimal.Decimal `gorm:"column:commission;type:decimal(32,18);not null" json:"commission"`
	RejectReason   string          `gorm:"column:reject_reason;type:varchar(255)" json:"reject_reason,omitempty"`
	SubmittedAt    time.Time       `gorm:"column:submitted_at;type:datetime;not null" json:"submitted_at"`
	FilledAt       *time.Time      `gorm:"column:filled_at;type:datetime" json:"filled_at,omitempty"`
}

// TableName sets the orders table.
func (Order) TableName() string { return "orders" }

// NewOrder creates a pending order.
func NewOrder(orderID, clientOrderID, accountID, symbol string, side OrderSide, orderType OrderType, qty, limitPrice decimal.Decimal) *Order {
	return &Order{
		OrderID:        orderID,
		ClientOrderID:  clientOrderID,
		AccountID:      accountID,
		Symbol:         symbol,
		Side:           side,
		Type:           orderType,
		Status:         StatusPending,
		Quantity:       qty,
		FilledQuantity: decimal.Zero,
		LimitPrice:     limitPrice,
		FillPrice:      decimal.Zero,
		Commission:     decimal.Zero,
		SubmittedAt:    time.Now(),
	}
}

// transition moves the order to the target status if the state machine
// allows it.
func (o *Order) transition(to OrderStatus) error {
	if !CanTransition(o.Status, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, o.Status, to)
	}
	o.Status = to
	return nil
}

// Fill completes the order at price with the given commission.
func (o *Order) Fill(price, commission decimal.Decimal) error {
	if err := o.transition(StatusFilled); err != nil {
		return err
	}
	now := time.Now()
	o.FilledQuantity = o.Quantity
	o.FillPrice = price
	o.Commission = commission
	o.FilledAt = &now
	return nil
}

// FillPartial records a partial fill at price. The order stays open.
func (o *Order) FillPartial(qty, price, commission decimal.Decimal) error {
	if err := o.transition(StatusPartiallyFilled); err != nil {
		return err
	}
	o.FilledQuantity = o.FilledQuantity.Add(qty)
	o.FillPrice = price
	o.Commission = o.Commission.Add(commission)
	return nil
}

// Cancel cancels an open order.
func (o *Order) Cancel() error {
	return o.transition(StatusCancelled)
}

// Reject marks the order rejected with a reason.
func (o *Order) Reject(reason string) error {
	if err := o.transition(StatusRejected); err != nil {
		return err
	}
	o.RejectReason = reason
	return nil
}

// Expire marks the order expired.
func (o *Order) Expire() error {
	return o.transition(StatusExpired)
}

// IsOpen reports whether the order can still fill or be cancelled.
func (o *Order) IsOpen() bool {
	return o.Status == StatusPending || o.Status == StatusPartiallyFilled
}
