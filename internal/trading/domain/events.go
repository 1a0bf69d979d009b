package domain

import "time"

// TopicOrderFilled carries fill notifications.
const TopicOrderFilled = "trading.order.filled"

// OrderFilledEvent is the message published after an order fills. Decimals
// travel as strings.
type OrderFilledEvent struct {
	OrderID    string `json:"order_id"`
	AccountID  string `json:"account_id"`
	Symbol     string `json:"symbol"`
	Side       string `json:"side"`
	Quantity   string `json:"quantity"`
	FillPrice  string `json:"fill_price"`
	Commission string `json:"commission"`
	FilledAt   int64  `json:"filled_at"`
}

// NewOrderFilledEvent builds the fill event from a filled order.
func NewOrderFilledEvent(o *Order) *OrderFilledEvent {
	filledAt := time.Now().Unix()
	if o.FilledAt != nil {
		filledAt = o.FilledAt.Unix()
	}
	return &OrderFilledEvent{
		OrderID:    o.OrderID,
		AccountID:  o.AccountID,
		Symbol:     o.Symbol,
		Side:       string(o.Side),
		Quantity:   o.FilledQuantity.String(),
		FillPrice:  o.FillPrice.String(),
		Commission: o.Commission.String(),
		FilledAt:   filledAt,
	}
}
