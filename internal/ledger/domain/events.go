package domain

import "time"

// Kafka topics for ledger events.
const (
	TopicTransactionApplied  = "ledger.transaction.applied"
	TopicTransactionReversed = "ledger.transaction.reversed"
)

// TransactionEvent is the payload published after a journal commit.
type TransactionEvent struct {
	TransactionID string    `json:"transaction_id"`
	AccountID     string    `json:"account_id"`
	Type          string    `json:"type"`
	Symbol        string    `json:"symbol"`
	Quantity      string    `json:"quantity"`
	Price         string    `json:"price"`
	Commission    string    `json:"commission"`
	TotalAmount   string    `json:"total_amount"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// NewTransactionEvent converts a journal row into its event payload.
// Decimal fields travel as strings to keep exact precision on the wire.
func NewTransactionEvent(t *Transaction) TransactionEvent {
	return TransactionEvent{
		TransactionID: t.TransactionID,
		AccountID:     t.AccountID,
		Type:          string(t.Type),
		Symbol:        t.Symbol,
		Quantity:      t.Quantity.String(),
		Price:         t.Price.String(),
		Commission:    t.Commission.String(),
		TotalAmount:   t.TotalAmount.String(),
		OccurredAt:    time.Now(),
	}
}
