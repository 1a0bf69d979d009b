package application

import (
	"github.com/shopspring/decimal"

	"github.com/wyfcoding/stocktrading/internal/trading/domain"
)

// PlaceOrderInput carries one order request. ClientOrderID is optional; when
// set, re-submitting the same ID returns the original order (retry safety).
type PlaceOrderInput struct {
	ClientOrderID string
	AccountID     string
	Symbol        string
	Side          domain.OrderSide
	Type          domain.OrderType
	Quantity      decimal.Decimal
	LimitPrice    decimal.Decimal
}

// OrderDTO is the order shape returned to the interface layer. Decimals
// travel as strings.
type OrderDTO struct {
	OrderID        string `json:"order_id"`
	ClientOrderID  string `json:"client_order_id,omitempty"`
	AccountID      string `json:"account_id"`
	Symbol         string `json:"symbol"`
	Side           string `json:"side"`
	Type           string `json:"type"`
	Status         string `json:"status"`
	Quantity       string `json:"quantity"`
	FilledQuantity string `json:"filled_quantity"`
	LimitPrice     string `json:"limit_price"`
	FillPrice      string `json:"fill_price"`
	Commission     string `json:"commission"`
	RejectReason   string `json:"reject_reason,omitempty"`
	SubmittedAt    int64  `json:"submitted_at"`
	FilledAt       int64  `json:"filled_at,omitempty"`
}

func toOrderDTO(o *domain.Order) *OrderDTO {
	dto := &OrderDTO{
		OrderID:        o.OrderID,
		ClientOrderID:  o.ClientOrderID,
		AccountID:      o.AccountID,
		Symbol:         o.Symbol,
		Side:           string(o.Side),
		Type:           string(o.Type),
		Status:         string(o.Status),
		Quantity:       o.Quantity.String(),
		FilledQuantity: o.FilledQuantity.String(),
		LimitPrice:     o.LimitPrice.String(),
		FillPrice:      o.FillPrice.String(),
		Commission:     o.Commission.String(),
		RejectReason:   o.RejectReason,
		SubmittedAt:    o.SubmittedAt.Unix(),
	}
	if o.FilledAt != nil {
		dto.FilledAt = o.FilledAt.Unix()
	}
	return dto
}

// PositionDTO is the signed position shape returned to the interface layer.
type PositionDTO struct {
	AccountID   string `json:"account_id"`
	Symbol      string `json:"symbol"`
	Quantity    string `json:"quantity"`
	AverageCost string `json:"average_cost"`
	RealizedPnL string `json:"realized_pnl"`
	LastUpdated int64  `json:"last_updated"`
}

func toPositionDTO(p *domain.Position) *PositionDTO {
	return &PositionDTO{
		AccountID:   p.AccountID,
		Symbol:      p.Symbol,
		Quantity:    p.Quantity.String(),
		AverageCost: p.AverageCost.String(),
		RealizedPnL: p.RealizedPnL.String(),
		LastUpdated: p.LastUpdated.Unix(),
	}
}
