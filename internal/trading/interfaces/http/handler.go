// Package http exposes the order execution use cases over HTTP.
package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	ledgerdomain "github.com/wyfcoding/stocktrading/internal/ledger/domain"
	mddomain "github.com/wyfcoding/stocktrading/internal/marketdata/domain"
	"github.com/wyfcoding/stocktrading/internal/trading/application"
	"github.com/wyfcoding/stocktrading/internal/trading/domain"
	"github.com/wyfcoding/stocktrading/pkg/response"
)

// Handler serves the order and position endpoints.
type Handler struct {
	execution *application.ExecutionService
}

// NewHandler creates the trading HTTP handler.
func NewHandler(execution *application.ExecutionService) *Handler {
	return &Handler{execution: execution}
}

// RegisterRoutes mounts the trading endpoints under group.
func (h *Handler) RegisterRoutes(group *gin.RouterGroup) {
	orders := group.Group("/orders")
	{
		orders.POST("", h.PlaceOrder)
		orders.GET("", h.ListOrders)
		orders.GET("/:id", h.GetOrder)
		orders.POST("/:id/cancel", h.CancelOrder)
	}
	group.GET("/positions", h.ListPositions)
}

type placeOrderRequest struct {
	ClientOrderID string `json:"client_order_id"`
	AccountID     string `json:"account_id" binding:"required"`
	Symbol        string `json:"symbol" binding:"required"`
	Side          string `json:"side" binding:"required"`
	Type          string `json:"type" binding:"required"`
	Quantity      string `json:"quantity" binding:"required"`
	LimitPrice    string `json:"limit_price"`
}

// PlaceOrder handles POST /orders.
func (h *Handler) PlaceOrder(c *gin.Context) {
	var req placeOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	quantity, err := decimal.NewFromString(req.Quantity)
	if err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, "invalid quantity: "+err.Error())
		return
	}
	limitPrice := decimal.Zero
	if req.LimitPrice != "" {
		limitPrice, err = decimal.NewFromString(req.LimitPrice)
		if err != nil {
			response.ErrorWithStatus(c, http.StatusBadRequest, "invalid limit_price: "+err.Error())
			return
		}
	}

	order, err := h.execution.PlaceOrder(c.Request.Context(), application.PlaceOrderInput{
		ClientOrderID: req.ClientOrderID,
		AccountID:     req.AccountID,
		Symbol:        req.Symbol,
		Side:          domain.OrderSide(req.Side),
		Type:          domain.OrderType(req.Type),
		Quantity:      quantity,
		LimitPrice:    limitPrice,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	response.Created(c, order)
}

// GetOrder handles GET /orders/:id.
func (h *Handler) GetOrder(c *gin.Context) {
	order, err := h.execution.GetOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, order)
}

// CancelOrder handles POST /orders/:id/cancel.
func (h *Handler) CancelOrder(c *gin.Context) {
	order, err := h.execution.CancelOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, order)
}

// ListOrders handles GET /orders?account_id=...
func (h *Handler) ListOrders(c *gin.Context) {
	accountID := c.Query("account_id")
	if accountID == "" {
		response.ErrorWithStatus(c, http.StatusBadRequest, "account_id is required")
		return
	}

	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, "invalid page")
		return
	}
	pageSize, err := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	if err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, "invalid page_size")
		return
	}

	orders, pagination, err := h.execution.ListOrders(c.Request.Context(), accountID, domain.OrderFilter{
		Status:   domain.OrderStatus(c.Query("status")),
		Symbol:   c.Query("symbol"),
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, gin.H{
		"orders":     orders,
		"pagination": pagination,
	})
}

// ListPositions handles GET /positions?account_id=...
func (h *Handler) ListPositions(c *gin.Context) {
	accountID := c.Query("account_id")
	if accountID == "" {
		response.ErrorWithStatus(c, http.StatusBadRequest, "account_id is required")
		return
	}

	positions, err := h.execution.ListPositions(c.Request.Context(), accountID)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, positions)
}

// writeError maps trading and ledger errors onto HTTP statuses.
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, ledgerdomain.ErrNotFound):
		response.ErrorWithStatus(c, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrMissingField):
		response.ErrorWithStatus(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrInvalidTransition), errors.Is(err, ledgerdomain.ErrInvalidOperation):
		response.ErrorWithStatus(c, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, ledgerdomain.ErrInsufficientData):
		response.ErrorWithStatus(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, mddomain.ErrUnknownSymbol):
		response.ErrorWithStatus(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, mddomain.ErrUnavailable):
		response.ErrorWithStatus(c, http.StatusServiceUnavailable, err.Error())
	default:
		response.Error(c, err.Error())
	}
}
