// Package http exposes the ledger use cases over HTTP.
package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/wyfcoding/stocktrading/internal/ledger/application"
	"github.com/wyfcoding/stocktrading/internal/ledger/domain"
	mddomain "github.com/wyfcoding/stocktrading/internal/marketdata/domain"
	"github.com/wyfcoding/stocktrading/pkg/response"
)

// Handler serves the account, journal, holding and analytics endpoints.
type Handler struct {
	ledger    *application.LedgerService
	snapshots *application.SnapshotService
	analytics *application.AnalyticsService
}

// NewHandler creates the ledger HTTP handler.
func NewHandler(ledger *application.LedgerService, snapshots *application.SnapshotService, analytics *application.AnalyticsService) *Handler {
	return &Handler{ledger: ledger, snapshots: snapshots, analytics: analytics}
}

// RegisterRoutes mounts the ledger endpoints under group.
func (h *Handler) RegisterRoutes(group *gin.RouterGroup) {
	accounts := group.Group("/accounts")
	{
		accounts.POST("", h.CreateAccount)
		accounts.GET("/:id", h.GetAccount)
		accounts.POST("/:id/default", h.SetDefaultAccount)
		accounts.GET("/:id/holdings", h.ListHoldings)
		accounts.GET("/:id/summary", h.GetSummary)
		accounts.POST("/:id/transactions", h.ApplyTransaction)
		accounts.GET("/:id/transactions", h.ListTransactions)
		accounts.DELETE("/:id/transactions/:txid", h.ReverseTransaction)
		accounts.POST("/:id/snapshots", h.RecordSnapshot)
		accounts.GET("/:id/snapshots", h.ListSnapshots)
		accounts.GET("/:id/analytics", h.GetAnalytics)
	}
}

type createAccountRequest struct {
	UserID      string `json:"user_id" binding:"required"`
	Name        string `json:"name" binding:"required"`
	Currency    string `json:"currency"`
	OpeningCash string `json:"opening_cash"`
}

// CreateAccount handles POST /accounts.
func (h *Handler) CreateAccount(c *gin.Context) {
	var req createAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	openingCash := decimal.Zero
	if req.OpeningCash != "" {
		var err error
		openingCash, err = decimal.NewFromString(req.OpeningCash)
		if err != nil {
			response.ErrorWithStatus(c, http.StatusBadRequest, "invalid opening_cash: "+err.Error())
			return
		}
	}

	account, err := h.ledger.CreateAccount(c.Request.Context(), req.UserID, req.Name, req.Currency, openingCash)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Created(c, account)
}

// GetAccount handles GET /accounts/:id.
func (h *Handler) GetAccount(c *gin.Context) {
	account, err := h.ledger.GetAccount(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, account)
}

// SetDefaultAccount handles POST /accounts/:id/default.
func (h *Handler) SetDefaultAccount(c *gin.Context) {
	if err := h.ledger.SetDefaultAccount(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, nil)
}

type applyTransactionRequest struct {
	TransactionID string `json:"transaction_id"`
	Type          string `json:"type" binding:"required"`
	Symbol        string `json:"symbol"`
	Quantity      string `json:"quantity"`
	Price         string `json:"price"`
	Commission    string `json:"commission"`
	OrderID       string `json:"order_id"`
}

// ApplyTransaction handles POST /accounts/:id/transactions.
func (h *Handler) ApplyTransaction(c *gin.Context) {
	var req applyTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	quantity, err := parseDecimal(req.Quantity)
	if err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, "invalid quantity: "+err.Error())
		return
	}
	price, err := parseDecimal(req.Price)
	if err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, "invalid price: "+err.Error())
		return
	}
	commission, err := parseDecimal(req.Commission)
	if err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, "invalid commission: "+err.Error())
		return
	}

	transaction, err := h.ledger.ApplyTransaction(c.Request.Context(), application.ApplyTransactionInput{
		TransactionID: req.TransactionID,
		AccountID:     c.Param("id"),
		Type:          domain.TransactionType(req.Type),
		Symbol:        req.Symbol,
		Quantity:      quantity,
		Price:         price,
		Commission:    commission,
		OrderID:       req.OrderID,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	response.Created(c, transaction)
}

// ListTransactions handles GET /accounts/:id/transactions.
func (h *Handler) ListTransactions(c *gin.Context) {
	filter, err := parseFilter(c)
	if err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, err.Error())
		return
	}

	transactions, pagination, err := h.ledger.ListTransactions(c.Request.Context(), c.Param("id"), filter)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, gin.H{
		"transactions": transactions,
		"pagination":   pagination,
	})
}

// ReverseTransaction handles DELETE /accounts/:id/transactions/:txid.
func (h *Handler) ReverseTransaction(c *gin.Context) {
	err := h.ledger.ReverseTransaction(c.Request.Context(), c.Param("id"), c.Param("txid"))
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, nil)
}

// ListHoldings handles GET /accounts/:id/holdings.
func (h *Handler) ListHoldings(c *gin.Context) {
	holdings, err := h.ledger.ListHoldings(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, holdings)
}

// GetSummary handles GET /accounts/:id/summary.
func (h *Handler) GetSummary(c *gin.Context) {
	summary, err := h.ledger.GetSummary(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, summary)
}

// RecordSnapshot handles POST /accounts/:id/snapshots.
func (h *Handler) RecordSnapshot(c *gin.Context) {
	snapshot, err := h.snapshots.RecordDaily(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	response.Created(c, snapshot)
}

// ListSnapshots handles GET /accounts/:id/snapshots.
func (h *Handler) ListSnapshots(c *gin.Context) {
	from, err := parseDate(c.Query("from"))
	if err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, "invalid from date: "+err.Error())
		return
	}
	to, err := parseDate(c.Query("to"))
	if err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, "invalid to date: "+err.Error())
		return
	}

	snapshots, err := h.snapshots.List(c.Request.Context(), c.Param("id"), from, to)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, snapshots)
}

// GetAnalytics handles GET /accounts/:id/analytics.
func (h *Handler) GetAnalytics(c *gin.Context) {
	analytics, err := h.analytics.GetAnalytics(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, analytics)
}

func parseDecimal(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}

func parseDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func parseFilter(c *gin.Context) (domain.TransactionFilter, error) {
	filter := domain.TransactionFilter{
		Symbol: c.Query("symbol"),
		Type:   domain.TransactionType(c.Query("type")),
	}
	from, err := parseDate(c.Query("from"))
	if err != nil {
		return filter, errors.New("invalid from date: " + err.Error())
	}
	filter.From = from
	to, err := parseDate(c.Query("to"))
	if err != nil {
		return filter, errors.New("invalid to date: " + err.Error())
	}
	filter.To = to

	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil {
		return filter, errors.New("invalid page")
	}
	pageSize, err := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	if err != nil {
		return filter, errors.New("invalid page_size")
	}
	filter.Page = page
	filter.PageSize = pageSize
	return filter, nil
}

// writeError maps domain errors onto HTTP statuses.
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		response.ErrorWithStatus(c, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrInvalidOperation):
		response.ErrorWithStatus(c, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, domain.ErrInsufficientData):
		response.ErrorWithStatus(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrDuplicateTransaction):
		response.ErrorWithStatus(c, http.StatusConflict, err.Error())
	case errors.Is(err, mddomain.ErrUnknownSymbol):
		response.ErrorWithStatus(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, mddomain.ErrUnavailable):
		response.ErrorWithStatus(c, http.StatusServiceUnavailable, err.Error())
	default:
		response.Error(c, err.Error())
	}
}
