// Package http exposes quote lookups over HTTP.
package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/wyfcoding/stocktrading/internal/marketdata/domain"
	"github.com/wyfcoding/stocktrading/pkg/response"
)

// Handler serves the quote endpoint.
type Handler struct {
	quotes domain.QuoteSource
}

// NewHandler creates the market data HTTP handler.
func NewHandler(quotes domain.QuoteSource) *Handler {
	return &Handler{quotes: quotes}
}

// RegisterRoutes mounts the quote endpoint under group.
func (h *Handler) RegisterRoutes(group *gin.RouterGroup) {
	group.GET("/quotes/:symbol", h.GetQuote)
}

// GetQuote handles GET /quotes/:symbol.
func (h *Handler) GetQuote(c *gin.Context) {
	symbol := strings.ToUpper(strings.TrimSpace(c.Param("symbol")))
	quote, err := h.quotes.GetQuote(c.Request.Context(), symbol)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUnknownSymbol):
			response.ErrorWithStatus(c, http.StatusBadRequest, err.Error())
		case errors.Is(err, domain.ErrUnavailable):
			response.ErrorWithStatus(c, http.StatusServiceUnavailable, err.Error())
		default:
			response.Error(c, err.Error())
		}
		return
	}
	response.Success(c, quote)
}
