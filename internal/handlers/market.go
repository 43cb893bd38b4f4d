package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/bobmcallan/stock-radar/internal/common"
	"github.com/bobmcallan/stock-radar/internal/market"
	"github.com/bobmcallan/stock-radar/internal/models"
)

// MarketData is the market data service behind the /api/market routes.
type MarketData interface {
	History(ctx context.Context, ticker string, days int) (*market.History, error)
	Holdings(ctx context.Context, etf string) (*market.Holdings, error)
}

// MarketHandler serves ETF holdings and daily price history.
type MarketHandler struct {
	logger *common.Logger
	data   MarketData
}

// NewMarketHandler creates a new market data handler.
func NewMarketHandler(logger *common.Logger, data MarketData) *MarketHandler {
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	return &MarketHandler{logger: logger, data: data}
}

// HandleHoldings handles GET /api/market/holdings/{etf}.
func (h *MarketHandler) HandleHoldings(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	holdings, err := h.data.Holdings(r.Context(), r.PathValue("etf"))
	if err != nil {
		h.logger.Warn().Str("etf", r.PathValue("etf")).Err(err).Msg("holdings lookup failed")
		WriteErrorWithCode(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, holdings)
}

// HandleHistory handles GET /api/market/history/{ticker}?days=N.
func (h *MarketHandler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	days := 0
	if raw := r.URL.Query().Get("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			WriteErrorWithCode(w, models.NewInputError("days must be a positive integer", err))
			return
		}
		days = n
	}

	history, err := h.data.History(r.Context(), r.PathValue("ticker"), days)
	if err != nil {
		h.logger.Warn().Str("ticker", r.PathValue("ticker")).Err(err).Msg("history lookup failed")
		WriteErrorWithCode(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, history)
}
