package httpapi

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/papersim/papersim/internal/domain"
	"github.com/papersim/papersim/internal/ledger"
)

type tradeRequest struct {
	Type         string          `json:"type"`
	CoinID       string          `json:"coin_id"`
	Symbol       string          `json:"symbol"`
	Amount       decimal.Decimal `json:"amount"`
	PricePerUnit decimal.Decimal `json:"price_per_unit"`
}

func (s *Server) handleTrade(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	var req tradeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}

	var result *ledger.TradeResult
	var err error
	switch domain.TradeType(strings.ToUpper(strings.TrimSpace(req.Type))) {
	case domain.TradeBuy:
		result, err = s.store.ExecuteBuy(r.Context(), uid, req.CoinID, req.Symbol, req.Amount, req.PricePerUnit)
	case domain.TradeSell:
		result, err = s.store.ExecuteSell(r.Context(), uid, req.CoinID, req.Symbol, req.Amount, req.PricePerUnit)
	default:
		writeError(w, http.StatusBadRequest, "type must be BUY or SELL")
		return
	}
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
