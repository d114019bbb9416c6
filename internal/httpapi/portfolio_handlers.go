package httpapi

import (
	"net/http"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/papersim/papersim/internal/domain"
	"github.com/papersim/papersim/internal/ledger"
)

// handlePortfolio returns valued holdings, or the transaction history when
// called with ?type=history.
func (s *Server) handlePortfolio(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	if r.URL.Query().Get("type") == "history" {
		limit := ledger.DefaultHistoryLimit
		if v := r.URL.Query().Get("limit"); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				limit = n
			}
		}
		history, err := s.store.History(r.Context(), uid, limit)
		if err != nil {
			respondError(w, err)
			return
		}
		if history == nil {
			history = []domain.Transaction{}
		}
		writeJSON(w, http.StatusOK, map[string]any{"transactions": history})
		return
	}

	positions, err := s.store.Positions(r.Context(), uid)
	if err != nil {
		respondError(w, err)
		return
	}

	prices := map[string]decimal.Decimal{}
	if len(positions) > 0 {
		ids := make([]string, 0, len(positions))
		seen := map[string]bool{}
		for _, p := range positions {
			if !seen[p.CoinID] {
				seen[p.CoinID] = true
				ids = append(ids, p.CoinID)
			}
		}
		fetched, err := s.prices.GetPrices(r.Context(), ids)
		if err != nil {
			respondError(w, err)
			return
		}
		prices = fetched
	}

	holdings, total, err := s.store.Portfolio(r.Context(), uid, prices)
	if err != nil {
		respondError(w, err)
		return
	}
	if holdings == nil {
		holdings = []ledger.ValuedHolding{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"holdings":    holdings,
		"total_value": total,
	})
}
