package httpapi

import (
	"net/http"
	"strconv"

	"github.com/papersim/papersim/internal/pricefeed"
)

// handleCrypto proxies market listings. With ?query= it searches by name
// or symbol, otherwise it returns the top coins by market cap.
func (s *Server) handleCrypto(w http.ResponseWriter, r *http.Request) {
	if _, ok := userID(w, r); !ok {
		return
	}

	if query := r.URL.Query().Get("query"); query != "" {
		coins, err := s.prices.Search(r.Context(), query)
		if err != nil {
			respondError(w, err)
			return
		}
		if coins == nil {
			coins = []pricefeed.SearchCoin{}
		}
		writeJSON(w, http.StatusOK, map[string]any{"coins": coins})
		return
	}

	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 250 {
			limit = n
		}
	}
	markets, err := s.prices.TopMarkets(r.Context(), limit)
	if err != nil {
		respondError(w, err)
		return
	}
	if markets == nil {
		markets = []pricefeed.Market{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"markets": markets})
}
