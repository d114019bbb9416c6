package httpapi

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/papersim/papersim/internal/domain"
)

type createOrderRequest struct {
	PositionID   string          `json:"position_id"`
	OrderType    string          `json:"order_type"`
	TriggerPrice decimal.Decimal `json:"trigger_price"`
	Amount       decimal.Decimal `json:"amount"`
}

func (s *Server) handleOrdersList(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	orders, err := s.store.PendingOrders(r.Context(), uid)
	if err != nil {
		respondError(w, err)
		return
	}
	if orders == nil {
		orders = []domain.Order{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"orders": orders})
}

func (s *Server) handleOrderCreate(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	orderType := domain.OrderType(strings.ToUpper(strings.TrimSpace(req.OrderType)))
	order, err := s.store.CreateOrder(r.Context(), uid, req.PositionID, orderType, req.TriggerPrice, req.Amount)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, order)
}

func (s *Server) handleOrderCancel(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	orderID := pathParam(r, "orderID")
	if err := s.store.CancelOrder(r.Context(), uid, orderID); err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"cancelled": orderID})
}

type checkOrdersRequest struct {
	Prices map[string]decimal.Decimal `json:"prices"`
}

// handleOrdersCheck evaluates the caller's pending orders. Quotes may be
// supplied in the body; coins without a supplied quote are priced from the
// market feed.
func (s *Server) handleOrdersCheck(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	var req checkOrdersRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid json body")
			return
		}
	}
	prices := req.Prices
	if prices == nil {
		prices = map[string]decimal.Decimal{}
	}

	coins, err := s.store.PendingOrderCoins(r.Context(), uid)
	if err != nil {
		respondError(w, err)
		return
	}
	var missing []string
	for _, coin := range coins {
		if _, ok := prices[coin]; !ok {
			missing = append(missing, coin)
		}
	}
	if len(missing) > 0 {
		fetched, err := s.prices.GetPrices(r.Context(), missing)
		if err != nil {
			respondError(w, err)
			return
		}
		for coin, price := range fetched {
			prices[coin] = price
		}
	}

	executed, err := s.store.EvaluateTriggers(r.Context(), uid, prices)
	if err != nil {
		respondError(w, err)
		return
	}
	if executed == nil {
		executed = []domain.Order{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"executed": executed})
}
