package httpapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/papersim/papersim/internal/ledger"
	"github.com/papersim/papersim/internal/pricefeed"
)

// newTestServer wires a Server against a throwaway sqlite ledger and a
// stubbed upstream price API. The background poller stays off.
func newTestServer(t *testing.T, upstream http.Handler) http.Handler {
	t.Helper()
	if upstream == nil {
		upstream = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.NotFound(w, r)
		})
	}
	stub := httptest.NewServer(upstream)
	t.Cleanup(stub.Close)

	store, err := ledger.Open(ledger.Config{DBPath: filepath.Join(t.TempDir(), "ledger.db")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	prices := pricefeed.NewClient(pricefeed.Config{
		BaseURL:        stub.URL,
		Timeout:        5 * time.Second,
		PriceCacheTTL:  time.Minute,
		MarketCacheTTL: time.Minute,
	})

	srv := New(Config{}, store, prices)
	t.Cleanup(srv.Close)
	return srv.Router()
}

func doJSON(t *testing.T, router http.Handler, method, path, user string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if user != "" {
		req.Header.Set("X-User-ID", user)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestHealthz(t *testing.T) {
	router := newTestServer(t, nil)
	rec := doJSON(t, router, http.MethodGet, "/healthz", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestMissingUserHeaderIs401(t *testing.T) {
	router := newTestServer(t, nil)
	for _, path := range []string{"/api/wallet", "/api/portfolio", "/api/orders", "/api/crypto"} {
		rec := doJSON(t, router, http.MethodGet, path, "", nil)
		require.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}
}

func TestWalletLifecycle(t *testing.T) {
	router := newTestServer(t, nil)

	rec := doJSON(t, router, http.MethodGet, "/api/wallet", "alice", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/api/wallet", "alice", nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	body := decodeBody(t, rec)
	require.Equal(t, "10000", body["balance"])
	require.Equal(t, "USD", body["currency"])

	rec = doJSON(t, router, http.MethodPost, "/api/wallet", "alice", nil)
	require.Equal(t, http.StatusConflict, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/wallet", "alice", nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestTradeEndpoint(t *testing.T) {
	router := newTestServer(t, nil)
	doJSON(t, router, http.MethodPost, "/api/wallet", "alice", nil)

	rec := doJSON(t, router, http.MethodPost, "/api/trade", "alice", map[string]any{
		"type": "BUY", "coin_id": "bitcoin", "symbol": "BTC",
		"amount": "0.1", "price_per_unit": "20000",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	require.Equal(t, "8000", body["new_balance"])

	// Unaffordable trade.
	rec = doJSON(t, router, http.MethodPost, "/api/trade", "alice", map[string]any{
		"type": "BUY", "coin_id": "bitcoin", "symbol": "BTC",
		"amount": "1", "price_per_unit": "20000",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	// Unknown trade type.
	rec = doJSON(t, router, http.MethodPost, "/api/trade", "alice", map[string]any{
		"type": "HOLD", "coin_id": "bitcoin", "symbol": "BTC",
		"amount": "0.1", "price_per_unit": "20000",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	// Sell part of the holding.
	rec = doJSON(t, router, http.MethodPost, "/api/trade", "alice", map[string]any{
		"type": "SELL", "coin_id": "bitcoin", "symbol": "BTC",
		"amount": "0.05", "price_per_unit": "22000",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	body = decodeBody(t, rec)
	require.Equal(t, "9100", body["new_balance"])
}

func TestOrderEndpoints(t *testing.T) {
	router := newTestServer(t, nil)
	doJSON(t, router, http.MethodPost, "/api/wallet", "alice", nil)

	rec := doJSON(t, router, http.MethodPost, "/api/trade", "alice", map[string]any{
		"type": "BUY", "coin_id": "bitcoin", "symbol": "BTC",
		"amount": "0.2", "price_per_unit": "25000",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	trade := decodeBody(t, rec)
	positionID := trade["position"].(map[string]any)["id"].(string)

	rec = doJSON(t, router, http.MethodPost, "/api/orders", "alice", map[string]any{
		"position_id": positionID, "order_type": "STOP_LOSS",
		"trigger_price": "22000", "amount": "0.2",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	order := decodeBody(t, rec)
	orderID := order["id"].(string)
	require.Equal(t, "PENDING", order["status"])

	rec = doJSON(t, router, http.MethodGet, "/api/orders", "alice", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decodeBody(t, rec)
	require.Len(t, list["orders"], 1)

	// Check with an explicit quote below the trigger executes the stop.
	rec = doJSON(t, router, http.MethodPost, "/api/orders/check", "alice", map[string]any{
		"prices": map[string]string{"bitcoin": "21000"},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	checked := decodeBody(t, rec)
	require.Len(t, checked["executed"], 1)

	rec = doJSON(t, router, http.MethodGet, "/api/wallet", "alice", nil)
	body := decodeBody(t, rec)
	require.Equal(t, "9200", body["balance"])

	// Executed order is no longer cancellable.
	rec = doJSON(t, router, http.MethodDelete, "/api/orders/"+orderID, "alice", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, router, http.MethodDelete, "/api/orders/missing", "alice", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestOrdersCheckFetchesMissingQuotes(t *testing.T) {
	upstream := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/simple/price" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"bitcoin":{"usd":20000}}`)
	})
	router := newTestServer(t, upstream)
	doJSON(t, router, http.MethodPost, "/api/wallet", "alice", nil)

	rec := doJSON(t, router, http.MethodPost, "/api/trade", "alice", map[string]any{
		"type": "BUY", "coin_id": "bitcoin", "symbol": "BTC",
		"amount": "0.2", "price_per_unit": "25000",
	})
	trade := decodeBody(t, rec)
	positionID := trade["position"].(map[string]any)["id"].(string)

	rec = doJSON(t, router, http.MethodPost, "/api/orders", "alice", map[string]any{
		"position_id": positionID, "order_type": "STOP_LOSS",
		"trigger_price": "22000", "amount": "0.2",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	// No prices in the body: the server pulls the quote itself.
	rec = doJSON(t, router, http.MethodPost, "/api/orders/check", "alice", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	checked := decodeBody(t, rec)
	require.Len(t, checked["executed"], 1)
}

func TestPortfolioEndpoint(t *testing.T) {
	upstream := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"bitcoin":{"usd":30000}}`)
	})
	router := newTestServer(t, upstream)
	doJSON(t, router, http.MethodPost, "/api/wallet", "alice", nil)
	doJSON(t, router, http.MethodPost, "/api/trade", "alice", map[string]any{
		"type": "BUY", "coin_id": "bitcoin", "symbol": "BTC",
		"amount": "0.2", "price_per_unit": "25000",
	})

	rec := doJSON(t, router, http.MethodGet, "/api/portfolio", "alice", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	require.Equal(t, "6000", body["total_value"])
	holdings := body["holdings"].([]any)
	require.Len(t, holdings, 1)

	rec = doJSON(t, router, http.MethodGet, "/api/portfolio?type=history", "alice", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body = decodeBody(t, rec)
	require.Len(t, body["transactions"], 1)
}

func TestCryptoEndpoint(t *testing.T) {
	upstream := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/coins/markets":
			fmt.Fprint(w, `[{"id":"bitcoin","symbol":"btc","name":"Bitcoin","current_price":50000}]`)
		case "/search":
			fmt.Fprint(w, `{"coins":[{"id":"dogecoin","name":"Dogecoin","symbol":"DOGE"}]}`)
		default:
			http.NotFound(w, r)
		}
	})
	router := newTestServer(t, upstream)

	rec := doJSON(t, router, http.MethodGet, "/api/crypto", "alice", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	require.Len(t, body["markets"], 1)

	rec = doJSON(t, router, http.MethodGet, "/api/crypto?query=doge", "alice", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body = decodeBody(t, rec)
	require.Len(t, body["coins"], 1)
}

func TestUpstreamFailureIs502(t *testing.T) {
	upstream := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	router := newTestServer(t, upstream)

	rec := doJSON(t, router, http.MethodGet, "/api/crypto", "alice", nil)
	require.Equal(t, http.StatusBadGateway, rec.Code)
}
