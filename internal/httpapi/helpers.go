package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/papersim/papersim/internal/ledger"
	"github.com/papersim/papersim/internal/pricefeed"
	"github.com/papersim/papersim/pkg/logger"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"error": msg})
}

func pathParam(r *http.Request, key string) string {
	if m, ok := r.Context().Value(paramsKey).(map[string]string); ok {
		return m[key]
	}
	return ""
}

// userID extracts the authenticated user from the X-User-ID header.
// Authentication itself lives upstream; an absent header is a 401.
func userID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := r.Header.Get("X-User-ID")
	if id == "" {
		writeError(w, http.StatusUnauthorized, "missing X-User-ID header")
		return "", false
	}
	return id, true
}

// respondError maps ledger and pricefeed errors to HTTP statuses.
func respondError(w http.ResponseWriter, err error) {
	switch {
	case ledger.IsValidation(err):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ledger.ErrWalletExists):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, ledger.ErrWalletNotFound),
		errors.Is(err, ledger.ErrPositionNotFound),
		errors.Is(err, ledger.ErrOrderNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ledger.ErrInsufficientFunds),
		errors.Is(err, ledger.ErrInsufficientHoldings),
		errors.Is(err, ledger.ErrNoSuchPosition),
		errors.Is(err, ledger.ErrAmountExceedsHoldings),
		errors.Is(err, ledger.ErrNotCancellable):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, pricefeed.ErrUnavailable):
		writeError(w, http.StatusBadGateway, err.Error())
	default:
		logger.Errorf("internal error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
