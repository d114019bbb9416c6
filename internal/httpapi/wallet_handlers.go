package httpapi

import (
	"net/http"
)

func (s *Server) handleWalletCreate(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	wallet, err := s.store.CreateWallet(r.Context(), uid)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, wallet)
}

func (s *Server) handleWalletGet(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	wallet, err := s.store.Wallet(r.Context(), uid)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, wallet)
}
