package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TradeType is the direction of an executed trade.
type TradeType string

const (
	TradeBuy  TradeType = "BUY"
	TradeSell TradeType = "SELL"
)

// Valid reports whether t is a known trade type.
func (t TradeType) Valid() bool {
	return t == TradeBuy || t == TradeSell
}

// Transaction is the immutable audit record of one executed trade. Rows are
// append-only: wallet balance and position state must be reconstructable
// from the transaction log plus the starting balance.
type Transaction struct {
	ID           string          `json:"id"`
	UserID       string          `json:"user_id"`
	Type         TradeType       `json:"type"`
	Symbol       string          `json:"symbol"`
	CoinID       string          `json:"coin_id"`
	Amount       decimal.Decimal `json:"amount"`
	PricePerUnit decimal.Decimal `json:"price_per_unit"`
	TotalValue   decimal.Decimal `json:"total_value"`
	Fee          decimal.Decimal `json:"fee"`
	CreatedAt    time.Time       `json:"created_at"`
}
