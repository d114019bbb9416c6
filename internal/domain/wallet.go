package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Wallet is the single-currency cash balance of one user. One row per user;
// the balance is mutated only by the trade executor.
type Wallet struct {
	ID        string          `json:"id"`
	UserID    string          `json:"user_id"`
	Balance   decimal.Decimal `json:"balance"`
	Currency  string          `json:"currency"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}
