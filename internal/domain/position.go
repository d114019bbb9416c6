package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Position is a portfolio holding: one row per (user, coin), accumulated at
// a weighted average cost. AverageCost is meaningless once Amount reaches
// zero; such rows are deleted rather than kept around.
type Position struct {
	ID          string          `json:"id"`
	UserID      string          `json:"user_id"`
	Symbol      string          `json:"symbol"`
	CoinID      string          `json:"coin_id"`
	Amount      decimal.Decimal `json:"amount"`
	AverageCost decimal.Decimal `json:"average_cost"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// IsDust reports whether the position amount is at or below the dust
// threshold and the row should be removed.
func (p *Position) IsDust() bool {
	return p.Amount.LessThanOrEqual(DustThreshold)
}

// CostBasis returns amount * averageCost.
func (p *Position) CostBasis() decimal.Decimal {
	return p.Amount.Mul(p.AverageCost)
}

// ApplyBuy folds a buy fill into a position. With prev == nil a fresh
// position is opened at the fill price; otherwise the average cost is
// recomputed as the amount-weighted mean of the old basis and the new fill:
//
//	newAvg = (oldAmount*oldAvg + amount*price) / (oldAmount + amount)
//
// Pure: neither input is mutated. Amount is rounded to coin precision and
// average cost to money precision.
func ApplyBuy(prev *Position, amount, price decimal.Decimal) Position {
	if prev == nil {
		return Position{
			Amount:      RoundCoin(amount),
			AverageCost: RoundMoney(price),
		}
	}
	newAmount := prev.Amount.Add(amount)
	newAvg := prev.Amount.Mul(prev.AverageCost).
		Add(amount.Mul(price)).
		Div(newAmount)
	next := *prev
	next.Amount = RoundCoin(newAmount)
	next.AverageCost = RoundMoney(newAvg)
	return next
}

// ApplySell reduces a position by the sold amount. Average cost stays
// untouched; realized P&L is computed at read time, not stored.
func ApplySell(prev *Position, amount decimal.Decimal) Position {
	next := *prev
	next.Amount = RoundCoin(prev.Amount.Sub(amount))
	return next
}
