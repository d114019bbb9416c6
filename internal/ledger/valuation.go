package ledger

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/papersim/papersim/internal/domain"
)

// History limits: the transaction log is unbounded, reads are not.
const (
	DefaultHistoryLimit = 100
	maxHistoryLimit     = 500
)

// ValuedHolding is a position priced against a current market quote.
type ValuedHolding struct {
	ID                   string          `json:"id"`
	Symbol               string          `json:"symbol"`
	CoinID               string          `json:"coin_id"`
	Amount               decimal.Decimal `json:"amount"`
	AverageCost          decimal.Decimal `json:"average_cost"`
	CurrentPrice         decimal.Decimal `json:"current_price"`
	CurrentValue         decimal.Decimal `json:"current_value"`
	ProfitLoss           decimal.Decimal `json:"profit_loss"`
	ProfitLossPercentage decimal.Decimal `json:"profit_loss_percentage"`
}

// Portfolio values every position against the supplied quotes and returns
// the holdings plus their summed current value. A coin missing from the
// price map values at zero rather than failing: portfolio reads must not
// depend on full price coverage. Pure read path, no mutation.
func (s *Store) Portfolio(ctx context.Context, userID string, prices map[string]decimal.Decimal) ([]ValuedHolding, decimal.Decimal, error) {
	positions, err := s.listPositions(ctx, s.db, userID)
	if err != nil {
		return nil, decimal.Zero, err
	}

	holdings := make([]ValuedHolding, 0, len(positions))
	total := decimal.Zero
	for _, p := range positions {
		price := prices[p.CoinID] // zero when absent
		value := domain.RoundMoney(p.Amount.Mul(price))
		cost := p.CostBasis()
		pl := value.Sub(domain.RoundMoney(cost))
		plPct := decimal.Zero
		if cost.IsPositive() {
			plPct = pl.Div(cost).Mul(decimal.NewFromInt(100))
		}
		holdings = append(holdings, ValuedHolding{
			ID:                   p.ID,
			Symbol:               p.Symbol,
			CoinID:               p.CoinID,
			Amount:               p.Amount,
			AverageCost:          p.AverageCost,
			CurrentPrice:         price,
			CurrentValue:         value,
			ProfitLoss:           pl,
			ProfitLossPercentage: plPct,
		})
		total = total.Add(value)
	}
	return holdings, total, nil
}

// History returns the user's transactions newest-first. A non-positive limit
// falls back to DefaultHistoryLimit; the cap keeps reads bounded.
func (s *Store) History(ctx context.Context, userID string, limit int) ([]domain.Transaction, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}
	return s.listTransactions(ctx, s.db, userID, limit)
}

// Positions lists the user's raw positions without pricing.
func (s *Store) Positions(ctx context.Context, userID string) ([]domain.Position, error) {
	return s.listPositions(ctx, s.db, userID)
}
