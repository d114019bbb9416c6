package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/papersim/papersim/internal/domain"
)

func (s *Store) insertTransaction(ctx context.Context, q querier, t domain.Transaction) error {
	_, err := q.ExecContext(ctx, `
INSERT INTO transactions (id,user_id,type,symbol,coin_id,amount,price_per_unit,total_value,fee,created_at)
VALUES (?,?,?,?,?,?,?,?,?,?)
`, t.ID, t.UserID, string(t.Type), t.Symbol, t.CoinID, t.Amount.String(),
		t.PricePerUnit.String(), t.TotalValue.String(), t.Fee.String(),
		t.CreatedAt.Format(timeFormat))
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

func (s *Store) listTransactions(ctx context.Context, q querier, userID string, limit int) ([]domain.Transaction, error) {
	rows, err := q.QueryContext(ctx, `
SELECT id,user_id,type,symbol,coin_id,amount,price_per_unit,total_value,fee,created_at
FROM transactions WHERE user_id=? ORDER BY created_at DESC LIMIT ?
`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Transaction
	for rows.Next() {
		var (
			t                                       domain.Transaction
			typ, amount, price, total, fee, created string
		)
		if err := rows.Scan(&t.ID, &t.UserID, &typ, &t.Symbol, &t.CoinID, &amount, &price, &total, &fee, &created); err != nil {
			return nil, err
		}
		t.Type = domain.TradeType(typ)
		if t.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("transaction amount %q: %w", amount, err)
		}
		if t.PricePerUnit, err = decimal.NewFromString(price); err != nil {
			return nil, fmt.Errorf("transaction price %q: %w", price, err)
		}
		if t.TotalValue, err = decimal.NewFromString(total); err != nil {
			return nil, fmt.Errorf("transaction total %q: %w", total, err)
		}
		if t.Fee, err = decimal.NewFromString(fee); err != nil {
			return nil, fmt.Errorf("transaction fee %q: %w", fee, err)
		}
		t.CreatedAt, _ = time.Parse(timeFormat, created)
		out = append(out, t)
	}
	return out, rows.Err()
}
