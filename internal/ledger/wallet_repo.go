package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/papersim/papersim/internal/domain"
)

// timeFormat keeps a fixed-width fraction so TEXT comparison in ORDER BY
// clauses matches chronological order. RFC3339Nano trims trailing zeros and
// breaks that for timestamps within the same second.
const timeFormat = "2006-01-02T15:04:05.000000000Z07:00"

func (s *Store) insertWallet(ctx context.Context, q querier, w domain.Wallet) error {
	_, err := q.ExecContext(ctx, `
INSERT INTO wallets (id,user_id,balance,currency,created_at,updated_at)
VALUES (?,?,?,?,?,?)
`, w.ID, w.UserID, w.Balance.String(), w.Currency,
		w.CreatedAt.Format(timeFormat), w.UpdatedAt.Format(timeFormat))
	if err != nil {
		return fmt.Errorf("insert wallet: %w", err)
	}
	return nil
}

func (s *Store) getWallet(ctx context.Context, q querier, userID string) (*domain.Wallet, error) {
	row := q.QueryRowContext(ctx, `
SELECT id,user_id,balance,currency,created_at,updated_at
FROM wallets WHERE user_id=?
`, userID)
	var (
		w                         domain.Wallet
		balance, created, updated string
	)
	if err := row.Scan(&w.ID, &w.UserID, &balance, &w.Currency, &created, &updated); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	var err error
	if w.Balance, err = decimal.NewFromString(balance); err != nil {
		return nil, fmt.Errorf("wallet balance %q: %w", balance, err)
	}
	w.CreatedAt, _ = time.Parse(timeFormat, created)
	w.UpdatedAt, _ = time.Parse(timeFormat, updated)
	return &w, nil
}

func (s *Store) updateWalletBalance(ctx context.Context, q querier, userID string, balance decimal.Decimal, at time.Time) error {
	_, err := q.ExecContext(ctx, `
UPDATE wallets SET balance=?, updated_at=? WHERE user_id=?
`, balance.String(), at.Format(timeFormat), userID)
	if err != nil {
		return fmt.Errorf("update wallet balance: %w", err)
	}
	return nil
}
