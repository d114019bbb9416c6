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

func (s *Store) insertPosition(ctx context.Context, q querier, p domain.Position) error {
	_, err := q.ExecContext(ctx, `
INSERT INTO positions (id,user_id,symbol,coin_id,amount,average_cost,created_at,updated_at)
VALUES (?,?,?,?,?,?,?,?)
`, p.ID, p.UserID, p.Symbol, p.CoinID, p.Amount.String(), p.AverageCost.String(),
		p.CreatedAt.Format(timeFormat), p.UpdatedAt.Format(timeFormat))
	if err != nil {
		return fmt.Errorf("insert position: %w", err)
	}
	return nil
}

func scanPosition(row *sql.Row) (*domain.Position, error) {
	var (
		p                                  domain.Position
		amount, avgCost, created, updated string
	)
	if err := row.Scan(&p.ID, &p.UserID, &p.Symbol, &p.CoinID, &amount, &avgCost, &created, &updated); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	var err error
	if p.Amount, err = decimal.NewFromString(amount); err != nil {
		return nil, fmt.Errorf("position amount %q: %w", amount, err)
	}
	if p.AverageCost, err = decimal.NewFromString(avgCost); err != nil {
		return nil, fmt.Errorf("position average_cost %q: %w", avgCost, err)
	}
	p.CreatedAt, _ = time.Parse(timeFormat, created)
	p.UpdatedAt, _ = time.Parse(timeFormat, updated)
	return &p, nil
}

func (s *Store) getPositionByCoin(ctx context.Context, q querier, userID, coinID string) (*domain.Position, error) {
	row := q.QueryRowContext(ctx, `
SELECT id,user_id,symbol,coin_id,amount,average_cost,created_at,updated_at
FROM positions WHERE user_id=? AND coin_id=?
`, userID, coinID)
	return scanPosition(row)
}

func (s *Store) getPositionByID(ctx context.Context, q querier, userID, positionID string) (*domain.Position, error) {
	row := q.QueryRowContext(ctx, `
SELECT id,user_id,symbol,coin_id,amount,average_cost,created_at,updated_at
FROM positions WHERE id=? AND user_id=?
`, positionID, userID)
	return scanPosition(row)
}

func (s *Store) listPositions(ctx context.Context, q querier, userID string) ([]domain.Position, error) {
	rows, err := q.QueryContext(ctx, `
SELECT id,user_id,symbol,coin_id,amount,average_cost,created_at,updated_at
FROM positions WHERE user_id=? ORDER BY created_at ASC
`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Position
	for rows.Next() {
		var (
			p                                 domain.Position
			amount, avgCost, created, updated string
		)
		if err := rows.Scan(&p.ID, &p.UserID, &p.Symbol, &p.CoinID, &amount, &avgCost, &created, &updated); err != nil {
			return nil, err
		}
		if p.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("position amount %q: %w", amount, err)
		}
		if p.AverageCost, err = decimal.NewFromString(avgCost); err != nil {
			return nil, fmt.Errorf("position average_cost %q: %w", avgCost, err)
		}
		p.CreatedAt, _ = time.Parse(timeFormat, created)
		p.UpdatedAt, _ = time.Parse(timeFormat, updated)
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *Store) updatePosition(ctx context.Context, q querier, id string, amount, avgCost decimal.Decimal, at time.Time) error {
	_, err := q.ExecContext(ctx, `
UPDATE positions SET amount=?, average_cost=?, updated_at=? WHERE id=?
`, amount.String(), avgCost.String(), at.Format(timeFormat), id)
	if err != nil {
		return fmt.Errorf("update position: %w", err)
	}
	return nil
}

func (s *Store) deletePosition(ctx context.Context, q querier, id string) error {
	if _, err := q.ExecContext(ctx, `DELETE FROM positions WHERE id=?`, id); err != nil {
		return fmt.Errorf("delete position: %w", err)
	}
	return nil
}
