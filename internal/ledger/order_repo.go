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

func (s *Store) insertOrder(ctx context.Context, q querier, o domain.Order) error {
	var executedAt any
	if o.ExecutedAt != nil {
		executedAt = o.ExecutedAt.Format(timeFormat)
	}
	_, err := q.ExecContext(ctx, `
INSERT INTO orders (id,user_id,position_id,symbol,coin_id,order_type,trigger_price,amount,status,created_at,executed_at)
VALUES (?,?,?,?,?,?,?,?,?,?,?)
`, o.ID, o.UserID, o.PositionID, o.Symbol, o.CoinID, string(o.OrderType),
		o.TriggerPrice.String(), o.Amount.String(), string(o.Status),
		o.CreatedAt.Format(timeFormat), executedAt)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

func scanOrderRow(scan func(dest ...any) error) (*domain.Order, error) {
	var (
		o                            domain.Order
		typ, trigger, amount, status string
		created                      string
		executed                     sql.NullString
	)
	if err := scan(&o.ID, &o.UserID, &o.PositionID, &o.Symbol, &o.CoinID, &typ, &trigger, &amount, &status, &created, &executed); err != nil {
		return nil, err
	}
	o.OrderType = domain.OrderType(typ)
	o.Status = domain.OrderStatus(status)
	var err error
	if o.TriggerPrice, err = decimal.NewFromString(trigger); err != nil {
		return nil, fmt.Errorf("order trigger_price %q: %w", trigger, err)
	}
	if o.Amount, err = decimal.NewFromString(amount); err != nil {
		return nil, fmt.Errorf("order amount %q: %w", amount, err)
	}
	o.CreatedAt, _ = time.Parse(timeFormat, created)
	if executed.Valid {
		t, _ := time.Parse(timeFormat, executed.String)
		o.ExecutedAt = &t
	}
	return &o, nil
}

const orderColumns = `id,user_id,position_id,symbol,coin_id,order_type,trigger_price,amount,status,created_at,executed_at`

func (s *Store) getOrder(ctx context.Context, q querier, userID, orderID string) (*domain.Order, error) {
	row := q.QueryRowContext(ctx, `
SELECT `+orderColumns+` FROM orders WHERE id=? AND user_id=?
`, orderID, userID)
	o, err := scanOrderRow(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return o, nil
}

// listPendingOrders returns the user's PENDING orders oldest-first, so that
// when several orders qualify in one evaluation batch the earliest gets
// first claim on the available position amount.
func (s *Store) listPendingOrders(ctx context.Context, q querier, userID string) ([]domain.Order, error) {
	rows, err := q.QueryContext(ctx, `
SELECT `+orderColumns+` FROM orders
WHERE user_id=? AND status=? ORDER BY created_at ASC
`, userID, string(domain.OrderPending))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Order
	for rows.Next() {
		o, err := scanOrderRow(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, *o)
	}
	return out, rows.Err()
}

func (s *Store) markOrderExecuted(ctx context.Context, q querier, id string, at time.Time) error {
	_, err := q.ExecContext(ctx, `
UPDATE orders SET status=?, executed_at=? WHERE id=? AND status=?
`, string(domain.OrderExecuted), at.Format(timeFormat), id, string(domain.OrderPending))
	if err != nil {
		return fmt.Errorf("mark order executed: %w", err)
	}
	return nil
}

func (s *Store) markOrderCancelled(ctx context.Context, q querier, id string) error {
	_, err := q.ExecContext(ctx, `
UPDATE orders SET status=? WHERE id=? AND status=?
`, string(domain.OrderCancelled), id, string(domain.OrderPending))
	if err != nil {
		return fmt.Errorf("mark order cancelled: %w", err)
	}
	return nil
}

// usersWithPendingOrders feeds the background order-check poller.
func (s *Store) usersWithPendingOrders(ctx context.Context, q querier) ([]string, error) {
	rows, err := q.QueryContext(ctx, `
SELECT DISTINCT user_id FROM orders WHERE status=?
`, string(domain.OrderPending))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}
