package ledger

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/papersim/papersim/internal/domain"
	"github.com/papersim/papersim/pkg/logger"
)

// errOrderFinalized marks an order that reached a terminal state between
// the batch read and the per-order transaction.
var errOrderFinalized = errors.New("order already finalized")

// CreateOrder registers a conditional stop-loss/take-profit sell against an
// existing position. Symbol, coin and amount are frozen at creation; the
// amount is validated against the position now but not re-validated if the
// position later shrinks through other trades.
func (s *Store) CreateOrder(ctx context.Context, userID, positionID string, orderType domain.OrderType, triggerPrice, amount decimal.Decimal) (*domain.Order, error) {
	if !orderType.Valid() {
		return nil, &ValidationError{Field: "orderType", Reason: "must be STOP_LOSS or TAKE_PROFIT"}
	}
	if !triggerPrice.IsPositive() {
		return nil, &ValidationError{Field: "triggerPrice", Reason: "must be positive"}
	}
	if !amount.IsPositive() {
		return nil, &ValidationError{Field: "amount", Reason: "must be positive"}
	}

	var created *domain.Order
	err := s.withTx(ctx, userID, func(tx *sql.Tx) error {
		pos, err := s.getPositionByID(ctx, tx, userID, positionID)
		if err != nil {
			return err
		}
		if pos == nil {
			return ErrPositionNotFound
		}
		if amount.GreaterThan(pos.Amount) {
			return ErrAmountExceedsHoldings
		}
		o := domain.Order{
			ID:           uuid.NewString(),
			UserID:       userID,
			PositionID:   positionID,
			Symbol:       pos.Symbol,
			CoinID:       pos.CoinID,
			OrderType:    orderType,
			TriggerPrice: domain.RoundMoney(triggerPrice),
			Amount:       domain.RoundCoin(amount),
			Status:       domain.OrderPending,
			CreatedAt:    time.Now().UTC(),
		}
		if err := s.insertOrder(ctx, tx, o); err != nil {
			return err
		}
		created = &o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// CancelOrder moves a PENDING order to CANCELLED. Terminal orders are final:
// cancelling an EXECUTED or already-CANCELLED order fails with
// ErrNotCancellable and changes nothing.
func (s *Store) CancelOrder(ctx context.Context, userID, orderID string) error {
	return s.withTx(ctx, userID, func(tx *sql.Tx) error {
		o, err := s.getOrder(ctx, tx, userID, orderID)
		if err != nil {
			return err
		}
		if o == nil {
			return ErrOrderNotFound
		}
		if o.Status != domain.OrderPending {
			return ErrNotCancellable
		}
		return s.markOrderCancelled(ctx, tx, o.ID)
	})
}

// PendingOrders lists the user's PENDING orders oldest-first.
func (s *Store) PendingOrders(ctx context.Context, userID string) ([]domain.Order, error) {
	return s.listPendingOrders(ctx, s.db, userID)
}

// PendingOrderCoins returns the distinct coin ids referenced by the user's
// pending orders, sorted, so the poller can fetch a bounded price set.
func (s *Store) PendingOrderCoins(ctx context.Context, userID string) ([]string, error) {
	orders, err := s.listPendingOrders(ctx, s.db, userID)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{}, len(orders))
	var coins []string
	for _, o := range orders {
		if _, ok := seen[o.CoinID]; ok {
			continue
		}
		seen[o.CoinID] = struct{}{}
		coins = append(coins, o.CoinID)
	}
	sort.Strings(coins)
	return coins, nil
}

// UsersWithPendingOrders lists users that have at least one PENDING order.
func (s *Store) UsersWithPendingOrders(ctx context.Context) ([]string, error) {
	return s.usersWithPendingOrders(ctx, s.db)
}

// EvaluateTriggers walks the user's pending orders oldest-first against the
// supplied price map and executes every crossed trigger through the sell
// path. Coins missing from the map are skipped. A failed execution (for
// example the position shrank below the order's frozen amount) is logged and
// skipped without aborting the rest of the batch; the order stays PENDING.
// Each order's sell and its status flip commit in one transaction.
func (s *Store) EvaluateTriggers(ctx context.Context, userID string, prices map[string]decimal.Decimal) ([]domain.Order, error) {
	pending, err := s.listPendingOrders(ctx, s.db, userID)
	if err != nil {
		return nil, err
	}

	var executed []domain.Order
	for _, o := range pending {
		price, ok := prices[o.CoinID]
		if !ok {
			continue
		}
		if !o.ShouldTrigger(price) {
			continue
		}

		order := o
		err := s.withTx(ctx, userID, func(tx *sql.Tx) error {
			// Re-read under the lock: a concurrent cancel or a previous
			// round may already have finalized this order.
			cur, err := s.getOrder(ctx, tx, userID, order.ID)
			if err != nil {
				return err
			}
			if cur == nil || cur.Status != domain.OrderPending {
				return errOrderFinalized
			}
			if _, err := s.sellInTx(ctx, tx, userID, order.CoinID, order.Symbol, order.Amount, price); err != nil {
				return err
			}
			now := time.Now().UTC()
			if err := s.markOrderExecuted(ctx, tx, order.ID, now); err != nil {
				return err
			}
			order.Status = domain.OrderExecuted
			order.ExecutedAt = &now
			return nil
		})
		if err != nil {
			logger.WithFields(logrus.Fields{
				"user": userID, "order": order.ID, "coin": order.CoinID,
			}).Warnf("order execution skipped: %v", err)
			continue
		}
		executed = append(executed, order)
	}
	return executed, nil
}
