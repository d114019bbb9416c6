package ledger

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/papersim/papersim/internal/domain"
	"github.com/papersim/papersim/pkg/logger"
)

// TradeResult is what a completed BUY or SELL hands back to the caller.
type TradeResult struct {
	Transaction domain.Transaction `json:"transaction"`
	NewBalance  decimal.Decimal    `json:"new_balance"`
	// Position is the holding after the trade; nil when a sell emptied it
	// and the row was removed.
	Position *domain.Position `json:"position,omitempty"`
}

// CreateWallet seeds a wallet with the configured starting balance. Called
// once per user by the onboarding collaborator.
func (s *Store) CreateWallet(ctx context.Context, userID string) (*domain.Wallet, error) {
	if userID == "" {
		return nil, &ValidationError{Field: "userId", Reason: "must not be empty"}
	}
	var created *domain.Wallet
	err := s.withTx(ctx, userID, func(tx *sql.Tx) error {
		existing, err := s.getWallet(ctx, tx, userID)
		if err != nil {
			return err
		}
		if existing != nil {
			return ErrWalletExists
		}
		now := time.Now().UTC()
		w := domain.Wallet{
			ID:        uuid.NewString(),
			UserID:    userID,
			Balance:   domain.RoundMoney(s.cfg.StartingBalance),
			Currency:  s.cfg.Currency,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := s.insertWallet(ctx, tx, w); err != nil {
			return err
		}
		created = &w
		return nil
	})
	if err != nil {
		return nil, err
	}
	logger.WithField("user", userID).Info("wallet created")
	return created, nil
}

// Wallet returns the user's wallet, or ErrWalletNotFound.
func (s *Store) Wallet(ctx context.Context, userID string) (*domain.Wallet, error) {
	w, err := s.getWallet(ctx, s.db, userID)
	if err != nil {
		return nil, err
	}
	if w == nil {
		return nil, ErrWalletNotFound
	}
	return w, nil
}

func validateTrade(coinID, symbol string, amount, price decimal.Decimal) error {
	if coinID == "" {
		return &ValidationError{Field: "coinId", Reason: "must not be empty"}
	}
	if symbol == "" {
		return &ValidationError{Field: "symbol", Reason: "must not be empty"}
	}
	if !amount.IsPositive() {
		return &ValidationError{Field: "amount", Reason: "must be positive"}
	}
	if !price.IsPositive() {
		return &ValidationError{Field: "pricePerUnit", Reason: "must be positive"}
	}
	return nil
}

// ExecuteBuy debits the wallet by amount*pricePerUnit (+fee), folds the fill
// into the position at a recomputed weighted average cost, and appends a BUY
// transaction. The three writes commit together or not at all.
func (s *Store) ExecuteBuy(ctx context.Context, userID, coinID, symbol string, amount, price decimal.Decimal) (*TradeResult, error) {
	if err := validateTrade(coinID, symbol, amount, price); err != nil {
		return nil, err
	}
	var res *TradeResult
	err := s.withTx(ctx, userID, func(tx *sql.Tx) error {
		var err error
		res, err = s.buyInTx(ctx, tx, userID, coinID, symbol, amount, price)
		return err
	})
	if err != nil {
		return nil, err
	}
	logger.WithFields(logrus.Fields{
		"user": userID, "coin": coinID, "amount": amount, "price": price,
	}).Debug("buy executed")
	return res, nil
}

func (s *Store) buyInTx(ctx context.Context, tx *sql.Tx, userID, coinID, symbol string, amount, price decimal.Decimal) (*TradeResult, error) {
	wallet, err := s.getWallet(ctx, tx, userID)
	if err != nil {
		return nil, err
	}
	if wallet == nil {
		return nil, ErrWalletNotFound
	}

	totalCost := domain.RoundMoney(amount.Mul(price))
	fee := domain.RoundMoney(s.cfg.Fee)
	if wallet.Balance.LessThan(totalCost.Add(fee)) {
		return nil, ErrInsufficientFunds
	}

	now := time.Now().UTC()
	newBalance := domain.RoundMoney(wallet.Balance.Sub(totalCost).Sub(fee))
	if err := s.updateWalletBalance(ctx, tx, userID, newBalance, now); err != nil {
		return nil, err
	}

	prev, err := s.getPositionByCoin(ctx, tx, userID, coinID)
	if err != nil {
		return nil, err
	}
	next := domain.ApplyBuy(prev, amount, price)
	if prev == nil {
		next.ID = uuid.NewString()
		next.UserID = userID
		next.Symbol = symbol
		next.CoinID = coinID
		next.CreatedAt = now
		next.UpdatedAt = now
		if err := s.insertPosition(ctx, tx, next); err != nil {
			return nil, err
		}
	} else {
		next.UpdatedAt = now
		if err := s.updatePosition(ctx, tx, next.ID, next.Amount, next.AverageCost, now); err != nil {
			return nil, err
		}
	}

	txn := domain.Transaction{
		ID:           uuid.NewString(),
		UserID:       userID,
		Type:         domain.TradeBuy,
		Symbol:       symbol,
		CoinID:       coinID,
		Amount:       domain.RoundCoin(amount),
		PricePerUnit: domain.RoundMoney(price),
		TotalValue:   totalCost,
		Fee:          fee,
		CreatedAt:    now,
	}
	if err := s.insertTransaction(ctx, tx, txn); err != nil {
		return nil, err
	}

	return &TradeResult{Transaction: txn, NewBalance: newBalance, Position: &next}, nil
}

// ExecuteSell credits the wallet with amount*pricePerUnit (-fee), reduces
// the position (removing it at the dust threshold), and appends a SELL
// transaction atomically.
func (s *Store) ExecuteSell(ctx context.Context, userID, coinID, symbol string, amount, price decimal.Decimal) (*TradeResult, error) {
	if err := validateTrade(coinID, symbol, amount, price); err != nil {
		return nil, err
	}
	var res *TradeResult
	err := s.withTx(ctx, userID, func(tx *sql.Tx) error {
		var err error
		res, err = s.sellInTx(ctx, tx, userID, coinID, symbol, amount, price)
		return err
	})
	if err != nil {
		return nil, err
	}
	logger.WithFields(logrus.Fields{
		"user": userID, "coin": coinID, "amount": amount, "price": price,
	}).Debug("sell executed")
	return res, nil
}

func (s *Store) sellInTx(ctx context.Context, tx *sql.Tx, userID, coinID, symbol string, amount, price decimal.Decimal) (*TradeResult, error) {
	pos, err := s.getPositionByCoin(ctx, tx, userID, coinID)
	if err != nil {
		return nil, err
	}
	if pos == nil {
		return nil, ErrNoSuchPosition
	}
	if amount.GreaterThan(pos.Amount) {
		return nil, ErrInsufficientHoldings
	}

	wallet, err := s.getWallet(ctx, tx, userID)
	if err != nil {
		return nil, err
	}
	if wallet == nil {
		return nil, ErrWalletNotFound
	}

	now := time.Now().UTC()
	proceeds := domain.RoundMoney(amount.Mul(price))
	fee := domain.RoundMoney(s.cfg.Fee)
	newBalance := domain.RoundMoney(wallet.Balance.Add(proceeds).Sub(fee))
	if err := s.updateWalletBalance(ctx, tx, userID, newBalance, now); err != nil {
		return nil, err
	}

	next := domain.ApplySell(pos, amount)
	var remaining *domain.Position
	if next.IsDust() {
		if err := s.deletePosition(ctx, tx, pos.ID); err != nil {
			return nil, err
		}
	} else {
		next.UpdatedAt = now
		if err := s.updatePosition(ctx, tx, next.ID, next.Amount, next.AverageCost, now); err != nil {
			return nil, err
		}
		remaining = &next
	}

	txn := domain.Transaction{
		ID:           uuid.NewString(),
		UserID:       userID,
		Type:         domain.TradeSell,
		Symbol:       symbol,
		CoinID:       coinID,
		Amount:       domain.RoundCoin(amount),
		PricePerUnit: domain.RoundMoney(price),
		TotalValue:   proceeds,
		Fee:          fee,
		CreatedAt:    now,
	}
	if err := s.insertTransaction(ctx, tx, txn); err != nil {
		return nil, err
	}

	return &TradeResult{Transaction: txn, NewBalance: newBalance, Position: remaining}, nil
}
