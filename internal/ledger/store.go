package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"
)

// Config carries the ledger's fixed policy knobs.
type Config struct {
	DBPath          string
	StartingBalance decimal.Decimal // seeded into every new wallet
	Currency        string
	Fee             decimal.Decimal // flat per-trade fee, default zero
}

// Store owns the durable records for wallets, positions, transactions and
// conditional orders, and is the single serialization point for mutations:
// every mutating operation runs inside one SQL transaction while holding the
// owning user's lock.
type Store struct {
	cfg   Config
	db    *sql.DB
	users *userLocks
}

// Open opens (creating if needed) the sqlite database at cfg.DBPath and runs
// migrations.
func Open(cfg Config) (*Store, error) {
	if cfg.DBPath == "" {
		return nil, errors.New("db path is required")
	}
	if cfg.Currency == "" {
		cfg.Currency = "USD"
	}
	if cfg.StartingBalance.IsZero() {
		cfg.StartingBalance = decimal.NewFromInt(10000)
	}

	if dir := filepath.Dir(cfg.DBPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("mkdir db dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// single connection keeps sqlite happy under concurrent requests
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	s := &Store{cfg: cfg, db: db, users: newUserLocks()}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// querier is satisfied by *sql.DB and *sql.Tx so repo helpers run both
// standalone and inside a transaction.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// withTx runs fn inside a transaction under the user's lock, committing on
// nil and rolling back otherwise. This is the only entry point for ledger
// mutations: either all of an operation's writes land, or none do.
func (s *Store) withTx(ctx context.Context, userID string, fn func(tx *sql.Tx) error) error {
	unlock := s.users.lock(userID)
	defer unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}
