package ledger

import (
	"errors"
	"fmt"
)

// Business-rule and lookup failures. All of them are returned before any
// state is written: a failed operation leaves the ledger untouched.
var (
	ErrWalletNotFound        = errors.New("wallet not found")
	ErrWalletExists          = errors.New("wallet already exists")
	ErrInsufficientFunds     = errors.New("insufficient funds")
	ErrNoSuchPosition        = errors.New("no position for coin")
	ErrInsufficientHoldings  = errors.New("insufficient holdings")
	ErrPositionNotFound      = errors.New("position not found")
	ErrAmountExceedsHoldings = errors.New("order amount exceeds holdings")
	ErrOrderNotFound         = errors.New("order not found")
	ErrNotCancellable        = errors.New("order is not cancellable")
)

// ValidationError marks malformed or out-of-range input, rejected before any
// state access.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
