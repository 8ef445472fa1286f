package ledger

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	// ErrSameAccount means source and destination are the same account.
	ErrSameAccount = errors.New("cannot transfer money to the same account")

	// ErrInsufficientFunds means the source balance does not cover the amount.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrAccountNotFound matches any NotFoundError via errors.Is.
	ErrAccountNotFound = errors.New("account not found")

	// ErrInvalidAmount means the amount does not fit NUMERIC(10,2): more
	// than two fractional digits or more than ten significant digits.
	ErrInvalidAmount = errors.New("amount must have at most 10 digits with 2 decimal places")
)

// NotFoundError reports which account id was missing.
type NotFoundError struct {
	ID uuid.UUID
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("account %s not found", e.ID)
}

func (e NotFoundError) Is(target error) bool {
	return target == ErrAccountNotFound
}
