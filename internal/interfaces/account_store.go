package interfaces

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MuhammadMagdy7/money-transfer/internal/models"
)

// ErrNotFound is returned by stores when no account exists for an id.
var ErrNotFound = errors.New("account not found")

// ListQuery narrows and orders an account listing. Zero values mean
// "no constraint"; Ordering accepts name, balance or id with an optional
// leading '-' for descending order.
type ListQuery struct {
	MinBalance *decimal.Decimal
	MaxBalance *decimal.Decimal
	Search     string
	Ordering   string
	Limit      int
	Offset     int
}

// AccountStore is the durable account storage used by the API and the
// transfer engine. Implementations must be safe for concurrent use.
type AccountStore interface {
	CreateAccount(ctx context.Context, acct models.Account) (models.Account, error)
	GetAccount(ctx context.Context, id uuid.UUID) (models.Account, error)
	UpdateAccount(ctx context.Context, acct models.Account) (models.Account, error)
	DeleteAccount(ctx context.Context, id uuid.UUID) error
	ListAccounts(ctx context.Context, q ListQuery) ([]models.Account, int, error)
	DeleteAllAccounts(ctx context.Context) error

	// RunAtomic executes fn inside a single transaction. Reads and writes
	// made through the AtomicStore are isolated from concurrent RunAtomic
	// blocks touching the same rows, and are rolled back wholesale when fn
	// returns an error.
	RunAtomic(ctx context.Context, fn func(tx AtomicStore) error) error
}

// AtomicStore is the view of the store available inside RunAtomic.
type AtomicStore interface {
	// GetAccountForUpdate reads an account and holds a row-level lock on it
	// until the surrounding transaction ends.
	GetAccountForUpdate(ctx context.Context, id uuid.UUID) (models.Account, error)
	UpdateBalance(ctx context.Context, id uuid.UUID, balance decimal.Decimal) error
}
