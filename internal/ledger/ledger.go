// Package ledger implements the transfer engine: the atomic two-account
// read-modify-write at the heart of the service. All isolation is delegated
// to the store's RunAtomic; the engine owns validation, ordering and the
// balance arithmetic.
package ledger

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MuhammadMagdy7/money-transfer/internal/interfaces"
	"github.com/MuhammadMagdy7/money-transfer/internal/models"
	"github.com/MuhammadMagdy7/money-transfer/internal/models/events"
)

// Ledger orchestrates transfers against an AccountStore. The publisher is
// optional; when set, a TransferCompleted event is emitted after commit.
type Ledger struct {
	store     interfaces.AccountStore
	publisher interfaces.EventPublisher
	logger    *slog.Logger
}

func New(store interfaces.AccountStore, publisher interfaces.EventPublisher, logger *slog.Logger) *Ledger {
	if logger == nil {
		logger = slog.Default()
	}
	return &Ledger{
		store:     store,
		publisher: publisher,
		logger:    logger,
	}
}

// maxWholeDigits is what NUMERIC(10,2) leaves for the integer part.
const maxWholeDigits = 8

// ValidateAmount checks the shape of a transfer amount: at most two
// fractional digits and at most ten significant digits. The sign is not
// constrained.
func ValidateAmount(amount decimal.Decimal) error {
	if amount.Exponent() < -2 {
		return ErrInvalidAmount
	}
	if len(amount.Truncate(0).Abs().String()) > maxWholeDigits {
		return ErrInvalidAmount
	}
	return nil
}

// Transfer moves amount from one account to another as a single atomic
// unit. Either both balance mutations commit or neither does; no
// intermediate state is ever observable through the store.
func (l *Ledger) Transfer(ctx context.Context, fromID, toID uuid.UUID, amount decimal.Decimal) error {
	if err := ValidateAmount(amount); err != nil {
		return err
	}

	err := l.store.RunAtomic(ctx, func(tx interfaces.AtomicStore) error {
		// Lock rows in ascending id order so two transfers moving money in
		// opposite directions between the same pair cannot deadlock.
		first, second := fromID, toID
		if bytes.Compare(second[:], first[:]) < 0 {
			first, second = second, first
		}

		loaded := make(map[uuid.UUID]models.Account, 2)

		acct, err := tx.GetAccountForUpdate(ctx, first)
		if err != nil {
			return loadErr(err, first)
		}
		loaded[first] = acct

		if second != first {
			acct, err = tx.GetAccountForUpdate(ctx, second)
			if err != nil {
				return loadErr(err, second)
			}
			loaded[second] = acct
		}

		if fromID == toID {
			return ErrSameAccount
		}

		from := loaded[fromID]
		to := loaded[toID]

		if from.Balance.LessThan(amount) {
			return ErrInsufficientFunds
		}

		if err := tx.UpdateBalance(ctx, from.ID, from.Balance.Sub(amount)); err != nil {
			return fmt.Errorf("debit account %s: %w", from.ID, err)
		}
		if err := tx.UpdateBalance(ctx, to.ID, to.Balance.Add(amount)); err != nil {
			return fmt.Errorf("credit account %s: %w", to.ID, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	l.publishCompleted(ctx, fromID, toID, amount)
	return nil
}

func loadErr(err error, id uuid.UUID) error {
	if errors.Is(err, interfaces.ErrNotFound) {
		return NotFoundError{ID: id}
	}
	return fmt.Errorf("load account %s: %w", id, err)
}

// publishCompleted is best effort: the transfer has already committed, so a
// publish failure is logged rather than surfaced.
func (l *Ledger) publishCompleted(ctx context.Context, fromID, toID uuid.UUID, amount decimal.Decimal) {
	if l.publisher == nil {
		return
	}

	event := events.TransferCompleted{
		TransferID:  uuid.NewString(),
		FromAccount: fromID,
		ToAccount:   toID,
		Amount:      amount,
		OccurredAt:  time.Now().UTC(),
	}
	if err := l.publisher.Publish(ctx, event); err != nil {
		l.logger.Warn("failed to publish transfer event",
			"from_account", fromID,
			"to_account", toID,
			"error", err,
		)
	}
}
