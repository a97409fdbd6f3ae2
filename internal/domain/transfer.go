package domain

import (
	"bytes"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Transfer represents a money movement between two accounts.
type Transfer struct {
	ID            uuid.UUID
	FromAccountID uuid.UUID
	ToAccountID   uuid.UUID
	Amount        decimal.Decimal
	CreatedAt     time.Time
}

// TransferResult is the outcome of a committed transfer. Accounts carry their
// post-transfer balances.
type TransferResult struct {
	Transfer    *Transfer
	FromAccount *Account
	ToAccount   *Account
	Amount      decimal.Decimal
	FromEntry   *Entry
	ToEntry     *Entry
}

// Validate checks the preconditions that need no stored state.
func (t *Transfer) Validate() error {
	if t.FromAccountID == t.ToAccountID {
		return NewSameAccountTransferError(t.FromAccountID)
	}

	if t.Amount.LessThanOrEqual(decimal.Zero) || !FitsMoneyScale(t.Amount) {
		return NewInvalidAmountError(t.Amount)
	}

	return nil
}

// LockOrder returns the two account IDs in the order their rows must be locked.
// The order is a byte-wise comparison of the identifiers, independent of which
// side of the transfer each account is on, so two transfers over the same pair
// always contend on the same row first.
func LockOrder(a, b uuid.UUID) (first, second uuid.UUID) {
	if bytes.Compare(a[:], b[:]) > 0 {
		return b, a
	}
	return a, b
}
