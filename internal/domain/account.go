package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Account is a balance ledger for one (owner, currency) pair.
type Account struct {
	ID        uuid.UUID
	OwnerID   uuid.UUID
	Currency  string
	Balance   decimal.Decimal
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsOwnedBy reports whether userID owns the account.
func (a *Account) IsOwnedBy(userID uuid.UUID) bool {
	return a.OwnerID == userID
}

// CanDebit reports whether the account holds at least amount.
// A debit that leaves the balance at exactly zero is allowed.
func (a *Account) CanDebit(amount decimal.Decimal) bool {
	return a.Balance.GreaterThanOrEqual(amount)
}

// ApplyDebit returns new balance after debit.
func (a *Account) ApplyDebit(amount decimal.Decimal) decimal.Decimal {
	return a.Balance.Sub(amount)
}

// ApplyCredit returns new balance after credit.
func (a *Account) ApplyCredit(amount decimal.Decimal) decimal.Decimal {
	return a.Balance.Add(amount)
}

// AdjustmentLeavesFunds reports whether a single-sided adjustment of delta that
// produced the current balance is acceptable. Withdrawals must leave a strictly
// positive balance; deposits are always acceptable.
func (a *Account) AdjustmentLeavesFunds(delta decimal.Decimal) bool {
	if !delta.IsNegative() {
		return true
	}
	return a.Balance.IsPositive()
}
