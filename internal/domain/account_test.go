package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func TestAccount_CanDebit(t *testing.T) {
	tests := []struct {
		name        string
		balance     decimal.Decimal
		debitAmount decimal.Decimal
		expected    bool
	}{
		{
			name:        "debit more than balance",
			balance:     decimal.NewFromInt(100),
			debitAmount: decimal.NewFromInt(150),
			expected:    false,
		},
		{
			name:        "debit exact balance",
			balance:     decimal.NewFromInt(100),
			debitAmount: decimal.NewFromInt(100),
			expected:    true,
		},
		{
			name:        "debit less than balance",
			balance:     decimal.NewFromInt(100),
			debitAmount: decimal.NewFromInt(50),
			expected:    true,
		},
		{
			name:        "fractional shortfall",
			balance:     decimal.RequireFromString("10.00"),
			debitAmount: decimal.RequireFromString("10.01"),
			expected:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			acc := &Account{Balance: tt.balance}

			if got := acc.CanDebit(tt.debitAmount); got != tt.expected {
				t.Errorf("expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestAccount_AdjustmentLeavesFunds(t *testing.T) {
	tests := []struct {
		name     string
		balance  decimal.Decimal
		delta    decimal.Decimal
		expected bool
	}{
		{name: "deposit into empty account", balance: decimal.NewFromInt(50), delta: decimal.NewFromInt(50), expected: true},
		{name: "withdrawal leaves funds", balance: decimal.NewFromInt(10), delta: decimal.NewFromInt(-40), expected: true},
		{name: "withdrawal empties account", balance: decimal.Zero, delta: decimal.NewFromInt(-40), expected: false},
		{name: "withdrawal overdraws account", balance: decimal.NewFromInt(-5), delta: decimal.NewFromInt(-40), expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			acc := &Account{Balance: tt.balance}

			if got := acc.AdjustmentLeavesFunds(tt.delta); got != tt.expected {
				t.Errorf("expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestAccount_IsOwnedBy(t *testing.T) {
	owner := uuid.New()
	acc := &Account{OwnerID: owner}

	if !acc.IsOwnedBy(owner) {
		t.Error("expected account to be owned by its owner")
	}

	if acc.IsOwnedBy(uuid.New()) {
		t.Error("expected account not to be owned by another user")
	}
}

func TestAccount_ApplyDebit(t *testing.T) {
	acc := &Account{Balance: decimal.NewFromInt(100)}
	newBalance := acc.ApplyDebit(decimal.NewFromInt(30))

	expected := decimal.NewFromInt(70)
	if !newBalance.Equal(expected) {
		t.Errorf("expected balance %s, got %s", expected, newBalance)
	}
}

func TestAccount_ApplyCredit(t *testing.T) {
	acc := &Account{Balance: decimal.NewFromInt(100)}
	newBalance := acc.ApplyCredit(decimal.NewFromInt(30))

	expected := decimal.NewFromInt(130)
	if !newBalance.Equal(expected) {
		t.Errorf("expected balance %s, got %s", expected, newBalance)
	}
}
