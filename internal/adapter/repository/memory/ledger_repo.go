package memory

import (
	"context"

	"github.com/shopspring/decimal"
)

// LedgerRepository implements usecase.LedgerRepository in memory.
type LedgerRepository struct {
	store *Store
}

// NewLedgerRepository creates a new LedgerRepository.
func NewLedgerRepository(store *Store) *LedgerRepository {
	return &LedgerRepository{store: store}
}

// Totals returns the sum of all committed balances and of all committed entries.
func (r *LedgerRepository) Totals(ctx context.Context) (totalBalance, totalEntries decimal.Decimal, err error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	totalBalance = decimal.Zero
	for _, account := range s.accounts {
		totalBalance = totalBalance.Add(account.Balance)
	}

	totalEntries = decimal.Zero
	for _, entry := range s.entries {
		totalEntries = totalEntries.Add(entry.Amount)
	}

	return totalBalance, totalEntries, nil
}
