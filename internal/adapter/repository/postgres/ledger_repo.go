package postgres

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/iho/simplebank/internal/infrastructure/postgres/generated"
)

// LedgerRepository implements usecase.LedgerRepository.
type LedgerRepository struct {
	queries *generated.Queries
}

// NewLedgerRepository creates a new LedgerRepository.
func NewLedgerRepository(db generated.DBTX) *LedgerRepository {
	return &LedgerRepository{queries: generated.New(db)}
}

// Totals returns the sum of all balances and the sum of all entries.
func (r *LedgerRepository) Totals(ctx context.Context) (totalBalance, totalEntries decimal.Decimal, err error) {
	result, err := r.queries.LedgerTotals(ctx)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}

	return numericToDecimal(result.TotalAccountBalance), numericToDecimal(result.TotalEntryAmount), nil
}
