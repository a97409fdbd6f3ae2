package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/iho/simplebank/internal/domain"
	"github.com/iho/simplebank/internal/infrastructure/postgres/generated"
	"github.com/iho/simplebank/internal/usecase"
)

// EntryRepository implements usecase.EntryRepository.
type EntryRepository struct {
	queries *generated.Queries
}

// NewEntryRepository creates a new EntryRepository.
func NewEntryRepository(db generated.DBTX) *EntryRepository {
	return &EntryRepository{
		queries: generated.New(db),
	}
}

// Create creates a new entry inside tx.
func (r *EntryRepository) Create(ctx context.Context, tx usecase.Transaction, entry *domain.Entry) (*domain.Entry, error) {
	pgxTx, err := pgxTx(tx)
	if err != nil {
		return nil, err
	}

	row, err := r.queries.WithTx(pgxTx).CreateEntry(ctx, generated.CreateEntryParams{
		ID:          entry.ID,
		AccountID:   entry.AccountID,
		Amount:      decimalToNumeric(entry.Amount),
		Description: entry.Description,
		CreatedAt:   timeToPgTimestamptz(entry.CreatedAt),
	})
	if err != nil {
		return nil, translate(err)
	}

	return rowToEntry(row), nil
}

// ListByAccount returns entries of an account newest first.
func (r *EntryRepository) ListByAccount(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]*domain.Entry, error) {
	rows, err := r.queries.ListEntriesByAccount(ctx, generated.ListEntriesByAccountParams{
		AccountID: accountID,
		Limit:     int32(limit),
		Offset:    int32(offset),
	})
	if err != nil {
		return nil, err
	}

	entries := make([]*domain.Entry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, rowToEntry(row))
	}

	return entries, nil
}

// SumByAccount returns the sum of all entry amounts of an account.
func (r *EntryRepository) SumByAccount(ctx context.Context, accountID uuid.UUID) (decimal.Decimal, error) {
	total, err := r.queries.SumEntriesByAccount(ctx, accountID)
	if err != nil {
		return decimal.Zero, err
	}

	return numericToDecimal(total), nil
}

func rowToEntry(row generated.Entry) *domain.Entry {
	return &domain.Entry{
		ID:          row.ID,
		AccountID:   row.AccountID,
		Amount:      numericToDecimal(row.Amount),
		Description: row.Description,
		CreatedAt:   row.CreatedAt.Time,
	}
}
