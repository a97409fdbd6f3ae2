package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/iho/simplebank/internal/domain"
	"github.com/iho/simplebank/internal/usecase"
)

// EntryRepository implements usecase.EntryRepository in memory.
type EntryRepository struct {
	store *Store
}

// NewEntryRepository creates a new EntryRepository.
func NewEntryRepository(store *Store) *EntryRepository {
	return &EntryRepository{store: store}
}

// Create stages an entry in tx.
func (r *EntryRepository) Create(ctx context.Context, t usecase.Transaction, entry *domain.Entry) (*domain.Entry, error) {
	tx, err := asTx(r.store, t)
	if err != nil {
		return nil, err
	}

	if _, ok := tx.account(entry.AccountID); !ok {
		return nil, fmt.Errorf("%w: entry account %s", ErrForeignKey, entry.AccountID)
	}

	if err := tx.stageEntry(*entry); err != nil {
		return nil, err
	}

	created := *entry
	return &created, nil
}

// ListByAccount returns committed entries newest first.
func (r *EntryRepository) ListByAccount(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]*domain.Entry, error) {
	s := r.store
	s.mu.RLock()
	var entries []*domain.Entry
	for i := len(s.entries) - 1; i >= 0; i-- {
		if s.entries[i].AccountID == accountID {
			entry := s.entries[i]
			entries = append(entries, &entry)
		}
	}
	s.mu.RUnlock()

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].CreatedAt.After(entries[j].CreatedAt)
	})

	if offset < 0 || limit <= 0 || offset >= len(entries) {
		return []*domain.Entry{}, nil
	}
	end := offset + limit
	if end > len(entries) {
		end = len(entries)
	}
	return entries[offset:end], nil
}

// SumByAccount sums the committed entries of accountID.
func (r *EntryRepository) SumByAccount(ctx context.Context, accountID uuid.UUID) (decimal.Decimal, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	sum := decimal.Zero
	for _, entry := range s.entries {
		if entry.AccountID == accountID {
			sum = sum.Add(entry.Amount)
		}
	}
	return sum, nil
}
