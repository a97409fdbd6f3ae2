package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/iho/simplebank/internal/domain"
	"github.com/iho/simplebank/internal/usecase"
)

// TransferRepository implements usecase.TransferRepository in memory.
type TransferRepository struct {
	store *Store
}

// NewTransferRepository creates a new TransferRepository.
func NewTransferRepository(store *Store) *TransferRepository {
	return &TransferRepository{store: store}
}

// Create stages a transfer record in tx.
func (r *TransferRepository) Create(ctx context.Context, t usecase.Transaction, transfer *domain.Transfer) (*domain.Transfer, error) {
	tx, err := asTx(r.store, t)
	if err != nil {
		return nil, err
	}

	if !transfer.Amount.IsPositive() {
		return nil, domain.ErrInvalidAmount
	}
	if _, ok := tx.account(transfer.FromAccountID); !ok {
		return nil, fmt.Errorf("%w: transfer source %s", ErrForeignKey, transfer.FromAccountID)
	}
	if _, ok := tx.account(transfer.ToAccountID); !ok {
		return nil, fmt.Errorf("%w: transfer destination %s", ErrForeignKey, transfer.ToAccountID)
	}

	if err := tx.stageTransfer(*transfer); err != nil {
		return nil, err
	}

	created := *transfer
	return &created, nil
}

// ListByAccount returns the committed transfers that debit or credit
// accountID, oldest first.
func (r *TransferRepository) ListByAccount(ctx context.Context, accountID uuid.UUID) ([]*domain.Transfer, error) {
	s := r.store
	s.mu.RLock()
	var transfers []*domain.Transfer
	for _, transfer := range s.transfers {
		if transfer.FromAccountID == accountID || transfer.ToAccountID == accountID {
			transfers = append(transfers, &transfer)
		}
	}
	s.mu.RUnlock()

	sort.Slice(transfers, func(i, j int) bool {
		return transfers[i].CreatedAt.Before(transfers[j].CreatedAt)
	})
	return transfers, nil
}
