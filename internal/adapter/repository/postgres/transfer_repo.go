package postgres

import (
	"context"

	"github.com/iho/simplebank/internal/domain"
	"github.com/iho/simplebank/internal/infrastructure/postgres/generated"
	"github.com/iho/simplebank/internal/usecase"
)

// TransferRepository implements usecase.TransferRepository.
type TransferRepository struct {
	queries *generated.Queries
}

// NewTransferRepository creates a new TransferRepository.
func NewTransferRepository(db generated.DBTX) *TransferRepository {
	return &TransferRepository{
		queries: generated.New(db),
	}
}

// Create creates a new transfer inside tx.
func (r *TransferRepository) Create(ctx context.Context, tx usecase.Transaction, transfer *domain.Transfer) (*domain.Transfer, error) {
	pgxTx, err := pgxTx(tx)
	if err != nil {
		return nil, err
	}

	row, err := r.queries.WithTx(pgxTx).CreateTransfer(ctx, generated.CreateTransferParams{
		ID:            transfer.ID,
		FromAccountID: transfer.FromAccountID,
		ToAccountID:   transfer.ToAccountID,
		Amount:        decimalToNumeric(transfer.Amount),
		CreatedAt:     timeToPgTimestamptz(transfer.CreatedAt),
	})
	if err != nil {
		return nil, translate(err)
	}

	return &domain.Transfer{
		ID:            row.ID,
		FromAccountID: row.FromAccountID,
		ToAccountID:   row.ToAccountID,
		Amount:        numericToDecimal(row.Amount),
		CreatedAt:     row.CreatedAt.Time,
	}, nil
}
