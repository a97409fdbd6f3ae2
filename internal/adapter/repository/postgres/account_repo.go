package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/iho/simplebank/internal/domain"
	"github.com/iho/simplebank/internal/infrastructure/postgres/generated"
	"github.com/iho/simplebank/internal/usecase"
)

// AccountRepository implements usecase.AccountRepository.
type AccountRepository struct {
	queries *generated.Queries
}

// NewAccountRepository creates a new AccountRepository. db is usually a
// *pgxpool.Pool.
func NewAccountRepository(db generated.DBTX) *AccountRepository {
	return &AccountRepository{
		queries: generated.New(db),
	}
}

// Create creates a new account.
func (r *AccountRepository) Create(ctx context.Context, account *domain.Account) error {
	_, err := r.queries.CreateAccount(ctx, generated.CreateAccountParams{
		ID:        account.ID,
		OwnerID:   account.OwnerID,
		Currency:  account.Currency,
		Balance:   decimalToNumeric(account.Balance),
		CreatedAt: timeToPgTimestamptz(account.CreatedAt),
		UpdatedAt: timeToPgTimestamptz(account.UpdatedAt),
	})

	return translate(err)
}

// GetByID retrieves an account by ID.
func (r *AccountRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	row, err := r.queries.GetAccountByID(ctx, id)
	if err != nil {
		return nil, translate(err)
	}

	return rowToAccount(row), nil
}

// GetByIDForUpdate retrieves an account by ID with a FOR UPDATE lock held
// until tx finishes.
func (r *AccountRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id uuid.UUID) (*domain.Account, error) {
	pgxTx, err := pgxTx(tx)
	if err != nil {
		return nil, err
	}

	row, err := r.queries.WithTx(pgxTx).GetAccountByIDForUpdate(ctx, id)
	if err != nil {
		return nil, translate(err)
	}

	return rowToAccount(row), nil
}

// UpdateBalance writes account.Balance and account.UpdatedAt.
func (r *AccountRepository) UpdateBalance(ctx context.Context, tx usecase.Transaction, account *domain.Account) error {
	pgxTx, err := pgxTx(tx)
	if err != nil {
		return err
	}

	n, err := r.queries.WithTx(pgxTx).UpdateAccountBalance(ctx, generated.UpdateAccountBalanceParams{
		ID:        account.ID,
		Balance:   decimalToNumeric(account.Balance),
		UpdatedAt: timeToPgTimestamptz(account.UpdatedAt),
	})
	if err != nil {
		return translate(err)
	}
	if n == 0 {
		return domain.ErrAccountNotFound
	}

	return nil
}

// AddBalance adds delta in a single UPDATE ... RETURNING, taking the row lock.
// The balance check constraint rejects a negative result.
func (r *AccountRepository) AddBalance(ctx context.Context, tx usecase.Transaction, id uuid.UUID, delta decimal.Decimal) (*domain.Account, error) {
	pgxTx, err := pgxTx(tx)
	if err != nil {
		return nil, err
	}

	row, err := r.queries.WithTx(pgxTx).AddAccountBalance(ctx, generated.AddAccountBalanceParams{
		ID:     id,
		Amount: decimalToNumeric(delta),
	})
	if err != nil {
		return nil, translate(err)
	}

	return rowToAccount(row), nil
}

// ListByOwner lists the accounts of ownerID.
func (r *AccountRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*domain.Account, error) {
	rows, err := r.queries.ListAccountsByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	return rowsToAccounts(rows), nil
}

// List lists accounts with pagination.
func (r *AccountRepository) List(ctx context.Context, limit, offset int) ([]*domain.Account, error) {
	if limit < 0 || offset < 0 {
		return nil, errors.New("limit and offset must be non-negative")
	}

	rows, err := r.queries.ListAccounts(ctx, generated.ListAccountsParams{
		Limit:  int32(limit),
		Offset: int32(offset),
	})
	if err != nil {
		return nil, err
	}

	return rowsToAccounts(rows), nil
}

func rowsToAccounts(rows []generated.Account) []*domain.Account {
	accounts := make([]*domain.Account, 0, len(rows))
	for _, row := range rows {
		accounts = append(accounts, rowToAccount(row))
	}
	return accounts
}

func rowToAccount(row generated.Account) *domain.Account {
	return &domain.Account{
		ID:        row.ID,
		OwnerID:   row.OwnerID,
		Currency:  row.Currency,
		Balance:   numericToDecimal(row.Balance),
		CreatedAt: row.CreatedAt.Time,
		UpdatedAt: row.UpdatedAt.Time,
	}
}
