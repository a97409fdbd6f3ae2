package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/iho/simplebank/internal/domain"
)

//go:generate mockgen -source=interfaces.go -destination=gomocks/mock_interfaces.go -package=gomocks

// AccountRepository defines data access for accounts.
// Lookups return domain.ErrAccountNotFound when the row does not exist.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Account, error)
	// GetByIDForUpdate reads the account and holds its row lock until tx ends.
	GetByIDForUpdate(ctx context.Context, tx Transaction, id uuid.UUID) (*domain.Account, error)
	// UpdateBalance persists account.Balance and bumps UpdatedAt.
	UpdateBalance(ctx context.Context, tx Transaction, account *domain.Account) error
	// AddBalance adds delta to the stored balance in one statement and returns
	// the account as it is after the change. The row stays locked until tx ends.
	AddBalance(ctx context.Context, tx Transaction, id uuid.UUID, delta decimal.Decimal) (*domain.Account, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*domain.Account, error)
	List(ctx context.Context, limit, offset int) ([]*domain.Account, error)
}

// TransferRepository defines data access for transfers.
type TransferRepository interface {
	Create(ctx context.Context, tx Transaction, transfer *domain.Transfer) (*domain.Transfer, error)
}

// EntryRepository defines data access for entries.
type EntryRepository interface {
	Create(ctx context.Context, tx Transaction, entry *domain.Entry) (*domain.Entry, error)
	// ListByAccount returns entries newest first.
	ListByAccount(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]*domain.Entry, error)
	SumByAccount(ctx context.Context, accountID uuid.UUID) (decimal.Decimal, error)
}

// LedgerRepository defines data access for ledger-wide checks.
type LedgerRepository interface {
	// Totals returns the sum of all stored balances and the sum of all entries.
	Totals(ctx context.Context) (totalBalance, totalEntries decimal.Decimal, err error)
}

// UserRepository defines data access for users.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByLogin(ctx context.Context, login string) (*domain.User, error)
	ExistsByLoginOrEmail(ctx context.Context, login, email string) (bool, error)
}

// Transaction represents a storage transaction. Rollback after Commit is a no-op.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() uuid.UUID
}

// AccountCache holds read-only account snapshots.
//
// Get returns a nil account on a miss, together with the fill version of the
// key. Set stores a snapshot only while that version is still current: every
// Invalidate bumps it, so a fill read before a commit cannot overwrite the
// invalidation that followed the commit.
type AccountCache interface {
	Get(ctx context.Context, id uuid.UUID) (account *domain.Account, version int64, err error)
	Set(ctx context.Context, account *domain.Account, version int64) error
	Invalidate(ctx context.Context, ids ...uuid.UUID) error
}

// PasswordHasher hashes and verifies user passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

// TokenIssuer signs access tokens for authenticated users.
type TokenIssuer interface {
	Generate(user *domain.User) (token string, expiresAt time.Time, err error)
}
