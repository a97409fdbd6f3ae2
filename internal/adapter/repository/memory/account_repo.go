package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/iho/simplebank/internal/domain"
	"github.com/iho/simplebank/internal/usecase"
)

// AccountRepository implements usecase.AccountRepository in memory.
type AccountRepository struct {
	store *Store
}

// NewAccountRepository creates a new AccountRepository.
func NewAccountRepository(store *Store) *AccountRepository {
	return &AccountRepository{store: store}
}

// Create inserts a new account outside any transaction.
func (r *AccountRepository) Create(ctx context.Context, account *domain.Account) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[account.OwnerID]; !ok {
		return fmt.Errorf("%w: %w", ErrForeignKey, domain.ErrUserNotFound)
	}
	if account.Balance.IsNegative() {
		return domain.ErrInsufficientBalance
	}
	for _, existing := range s.accounts {
		if existing.OwnerID == account.OwnerID && existing.Currency == account.Currency {
			return domain.ErrAccountAlreadyExists
		}
	}

	s.accounts[account.ID] = *account
	return nil
}

// GetByID returns the committed account.
func (r *AccountRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	account, ok := s.accounts[id]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	return &account, nil
}

// GetByIDForUpdate locks the account row for the rest of tx.
func (r *AccountRepository) GetByIDForUpdate(ctx context.Context, t usecase.Transaction, id uuid.UUID) (*domain.Account, error) {
	tx, err := asTx(r.store, t)
	if err != nil {
		return nil, err
	}

	if err := tx.lock(ctx, id); err != nil {
		return nil, err
	}

	account, ok := tx.account(id)
	if !ok {
		tx.unlock(id)
		return nil, domain.ErrAccountNotFound
	}
	return &account, nil
}

// UpdateBalance stages the new balance of account.
func (r *AccountRepository) UpdateBalance(ctx context.Context, t usecase.Transaction, account *domain.Account) error {
	tx, err := asTx(r.store, t)
	if err != nil {
		return err
	}

	if err := tx.lock(ctx, account.ID); err != nil {
		return err
	}

	current, ok := tx.account(account.ID)
	if !ok {
		return domain.ErrAccountNotFound
	}
	if account.Balance.IsNegative() {
		return domain.ErrInsufficientBalance
	}

	current.Balance = account.Balance
	current.UpdatedAt = account.UpdatedAt
	return tx.stageAccount(current)
}

// AddBalance applies delta to the locked row and returns the staged result.
func (r *AccountRepository) AddBalance(ctx context.Context, t usecase.Transaction, id uuid.UUID, delta decimal.Decimal) (*domain.Account, error) {
	tx, err := asTx(r.store, t)
	if err != nil {
		return nil, err
	}

	if err := tx.lock(ctx, id); err != nil {
		return nil, err
	}

	current, ok := tx.account(id)
	if !ok {
		tx.unlock(id)
		return nil, domain.ErrAccountNotFound
	}

	current.Balance = current.Balance.Add(delta)
	if current.Balance.IsNegative() {
		return nil, domain.ErrInsufficientBalance
	}
	current.UpdatedAt = time.Now().UTC()

	if err := tx.stageAccount(current); err != nil {
		return nil, err
	}
	return &current, nil
}

// ListByOwner returns the committed accounts of ownerID ordered by creation time.
func (r *AccountRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*domain.Account, error) {
	var accounts []*domain.Account
	for _, account := range r.sorted() {
		if account.OwnerID == ownerID {
			accounts = append(accounts, account)
		}
	}
	return accounts, nil
}

// List returns committed accounts ordered by creation time.
func (r *AccountRepository) List(ctx context.Context, limit, offset int) ([]*domain.Account, error) {
	all := r.sorted()
	if offset >= len(all) {
		return []*domain.Account{}, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (r *AccountRepository) sorted() []*domain.Account {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	accounts := make([]*domain.Account, 0, len(s.accounts))
	for _, account := range s.accounts {
		account := account
		accounts = append(accounts, &account)
	}
	sort.Slice(accounts, func(i, j int) bool {
		if !accounts[i].CreatedAt.Equal(accounts[j].CreatedAt) {
			return accounts[i].CreatedAt.Before(accounts[j].CreatedAt)
		}
		return accounts[i].ID.String() < accounts[j].ID.String()
	})
	return accounts
}
