package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/simplebank/internal/domain"
	"github.com/iho/simplebank/internal/usecase"
	"github.com/iho/simplebank/internal/usecase/mocks"
)

func newAccountUseCase(repo *mocks.MockAccountRepository, entries *mocks.MockEntryRepository, txMgr *mocks.MockTransactionManager, cache usecase.AccountCache) *usecase.AccountUseCase {
	return usecase.NewAccountUseCase(txMgr, repo, entries, mocks.NewMockIDGenerator(), cache, nil, zerolog.Nop())
}

func TestAccountUseCase_CreateAccount(t *testing.T) {
	owner := uuid.New()

	tests := []struct {
		name       string
		input      usecase.CreateAccountInput
		setupMocks func(*mocks.MockAccountRepository)
		kind       domain.Kind
	}{
		{
			name:  "successful account creation",
			input: usecase.CreateAccountInput{OwnerID: owner, Currency: "usd"},
		},
		{
			name:  "unsupported currency",
			input: usecase.CreateAccountInput{OwnerID: owner, Currency: "CHF"},
			kind:  domain.KindValidation,
		},
		{
			name:  "duplicate owner and currency",
			input: usecase.CreateAccountInput{OwnerID: owner, Currency: "EUR"},
			setupMocks: func(repo *mocks.MockAccountRepository) {
				_ = repo.Create(context.Background(), &domain.Account{ID: uuid.New(), OwnerID: owner, Currency: "EUR"})
			},
			kind: domain.KindAccountAlreadyExists,
		},
		{
			name:  "unknown owner",
			input: usecase.CreateAccountInput{OwnerID: owner, Currency: "GBP"},
			setupMocks: func(repo *mocks.MockAccountRepository) {
				repo.CreateFunc = func(ctx context.Context, account *domain.Account) error {
					return domain.ErrUserNotFound
				}
			},
			kind: domain.KindUserNotFound,
		},
		{
			name:  "repository failure",
			input: usecase.CreateAccountInput{OwnerID: owner, Currency: "JPY"},
			setupMocks: func(repo *mocks.MockAccountRepository) {
				repo.CreateFunc = func(ctx context.Context, account *domain.Account) error {
					return errors.New("connection refused")
				}
			},
			kind: domain.KindInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := mocks.NewMockAccountRepository()
			if tt.setupMocks != nil {
				tt.setupMocks(repo)
			}

			uc := newAccountUseCase(repo, mocks.NewMockEntryRepository(), mocks.NewMockTransactionManager(), nil)
			account, err := uc.CreateAccount(context.Background(), tt.input)

			if tt.kind != "" {
				if got := domain.KindOf(err); got != tt.kind {
					t.Fatalf("expected kind %s, got %s (%v)", tt.kind, got, err)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if account.Currency != "USD" {
				t.Errorf("expected normalized currency USD, got %q", account.Currency)
			}
			if !account.Balance.IsZero() {
				t.Errorf("expected zero balance, got %s", account.Balance)
			}
			if account.OwnerID != owner {
				t.Errorf("expected owner %s, got %s", owner, account.OwnerID)
			}
		})
	}
}

func TestAccountUseCase_GetAccount(t *testing.T) {
	owner := uuid.New()
	acc := &domain.Account{ID: uuid.New(), OwnerID: owner, Currency: "USD", Balance: decimal.NewFromInt(7)}

	t.Run("owner reads account and fills cache", func(t *testing.T) {
		repo := mocks.NewMockAccountRepository(acc)
		cache := mocks.NewMockAccountCache()
		uc := newAccountUseCase(repo, mocks.NewMockEntryRepository(), mocks.NewMockTransactionManager(), cache)

		got, err := uc.GetAccount(context.Background(), owner, acc.ID)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !got.Balance.Equal(acc.Balance) {
			t.Fatalf("unexpected balance %s", got.Balance)
		}

		cached, _, _ := cache.Get(context.Background(), acc.ID)
		if cached == nil {
			t.Fatal("expected account to be cached")
		}
	})

	t.Run("cache hit skips repository", func(t *testing.T) {
		repo := mocks.NewMockAccountRepository()
		repo.GetByIDFunc = func(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
			t.Fatal("repository must not be called on cache hit")
			return nil, nil
		}
		cache := mocks.NewMockAccountCache()
		_ = cache.Set(context.Background(), acc, 0)

		uc := newAccountUseCase(repo, mocks.NewMockEntryRepository(), mocks.NewMockTransactionManager(), cache)
		if _, err := uc.GetAccount(context.Background(), owner, acc.ID); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("other user is rejected", func(t *testing.T) {
		repo := mocks.NewMockAccountRepository(acc)
		uc := newAccountUseCase(repo, mocks.NewMockEntryRepository(), mocks.NewMockTransactionManager(), nil)

		_, err := uc.GetAccount(context.Background(), uuid.New(), acc.ID)
		if !errors.Is(err, domain.ErrAccountNotOwned) {
			t.Fatalf("expected ErrAccountNotOwned, got %v", err)
		}
	})

	t.Run("missing account", func(t *testing.T) {
		repo := mocks.NewMockAccountRepository()
		uc := newAccountUseCase(repo, mocks.NewMockEntryRepository(), mocks.NewMockTransactionManager(), nil)

		missing := uuid.New()
		_, err := uc.GetAccount(context.Background(), owner, missing)
		domainErr := domain.AsError(err)
		if domainErr.Kind != domain.KindAccountNotFound || domainErr.AccountID != missing {
			t.Fatalf("expected AccountNotFound for %s, got %v", missing, err)
		}
	})
}

func TestAccountUseCase_ListAccounts(t *testing.T) {
	owner := uuid.New()
	repo := mocks.NewMockAccountRepository(
		&domain.Account{ID: uuid.New(), OwnerID: owner, Currency: "USD"},
		&domain.Account{ID: uuid.New(), OwnerID: owner, Currency: "EUR"},
		&domain.Account{ID: uuid.New(), OwnerID: uuid.New(), Currency: "USD"},
	)

	uc := newAccountUseCase(repo, mocks.NewMockEntryRepository(), mocks.NewMockTransactionManager(), nil)

	accounts, err := uc.ListAccounts(context.Background(), owner)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(accounts) != 2 {
		t.Errorf("expected 2 accounts, got %d", len(accounts))
	}
}

func TestAccountUseCase_AddBalance(t *testing.T) {
	owner := uuid.New()

	tests := []struct {
		name    string
		balance int64
		actor   uuid.UUID
		amount  decimal.Decimal
		missing bool
		kind    domain.Kind
		want    decimal.Decimal
	}{
		{name: "deposit", balance: 10, actor: owner, amount: decimal.RequireFromString("5.25"), want: decimal.RequireFromString("15.25")},
		{name: "withdrawal leaving funds", balance: 10, actor: owner, amount: decimal.NewFromInt(-9), want: decimal.NewFromInt(1)},
		{name: "withdrawal to exactly zero is rejected", balance: 10, actor: owner, amount: decimal.NewFromInt(-10), kind: domain.KindInsufficientBalance},
		{name: "overdraft", balance: 10, actor: owner, amount: decimal.NewFromInt(-11), kind: domain.KindInsufficientBalance},
		{name: "sub-cent amount", balance: 10, actor: owner, amount: decimal.RequireFromString("0.005"), kind: domain.KindInvalidAmount},
		{name: "zero amount", balance: 10, actor: owner, amount: decimal.Zero, kind: domain.KindInvalidAmount},
		{name: "not owner", balance: 10, actor: uuid.New(), amount: decimal.NewFromInt(5), kind: domain.KindAccountNotOwned},
		{name: "missing account", actor: owner, amount: decimal.NewFromInt(5), missing: true, kind: domain.KindAccountNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			acc := &domain.Account{ID: uuid.New(), OwnerID: owner, Currency: "USD", Balance: decimal.NewFromInt(tt.balance)}

			repo := mocks.NewMockAccountRepository()
			if !tt.missing {
				repo = mocks.NewMockAccountRepository(acc)
			}
			entries := mocks.NewMockEntryRepository()
			txMgr := mocks.NewMockTransactionManager()
			cache := mocks.NewMockAccountCache()

			uc := newAccountUseCase(repo, entries, txMgr, cache)
			entry, err := uc.AddBalance(context.Background(), usecase.AddBalanceInput{
				ActorID:   tt.actor,
				AccountID: acc.ID,
				Amount:    tt.amount,
			})

			if tt.kind != "" {
				if got := domain.KindOf(err); got != tt.kind {
					t.Fatalf("expected kind %s, got %s (%v)", tt.kind, got, err)
				}
				if len(entries.Entries) != 0 {
					t.Fatal("expected no entry on failure")
				}
				for _, tx := range txMgr.Txs {
					if tx.Committed {
						t.Fatal("transaction committed on failure")
					}
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !entry.Amount.Equal(tt.amount) {
				t.Errorf("expected entry amount %s, got %s", tt.amount, entry.Amount)
			}
			if entry.Description != domain.BalanceAdjustmentDescription {
				t.Errorf("unexpected description %q", entry.Description)
			}
			if !repo.Balance(acc.ID).Equal(tt.want) {
				t.Errorf("expected balance %s, got %s", tt.want, repo.Balance(acc.ID))
			}
			if len(txMgr.Txs) != 1 || !txMgr.Txs[0].Committed {
				t.Error("expected one committed transaction")
			}
			if len(cache.Invalidated) != 1 || cache.Invalidated[0] != acc.ID {
				t.Errorf("expected account invalidated, got %v", cache.Invalidated)
			}
		})
	}
}

func TestAccountUseCase_AddBalanceStoreRefusesOverdraft(t *testing.T) {
	owner := uuid.New()
	acc := &domain.Account{ID: uuid.New(), OwnerID: owner, Currency: "USD", Balance: decimal.NewFromInt(1)}

	repo := mocks.NewMockAccountRepository(acc)
	repo.AddBalanceFunc = func(ctx context.Context, tx usecase.Transaction, id uuid.UUID, delta decimal.Decimal) (*domain.Account, error) {
		return nil, domain.ErrInsufficientBalance
	}

	uc := newAccountUseCase(repo, mocks.NewMockEntryRepository(), mocks.NewMockTransactionManager(), nil)

	_, err := uc.AddBalance(context.Background(), usecase.AddBalanceInput{ActorID: uuid.New(), AccountID: acc.ID, Amount: decimal.NewFromInt(-100)})
	if got := domain.KindOf(err); got != domain.KindAccountNotOwned {
		t.Fatalf("expected ownership to be reported first, got %s", got)
	}

	_, err = uc.AddBalance(context.Background(), usecase.AddBalanceInput{ActorID: owner, AccountID: acc.ID, Amount: decimal.NewFromInt(-100)})
	if got := domain.KindOf(err); got != domain.KindInsufficientBalance {
		t.Fatalf("expected InsufficientBalance, got %s", got)
	}
}
