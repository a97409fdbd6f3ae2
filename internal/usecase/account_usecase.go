package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/simplebank/internal/domain"
	"github.com/iho/simplebank/internal/infrastructure/metrics"
)

// AccountUseCase handles account business logic.
type AccountUseCase struct {
	txManager   TransactionManager
	accountRepo AccountRepository
	entryRepo   EntryRepository
	idGen       IDGenerator
	cache       AccountCache
	metrics     *metrics.Metrics
	logger      zerolog.Logger
}

// NewAccountUseCase creates a new AccountUseCase. cache and metrics may be nil.
func NewAccountUseCase(
	txManager TransactionManager,
	accountRepo AccountRepository,
	entryRepo EntryRepository,
	idGen IDGenerator,
	cache AccountCache,
	metrics *metrics.Metrics,
	logger zerolog.Logger,
) *AccountUseCase {
	return &AccountUseCase{
		txManager:   txManager,
		accountRepo: accountRepo,
		entryRepo:   entryRepo,
		idGen:       idGen,
		cache:       cache,
		metrics:     metrics,
		logger:      logger,
	}
}

// CreateAccountInput represents input for creating an account.
type CreateAccountInput struct {
	OwnerID  uuid.UUID
	Currency string
}

// CreateAccount opens a zero-balance account for the owner.
func (uc *AccountUseCase) CreateAccount(ctx context.Context, input CreateAccountInput) (*domain.Account, error) {
	if err := domain.ValidateCurrency(input.Currency); err != nil {
		return nil, domain.NewValidationError(err)
	}

	currency := domain.NormalizeCurrency(input.Currency)
	now := time.Now().UTC()

	account := &domain.Account{
		ID:        uc.idGen.Generate(),
		OwnerID:   input.OwnerID,
		Currency:  currency,
		Balance:   decimal.Zero,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := uc.accountRepo.Create(ctx, account); err != nil {
		switch {
		case errors.Is(err, domain.ErrAccountAlreadyExists):
			return nil, domain.NewAccountAlreadyExistsError(input.OwnerID, currency)
		case errors.Is(err, domain.ErrUserNotFound):
			return nil, domain.NewUserNotFoundError(input.OwnerID)
		default:
			return nil, internalError("create account", err)
		}
	}

	if uc.metrics != nil {
		uc.metrics.AccountsCreated.Inc()
	}

	return account, nil
}

// GetAccount retrieves an account owned by actorID.
func (uc *AccountUseCase) GetAccount(ctx context.Context, actorID, id uuid.UUID) (*domain.Account, error) {
	account, err := uc.lookup(ctx, id)
	if err != nil {
		return nil, err
	}

	if !account.IsOwnedBy(actorID) {
		return nil, domain.NewAccountNotOwnedError(id, actorID)
	}

	return account, nil
}

// ListAccounts lists the accounts owned by ownerID.
func (uc *AccountUseCase) ListAccounts(ctx context.Context, ownerID uuid.UUID) ([]*domain.Account, error) {
	accounts, err := uc.accountRepo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, internalError("list accounts", err)
	}
	return accounts, nil
}

// AddBalanceInput represents input for a single-sided balance adjustment.
type AddBalanceInput struct {
	ActorID   uuid.UUID
	AccountID uuid.UUID
	Amount    decimal.Decimal
}

// AddBalance applies a signed adjustment to an owned account and records it as
// one entry. A withdrawal must leave a strictly positive balance.
func (uc *AccountUseCase) AddBalance(ctx context.Context, input AddBalanceInput) (*domain.Entry, error) {
	entry, err := uc.addBalance(ctx, input)
	if err != nil {
		logFailure(uc.logger, "add_balance", err)
		if uc.metrics != nil {
			uc.metrics.AdjustmentErrors.WithLabelValues(string(domain.KindOf(err))).Inc()
		}
		return nil, err
	}

	invalidateAccounts(ctx, uc.cache, uc.logger, input.AccountID)

	if uc.metrics != nil {
		direction := "credit"
		if input.Amount.IsNegative() {
			direction = "debit"
		}
		uc.metrics.BalanceAdjustments.WithLabelValues(direction).Inc()
	}

	return entry, nil
}

func (uc *AccountUseCase) addBalance(ctx context.Context, input AddBalanceInput) (*domain.Entry, error) {
	if input.Amount.IsZero() || !domain.FitsMoneyScale(input.Amount) {
		return nil, domain.NewInvalidAmountError(input.Amount)
	}

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, internalError("begin transaction", err)
	}
	defer tx.Rollback(ctx)

	// The update locks the row; every check below runs against the new balance.
	account, err := uc.accountRepo.AddBalance(ctx, tx, input.AccountID, input.Amount)
	if err != nil {
		if errors.Is(err, domain.ErrInsufficientBalance) {
			return nil, uc.overdraftError(ctx, input)
		}
		return nil, accountStoreError(err, input.AccountID, input.Amount)
	}

	if !account.IsOwnedBy(input.ActorID) {
		return nil, domain.NewAccountNotOwnedError(account.ID, input.ActorID)
	}

	if !account.AdjustmentLeavesFunds(input.Amount) {
		return nil, domain.NewInsufficientBalanceError(account.ID, input.Amount)
	}

	entry, err := uc.entryRepo.Create(ctx, tx, &domain.Entry{
		ID:          uc.idGen.Generate(),
		AccountID:   account.ID,
		Amount:      input.Amount,
		Description: domain.BalanceAdjustmentDescription,
		CreatedAt:   time.Now().UTC(),
	})
	if err != nil {
		return nil, domain.NewEntryCreationFailedError(account.ID, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, internalError("commit balance adjustment", err)
	}

	return entry, nil
}

// overdraftError reports a withdrawal the store refused outright because the
// balance would go negative. Ownership is still reported first.
func (uc *AccountUseCase) overdraftError(ctx context.Context, input AddBalanceInput) error {
	account, err := uc.accountRepo.GetByID(ctx, input.AccountID)
	if err == nil && !account.IsOwnedBy(input.ActorID) {
		return domain.NewAccountNotOwnedError(input.AccountID, input.ActorID)
	}
	return domain.NewInsufficientBalanceError(input.AccountID, input.Amount)
}

// lookup reads through the cache when one is configured. A miss is filled with
// the version Get returned, so the fill is dropped if a commit invalidated the
// account while the row was being read.
func (uc *AccountUseCase) lookup(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	fill := false
	var version int64

	if uc.cache != nil {
		cached, v, err := uc.cache.Get(ctx, id)
		switch {
		case err != nil:
			uc.logger.Warn().Err(err).Str("account_id", id.String()).Msg("account cache read failed")
		case cached != nil:
			uc.recordCache("hit")
			return cached, nil
		default:
			uc.recordCache("miss")
			fill, version = true, v
		}
	}

	account, err := uc.accountRepo.GetByID(ctx, id)
	if err != nil {
		return nil, accountStoreError(err, id, decimal.Zero)
	}

	if fill {
		if err := uc.cache.Set(ctx, account, version); err != nil {
			uc.logger.Warn().Err(err).Str("account_id", id.String()).Msg("account cache write failed")
		}
	}

	return account, nil
}

func (uc *AccountUseCase) recordCache(result string) {
	if uc.metrics != nil {
		uc.metrics.CacheLookups.WithLabelValues(result).Inc()
	}
}
