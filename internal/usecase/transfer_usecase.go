package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/simplebank/internal/domain"
	"github.com/iho/simplebank/internal/infrastructure/metrics"
)

// TransferUseCase moves money between two accounts of the same currency.
type TransferUseCase struct {
	txManager    TransactionManager
	accountRepo  AccountRepository
	transferRepo TransferRepository
	entryRepo    EntryRepository
	idGen        IDGenerator
	cache        AccountCache
	metrics      *metrics.Metrics
	logger       zerolog.Logger
}

// NewTransferUseCase creates a new TransferUseCase. cache and metrics may be nil.
func NewTransferUseCase(
	txManager TransactionManager,
	accountRepo AccountRepository,
	transferRepo TransferRepository,
	entryRepo EntryRepository,
	idGen IDGenerator,
	cache AccountCache,
	metrics *metrics.Metrics,
	logger zerolog.Logger,
) *TransferUseCase {
	return &TransferUseCase{
		txManager:    txManager,
		accountRepo:  accountRepo,
		transferRepo: transferRepo,
		entryRepo:    entryRepo,
		idGen:        idGen,
		cache:        cache,
		metrics:      metrics,
		logger:       logger,
	}
}

// TransferInput represents input for a transfer.
type TransferInput struct {
	ActorID       uuid.UUID
	FromAccountID uuid.UUID
	ToAccountID   uuid.UUID
	Amount        decimal.Decimal
}

// Transfer debits FromAccountID and credits ToAccountID by Amount in one
// transaction. Only the owner of the source account may transfer from it.
// Both account rows are locked in domain.LockOrder before any check that
// depends on stored state.
func (uc *TransferUseCase) Transfer(ctx context.Context, input TransferInput) (*domain.TransferResult, error) {
	start := time.Now()

	result, err := uc.transfer(ctx, input)
	if err != nil {
		logFailure(uc.logger, "transfer", err)
		if uc.metrics != nil {
			uc.metrics.TransferErrors.WithLabelValues(string(domain.KindOf(err))).Inc()
		}
		return nil, err
	}

	invalidateAccounts(ctx, uc.cache, uc.logger, input.FromAccountID, input.ToAccountID)

	if uc.metrics != nil {
		uc.metrics.TransfersCreated.Inc()
		uc.metrics.TransferAmount.Observe(input.Amount.InexactFloat64())
		uc.metrics.TransferDuration.Observe(time.Since(start).Seconds())
	}

	uc.logger.Info().
		Str("transfer_id", result.Transfer.ID.String()).
		Str("from_account_id", input.FromAccountID.String()).
		Str("to_account_id", input.ToAccountID.String()).
		Str("amount", input.Amount.String()).
		Msg("transfer committed")

	return result, nil
}

func (uc *TransferUseCase) transfer(ctx context.Context, input TransferInput) (*domain.TransferResult, error) {
	// 1. Validate inputs before starting transaction
	candidate := &domain.Transfer{
		FromAccountID: input.FromAccountID,
		ToAccountID:   input.ToAccountID,
		Amount:        input.Amount,
	}
	if err := candidate.Validate(); err != nil {
		return nil, err
	}

	// 2. Begin transaction
	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, internalError("begin transaction", err)
	}
	defer tx.Rollback(ctx)

	// 3. Lock both accounts in canonical order (DEADLOCK PREVENTION)
	firstID, secondID := domain.LockOrder(input.FromAccountID, input.ToAccountID)

	first, err := uc.accountRepo.GetByIDForUpdate(ctx, tx, firstID)
	if err != nil {
		return nil, accountStoreError(err, firstID, input.Amount)
	}

	second, err := uc.accountRepo.GetByIDForUpdate(ctx, tx, secondID)
	if err != nil {
		return nil, accountStoreError(err, secondID, input.Amount)
	}

	fromAccount, toAccount := first, second
	if firstID != input.FromAccountID {
		fromAccount, toAccount = second, first
	}

	// 4. Validate against locked state
	if !fromAccount.IsOwnedBy(input.ActorID) {
		return nil, domain.NewAccountNotOwnedError(fromAccount.ID, input.ActorID)
	}

	if fromAccount.Currency != toAccount.Currency {
		return nil, domain.NewDifferentCurrencyAccountsError(fromAccount.Currency, toAccount.Currency)
	}

	if !fromAccount.CanDebit(input.Amount) {
		return nil, domain.NewInsufficientBalanceError(fromAccount.ID, input.Amount)
	}

	// 5. Apply balances
	now := time.Now().UTC()

	fromAccount.Balance = fromAccount.ApplyDebit(input.Amount)
	fromAccount.UpdatedAt = now
	if err := uc.accountRepo.UpdateBalance(ctx, tx, fromAccount); err != nil {
		return nil, accountStoreError(err, fromAccount.ID, input.Amount)
	}

	toAccount.Balance = toAccount.ApplyCredit(input.Amount)
	toAccount.UpdatedAt = now
	if err := uc.accountRepo.UpdateBalance(ctx, tx, toAccount); err != nil {
		return nil, accountStoreError(err, toAccount.ID, input.Amount)
	}

	// 6. Record the transfer and its two entries
	transfer, err := uc.transferRepo.Create(ctx, tx, &domain.Transfer{
		ID:            uc.idGen.Generate(),
		FromAccountID: fromAccount.ID,
		ToAccountID:   toAccount.ID,
		Amount:        input.Amount,
		CreatedAt:     now,
	})
	if err != nil {
		return nil, domain.NewTransferRecordFailedError(err)
	}

	description := domain.TransferEntryDescription(transfer.ID)

	fromEntry, err := uc.entryRepo.Create(ctx, tx, &domain.Entry{
		ID:          uc.idGen.Generate(),
		AccountID:   fromAccount.ID,
		Amount:      input.Amount.Neg(),
		Description: description,
		CreatedAt:   now,
	})
	if err != nil {
		return nil, domain.NewEntryCreationFailedError(fromAccount.ID, err)
	}

	toEntry, err := uc.entryRepo.Create(ctx, tx, &domain.Entry{
		ID:          uc.idGen.Generate(),
		AccountID:   toAccount.ID,
		Amount:      input.Amount,
		Description: description,
		CreatedAt:   now,
	})
	if err != nil {
		return nil, domain.NewEntryCreationFailedError(toAccount.ID, err)
	}

	// 7. Commit transaction
	if err := tx.Commit(ctx); err != nil {
		return nil, internalError("commit transfer", err)
	}

	return &domain.TransferResult{
		Transfer:    transfer,
		FromAccount: fromAccount,
		ToAccount:   toAccount,
		Amount:      input.Amount,
		FromEntry:   fromEntry,
		ToEntry:     toEntry,
	}, nil
}
