package usecase

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/iho/simplebank/internal/domain"
)

// EntryUseCase handles entry business logic.
type EntryUseCase struct {
	accountRepo AccountRepository
	entryRepo   EntryRepository
}

// NewEntryUseCase creates a new EntryUseCase.
func NewEntryUseCase(accountRepo AccountRepository, entryRepo EntryRepository) *EntryUseCase {
	return &EntryUseCase{
		accountRepo: accountRepo,
		entryRepo:   entryRepo,
	}
}

// ListEntriesInput represents input for listing entries.
// Page is 1-based; zero values select the first page of domain.DefaultPerPage.
type ListEntriesInput struct {
	ActorID   uuid.UUID
	AccountID uuid.UUID
	Page      int
	PerPage   int
}

// ListEntries lists entries of an owned account, newest first.
func (uc *EntryUseCase) ListEntries(ctx context.Context, input ListEntriesInput) ([]*domain.Entry, error) {
	limit, offset, err := domain.PageToLimitOffset(input.Page, input.PerPage)
	if err != nil {
		return nil, domain.NewValidationError(err)
	}

	account, err := uc.accountRepo.GetByID(ctx, input.AccountID)
	if err != nil {
		return nil, accountStoreError(err, input.AccountID, decimal.Zero)
	}

	if !account.IsOwnedBy(input.ActorID) {
		return nil, domain.NewAccountNotOwnedError(input.AccountID, input.ActorID)
	}

	entries, err := uc.entryRepo.ListByAccount(ctx, input.AccountID, limit, offset)
	if err != nil {
		return nil, internalError("list entries", err)
	}

	return entries, nil
}
