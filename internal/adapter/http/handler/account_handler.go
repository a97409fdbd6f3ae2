package handler

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/iho/simplebank/internal/adapter/http/dto"
	"github.com/iho/simplebank/internal/domain"
	"github.com/iho/simplebank/internal/usecase"
)

// AccountService defines the behavior needed by AccountHandler.
type AccountService interface {
	CreateAccount(ctx context.Context, input usecase.CreateAccountInput) (*domain.Account, error)
	GetAccount(ctx context.Context, actorID, id uuid.UUID) (*domain.Account, error)
	ListAccounts(ctx context.Context, ownerID uuid.UUID) ([]*domain.Account, error)
	AddBalance(ctx context.Context, input usecase.AddBalanceInput) (*domain.Entry, error)
}

// EntryService defines the behavior needed to page account history.
type EntryService interface {
	ListEntries(ctx context.Context, input usecase.ListEntriesInput) ([]*domain.Entry, error)
}

// AccountHandler handles account-related HTTP requests.
type AccountHandler struct {
	accountUC AccountService
	entryUC   EntryService
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(accountUC AccountService, entryUC EntryService) *AccountHandler {
	return &AccountHandler{accountUC: accountUC, entryUC: entryUC}
}

// Create opens an account for the caller.
func (h *AccountHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, err := actorID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req dto.CreateAccountRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	account, err := h.accountUC.CreateAccount(r.Context(), req.ToUseCaseInput(actor))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.AccountFromDomain(account))
}

// Get retrieves one of the caller's accounts.
func (h *AccountHandler) Get(w http.ResponseWriter, r *http.Request) {
	actor, err := actorID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	id, err := uuidParam(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	account, err := h.accountUC.GetAccount(r.Context(), actor, id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.AccountFromDomain(account))
}

// List lists the caller's accounts.
func (h *AccountHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, err := actorID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	accounts, err := h.accountUC.ListAccounts(r.Context(), actor)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ListAccountsResponse{
		Accounts: dto.AccountsFromDomain(accounts),
	})
}

// AddBalance applies a signed adjustment and returns the recorded entry.
func (h *AccountHandler) AddBalance(w http.ResponseWriter, r *http.Request) {
	actor, err := actorID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req dto.AddBalanceRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	input, err := req.ToUseCaseInput(actor)
	if err != nil {
		writeError(w, err)
		return
	}

	entry, err := h.accountUC.AddBalance(r.Context(), input)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.EntryFromDomain(entry))
}

// ListEntries pages the history of one of the caller's accounts.
func (h *AccountHandler) ListEntries(w http.ResponseWriter, r *http.Request) {
	actor, err := actorID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	id, err := uuidParam(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	page := parseIntQuery(r, "page", 1)
	perPage := parseIntQuery(r, "per_page", domain.DefaultPerPage)

	entries, err := h.entryUC.ListEntries(r.Context(), usecase.ListEntriesInput{
		ActorID:   actor,
		AccountID: id,
		Page:      page,
		PerPage:   perPage,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ListEntriesResponse{
		Entries: dto.EntriesFromDomain(entries),
		Page:    page,
		PerPage: perPage,
	})
}
