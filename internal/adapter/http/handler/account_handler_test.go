package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/iho/simplebank/internal/adapter/http/dto"
	"github.com/iho/simplebank/internal/domain"
	"github.com/iho/simplebank/internal/usecase"
)

type accountServiceStub struct {
	createFn     func(ctx context.Context, input usecase.CreateAccountInput) (*domain.Account, error)
	getFn        func(ctx context.Context, actorID, id uuid.UUID) (*domain.Account, error)
	listFn       func(ctx context.Context, ownerID uuid.UUID) ([]*domain.Account, error)
	addBalanceFn func(ctx context.Context, input usecase.AddBalanceInput) (*domain.Entry, error)
}

func (s *accountServiceStub) CreateAccount(ctx context.Context, input usecase.CreateAccountInput) (*domain.Account, error) {
	return s.createFn(ctx, input)
}

func (s *accountServiceStub) GetAccount(ctx context.Context, actorID, id uuid.UUID) (*domain.Account, error) {
	return s.getFn(ctx, actorID, id)
}

func (s *accountServiceStub) ListAccounts(ctx context.Context, ownerID uuid.UUID) ([]*domain.Account, error) {
	return s.listFn(ctx, ownerID)
}

func (s *accountServiceStub) AddBalance(ctx context.Context, input usecase.AddBalanceInput) (*domain.Entry, error) {
	return s.addBalanceFn(ctx, input)
}

type entryServiceStub struct {
	listFn func(ctx context.Context, input usecase.ListEntriesInput) ([]*domain.Entry, error)
}

func (s *entryServiceStub) ListEntries(ctx context.Context, input usecase.ListEntriesInput) ([]*domain.Entry, error) {
	return s.listFn(ctx, input)
}

func TestAccountHandler_Create_Success(t *testing.T) {
	actor := uuid.New()
	account := &domain.Account{ID: uuid.New(), OwnerID: actor, Currency: "USD"}

	var captured usecase.CreateAccountInput
	handler := NewAccountHandler(&accountServiceStub{
		createFn: func(ctx context.Context, input usecase.CreateAccountInput) (*domain.Account, error) {
			captured = input
			return account, nil
		},
	}, nil)

	body, _ := json.Marshal(dto.CreateAccountRequest{Currency: "usd"})
	req := withActor(httptest.NewRequest(http.MethodPost, "/accounts", bytes.NewReader(body)), actor)
	rec := httptest.NewRecorder()

	handler.Create(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	if captured.OwnerID != actor || captured.Currency != "usd" {
		t.Fatalf("expected input to match request, got %+v", captured)
	}

	var resp dto.AccountResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.ID != account.ID {
		t.Fatalf("expected account ID %s, got %s", account.ID, resp.ID)
	}
}

func TestAccountHandler_Create_InvalidJSON(t *testing.T) {
	handler := NewAccountHandler(&accountServiceStub{
		createFn: func(ctx context.Context, input usecase.CreateAccountInput) (*domain.Account, error) {
			t.Fatal("CreateAccount should not be called for invalid payload")
			return nil, nil
		},
	}, nil)

	req := withActor(httptest.NewRequest(http.MethodPost, "/accounts", bytes.NewBufferString("{invalid json")), uuid.New())
	rec := httptest.NewRecorder()

	handler.Create(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if resp := decodeError(t, rec); resp.ErrorType != "ValidationError" {
		t.Fatalf("expected ValidationError, got %+v", resp)
	}
}

func TestAccountHandler_Create_Duplicate(t *testing.T) {
	actor := uuid.New()
	handler := NewAccountHandler(&accountServiceStub{
		createFn: func(ctx context.Context, input usecase.CreateAccountInput) (*domain.Account, error) {
			return nil, domain.NewAccountAlreadyExistsError(actor, "USD")
		},
	}, nil)

	body, _ := json.Marshal(dto.CreateAccountRequest{Currency: "USD"})
	req := withActor(httptest.NewRequest(http.MethodPost, "/accounts", bytes.NewReader(body)), actor)
	rec := httptest.NewRecorder()

	handler.Create(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
}

func TestAccountHandler_Create_NoActor(t *testing.T) {
	handler := NewAccountHandler(&accountServiceStub{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/accounts", bytes.NewBufferString(`{"currency":"USD"}`))
	rec := httptest.NewRecorder()

	handler.Create(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 without an authenticated actor, got %d", rec.Code)
	}
}

func TestAccountHandler_Get(t *testing.T) {
	actor := uuid.New()
	account := &domain.Account{ID: uuid.New(), OwnerID: actor, Currency: "USD"}

	handler := NewAccountHandler(&accountServiceStub{
		getFn: func(ctx context.Context, actorID, id uuid.UUID) (*domain.Account, error) {
			if actorID != actor || id != account.ID {
				t.Fatalf("unexpected lookup actor=%s id=%s", actorID, id)
			}
			return account, nil
		},
	}, nil)

	req := httptest.NewRequest(http.MethodGet, "/accounts/"+account.ID.String(), nil)
	req = withActor(setChiURLParam(req, "id", account.ID.String()), actor)
	rec := httptest.NewRecorder()

	handler.Get(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAccountHandler_Get_Errors(t *testing.T) {
	tests := []struct {
		name   string
		id     string
		err    error
		status int
	}{
		{name: "malformed id", id: "acc-1", status: http.StatusBadRequest},
		{name: "not found", id: uuid.NewString(), err: domain.NewAccountNotFoundError(uuid.New()), status: http.StatusBadRequest},
		{name: "not owned", id: uuid.NewString(), err: domain.NewAccountNotOwnedError(uuid.New(), uuid.New()), status: http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewAccountHandler(&accountServiceStub{
				getFn: func(ctx context.Context, actorID, id uuid.UUID) (*domain.Account, error) {
					return nil, tt.err
				},
			}, nil)

			req := httptest.NewRequest(http.MethodGet, "/accounts/"+tt.id, nil)
			req = withActor(setChiURLParam(req, "id", tt.id), uuid.New())
			rec := httptest.NewRecorder()

			handler.Get(rec, req)

			if rec.Code != tt.status {
				t.Fatalf("expected %d, got %d", tt.status, rec.Code)
			}
		})
	}
}

func TestAccountHandler_List(t *testing.T) {
	actor := uuid.New()
	handler := NewAccountHandler(&accountServiceStub{
		listFn: func(ctx context.Context, ownerID uuid.UUID) ([]*domain.Account, error) {
			if ownerID != actor {
				t.Fatalf("expected owner %s, got %s", actor, ownerID)
			}
			return []*domain.Account{{ID: uuid.New()}, {ID: uuid.New()}}, nil
		},
	}, nil)

	req := withActor(httptest.NewRequest(http.MethodGet, "/accounts", nil), actor)
	rec := httptest.NewRecorder()

	handler.List(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp dto.ListAccountsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Accounts) != 2 {
		t.Fatalf("expected 2 accounts, got %d", len(resp.Accounts))
	}
}

func TestAccountHandler_AddBalance(t *testing.T) {
	actor := uuid.New()
	accountID := uuid.New()

	tests := []struct {
		name      string
		body      string
		err       error
		status    int
		errorType string
	}{
		{
			name:   "deposit",
			body:   `{"account_id":"` + accountID.String() + `","amount":25.5}`,
			status: http.StatusOK,
		},
		{
			name:      "amount with three decimals",
			body:      `{"account_id":"` + accountID.String() + `","amount":1.005}`,
			status:    http.StatusBadRequest,
			errorType: "ValidationError",
		},
		{
			name:      "malformed account id",
			body:      `{"account_id":"nope","amount":1}`,
			status:    http.StatusBadRequest,
			errorType: "ValidationError",
		},
		{
			name:      "overdraft",
			body:      `{"account_id":"` + accountID.String() + `","amount":-500}`,
			err:       domain.NewInsufficientBalanceError(accountID, decimal.NewFromInt(-500)),
			status:    http.StatusBadRequest,
			errorType: "InsufficientBalance",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewAccountHandler(&accountServiceStub{
				addBalanceFn: func(ctx context.Context, input usecase.AddBalanceInput) (*domain.Entry, error) {
					if tt.err != nil {
						return nil, tt.err
					}
					if input.ActorID != actor || input.AccountID != accountID {
						t.Fatalf("unexpected input %+v", input)
					}
					return &domain.Entry{ID: uuid.New(), AccountID: accountID, Amount: input.Amount, Description: domain.BalanceAdjustmentDescription}, nil
				},
			}, nil)

			req := withActor(httptest.NewRequest(http.MethodPost, "/accounts/balance", bytes.NewBufferString(tt.body)), actor)
			rec := httptest.NewRecorder()

			handler.AddBalance(rec, req)

			if rec.Code != tt.status {
				t.Fatalf("expected %d, got %d: %s", tt.status, rec.Code, rec.Body.String())
			}

			if tt.errorType != "" {
				if resp := decodeError(t, rec); resp.ErrorType != tt.errorType {
					t.Fatalf("expected %s, got %+v", tt.errorType, resp)
				}
				return
			}

			var resp dto.EntryResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			if !resp.Amount.Equal(decimal.RequireFromString("25.5")) {
				t.Fatalf("expected amount 25.5, got %s", resp.Amount)
			}
		})
	}
}

func TestAccountHandler_ListEntries(t *testing.T) {
	actor := uuid.New()
	accountID := uuid.New()

	t.Run("passes paging through", func(t *testing.T) {
		var captured usecase.ListEntriesInput
		handler := NewAccountHandler(nil, &entryServiceStub{
			listFn: func(ctx context.Context, input usecase.ListEntriesInput) ([]*domain.Entry, error) {
				captured = input
				return []*domain.Entry{{ID: uuid.New(), AccountID: accountID}}, nil
			},
		})

		req := httptest.NewRequest(http.MethodGet, "/accounts/x/entries?page=3&per_page=10", nil)
		req = withActor(setChiURLParam(req, "id", accountID.String()), actor)
		rec := httptest.NewRecorder()

		handler.ListEntries(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		want := usecase.ListEntriesInput{ActorID: actor, AccountID: accountID, Page: 3, PerPage: 10}
		if captured != want {
			t.Fatalf("expected %+v, got %+v", want, captured)
		}

		var resp dto.ListEntriesResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if len(resp.Entries) != 1 || resp.Page != 3 || resp.PerPage != 10 {
			t.Fatalf("unexpected response %+v", resp)
		}
	})

	t.Run("defaults when absent", func(t *testing.T) {
		handler := NewAccountHandler(nil, &entryServiceStub{
			listFn: func(ctx context.Context, input usecase.ListEntriesInput) ([]*domain.Entry, error) {
				if input.Page != 1 || input.PerPage != domain.DefaultPerPage {
					t.Fatalf("unexpected defaults %+v", input)
				}
				return nil, nil
			},
		})

		req := httptest.NewRequest(http.MethodGet, "/accounts/x/entries", nil)
		req = withActor(setChiURLParam(req, "id", accountID.String()), actor)
		rec := httptest.NewRecorder()

		handler.ListEntries(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
	})

	t.Run("rejection from use case", func(t *testing.T) {
		handler := NewAccountHandler(nil, &entryServiceStub{
			listFn: func(ctx context.Context, input usecase.ListEntriesInput) ([]*domain.Entry, error) {
				return nil, domain.NewValidationError(domain.ErrInvalidPagination)
			},
		})

		req := httptest.NewRequest(http.MethodGet, "/accounts/x/entries?per_page=1000", nil)
		req = withActor(setChiURLParam(req, "id", accountID.String()), actor)
		rec := httptest.NewRecorder()

		handler.ListEntries(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("store failure", func(t *testing.T) {
		handler := NewAccountHandler(nil, &entryServiceStub{
			listFn: func(ctx context.Context, input usecase.ListEntriesInput) ([]*domain.Entry, error) {
				return nil, errors.New("db error")
			},
		})

		req := httptest.NewRequest(http.MethodGet, "/accounts/x/entries", nil)
		req = withActor(setChiURLParam(req, "id", accountID.String()), actor)
		rec := httptest.NewRecorder()

		handler.ListEntries(rec, req)

		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("expected 500, got %d", rec.Code)
		}
	})
}
