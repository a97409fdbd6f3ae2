package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/iho/simplebank/internal/domain"
	"github.com/iho/simplebank/internal/usecase"
)

// UserResponse represents a user in API responses. The password hash is never
// exposed.
type UserResponse struct {
	ID        uuid.UUID `json:"id"`
	Login     string    `json:"login"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UserFromDomain converts domain user to response.
func UserFromDomain(u *domain.User) *UserResponse {
	return &UserResponse{
		ID:        u.ID,
		Login:     u.Login,
		Name:      u.Name,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// LoginResponse carries an issued access token.
type LoginResponse struct {
	UserID      uuid.UUID `json:"user_id"`
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// LoginFromResult converts a login result to response.
func LoginFromResult(r *usecase.LoginResult) *LoginResponse {
	return &LoginResponse{
		UserID:      r.UserID,
		AccessToken: r.Token,
		TokenType:   "Bearer",
		ExpiresAt:   r.ExpiresAt,
	}
}

// AccountResponse represents an account in API responses.
type AccountResponse struct {
	ID        uuid.UUID       `json:"id"`
	OwnerID   uuid.UUID       `json:"owner_id"`
	Currency  string          `json:"currency"`
	Balance   decimal.Decimal `json:"balance"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// AccountFromDomain converts domain account to response.
func AccountFromDomain(a *domain.Account) *AccountResponse {
	return &AccountResponse{
		ID:        a.ID,
		OwnerID:   a.OwnerID,
		Currency:  a.Currency,
		Balance:   a.Balance,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

// AccountsFromDomain converts domain accounts to responses.
func AccountsFromDomain(accounts []*domain.Account) []*AccountResponse {
	result := make([]*AccountResponse, len(accounts))
	for i, a := range accounts {
		result[i] = AccountFromDomain(a)
	}
	return result
}

// ListAccountsResponse represents a list of accounts.
type ListAccountsResponse struct {
	Accounts []*AccountResponse `json:"accounts"`
}

// EntryResponse represents an entry in API responses.
type EntryResponse struct {
	ID          uuid.UUID       `json:"id"`
	AccountID   uuid.UUID       `json:"account_id"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	CreatedAt   time.Time       `json:"created_at"`
}

// EntryFromDomain converts domain entry to response.
func EntryFromDomain(e *domain.Entry) *EntryResponse {
	return &EntryResponse{
		ID:          e.ID,
		AccountID:   e.AccountID,
		Amount:      e.Amount,
		Description: e.Description,
		CreatedAt:   e.CreatedAt,
	}
}

// EntriesFromDomain converts domain entries to responses.
func EntriesFromDomain(entries []*domain.Entry) []*EntryResponse {
	result := make([]*EntryResponse, len(entries))
	for i, e := range entries {
		result[i] = EntryFromDomain(e)
	}
	return result
}

// ListEntriesResponse represents one page of account history.
type ListEntriesResponse struct {
	Entries []*EntryResponse `json:"entries"`
	Page    int              `json:"page"`
	PerPage int              `json:"per_page"`
}

// TransferResponse represents a committed transfer.
type TransferResponse struct {
	ID            uuid.UUID       `json:"id"`
	FromAccountID uuid.UUID       `json:"from_account_id"`
	ToAccountID   uuid.UUID       `json:"to_account_id"`
	Amount        decimal.Decimal `json:"amount"`
	CreatedAt     time.Time       `json:"created_at"`
}

// TransferResultResponse is the body of a successful transfer.
type TransferResultResponse struct {
	Transfer    *TransferResponse `json:"transfer"`
	FromAccount *AccountResponse  `json:"from_account"`
	ToAccount   *AccountResponse  `json:"to_account"`
	Amount      decimal.Decimal   `json:"amount"`
	FromEntry   *EntryResponse    `json:"from_entry"`
	ToEntry     *EntryResponse    `json:"to_entry"`
}

// TransferResultFromDomain converts a transfer result to response.
func TransferResultFromDomain(r *domain.TransferResult) *TransferResultResponse {
	return &TransferResultResponse{
		Transfer: &TransferResponse{
			ID:            r.Transfer.ID,
			FromAccountID: r.Transfer.FromAccountID,
			ToAccountID:   r.Transfer.ToAccountID,
			Amount:        r.Transfer.Amount,
			CreatedAt:     r.Transfer.CreatedAt,
		},
		FromAccount: AccountFromDomain(r.FromAccount),
		ToAccount:   AccountFromDomain(r.ToAccount),
		Amount:      r.Amount,
		FromEntry:   EntryFromDomain(r.FromEntry),
		ToEntry:     EntryFromDomain(r.ToEntry),
	}
}

// ReconciliationResponse reports whether an account's balance matches its entries.
type ReconciliationResponse struct {
	AccountID         uuid.UUID       `json:"account_id"`
	RecordedBalance   decimal.Decimal `json:"recorded_balance"`
	CalculatedBalance decimal.Decimal `json:"calculated_balance"`
	Difference        decimal.Decimal `json:"difference"`
	IsReconciled      bool            `json:"is_reconciled"`
	LastChecked       time.Time       `json:"last_checked"`
}

// ReconciliationFromResult converts a reconciliation result to response.
func ReconciliationFromResult(r *usecase.ReconciliationResult) *ReconciliationResponse {
	return &ReconciliationResponse{
		AccountID:         r.AccountID,
		RecordedBalance:   r.RecordedBalance,
		CalculatedBalance: r.CalculatedBalance,
		Difference:        r.Difference,
		IsReconciled:      r.IsReconciled,
		LastChecked:       r.LastChecked,
	}
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	ErrorType string `json:"error_type"`
	Message   string `json:"message"`
}
