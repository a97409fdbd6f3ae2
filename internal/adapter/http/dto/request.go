package dto

import (
	"encoding/json"

	"github.com/google/uuid"

	"github.com/iho/simplebank/internal/domain"
	"github.com/iho/simplebank/internal/usecase"
)

// CreateUserRequest represents a request to register a user.
type CreateUserRequest struct {
	Login    string `json:"login"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateUserRequest) ToUseCaseInput() usecase.CreateUserInput {
	return usecase.CreateUserInput{
		Login:    r.Login,
		Name:     r.Name,
		Email:    r.Email,
		Password: r.Password,
	}
}

// LoginRequest represents a request for an access token.
type LoginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

// ToUseCaseInput converts to use case input.
func (r *LoginRequest) ToUseCaseInput() usecase.LoginInput {
	return usecase.LoginInput{Login: r.Login, Password: r.Password}
}

// CreateAccountRequest represents a request to open an account for the caller.
type CreateAccountRequest struct {
	Currency string `json:"currency"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateAccountRequest) ToUseCaseInput(ownerID uuid.UUID) usecase.CreateAccountInput {
	return usecase.CreateAccountInput{OwnerID: ownerID, Currency: r.Currency}
}

// TransferRequest represents a request to move money between two accounts.
type TransferRequest struct {
	FromAccountID uuid.UUID   `json:"from_account_id"`
	ToAccountID   uuid.UUID   `json:"to_account_id"`
	Amount        json.Number `json:"amount"`
}

// ToUseCaseInput converts to use case input, validating the amount format.
func (r *TransferRequest) ToUseCaseInput(actorID uuid.UUID) (usecase.TransferInput, error) {
	amount, err := domain.ParseAmount(r.Amount.String())
	if err != nil {
		return usecase.TransferInput{}, domain.NewValidationError(err)
	}

	return usecase.TransferInput{
		ActorID:       actorID,
		FromAccountID: r.FromAccountID,
		ToAccountID:   r.ToAccountID,
		Amount:        amount,
	}, nil
}

// AddBalanceRequest represents a signed balance adjustment.
type AddBalanceRequest struct {
	AccountID uuid.UUID   `json:"account_id"`
	Amount    json.Number `json:"amount"`
}

// ToUseCaseInput converts to use case input, validating the amount format.
func (r *AddBalanceRequest) ToUseCaseInput(actorID uuid.UUID) (usecase.AddBalanceInput, error) {
	amount, err := domain.ParseAmount(r.Amount.String())
	if err != nil {
		return usecase.AddBalanceInput{}, domain.NewValidationError(err)
	}

	return usecase.AddBalanceInput{
		ActorID:   actorID,
		AccountID: r.AccountID,
		Amount:    amount,
	}, nil
}
