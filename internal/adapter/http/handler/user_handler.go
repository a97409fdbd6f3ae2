package handler

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/iho/simplebank/internal/adapter/http/dto"
	"github.com/iho/simplebank/internal/domain"
	"github.com/iho/simplebank/internal/usecase"
)

// UserService defines the behavior needed by UserHandler.
type UserService interface {
	CreateUser(ctx context.Context, input usecase.CreateUserInput) (*domain.User, error)
	GetUser(ctx context.Context, id uuid.UUID) (*domain.User, error)
	Login(ctx context.Context, input usecase.LoginInput) (*usecase.LoginResult, error)
}

// UserHandler handles user-related HTTP requests.
type UserHandler struct {
	userUC UserService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(userUC UserService) *UserHandler {
	return &UserHandler{userUC: userUC}
}

// Create registers a new user.
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateUserRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	user, err := h.userUC.CreateUser(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.UserFromDomain(user))
}

// Login exchanges credentials for an access token.
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	result, err := h.userUC.Login(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.LoginFromResult(result))
}

// Get retrieves a user by ID.
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	user, err := h.userUC.GetUser(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.UserFromDomain(user))
}
