package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/iho/simplebank/internal/domain"
	"github.com/iho/simplebank/internal/infrastructure/metrics"
)

// UserUseCase handles user registration and login.
type UserUseCase struct {
	userRepo UserRepository
	hasher   PasswordHasher
	tokens   TokenIssuer
	idGen    IDGenerator
	metrics  *metrics.Metrics
}

// NewUserUseCase creates a new user use case. metrics may be nil.
func NewUserUseCase(
	userRepo UserRepository,
	hasher PasswordHasher,
	tokens TokenIssuer,
	idGen IDGenerator,
	metrics *metrics.Metrics,
) *UserUseCase {
	return &UserUseCase{
		userRepo: userRepo,
		hasher:   hasher,
		tokens:   tokens,
		idGen:    idGen,
		metrics:  metrics,
	}
}

// CreateUserInput represents input for creating a user
type CreateUserInput struct {
	Login    string
	Name     string
	Email    string
	Password string
}

// CreateUser registers a user with a hashed password. Login and email are
// both unique.
func (uc *UserUseCase) CreateUser(ctx context.Context, input CreateUserInput) (*domain.User, error) {
	login := strings.TrimSpace(input.Login)
	email := strings.ToLower(strings.TrimSpace(input.Email))

	if err := errors.Join(
		domain.ValidateLogin(login),
		domain.ValidateName(input.Name),
		domain.ValidateEmail(email),
		domain.ValidatePassword(input.Password),
	); err != nil {
		return nil, domain.NewValidationError(err)
	}

	exists, err := uc.userRepo.ExistsByLoginOrEmail(ctx, login, email)
	if err != nil {
		return nil, internalError("check user exists", err)
	}
	if exists {
		return nil, domain.NewUserAlreadyExistsError(login, email)
	}

	hash, err := uc.hasher.Hash(input.Password)
	if err != nil {
		return nil, internalError("hash password", err)
	}

	now := time.Now().UTC()
	user := &domain.User{
		ID:           uc.idGen.Generate(),
		Login:        login,
		Name:         strings.TrimSpace(input.Name),
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	// The unique indexes catch a registration racing the check above.
	if err := uc.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrUserAlreadyExists) {
			return nil, domain.NewUserAlreadyExistsError(login, email)
		}
		return nil, internalError("create user", err)
	}

	user.PasswordHash = ""
	return user, nil
}

// GetUser retrieves a user by ID
func (uc *UserUseCase) GetUser(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	user, err := uc.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.NewUserNotFoundError(id)
		}
		return nil, internalError("get user", err)
	}

	user.PasswordHash = ""
	return user, nil
}

// LoginInput represents login credentials
type LoginInput struct {
	Login    string
	Password string
}

// LoginResult carries the issued access token
type LoginResult struct {
	UserID    uuid.UUID
	Token     string
	ExpiresAt time.Time
}

// Login verifies credentials and issues an access token.
func (uc *UserUseCase) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	result, err := uc.login(ctx, input)

	if uc.metrics != nil {
		status := "success"
		if err != nil {
			status = string(domain.KindOf(err))
		}
		uc.metrics.AuthAttempts.WithLabelValues(status).Inc()
	}

	return result, err
}

func (uc *UserUseCase) login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	login := strings.TrimSpace(input.Login)

	user, err := uc.userRepo.GetByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.NewLoginNotFoundError(login)
		}
		return nil, internalError("get user by login", err)
	}

	if err := uc.hasher.Compare(user.PasswordHash, input.Password); err != nil {
		return nil, domain.NewIncorrectPasswordError(login)
	}

	token, expiresAt, err := uc.tokens.Generate(user)
	if err != nil {
		return nil, internalError("issue token", err)
	}

	return &LoginResult{
		UserID:    user.ID,
		Token:     token,
		ExpiresAt: expiresAt,
	}, nil
}
