package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/iho/simplebank/internal/domain"
	"github.com/iho/simplebank/internal/infrastructure/postgres/generated"
)

// UserRepository implements user persistence
type UserRepository struct {
	queries *generated.Queries
}

// NewUserRepository creates a new user repository
func NewUserRepository(db generated.DBTX) *UserRepository {
	return &UserRepository{queries: generated.New(db)}
}

// Create inserts a new user
func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	_, err := r.queries.CreateUser(ctx, generated.CreateUserParams{
		ID:           user.ID,
		Login:        user.Login,
		Name:         user.Name,
		Email:        user.Email,
		PasswordHash: user.PasswordHash,
		CreatedAt:    timeToPgTimestamptz(user.CreatedAt),
		UpdatedAt:    timeToPgTimestamptz(user.UpdatedAt),
	})

	return translate(err)
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	row, err := r.queries.GetUserByID(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}

	return rowToUser(row), nil
}

// GetByLogin retrieves a user by login
func (r *UserRepository) GetByLogin(ctx context.Context, login string) (*domain.User, error) {
	row, err := r.queries.GetUserByLogin(ctx, login)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}

	return rowToUser(row), nil
}

// ExistsByLoginOrEmail reports whether the login or the email is taken
func (r *UserRepository) ExistsByLoginOrEmail(ctx context.Context, login, email string) (bool, error) {
	return r.queries.ExistsUserByLoginOrEmail(ctx, login, email)
}

func rowToUser(row generated.User) *domain.User {
	return &domain.User{
		ID:           row.ID,
		Login:        row.Login,
		Name:         row.Name,
		Email:        row.Email,
		PasswordHash: row.PasswordHash,
		CreatedAt:    row.CreatedAt.Time,
		UpdatedAt:    row.UpdatedAt.Time,
	}
}
