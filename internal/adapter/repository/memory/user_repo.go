package memory

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/iho/simplebank/internal/domain"
)

// UserRepository implements usecase.UserRepository in memory.
type UserRepository struct {
	store *Store
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(store *Store) *UserRepository {
	return &UserRepository{store: store}
}

// Create inserts a user. Login and email are unique.
func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if existing.Login == user.Login || strings.EqualFold(existing.Email, user.Email) {
			return domain.ErrUserAlreadyExists
		}
	}

	s.users[user.ID] = *user
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return &user, nil
}

func (r *UserRepository) GetByLogin(ctx context.Context, login string) (*domain.User, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, user := range s.users {
		if user.Login == login {
			return &user, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *UserRepository) ExistsByLoginOrEmail(ctx context.Context, login, email string) (bool, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, user := range s.users {
		if user.Login == login || strings.EqualFold(user.Email, email) {
			return true, nil
		}
	}
	return false, nil
}
