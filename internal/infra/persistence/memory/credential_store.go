// Package memory is an in-process credential store backed by an ordered slice.
// It is used by tests and by the "memory" storage driver.
package memory

import (
	"context"
	"sync"
	"time"

	"credcore/internal/domain/entity"
	domainerrors "credcore/internal/domain/errors"
	"credcore/internal/domain/repository"

	"github.com/google/uuid"
)

// CredentialStore keeps users in insertion order.
type CredentialStore struct {
	mu    sync.RWMutex
	users []*entity.User
}

var _ repository.CredentialStore = (*CredentialStore)(nil)

// NewCredentialStore returns an empty store.
func NewCredentialStore() *CredentialStore {
	return &CredentialStore{}
}

// FindByEmail returns copies of every user with the exact email.
func (s *CredentialStore) FindByEmail(ctx context.Context, email string) ([]*entity.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var matches []*entity.User
	for _, user := range s.users {
		if user.Email == email {
			clone := *user
			matches = append(matches, &clone)
		}
	}

	return matches, nil
}

// Create appends a user; the uniqueness check and the append share one lock.
func (s *CredentialStore) Create(ctx context.Context, email, passwordRecord string) (*entity.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, user := range s.users {
		if user.Email == email {
			return nil, domainerrors.ErrConflict.WrapMessage("email already exists")
		}
	}

	user := &entity.User{
		ID:             uuid.New(),
		Email:          email,
		PasswordRecord: passwordRecord,
		CreatedAt:      time.Now().UTC(),
	}
	s.users = append(s.users, user)

	clone := *user

	return &clone, nil
}

// Close is a no-op so the store satisfies io.Closer like the other backends.
func (s *CredentialStore) Close() error {
	return nil
}
