// Package repository defines the interfaces for the persistence layer.
// These interfaces act as a contract between the domain/application layers and the infrastructure layer.
package repository

import (
	"context"

	"credcore/internal/domain/entity"
)

// CredentialStore persists users keyed by email.
//
// Implementations must enforce email uniqueness themselves and report a
// violation as domainerrors.ErrConflict; callers' own pre-checks are only a fast path.
type CredentialStore interface {
	// FindByEmail returns every user whose email matches exactly. Order is irrelevant;
	// an empty slice and a nil error mean no account exists.
	FindByEmail(ctx context.Context, email string) ([]*entity.User, error)

	// Create stores a new user with the given encoded password record and
	// returns it with its assigned ID.
	Create(ctx context.Context, email, passwordRecord string) (*entity.User, error)
}
