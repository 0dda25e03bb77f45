// Package usecase contains the application-specific business rules.
// It orchestrates the domain layer to perform tasks.
package usecase

import (
	"context"

	"credcore/internal/domain/entity"
)

// --- Input DTOs ---

// SignupInput defines the data required to register a new account.
type SignupInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// SigninInput defines the data required to verify a login attempt.
type SigninInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// --- Output DTOs ---

// AuthOutput returns the account a signup created or a signin verified.
type AuthOutput struct {
	User *entity.User
}

// AuthUsecase defines the credential operations exposed to the delivery layer.
type AuthUsecase interface {
	// Signup fails with domainerrors.ErrConflict when the email is already registered.
	Signup(ctx context.Context, input *SignupInput) (*AuthOutput, error)

	// Signin fails with domainerrors.ErrNotFound for an unknown email and
	// domainerrors.ErrInvalidCredentials for a wrong password.
	Signin(ctx context.Context, input *SigninInput) (*AuthOutput, error)
}
