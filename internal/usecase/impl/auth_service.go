// Package impl contains the implementation of the application's business logic.
package impl

import (
	"context"
	"log/slog"
	"time"

	deliverycontext "credcore/internal/delivery/context"
	"credcore/internal/domain/entity"
	domainerrors "credcore/internal/domain/errors"
	"credcore/internal/domain/repository"
	"credcore/internal/domain/service"
	"credcore/internal/usecase"

	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// authService implements the AuthUsecase interface.
type authService struct {
	store     repository.CredentialStore
	hasher    service.PasswordHasher
	publisher service.EventPublisher
	logger    *slog.Logger
}

// AuthServiceParams holds dependencies for AuthService, injected by Fx.
type AuthServiceParams struct {
	fx.In

	Store     repository.CredentialStore
	Hasher    service.PasswordHasher
	Publisher service.EventPublisher `optional:"true"`
	Logger    *slog.Logger
}

// NewAuthService is the constructor for authService. It receives all dependencies as interfaces.
func NewAuthService(params AuthServiceParams) usecase.AuthUsecase {
	logger := params.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &authService{
		store:     params.Store,
		hasher:    params.Hasher,
		publisher: params.Publisher,
		logger:    logger,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *authService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// Signup registers a new account with a salted and hashed password.
func (srv *authService) Signup(ctx context.Context, input *usecase.SignupInput) (*usecase.AuthOutput, error) {
	srv.log(ctx).Debug("Starting signup", slog.String("email", input.Email))

	existing, err := srv.store.FindByEmail(ctx, input.Email)
	if err != nil {
		return nil, errors.Wrap(err, "failed to look up email during signup")
	}
	if len(existing) > 0 {
		srv.log(ctx).Warn("Signup rejected", slog.String("email", input.Email), slog.Any("error", domainerrors.ErrConflict))

		return nil, domainerrors.ErrConflict.WrapMessage("signup failed")
	}

	record, err := srv.hasher.Hash(input.Password)
	if err != nil {
		srv.log(ctx).Error("Failed to hash password during signup", slog.Any("error", err))

		return nil, domainerrors.ErrPasswordHashFailed.WithDetails(err.Error()).WrapMessage("signup failed")
	}

	user, err := srv.store.Create(ctx, input.Email, record)
	if err != nil {
		if errors.Is(err, domainerrors.ErrConflict) {
			// Lost a race against a concurrent signup for the same email.
			srv.log(ctx).Warn("Signup rejected by store", slog.String("email", input.Email), slog.Any("error", err))
		}

		return nil, errors.Wrap(err, "failed to create user during signup")
	}

	srv.publishRegistered(ctx, user)
	srv.log(ctx).Info("Signup completed", slog.Any("userID", user.ID))

	return &usecase.AuthOutput{User: user}, nil
}

// Signin verifies a login attempt against the stored password record.
func (srv *authService) Signin(ctx context.Context, input *usecase.SigninInput) (*usecase.AuthOutput, error) {
	srv.log(ctx).Debug("Starting signin", slog.String("email", input.Email))

	users, err := srv.store.FindByEmail(ctx, input.Email)
	if err != nil {
		return nil, errors.Wrap(err, "failed to look up email during signin")
	}
	if len(users) == 0 {
		srv.log(ctx).Warn("Signin failed", slog.String("email", input.Email), slog.Any("error", domainerrors.ErrNotFound))

		return nil, domainerrors.ErrNotFound.WrapMessage("signin failed")
	}

	user := users[0]

	ok, err := srv.hasher.Check(input.Password, user.PasswordRecord)
	if err != nil {
		srv.log(ctx).Error("Stored password record is unreadable", slog.Any("userID", user.ID), slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to verify password during signin")
	}
	if !ok {
		srv.log(ctx).Warn("Signin failed", slog.String("email", input.Email), slog.Any("error", domainerrors.ErrInvalidCredentials))

		return nil, domainerrors.ErrInvalidCredentials.WrapMessage("signin failed")
	}

	srv.log(ctx).Debug("Signin succeeded", slog.Any("userID", user.ID))

	return &usecase.AuthOutput{User: user}, nil
}

// publishRegistered emits the registration event. The account already exists
// at this point, so a publishing failure is logged and not returned.
func (srv *authService) publishRegistered(ctx context.Context, user *entity.User) {
	if srv.publisher == nil {
		return
	}

	registeredAt := user.CreatedAt
	if registeredAt.IsZero() {
		registeredAt = time.Now().UTC()
	}

	event := &service.AccountRegisteredEvent{
		RequestID:    deliverycontext.GetRequestIDFromContext(ctx),
		UserID:       user.ID.String(),
		Email:        user.Email,
		RegisteredAt: registeredAt,
	}

	if err := srv.publisher.PublishAccountRegistered(ctx, event); err != nil {
		srv.log(ctx).Error("Failed to publish account registered event", slog.Any("userID", user.ID), slog.Any("error", err))
	}
}
