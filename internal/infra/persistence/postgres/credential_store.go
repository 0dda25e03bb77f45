package postgres

import (
	"context"

	"credcore/internal/domain/entity"
	domainerrors "credcore/internal/domain/errors"
	"credcore/internal/domain/repository"
	"credcore/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// CredentialStore implements repository.CredentialStore using GORM.
type CredentialStore struct {
	db      *gorm.DB
	closeFn func() error
}

var _ repository.CredentialStore = (*CredentialStore)(nil)

// NewCredentialStore wraps an existing connection; the caller keeps ownership of it.
func NewCredentialStore(db *gorm.DB) *CredentialStore {
	return &CredentialStore{db: db}
}

// FindByEmail returns every user with the exact email.
func (s *CredentialStore) FindByEmail(ctx context.Context, email string) ([]*entity.User, error) {
	var models []*model.UserModel
	if err := s.db.WithContext(ctx).Where("email = ?", email).Find(&models).Error; err != nil {
		return nil, domainerrors.NewDatabaseExecuteError(err, "failed to find users by email")
	}

	users := make([]*entity.User, 0, len(models))
	for _, userM := range models {
		users = append(users, toUserDomain(userM))
	}

	return users, nil
}

// Create inserts a user; the unique index on email is the authoritative guard.
func (s *CredentialStore) Create(ctx context.Context, email, passwordRecord string) (*entity.User, error) {
	userM := &model.UserModel{
		ID:             uuid.New(),
		Email:          email,
		PasswordRecord: passwordRecord,
	}

	if err := s.db.WithContext(ctx).Create(userM).Error; err != nil {
		if isUniqueConstraintViolation(err) {
			return nil, domainerrors.ErrConflict.WrapMessage("email already exists")
		}
		if isNotNullConstraintViolation(err) {
			return nil, errors.Wrap(domainerrors.ErrValidationFailed, "missing required user information")
		}

		return nil, domainerrors.NewDatabaseExecuteError(err, "failed to create user")
	}

	return toUserDomain(userM), nil
}

// Close releases the connection pool when the store opened it.
func (s *CredentialStore) Close() error {
	if s.closeFn == nil {
		return nil
	}

	return s.closeFn()
}

// toUserDomain converts a GORM UserModel to a domain User entity.
func toUserDomain(data *model.UserModel) *entity.User {
	if data == nil {
		return nil
	}

	return &entity.User{
		ID:             data.ID,
		Email:          data.Email,
		PasswordRecord: data.PasswordRecord,
		CreatedAt:      data.CreatedAt,
	}
}
