package sqlite

import (
	"context"
	"strings"
	"time"

	"credcore/internal/domain/entity"
	domainerrors "credcore/internal/domain/errors"
	"credcore/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

var _ repository.CredentialStore = (*Storage)(nil)

// FindByEmail returns every user with the exact email.
func (s *Storage) FindByEmail(ctx context.Context, email string) ([]*entity.User, error) {
	query := `
		SELECT id, email, password_record, created_at
		FROM users
		WHERE email = ?
	`

	rows, err := s.db.QueryContext(ctx, query, email)
	if err != nil {
		return nil, domainerrors.NewDatabaseExecuteError(err, "failed to query users by email")
	}
	defer rows.Close()

	var users []*entity.User
	for rows.Next() {
		var (
			user entity.User
			id   string
		)
		if err := rows.Scan(&id, &user.Email, &user.PasswordRecord, &user.CreatedAt); err != nil {
			return nil, errors.Wrap(err, "failed to scan user")
		}

		user.ID, err = uuid.Parse(id)
		if err != nil {
			return nil, errors.Wrapf(err, "stored user id %q is not a uuid", id)
		}

		users = append(users, &user)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to iterate users")
	}

	return users, nil
}

// Create inserts a user; the unique index on email is the authoritative guard.
func (s *Storage) Create(ctx context.Context, email, passwordRecord string) (*entity.User, error) {
	query := `
		INSERT INTO users (id, email, password_record, created_at)
		VALUES (?, ?, ?, ?)
	`

	user := &entity.User{
		ID:             uuid.New(),
		Email:          email,
		PasswordRecord: passwordRecord,
		CreatedAt:      time.Now().UTC(),
	}

	if _, err := s.db.ExecContext(ctx, query, user.ID.String(), user.Email, user.PasswordRecord, user.CreatedAt); err != nil {
		if isUniqueConstraintViolation(err) {
			return nil, domainerrors.ErrConflict.WrapMessage("email already exists")
		}

		return nil, domainerrors.NewDatabaseExecuteError(err, "failed to insert user")
	}

	return user, nil
}

func isUniqueConstraintViolation(err error) bool {
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
	}

	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
