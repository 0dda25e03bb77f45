// Package bolt implements the credential store on a bbolt key/value file.
// Users live in one bucket keyed by email, so the key itself enforces uniqueness.
package bolt

import (
	"context"
	"encoding/json"
	"time"

	"credcore/internal/domain/entity"
	domainerrors "credcore/internal/domain/errors"
	"credcore/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.etcd.io/bbolt"
)

var bucketUsers = []byte("users")

// openTimeout bounds waiting for the file lock held by another process.
const openTimeout = 5 * time.Second

// Storage represents BoltDB storage implementation
type Storage struct {
	db *bbolt.DB
}

var _ repository.CredentialStore = (*Storage)(nil)

type userRecord struct {
	ID             uuid.UUID `json:"id"`
	Email          string    `json:"email"`
	PasswordRecord string    `json:"password_record"`
	CreatedAt      time.Time `json:"created_at"`
}

// New opens (or creates) the database at dbPath and its buckets.
func New(dbPath string) (*Storage, error) {
	db, err := bbolt.Open(dbPath, 0o600, &bbolt.Options{Timeout: openTimeout})
	if err != nil {
		return nil, errors.Wrap(err, "failed to open boltdb")
	}

	storage := &Storage{db: db}

	if err := storage.initBuckets(); err != nil {
		db.Close()

		return nil, errors.Wrap(err, "failed to initialize buckets")
	}

	return storage, nil
}

// Close closes the database connection
func (s *Storage) Close() error {
	if s.db == nil {
		return nil
	}

	return s.db.Close()
}

func (s *Storage) initBuckets() error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(bucketUsers); err != nil {
			return errors.Wrap(err, "failed to create users bucket")
		}

		return nil
	})
}

// FindByEmail returns the user stored under email, if any.
func (s *Storage) FindByEmail(ctx context.Context, email string) ([]*entity.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var users []*entity.User
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketUsers).Get([]byte(email))
		if data == nil {
			return nil
		}

		var record userRecord
		if err := json.Unmarshal(data, &record); err != nil {
			return errors.Wrap(err, "failed to decode user")
		}

		users = append(users, toUserDomain(&record))

		return nil
	})
	if err != nil {
		return nil, err
	}

	return users, nil
}

// Create stores a user under its email; an existing key is a conflict.
func (s *Storage) Create(ctx context.Context, email, passwordRecord string) (*entity.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	record := &userRecord{
		ID:             uuid.New(),
		Email:          email,
		PasswordRecord: passwordRecord,
		CreatedAt:      time.Now().UTC(),
	}

	err := s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketUsers)
		if bucket.Get([]byte(email)) != nil {
			return domainerrors.ErrConflict.WrapMessage("email already exists")
		}

		data, err := json.Marshal(record)
		if err != nil {
			return errors.Wrap(err, "failed to encode user")
		}

		return bucket.Put([]byte(email), data)
	})
	if err != nil {
		return nil, err
	}

	return toUserDomain(record), nil
}

func toUserDomain(record *userRecord) *entity.User {
	return &entity.User{
		ID:             record.ID,
		Email:          record.Email,
		PasswordRecord: record.PasswordRecord,
		CreatedAt:      record.CreatedAt,
	}
}
