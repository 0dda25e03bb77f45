// Package auth provides concrete implementations for authentication-related domain services.
package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"io"

	"credcore/config"
	"credcore/internal/domain/entity"
	"credcore/internal/domain/service"

	"github.com/pkg/errors"
	"golang.org/x/crypto/argon2"
)

// Argon2Params are the Argon2id cost parameters. They are fixed for the
// lifetime of a hasher so that every record is derived the same way.
type Argon2Params struct {
	Time       uint32
	MemoryKiB  uint32
	Threads    uint8
	KeyLength  uint32
	SaltLength int
}

// DefaultArgon2Params follows the RFC 9106 second recommended option.
var DefaultArgon2Params = Argon2Params{
	Time:       1,
	MemoryKiB:  64 * 1024,
	Threads:    4,
	KeyLength:  32,
	SaltLength: 16,
}

// argon2Hasher implements service.PasswordHasher with Argon2id and a random salt.
type argon2Hasher struct {
	params Argon2Params
	rand   io.Reader
}

// NewArgon2Hasher builds the hasher from the hasher section of the config.
func NewArgon2Hasher(cfg *config.Config) service.PasswordHasher {
	params := DefaultArgon2Params
	if cfg != nil && cfg.Hasher != nil {
		params = Argon2Params{
			Time:       cfg.Hasher.Time,
			MemoryKiB:  cfg.Hasher.MemoryKiB,
			Threads:    cfg.Hasher.Threads,
			KeyLength:  cfg.Hasher.KeyLength,
			SaltLength: cfg.Hasher.SaltLength,
		}
	}

	return NewArgon2HasherWithParams(params, rand.Reader)
}

// NewArgon2HasherWithParams lets callers pick cost parameters and the salt source.
// A nil source means crypto/rand.
func NewArgon2HasherWithParams(params Argon2Params, source io.Reader) service.PasswordHasher {
	if source == nil {
		source = rand.Reader
	}

	return &argon2Hasher{params: params, rand: source}
}

// Hash draws a fresh salt and returns the encoded "<salt>.<hash>" record.
func (h *argon2Hasher) Hash(password string) (string, error) {
	salt := make([]byte, h.params.SaltLength)
	if _, err := io.ReadFull(h.rand, salt); err != nil {
		return "", errors.Wrap(err, "failed to generate salt")
	}

	record := entity.PasswordRecord{
		Salt: salt,
		Hash: h.derive(password, salt),
	}

	return record.Encode(), nil
}

// Check decodes the stored record and compares the re-derived hash in constant time.
func (h *argon2Hasher) Check(password, encoded string) (bool, error) {
	record, err := entity.ParsePasswordRecord(encoded)
	if err != nil {
		return false, err
	}

	// Derive at the stored length so records written before a keyLength change still verify.
	candidate := argon2.IDKey([]byte(password), record.Salt, h.params.Time, h.params.MemoryKiB, h.params.Threads, uint32(len(record.Hash)))

	return subtle.ConstantTimeCompare(candidate, record.Hash) == 1, nil
}

func (h *argon2Hasher) derive(password string, salt []byte) []byte {
	return argon2.IDKey([]byte(password), salt, h.params.Time, h.params.MemoryKiB, h.params.Threads, h.params.KeyLength)
}
