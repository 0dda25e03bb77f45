package entity

import (
	"encoding/hex"
	"strings"

	"credcore/internal/errors"
)

// PasswordRecordSeparator joins the salt and hash in the encoded form.
// It never appears in hex output.
const PasswordRecordSeparator = "."

// ErrPasswordRecordMalformed is returned when a stored record cannot be decoded.
var ErrPasswordRecordMalformed = errors.New("password record is malformed")

// PasswordRecord is the (salt, hash) pair stored in place of a plaintext password.
type PasswordRecord struct {
	Salt []byte
	Hash []byte
}

// Encode serializes the record as "<hex salt>.<hex hash>".
func (r PasswordRecord) Encode() string {
	return hex.EncodeToString(r.Salt) + PasswordRecordSeparator + hex.EncodeToString(r.Hash)
}

// ParsePasswordRecord decodes a record produced by Encode.
// Both halves must be present, non-empty and valid hex.
func ParsePasswordRecord(encoded string) (PasswordRecord, error) {
	saltHex, hashHex, ok := strings.Cut(encoded, PasswordRecordSeparator)
	if !ok || saltHex == "" || hashHex == "" {
		return PasswordRecord{}, errors.WithStack(ErrPasswordRecordMalformed)
	}

	salt, err := hex.DecodeString(saltHex)
	if err != nil {
		return PasswordRecord{}, errors.Wrap(ErrPasswordRecordMalformed, "salt is not hex")
	}

	hash, err := hex.DecodeString(hashHex)
	if err != nil {
		return PasswordRecord{}, errors.Wrap(ErrPasswordRecordMalformed, "hash is not hex")
	}

	return PasswordRecord{Salt: salt, Hash: hash}, nil
}
