// Package service defines interfaces for core, stateless domain logic.
// These services encapsulate business rules that don't naturally fit within a single entity.
package service

// PasswordHasher defines the interface for password hashing and verification.
// This abstracts the underlying key-derivation function, keeping the domain pure.
type PasswordHasher interface {
	// Hash generates a fresh salt and returns the encoded password record
	// ("<hex salt>.<hex hash>") for the plaintext password.
	Hash(password string) (string, error)

	// Check re-derives the hash from password and the record's salt and compares it
	// in constant time. A record that cannot be decoded is reported as an error.
	Check(password, record string) (bool, error)
}
