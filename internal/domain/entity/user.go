// Package entity contains the core business objects of the project,
// each representing a unique, identifiable concept within the domain.
package entity

import (
	"time"

	"github.com/google/uuid"
)

// User is an account known to the credential core.
// The email is the login identifier and is unique across all users.
type User struct {
	ID             uuid.UUID // Assigned by the credential store on creation.
	Email          string    // Unique login identifier, matched exactly.
	PasswordRecord string    // Encoded salt and derived hash, see PasswordRecord.
	CreatedAt      time.Time // Timestamp of when the account was created.
}
