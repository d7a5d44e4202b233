package models

import (
	"time"

	"github.com/google/uuid"
)

// User represents an admin account of the franchise team.
// Visitors never have accounts; only admins sign in to read leads.
type User struct {
	// ID is the unique identifier for the user (UUID format).
	ID string

	// Email is the admin's email address (unique), used for login.
	Email string

	// DisplayName is shown in the admin views.
	DisplayName string

	// PasswordHash is the bcrypt hash of the password. Never serialized.
	PasswordHash string `json:"-"`

	// CreatedAt is the Unix timestamp when the account was created.
	CreatedAt int64

	// UpdatedAt is the Unix timestamp of the last change.
	UpdatedAt int64
}

// NewUser builds a user with a fresh ID and timestamps.
func NewUser(email, displayName, passwordHash string) *User {
	now := time.Now().Unix()
	return &User{
		ID:           uuid.New().String(),
		Email:        email,
		DisplayName:  displayName,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}
