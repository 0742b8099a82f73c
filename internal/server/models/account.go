// Package models holds the server-side records shared by repositories and
// services.
package models

import "time"

// Account is a registered user. PasswordHash is a bcrypt hash, never the
// plaintext.
type Account struct {
	ID             string
	GivenName      string
	MiddleName     string
	LastName       string
	ContactNumber  string
	ContactEmail   string
	Username       string
	PasswordHash   string
	ProfilePicture string
	CreatedAt      time.Time
}

// Status types reported by the account registration procedure.
const (
	StatusTypeSuccess    = "success"
	StatusTypeBadRequest = "bad_request"
)

// Registration statuses.
const (
	StatusAccountRegistered     = "ACCOUNT_REGISTERED"
	StatusUsernameAlreadyExists = "USERNAME_ALREADY_EXISTS"
	StatusEmailAlreadyExists    = "CONTACT_EMAIL_ALREADY_EXISTS"
)

// RegistrationStatus is the two-field discriminator returned by account
// creation.
type RegistrationStatus struct {
	Status     string
	StatusType string
}
