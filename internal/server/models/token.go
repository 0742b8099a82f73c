package models

import "time"

// TokenRecord is a persisted refresh token. AccessToken is the last access
// token issued alongside it and is informational only.
type TokenRecord struct {
	ID           string
	UserID       string
	AccessToken  string
	RefreshToken string
	IssuedAt     time.Time
	ModifiedAt   time.Time
}
