// Package refreshtokens declares the token store contract and its PostgreSQL,
// SQLite and Redis implementations.
package refreshtokens

import (
	"context"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/server/models"
)

// Repository persists issued refresh tokens. Every method is atomic on its
// own; callers get no multi-call transactions.
type Repository interface {
	// FindByRefreshToken returns the record holding token, or
	// common.ErrorNotFound.
	FindByRefreshToken(ctx context.Context, token string) (*models.TokenRecord, error)

	// Insert stores a new record for userID.
	Insert(ctx context.Context, userID, accessToken, refreshToken string) (*models.TokenRecord, error)

	// UpdateRotation replaces oldRefresh with newRefresh (and the informational
	// access token) in place. It only matches a record that belongs to userID
	// and still holds exactly oldRefresh; otherwise it returns
	// common.ErrorNotFound, so a superseded token can never rotate again.
	UpdateRotation(ctx context.Context, userID, oldRefresh, newAccess, newRefresh string) error

	// DeleteAllForUser revokes every refresh token of userID and reports how
	// many were removed.
	DeleteAllForUser(ctx context.Context, userID string) (int64, error)

	// DeleteStale removes records not rotated since before. Stores that expire
	// records on their own return 0.
	DeleteStale(ctx context.Context, before time.Time) (int64, error)
}
