// Package users is the account store. Registration is decided by the store
// itself (duplicate username or e-mail) and reported through a
// models.RegistrationStatus.
package users

import (
	"context"

	"github.com/dmitrijs2005/authkeeper/internal/server/models"
)

type Repository interface {
	// Register creates the account unless a domain rule rejects it. A rejection
	// is not an error: it comes back as a status with StatusTypeBadRequest.
	Register(ctx context.Context, account *models.Account) (*models.RegistrationStatus, error)

	// FindByUsername returns the account or common.ErrorNotFound.
	FindByUsername(ctx context.Context, username string) (*models.Account, error)
}
