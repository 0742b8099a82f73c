package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/dmitrijs2005/authkeeper/internal/dbx"
	"github.com/dmitrijs2005/authkeeper/internal/server/models"
)

// PostgresRepository registers accounts through the sp_user_register_account
// function installed by the migrations.
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Register(ctx context.Context, a *models.Account) (*models.RegistrationStatus, error) {
	query := `
		SELECT status, status_type
		FROM sp_user_register_account($1, $2, $3, $4, $5, $6, $7, $8)
	`
	st := &models.RegistrationStatus{}
	err := r.db.QueryRowContext(ctx, query,
		a.GivenName, a.MiddleName, a.LastName, a.ContactNumber,
		a.ContactEmail, a.Username, a.PasswordHash, a.ProfilePicture,
	).Scan(&st.Status, &st.StatusType)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return st, nil
}

func (r *PostgresRepository) FindByUsername(ctx context.Context, username string) (*models.Account, error) {
	query := `
		SELECT id, given_name, COALESCE(middle_name, ''), last_name, contact_number,
		       contact_email, username, password, profile_picture, date_created
		FROM users
		WHERE username = $1
	`
	a := &models.Account{}
	err := r.db.QueryRowContext(ctx, query, username).Scan(
		&a.ID, &a.GivenName, &a.MiddleName, &a.LastName, &a.ContactNumber,
		&a.ContactEmail, &a.Username, &a.PasswordHash, &a.ProfilePicture, &a.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return a, nil
}
