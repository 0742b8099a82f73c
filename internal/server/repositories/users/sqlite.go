package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/dmitrijs2005/authkeeper/internal/dbx"
	"github.com/dmitrijs2005/authkeeper/internal/server/models"
	"github.com/google/uuid"
)

// SQLiteRepository applies the same registration rules as the PostgreSQL
// function, inside one transaction.
type SQLiteRepository struct {
	db  *sql.DB
	now func() time.Time
}

func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db, now: time.Now}
}

func (r *SQLiteRepository) Register(ctx context.Context, a *models.Account) (*models.RegistrationStatus, error) {
	var st *models.RegistrationStatus

	err := dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		var n int
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(1) FROM users WHERE username = ?`, a.Username).Scan(&n); err != nil {
			return err
		}
		if n > 0 {
			st = &models.RegistrationStatus{Status: models.StatusUsernameAlreadyExists, StatusType: models.StatusTypeBadRequest}
			return nil
		}

		if err := tx.QueryRowContext(ctx, `SELECT COUNT(1) FROM users WHERE lower(contact_email) = lower(?)`, a.ContactEmail).Scan(&n); err != nil {
			return err
		}
		if n > 0 {
			st = &models.RegistrationStatus{Status: models.StatusEmailAlreadyExists, StatusType: models.StatusTypeBadRequest}
			return nil
		}

		query := `
			INSERT INTO users (id, given_name, middle_name, last_name, contact_number,
			                   contact_email, username, password, profile_picture, date_created)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`
		id := uuid.NewString()
		middle := sql.NullString{String: a.MiddleName, Valid: a.MiddleName != ""}
		if _, err := tx.ExecContext(ctx, query,
			id, a.GivenName, middle, a.LastName, a.ContactNumber,
			a.ContactEmail, a.Username, a.PasswordHash, a.ProfilePicture, r.now().UnixMilli(),
		); err != nil {
			return err
		}

		st = &models.RegistrationStatus{Status: models.StatusAccountRegistered, StatusType: models.StatusTypeSuccess}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return st, nil
}

func (r *SQLiteRepository) FindByUsername(ctx context.Context, username string) (*models.Account, error) {
	query := `
		SELECT id, given_name, COALESCE(middle_name, ''), last_name, contact_number,
		       contact_email, username, password, profile_picture, date_created
		FROM users
		WHERE username = ?
	`
	a := &models.Account{}
	var created int64
	err := r.db.QueryRowContext(ctx, query, username).Scan(
		&a.ID, &a.GivenName, &a.MiddleName, &a.LastName, &a.ContactNumber,
		&a.ContactEmail, &a.Username, &a.PasswordHash, &a.ProfilePicture, &created,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	a.CreatedAt = time.UnixMilli(created).UTC()
	return a, nil
}
