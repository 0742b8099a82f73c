package refreshtokens

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/dmitrijs2005/authkeeper/internal/dbx"
	"github.com/dmitrijs2005/authkeeper/internal/server/models"
)

// PostgresRepository implements Repository over dbx.DBTX (satisfied by
// *sql.DB or *sql.Tx) against the user_tokens table.
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) FindByRefreshToken(ctx context.Context, token string) (*models.TokenRecord, error) {
	query := `
		SELECT id, user_id, access_token, refresh_token, date_created, date_modified
		FROM user_tokens
		WHERE refresh_token = $1
	`
	rec := &models.TokenRecord{}
	err := r.db.QueryRowContext(ctx, query, token).
		Scan(&rec.ID, &rec.UserID, &rec.AccessToken, &rec.RefreshToken, &rec.IssuedAt, &rec.ModifiedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return rec, nil
}

func (r *PostgresRepository) Insert(ctx context.Context, userID, accessToken, refreshToken string) (*models.TokenRecord, error) {
	query := `
		INSERT INTO user_tokens (user_id, access_token, refresh_token)
		VALUES ($1, $2, $3)
		RETURNING id, date_created, date_modified
	`
	rec := &models.TokenRecord{UserID: userID, AccessToken: accessToken, RefreshToken: refreshToken}
	err := r.db.QueryRowContext(ctx, query, userID, accessToken, refreshToken).
		Scan(&rec.ID, &rec.IssuedAt, &rec.ModifiedAt)
	if err != nil {
		return nil, fmt.Errorf("error performing sql request: %w", err)
	}
	return rec, nil
}

func (r *PostgresRepository) UpdateRotation(ctx context.Context, userID, oldRefresh, newAccess, newRefresh string) error {
	query := `
		UPDATE user_tokens
		SET access_token = $1, refresh_token = $2, date_modified = NOW()
		WHERE user_id = $3 AND refresh_token = $4
	`
	n, err := dbx.ExecAffected(ctx, r.db, query, newAccess, newRefresh, userID, oldRefresh)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) DeleteAllForUser(ctx context.Context, userID string) (int64, error) {
	query := `
		DELETE FROM user_tokens
		WHERE user_id = $1
	`
	n, err := dbx.ExecAffected(ctx, r.db, query, userID)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

func (r *PostgresRepository) DeleteStale(ctx context.Context, before time.Time) (int64, error) {
	query := `
		DELETE FROM user_tokens
		WHERE date_modified < $1
	`
	n, err := dbx.ExecAffected(ctx, r.db, query, before)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}
