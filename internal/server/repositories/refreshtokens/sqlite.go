package refreshtokens

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/dmitrijs2005/authkeeper/internal/dbx"
	"github.com/dmitrijs2005/authkeeper/internal/server/models"
)

// SQLiteRepository implements Repository on SQLite. Timestamps are stored as
// unix milliseconds.
type SQLiteRepository struct {
	db  dbx.DBTX
	now func() time.Time
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db, now: time.Now}
}

func (r *SQLiteRepository) FindByRefreshToken(ctx context.Context, token string) (*models.TokenRecord, error) {
	query := `
		SELECT id, user_id, access_token, refresh_token, date_created, date_modified
		FROM user_tokens
		WHERE refresh_token = ?
	`
	var (
		rec                 models.TokenRecord
		id                  int64
		created, modifiedAt int64
	)
	err := r.db.QueryRowContext(ctx, query, token).
		Scan(&id, &rec.UserID, &rec.AccessToken, &rec.RefreshToken, &created, &modifiedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	rec.ID = strconv.FormatInt(id, 10)
	rec.IssuedAt = time.UnixMilli(created).UTC()
	rec.ModifiedAt = time.UnixMilli(modifiedAt).UTC()
	return &rec, nil
}

func (r *SQLiteRepository) Insert(ctx context.Context, userID, accessToken, refreshToken string) (*models.TokenRecord, error) {
	query := `
		INSERT INTO user_tokens (user_id, access_token, refresh_token, date_created, date_modified)
		VALUES (?, ?, ?, ?, ?)
	`
	now := r.now().UTC().Truncate(time.Millisecond)
	res, err := r.db.ExecContext(ctx, query, userID, accessToken, refreshToken, now.UnixMilli(), now.UnixMilli())
	if err != nil {
		return nil, fmt.Errorf("error performing sql request: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return &models.TokenRecord{
		ID:           strconv.FormatInt(id, 10),
		UserID:       userID,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		IssuedAt:     now,
		ModifiedAt:   now,
	}, nil
}

func (r *SQLiteRepository) UpdateRotation(ctx context.Context, userID, oldRefresh, newAccess, newRefresh string) error {
	query := `
		UPDATE user_tokens
		SET access_token = ?, refresh_token = ?, date_modified = ?
		WHERE user_id = ? AND refresh_token = ?
	`
	n, err := dbx.ExecAffected(ctx, r.db, query, newAccess, newRefresh, r.now().UnixMilli(), userID, oldRefresh)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *SQLiteRepository) DeleteAllForUser(ctx context.Context, userID string) (int64, error) {
	n, err := dbx.ExecAffected(ctx, r.db, `DELETE FROM user_tokens WHERE user_id = ?`, userID)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

func (r *SQLiteRepository) DeleteStale(ctx context.Context, before time.Time) (int64, error) {
	n, err := dbx.ExecAffected(ctx, r.db, `DELETE FROM user_tokens WHERE date_modified < ?`, before.UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}
