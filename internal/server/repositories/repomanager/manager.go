// Package repomanager opens the configured SQL backend, runs its migrations
// and vends the account and refresh-token repositories bound to it.
package repomanager

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"

	"github.com/dmitrijs2005/authkeeper/internal/dbx"
	"github.com/dmitrijs2005/authkeeper/internal/server/migrations"
	"github.com/dmitrijs2005/authkeeper/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/authkeeper/internal/server/repositories/users"
)

// Storage driver names accepted by Open.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type RepositoryManager interface {
	RunMigrations(ctx context.Context) error
	Accounts() users.Repository
	RefreshTokens() refreshtokens.Repository
	Close() error
}

// migrateUp is a seam for testing migrations.Up.
var migrateUp = migrations.Up

// Open connects to the backend named by driver.
func Open(ctx context.Context, driver, dsn string) (RepositoryManager, error) {
	switch driver {
	case DriverPostgres:
		db, err := dbx.OpenPostgres(ctx, dsn)
		if err != nil {
			return nil, err
		}
		return NewPostgresRepositoryManager(db), nil
	case DriverSQLite:
		db, err := dbx.OpenSQLite(ctx, dsn)
		if err != nil {
			return nil, err
		}
		return NewSQLiteRepositoryManager(db), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", driver)
	}
}

// WithTokenStore returns a manager whose RefreshTokens is store instead of the
// SQL table. closer, if not nil, is closed together with the base manager.
func WithTokenStore(base RepositoryManager, store refreshtokens.Repository, closer io.Closer) RepositoryManager {
	return &tokenOverride{RepositoryManager: base, tokens: store, closer: closer}
}

type tokenOverride struct {
	RepositoryManager
	tokens refreshtokens.Repository
	closer io.Closer
}

func (m *tokenOverride) RefreshTokens() refreshtokens.Repository {
	return m.tokens
}

func (m *tokenOverride) Close() error {
	err := m.RepositoryManager.Close()
	if m.closer != nil {
		err = errors.Join(err, m.closer.Close())
	}
	return err
}

type sqlManager struct {
	db       *sql.DB
	dir      string
	accounts users.Repository
	tokens   refreshtokens.Repository
}

func (m *sqlManager) RunMigrations(ctx context.Context) error {
	return migrateUp(ctx, m.db, m.dir)
}

func (m *sqlManager) Accounts() users.Repository {
	return m.accounts
}

func (m *sqlManager) RefreshTokens() refreshtokens.Repository {
	return m.tokens
}

func (m *sqlManager) Close() error {
	return m.db.Close()
}
