package repomanager

import (
	"database/sql"

	"github.com/dmitrijs2005/authkeeper/internal/server/migrations"
	"github.com/dmitrijs2005/authkeeper/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/authkeeper/internal/server/repositories/users"
)

// NewSQLiteRepositoryManager binds SQLite repositories to db.
func NewSQLiteRepositoryManager(db *sql.DB) RepositoryManager {
	return &sqlManager{
		db:       db,
		dir:      migrations.SQLiteDir,
		accounts: users.NewSQLiteRepository(db),
		tokens:   refreshtokens.NewSQLiteRepository(db),
	}
}
