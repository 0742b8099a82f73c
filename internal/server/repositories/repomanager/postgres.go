package repomanager

import (
	"database/sql"

	"github.com/dmitrijs2005/authkeeper/internal/server/migrations"
	"github.com/dmitrijs2005/authkeeper/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/authkeeper/internal/server/repositories/users"
)

// NewPostgresRepositoryManager binds PostgreSQL repositories to db.
func NewPostgresRepositoryManager(db *sql.DB) RepositoryManager {
	return &sqlManager{
		db:       db,
		dir:      migrations.PostgresDir,
		accounts: users.NewPostgresRepository(db),
		tokens:   refreshtokens.NewPostgresRepository(db),
	}
}
