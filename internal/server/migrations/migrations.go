// Package migrations embeds the goose migrations for every SQL backend and
// applies them. Each dialect lives in its own directory.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
)

//go:embed postgres/*.sql sqlite/*.sql
var Migrations embed.FS

// Directories inside Migrations.
const (
	PostgresDir = "postgres"
	SQLiteDir   = "sqlite"
)

var dialects = map[string]string{
	PostgresDir: "pgx",
	SQLiteDir:   "sqlite3",
}

// Up applies every pending migration from dir to db.
func Up(ctx context.Context, db *sql.DB, dir string) error {
	dialect, ok := dialects[dir]
	if !ok {
		return fmt.Errorf("no migrations for %q", dir)
	}
	goose.SetBaseFS(Migrations)
	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("goose dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db, dir); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}
	return nil
}
