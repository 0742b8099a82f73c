package repomanager

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/dmitrijs2005/authkeeper/internal/server/migrations"
	"github.com/dmitrijs2005/authkeeper/internal/server/models"
	"github.com/dmitrijs2005/authkeeper/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/authkeeper/internal/server/repositories/users"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return db, mock
}

func TestPostgresManager_Factories(t *testing.T) {
	db, _ := newDB(t)
	defer db.Close()

	m := NewPostgresRepositoryManager(db)

	_, ok := m.Accounts().(*users.PostgresRepository)
	assert.True(t, ok, "Accounts() should be PostgreSQL-backed")
	_, ok = m.RefreshTokens().(*refreshtokens.PostgresRepository)
	assert.True(t, ok, "RefreshTokens() should be PostgreSQL-backed")
}

func TestRunMigrations_UsesDialectDir(t *testing.T) {
	db, _ := newDB(t)
	defer db.Close()

	var gotDir string
	orig := migrateUp
	migrateUp = func(ctx context.Context, _ *sql.DB, dir string) error {
		gotDir = dir
		return nil
	}
	defer func() { migrateUp = orig }()

	require.NoError(t, NewPostgresRepositoryManager(db).RunMigrations(context.Background()))
	assert.Equal(t, migrations.PostgresDir, gotDir)

	require.NoError(t, NewSQLiteRepositoryManager(db).RunMigrations(context.Background()))
	assert.Equal(t, migrations.SQLiteDir, gotDir)
}

func TestRunMigrations_Error(t *testing.T) {
	db, _ := newDB(t)
	defer db.Close()

	orig := migrateUp
	migrateUp = func(context.Context, *sql.DB, string) error { return errors.New("boom") }
	defer func() { migrateUp = orig }()

	err := NewPostgresRepositoryManager(db).RunMigrations(context.Background())
	if err == nil || err.Error() != "boom" {
		t.Fatalf("expected boom, got %v", err)
	}
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), "mysql", "whatever")
	assert.ErrorContains(t, err, `unknown storage driver "mysql"`)
}

func TestOpen_SQLite_EndToEnd(t *testing.T) {
	ctx := context.Background()

	m, err := Open(ctx, DriverSQLite, "file:repomanager_e2e?mode=memory&cache=shared")
	require.NoError(t, err)
	defer m.Close()

	require.NoError(t, m.RunMigrations(ctx))

	st, err := m.Accounts().Register(ctx, &models.Account{
		GivenName:      "Alice",
		LastName:       "Liddell",
		ContactNumber:  "09123456789",
		ContactEmail:   "alice@example.com",
		Username:       "alice_1234",
		PasswordHash:   "hash",
		ProfilePicture: "pic",
	})
	require.NoError(t, err)
	require.Equal(t, models.StatusTypeSuccess, st.StatusType)

	acc, err := m.Accounts().FindByUsername(ctx, "alice_1234")
	require.NoError(t, err)

	_, err = m.RefreshTokens().Insert(ctx, acc.ID, "acc", "ref")
	require.NoError(t, err)

	rec, err := m.RefreshTokens().FindByRefreshToken(ctx, "ref")
	require.NoError(t, err)
	assert.Equal(t, acc.ID, rec.UserID)
}

func TestWithTokenStore_OverridesAndClosesBoth(t *testing.T) {
	db, mock := newDB(t)
	mock.ExpectClose()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := refreshtokens.NewRedisRepository(client, refreshtokens.DefaultRedisPrefix, time.Hour)

	m := WithTokenStore(NewPostgresRepositoryManager(db), store, client)

	assert.Same(t, store, m.RefreshTokens())
	_, ok := m.Accounts().(*users.PostgresRepository)
	assert.True(t, ok)

	require.NoError(t, m.Close())
	require.NoError(t, mock.ExpectationsWereMet())
	assert.Error(t, client.Ping(context.Background()).Err(), "client should be closed")
}
