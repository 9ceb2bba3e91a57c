package database_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hemolink/internal/platform/database"
)

func testMigrations() fstest.MapFS {
	return fstest.MapFS{
		"0001_widgets.sql": {Data: []byte(
			`CREATE TABLE widgets (id INTEGER PRIMARY KEY, name TEXT NOT NULL);`)},
		"0002_seed.sql": {Data: []byte(
			`INSERT INTO widgets (name) VALUES ('one');`)},
		"README.md": {Data: []byte(`not a migration`)},
	}
}

func openTestDB(t *testing.T) *database.DB {
	t.Helper()

	cfg := database.DefaultConfig()
	cfg.Path = filepath.Join(t.TempDir(), "test.db")

	db, err := database.New(cfg)
	require.NoError(t, err)
	require.NotNil(t, db)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestNewEmptyPathReturnsNil(t *testing.T) {
	db, err := database.New(database.Config{})
	require.NoError(t, err)
	assert.Nil(t, db)
}

func TestNewCreatesParentDirectory(t *testing.T) {
	cfg := database.DefaultConfig()
	cfg.Path = filepath.Join(t.TempDir(), "nested", "dir", "test.db")

	db, err := database.New(cfg)
	require.NoError(t, err)
	defer db.Close()

	assert.NoError(t, db.Health(context.Background()))
}

func TestHealthNilDB(t *testing.T) {
	var db *database.DB
	assert.Error(t, db.Health(context.Background()))
}

func TestMigrateAppliesInOrder(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.Migrate(ctx, testMigrations()))

	var count int
	require.NoError(t, db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM widgets`).Scan(&count))
	assert.Equal(t, 1, count)

	var applied int
	require.NoError(t, db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM schema_migrations`).Scan(&applied))
	assert.Equal(t, 2, applied, "non-sql files must be skipped")
}

func TestMigrateIsIdempotent(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.Migrate(ctx, testMigrations()))
	require.NoError(t, db.Migrate(ctx, testMigrations()))

	// The seed insert ran once, not twice.
	var count int
	require.NoError(t, db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM widgets`).Scan(&count))
	assert.Equal(t, 1, count)
}

func TestMigrateRollsBackFailedMigration(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	broken := fstest.MapFS{
		"0001_ok.sql": {Data: []byte(
			`CREATE TABLE widgets (id INTEGER PRIMARY KEY, name TEXT NOT NULL);`)},
		"0002_bad.sql": {Data: []byte(
			`INSERT INTO widgets (name) VALUES ('one'); INSERT INTO no_such_table VALUES (1);`)},
	}

	err := db.Migrate(ctx, broken)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "0002_bad.sql")

	// The failed file left no partial writes and stays pending.
	var count int
	require.NoError(t, db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM widgets`).Scan(&count))
	assert.Zero(t, count)

	var applied int
	require.NoError(t, db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM schema_migrations`).Scan(&applied))
	assert.Equal(t, 1, applied)
}

func TestTransactionRollsBackOnError(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.Migrate(ctx, testMigrations()))

	err := db.Transaction(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `INSERT INTO widgets (name) VALUES ('two')`); err != nil {
			return err
		}
		return assert.AnError
	})
	require.ErrorIs(t, err, assert.AnError)

	var count int
	require.NoError(t, db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM widgets`).Scan(&count))
	assert.Equal(t, 1, count)
}
