// Package storagetest opens migrated SQLite databases for tests.
package storagetest

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/claude/liftlog/internal/storage"
)

// New returns a migrated, empty SQLite database in a temp dir. It is closed
// when the test ends.
func New(t *testing.T) *storage.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "liftlog.db")

	if err := storage.RunMigrations(storage.DriverSQLite, "sqlite://"+path); err != nil {
		t.Fatalf("running migrations: %v", err)
	}
	db, err := storage.New(context.Background(), storage.DriverSQLite,
		path+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		t.Fatalf("opening database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}
