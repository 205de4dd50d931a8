package testutil

import (
	"database/sql"
	"io/fs"
	"sort"
	"testing"

	_ "modernc.org/sqlite"

	"github.com/welth-app/welth/migrations"
)

// NewTestDB creates an in-memory SQLite database with the embedded schema
// applied. The database is closed when the test ends.
func NewTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	// every connection to :memory: is a separate database
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	if _, err := db.Exec("PRAGMA foreign_keys=ON;"); err != nil {
		t.Fatalf("Failed to enable foreign keys: %v", err)
	}

	names, err := fs.Glob(migrations.Files, "*.sql")
	if err != nil {
		t.Fatalf("Failed to list migrations: %v", err)
	}
	sort.Strings(names)
	for _, name := range names {
		content, err := fs.ReadFile(migrations.Files, name)
		if err != nil {
			t.Fatalf("Failed to read migration %s: %v", name, err)
		}
		if _, err := db.Exec(string(content)); err != nil {
			t.Fatalf("Failed to apply migration %s: %v", name, err)
		}
	}

	return db
}

// InsertUser adds a bare user row so foreign keys are satisfied
func InsertUser(t *testing.T, db *sql.DB, id, username string) {
	t.Helper()
	_, err := db.Exec(
		`INSERT INTO users (id, username, email, password_hash, created_at, updated_at) VALUES ($1, $2, $3, 'x', 0, 0)`,
		id, username, username+"@welth.app",
	)
	if err != nil {
		t.Fatalf("Failed to insert user %s: %v", id, err)
	}
}
