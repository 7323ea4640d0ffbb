// Package storagetest opens migrated in-memory databases for store tests.
package storagetest

import (
	"database/sql"
	"testing"

	_ "modernc.org/sqlite"

	"clubdash/internal/adapters/storage"
)

// OpenDB returns a migrated in-memory database with foreign keys enabled.
// The pool is limited to one connection so every statement sees the same database.
func OpenDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:?_pragma=foreign_keys(ON)")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	if err := storage.MigrateDB(db); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

// InsertTemplate adds a minimal class template row so booking and attendance
// rows can satisfy their foreign key.
func InsertTemplate(t *testing.T, db *sql.DB, id string) {
	t.Helper()
	_, err := db.Exec(`INSERT INTO class_template (id, name, day_of_week, start_time, duration_minutes, capacity, level)
		VALUES (?, ?, 1, '18:00', 60, 2, 'all-levels')`, id, id)
	if err != nil {
		t.Fatalf("insert template %s: %v", id, err)
	}
}
