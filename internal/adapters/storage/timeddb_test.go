package storage

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"clubdash/internal/adapters/http/perf"
)

func openTimedTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db := openTestDB(t)
	if _, err := db.Exec("CREATE TABLE test (id TEXT PRIMARY KEY, val TEXT)"); err != nil {
		t.Fatalf("create table: %v", err)
	}
	return db
}

// TestTimedDB_RecordsLabels verifies each call is recorded under its label.
func TestTimedDB_RecordsLabels(t *testing.T) {
	db := openTimedTestDB(t)
	collector := perf.NewCollector(100)
	tdb := NewTimedDB(db, collector)
	ctx := context.Background()

	if _, err := tdb.ExecContext(ctx, "INSERT INTO test (id, val) VALUES (?, ?)", "1", "hello"); err != nil {
		t.Fatalf("ExecContext: %v", err)
	}
	var val string
	if err := tdb.QueryRowContext(ctx, "SELECT val FROM test WHERE id = ?", "1").Scan(&val); err != nil {
		t.Fatalf("QueryRowContext: %v", err)
	}
	if val != "hello" {
		t.Errorf("val = %q, want hello", val)
	}
	if collector.TotalRecorded() != 2 {
		t.Fatalf("TotalRecorded = %d, want 2", collector.TotalRecorded())
	}

	snap := collector.Snapshot(time.Time{}, 10)
	labels := map[string]bool{}
	for _, q := range snap.SlowestQueries {
		labels[q.Path] = true
	}
	if !labels["insert test"] || !labels["select test"] {
		t.Errorf("labels = %v, want insert test and select test", labels)
	}
}

// TestTimedDB_ErrorPassthrough verifies SQL errors are returned unchanged and still timed.
func TestTimedDB_ErrorPassthrough(t *testing.T) {
	db := openTimedTestDB(t)
	collector := perf.NewCollector(100)
	tdb := NewTimedDB(db, collector)

	if _, err := tdb.ExecContext(context.Background(), "INSERT INTO nonexistent_table VALUES (?)", 1); err == nil {
		t.Fatal("expected error from invalid SQL, got nil")
	}
	var val string
	err := tdb.QueryRowContext(context.Background(), "SELECT val FROM test WHERE id = ?", "missing").Scan(&val)
	if err != sql.ErrNoRows {
		t.Errorf("expected sql.ErrNoRows, got %v", err)
	}
	if collector.TotalRecorded() != 2 {
		t.Errorf("TotalRecorded = %d, want 2 (must record even on error)", collector.TotalRecorded())
	}
}

// TestTimedDB_CancelledContext verifies a cancelled context fails and is still timed.
func TestTimedDB_CancelledContext(t *testing.T) {
	db := openTimedTestDB(t)
	collector := perf.NewCollector(100)
	tdb := NewTimedDB(db, collector)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := tdb.ExecContext(ctx, "INSERT INTO test (id, val) VALUES (?, ?)", "1", "hello"); err == nil {
		t.Fatal("expected error from cancelled context, got nil")
	}
	if collector.TotalRecorded() != 1 {
		t.Errorf("TotalRecorded = %d, want 1", collector.TotalRecorded())
	}
}

// TestTimedDB_NilCollector verifies TimedDB works without a collector.
func TestTimedDB_NilCollector(t *testing.T) {
	db := openTimedTestDB(t)
	tdb := NewTimedDB(db, nil)

	if _, err := tdb.ExecContext(context.Background(), "INSERT INTO test (id, val) VALUES (?, ?)", "1", "hello"); err != nil {
		t.Fatalf("ExecContext with nil collector: %v", err)
	}
	if tdb.RawDB() != db {
		t.Error("RawDB() should return the original *sql.DB")
	}
}

// TestTimedDB_Concurrent verifies no races under concurrent use.
func TestTimedDB_Concurrent(t *testing.T) {
	db := openTimedTestDB(t)
	collector := perf.NewCollector(1000)
	tdb := NewTimedDB(db, collector)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				tdb.ExecContext(ctx, "INSERT OR REPLACE INTO test (id, val) VALUES (?, ?)", "w", "v")
				var v string
				tdb.QueryRowContext(ctx, "SELECT val FROM test WHERE id = ?", "w").Scan(&v)
			}
		}()
	}
	wg.Wait()
	if collector.TotalRecorded() != 8*20*2 {
		t.Errorf("TotalRecorded = %d, want %d", collector.TotalRecorded(), 8*20*2)
	}
}

// TestQueryLabel tests statement labelling.
func TestQueryLabel(t *testing.T) {
	tests := []struct {
		query string
		want  string
	}{
		{"SELECT id FROM booking WHERE class_id = ?", "select booking"},
		{"  select\n\tb.id from booking b", "select booking"},
		{"INSERT INTO outbox (id) VALUES (?)", "insert outbox"},
		{"INSERT OR REPLACE INTO member_profile (id) VALUES (?)", "insert member_profile"},
		{"UPDATE booking SET status = ?", "update booking"},
		{"DELETE FROM class_template WHERE id = ?", "delete class_template"},
		{"PRAGMA foreign_keys=ON", "pragma"},
		{"SELECT 1", "select"},
		{"", "empty"},
	}
	for _, tt := range tests {
		if got := queryLabel(tt.query); got != tt.want {
			t.Errorf("queryLabel(%q) = %q, want %q", tt.query, got, tt.want)
		}
	}
}

// BenchmarkTimedDB_Overhead measures the instrumentation overhead.
func BenchmarkTimedDB_Overhead(b *testing.B) {
	db, _ := sql.Open("sqlite", ":memory:")
	defer db.Close()
	db.SetMaxOpenConns(1)
	db.Exec("CREATE TABLE bench (id INTEGER PRIMARY KEY, val TEXT)")
	db.Exec("INSERT INTO bench VALUES (1, 'x')")
	ctx := context.Background()

	b.Run("RawDB", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			var v string
			db.QueryRowContext(ctx, "SELECT val FROM bench WHERE id = 1").Scan(&v)
		}
	})
	tdb := NewTimedDB(db, perf.NewCollector(perf.DefaultRingSize))
	b.Run("TimedDB", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			var v string
			tdb.QueryRowContext(ctx, "SELECT val FROM bench WHERE id = 1").Scan(&v)
		}
	})
}
