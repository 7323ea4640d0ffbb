package storage

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"clubdash/internal/adapters/http/perf"
)

// SQLDB is the database interface used by all stores.
// Both *sql.DB and *TimedDB satisfy this interface.
type SQLDB interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

var _ SQLDB = (*sql.DB)(nil)

// DefaultSlowQueryMs is the default threshold for slow query warnings.
const DefaultSlowQueryMs = 50

var slowQueryThreshold = sync.OnceValue(func() float64 {
	ms := DefaultSlowQueryMs
	if v := os.Getenv("CLUB_SLOW_QUERY_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			ms = n
		}
	}
	return float64(ms)
})

// TimedDB wraps a *sql.DB to log slow queries and record them to a collector
// under a "verb table" label such as "select booking".
type TimedDB struct {
	db        *sql.DB
	collector *perf.Collector
	threshold float64
}

var _ SQLDB = (*TimedDB)(nil)

// NewTimedDB wraps a *sql.DB with timing instrumentation.
// PRE: db is a valid database connection; collector may be nil
// POST: Returns a TimedDB that logs slow queries and records to collector
func NewTimedDB(db *sql.DB, collector *perf.Collector) *TimedDB {
	return &TimedDB{
		db:        db,
		collector: collector,
		threshold: slowQueryThreshold(),
	}
}

// RawDB returns the underlying *sql.DB.
func (t *TimedDB) RawDB() *sql.DB {
	return t.db
}

func (t *TimedDB) observe(label string, start time.Time, err error) {
	durationMs := float64(time.Since(start).Microseconds()) / 1000.0

	if durationMs >= t.threshold {
		slog.Warn("slow_query", "query", label, "duration_ms", durationMs, "error", err)
	} else {
		slog.Debug("query", "query", label, "duration_ms", durationMs)
	}

	if t.collector != nil {
		t.collector.Record(perf.Entry{
			Kind:       perf.KindQuery,
			Path:       label,
			DurationMs: durationMs,
			Timestamp:  start,
		})
	}
}

// ExecContext wraps sql.DB.ExecContext with timing.
func (t *TimedDB) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	start := time.Now()
	result, err := t.db.ExecContext(ctx, query, args...)
	t.observe(queryLabel(query), start, err)
	return result, err
}

// QueryContext wraps sql.DB.QueryContext with timing.
func (t *TimedDB) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	start := time.Now()
	rows, err := t.db.QueryContext(ctx, query, args...)
	t.observe(queryLabel(query), start, err)
	return rows, err
}

// QueryRowContext wraps sql.DB.QueryRowContext with timing.
func (t *TimedDB) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	start := time.Now()
	row := t.db.QueryRowContext(ctx, query, args...)
	t.observe(queryLabel(query), start, row.Err())
	return row
}

// BeginTx wraps sql.DB.BeginTx with timing.
func (t *TimedDB) BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error) {
	start := time.Now()
	tx, err := t.db.BeginTx(ctx, opts)
	t.observe("begin", start, err)
	return tx, err
}

// Close closes the underlying database connection.
func (t *TimedDB) Close() error {
	return t.db.Close()
}

// PingContext verifies the database connection.
func (t *TimedDB) PingContext(ctx context.Context) error {
	return t.db.PingContext(ctx)
}

// queryLabel reduces a statement to its verb and first table,
// e.g. "select booking" or "insert outbox".
func queryLabel(query string) string {
	fields := strings.Fields(strings.ToLower(query))
	if len(fields) == 0 {
		return "empty"
	}
	verb := fields[0]
	marker := ""
	switch verb {
	case "select", "delete":
		marker = "from"
	case "insert", "replace":
		marker = "into"
	case "update":
		if len(fields) > 1 {
			return verb + " " + trimIdent(fields[1])
		}
		return verb
	default:
		return verb
	}
	for i := 1; i < len(fields)-1; i++ {
		if fields[i] == marker {
			return verb + " " + trimIdent(fields[i+1])
		}
	}
	return verb
}

func trimIdent(s string) string {
	return strings.Trim(s, "`\"'(),;")
}
