package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// migration is one forward-only schema step.
type migration struct {
	version     int
	description string
	statements  []string
}

// migrations is the ordered schema history. Append only.
var migrations = []migration{
	{
		version:     1,
		description: "class catalog, bookings and attendance",
		statements: []string{
			`CREATE TABLE IF NOT EXISTS class_template (
				id TEXT PRIMARY KEY,
				name TEXT NOT NULL,
				description TEXT NOT NULL DEFAULT '',
				day_of_week INTEGER NOT NULL,
				start_time TEXT NOT NULL,
				duration_minutes INTEGER NOT NULL,
				capacity INTEGER NOT NULL,
				level TEXT NOT NULL,
				type TEXT NOT NULL DEFAULT '',
				coach TEXT NOT NULL DEFAULT '',
				location TEXT NOT NULL DEFAULT '',
				color TEXT NOT NULL DEFAULT '',
				recurring INTEGER NOT NULL DEFAULT 1,
				anchor_date TEXT NOT NULL DEFAULT '',
				required_equipment TEXT NOT NULL DEFAULT '[]',
				difficulty INTEGER NOT NULL DEFAULT 1
			)`,
			`CREATE INDEX IF NOT EXISTS idx_class_template_day ON class_template(day_of_week)`,
			`CREATE TABLE IF NOT EXISTS booking (
				id TEXT PRIMARY KEY,
				class_id TEXT NOT NULL,
				class_date TEXT NOT NULL,
				user_id TEXT NOT NULL,
				status TEXT NOT NULL,
				requested_at TEXT NOT NULL,
				updated_at TEXT NOT NULL,
				UNIQUE (class_id, class_date, user_id),
				FOREIGN KEY (class_id) REFERENCES class_template(id) ON DELETE CASCADE
			)`,
			`CREATE INDEX IF NOT EXISTS idx_booking_date ON booking(class_date)`,
			`CREATE INDEX IF NOT EXISTS idx_booking_user ON booking(user_id, class_date)`,
			`CREATE TABLE IF NOT EXISTS attendance_record (
				id TEXT PRIMARY KEY,
				class_id TEXT NOT NULL,
				class_date TEXT NOT NULL,
				user_id TEXT NOT NULL,
				status TEXT NOT NULL,
				marked_at TEXT NOT NULL,
				UNIQUE (class_id, class_date, user_id),
				FOREIGN KEY (class_id) REFERENCES class_template(id) ON DELETE CASCADE
			)`,
			`CREATE INDEX IF NOT EXISTS idx_attendance_date ON attendance_record(class_date)`,
		},
	},
	{
		version:     2,
		description: "member profiles and leaderboard snapshots",
		statements: []string{
			`CREATE TABLE IF NOT EXISTS member_profile (
				id TEXT PRIMARY KEY,
				name TEXT NOT NULL,
				email TEXT NOT NULL DEFAULT '',
				belt TEXT NOT NULL,
				status TEXT NOT NULL,
				training_focus TEXT NOT NULL DEFAULT '[]',
				availability_days TEXT NOT NULL DEFAULT '[]',
				sessions_this_month INTEGER NOT NULL DEFAULT 0,
				streak INTEGER NOT NULL DEFAULT 0,
				improvement INTEGER NOT NULL DEFAULT 0,
				competition_wins INTEGER NOT NULL DEFAULT 0
			)`,
			`CREATE TABLE IF NOT EXISTS leaderboard_snapshot (
				id TEXT PRIMARY KEY,
				metric TEXT NOT NULL,
				taken_at TEXT NOT NULL
			)`,
			`CREATE TABLE IF NOT EXISTS leaderboard_rank (
				snapshot_id TEXT NOT NULL,
				member_id TEXT NOT NULL,
				rank INTEGER NOT NULL,
				PRIMARY KEY (snapshot_id, member_id),
				FOREIGN KEY (snapshot_id) REFERENCES leaderboard_snapshot(id) ON DELETE CASCADE
			)`,
			`CREATE INDEX IF NOT EXISTS idx_leaderboard_snapshot_metric ON leaderboard_snapshot(metric, taken_at)`,
		},
	},
	{
		version:     3,
		description: "outbox for booking side effects",
		statements: []string{
			`CREATE TABLE IF NOT EXISTS outbox (
				id TEXT PRIMARY KEY,
				kind TEXT NOT NULL,
				payload TEXT NOT NULL,
				status TEXT NOT NULL,
				attempts INTEGER NOT NULL DEFAULT 0,
				max_attempts INTEGER NOT NULL DEFAULT 5,
				next_attempt TEXT NOT NULL,
				created_at TEXT NOT NULL,
				last_error TEXT NOT NULL DEFAULT ''
			)`,
			`CREATE INDEX IF NOT EXISTS idx_outbox_due ON outbox(status, next_attempt)`,
		},
	},
}

// LatestSchemaVersion returns the version the migration chain ends at.
func LatestSchemaVersion() int {
	return migrations[len(migrations)-1].version
}

// SchemaVersion returns the applied schema version, 0 for a fresh database.
// PRE: db is a valid database connection
// POST: returns the highest recorded version
func SchemaVersion(db *sql.DB) (int, error) {
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS schema_version (version INTEGER NOT NULL, applied_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP)`); err != nil {
		return 0, fmt.Errorf("create schema_version: %w", err)
	}
	var v sql.NullInt64
	if err := db.QueryRow(`SELECT MAX(version) FROM schema_version`).Scan(&v); err != nil {
		return 0, fmt.Errorf("read schema_version: %w", err)
	}
	return int(v.Int64), nil
}

// MigrateDB applies every pending migration, each in its own transaction.
// PRE: db is a valid database connection
// POST: schema is at LatestSchemaVersion; running it again is a no-op
func MigrateDB(db *sql.DB) error {
	current, err := SchemaVersion(db)
	if err != nil {
		return err
	}
	for _, m := range migrations {
		if m.version <= current {
			continue
		}
		if err := applyMigration(db, m); err != nil {
			return fmt.Errorf("migration %d (%s): %w", m.version, m.description, err)
		}
		slog.Info("schema_migrated", "version", m.version, "description", m.description)
	}
	return nil
}

func applyMigration(db *sql.DB, m migration) error {
	tx, err := db.BeginTx(context.Background(), nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	for _, stmt := range m.statements {
		if _, err := tx.Exec(stmt); err != nil {
			return err
		}
	}
	if _, err := tx.Exec(`INSERT INTO schema_version (version) VALUES (?)`, m.version); err != nil {
		return err
	}
	return tx.Commit()
}

// Open opens the SQLite database at path with WAL, a busy timeout and foreign
// keys enabled on every pooled connection, then migrates it.
// PRE: the sqlite driver is registered by the caller
// POST: returns a migrated, reachable database
func Open(path string) (*sql.DB, error) {
	dsn := path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("database unreachable: %w", err)
	}
	if err := MigrateDB(db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}
