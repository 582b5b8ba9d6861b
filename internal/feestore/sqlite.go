package feestore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/civil"
	"github.com/mattn/go-sqlite3"
)

// SQLite implements Store on a SQLite database. The schema is created on
// open. Versions are append-only: a correction is a new version.
type SQLite struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLite opens (or creates) the database at dbPath.
// Use ":memory:" for an in-memory database.
func NewSQLite(dbPath string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One connection: SQLite has a single writer, and ":memory:" databases
	// are per-connection.
	db.SetMaxOpenConns(1)

	store := &SQLite{db: db, now: time.Now}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

func (s *SQLite) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS fee_schedules (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		effective_from TEXT NOT NULL UNIQUE,
		fees_json TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_fee_schedules_effective
		ON fee_schedules(effective_from);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// Put inserts a new version.
func (s *SQLite) Put(ctx context.Context, sched Schedule) (Schedule, error) {
	sched, err := prepare(sched, s.now())
	if err != nil {
		return Schedule{}, err
	}

	feesJSON, err := json.Marshal(sched.Fees)
	if err != nil {
		return Schedule{}, fmt.Errorf("failed to encode fees: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO fee_schedules (id, name, effective_from, fees_json, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		sched.ID, sched.Name, sched.EffectiveFrom.String(), string(feesJSON),
		sched.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return Schedule{}, ErrDuplicateEffectiveDate
		}
		return Schedule{}, fmt.Errorf("failed to insert fee schedule: %w", err)
	}
	return sched, nil
}

// EffectiveAt returns the version in force on date.
func (s *SQLite) EffectiveAt(ctx context.Context, date civil.Date) (Schedule, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, effective_from, fees_json, created_at
		FROM fee_schedules
		WHERE effective_from <= ?
		ORDER BY effective_from DESC
		LIMIT 1`, date.String())

	sched, err := scanSchedule(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Schedule{}, ErrNotFound
	}
	return sched, err
}

// List returns every version ordered by effective date.
func (s *SQLite) List(ctx context.Context) ([]Schedule, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, effective_from, fees_json, created_at
		FROM fee_schedules
		ORDER BY effective_from`)
	if err != nil {
		return nil, fmt.Errorf("failed to query fee schedules: %w", err)
	}
	defer rows.Close()

	var out []Schedule
	for rows.Next() {
		sched, err := scanSchedule(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sched)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSchedule(row scanner) (Schedule, error) {
	var (
		sched         Schedule
		effectiveFrom string
		feesJSON      string
		createdAt     string
	)
	if err := row.Scan(&sched.ID, &sched.Name, &effectiveFrom, &feesJSON, &createdAt); err != nil {
		return Schedule{}, err
	}

	var err error
	if sched.EffectiveFrom, err = civil.ParseDate(effectiveFrom); err != nil {
		return Schedule{}, fmt.Errorf("corrupt effective date %q: %w", effectiveFrom, err)
	}
	if err := json.Unmarshal([]byte(feesJSON), &sched.Fees); err != nil {
		return Schedule{}, fmt.Errorf("corrupt fees for schedule %s: %w", sched.ID, err)
	}
	if sched.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return Schedule{}, fmt.Errorf("corrupt created_at %q: %w", createdAt, err)
	}
	return sched, nil
}
