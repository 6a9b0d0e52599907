// Package audit keeps a SQLite log of every file operation the server ran.
package audit

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/pressly/goose/v3"

	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/EdibleTuber/void-mcp-server/internal/fsops"
	"github.com/EdibleTuber/void-mcp-server/internal/logging"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// OutcomeOK marks a successful operation.
const OutcomeOK = "ok"

// Entry is one audited operation.
type Entry struct {
	ID        string
	Time      time.Time
	Operation string
	Path      string
	Target    string
	// Outcome is OutcomeOK or the failure kind.
	Outcome  string
	Message  string
	Duration time.Duration
}

// Store persists entries. It satisfies fsops.Recorder.
type Store struct {
	db *sql.DB
}

// Open creates or opens the database at path and migrates it.
func Open(ctx context.Context, path string) (*Store, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite handles one writer at a time; serialise through a single connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if err := migrate(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	logging.Debugf("audit database initialized at %s", path)
	return &Store{db: db}, nil
}

func migrate(ctx context.Context, db *sql.DB) error {
	fsys, err := fs.Sub(migrationFiles, "migrations")
	if err != nil {
		return err
	}
	provider, err := goose.NewProvider(goose.DialectSQLite3, db, fsys)
	if err != nil {
		return err
	}
	_, err = provider.Up(ctx)
	return err
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Add inserts an entry, filling in ID and Time when they are empty.
func (s *Store) Add(ctx context.Context, e Entry) (Entry, error) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Time.IsZero() {
		e.Time = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO audit_log (id, created_at, operation, path, target, outcome, message, duration_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Time.UnixMilli(), e.Operation, e.Path, e.Target, e.Outcome, e.Message, e.Duration.Milliseconds(),
	)
	if err != nil {
		return e, fmt.Errorf("insert audit entry: %w", err)
	}
	return e, nil
}

// Recent returns up to limit entries, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, created_at, operation, path, target, outcome, message, duration_ms
		 FROM audit_log ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query audit log: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e        Entry
			millis   int64
			duration int64
		)
		if err := rows.Scan(&e.ID, &millis, &e.Operation, &e.Path, &e.Target, &e.Outcome, &e.Message, &duration); err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		e.Time = time.UnixMilli(millis)
		e.Duration = time.Duration(duration) * time.Millisecond
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Record stores an engine event. Failures are logged, never returned, so a
// broken audit database cannot fail a file operation.
func (s *Store) Record(ctx context.Context, ev fsops.Event) {
	e := Entry{
		Operation: string(ev.Op),
		Path:      ev.Path,
		Target:    ev.Target,
		Outcome:   OutcomeOK,
		Duration:  ev.Duration,
	}
	if ev.Err != nil {
		e.Outcome = fsops.KindOf(ev.Err).String()
		e.Message = ev.Err.Error()
	}
	if _, err := s.Add(context.WithoutCancel(ctx), e); err != nil {
		logging.Warnf("audit: %v", err)
	}
}
