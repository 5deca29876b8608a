package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/MBUFFMIRE/AICamera/internal/store"
)

// DB implements store.Store on SQLite (modernc.org/sqlite, CGO-free).
// Path is a filesystem path; use ":memory:" for an in-memory database.
type DB struct {
	db *sql.DB
}

func New(path string) (*DB, error) {
	p := strings.TrimSpace(path)
	if p == "" {
		return nil, errors.New("empty sqlite path")
	}
	d, err := sql.Open("sqlite", p)
	if err != nil {
		return nil, err
	}
	// busy timeout helps with short concurrent locks
	_, _ = d.Exec("PRAGMA busy_timeout=3000;")
	return &DB{db: d}, nil
}

func (s *DB) EnsureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS task_runs(
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL UNIQUE,
			name TEXT NOT NULL,
			pid INTEGER NOT NULL,
			started_at TIMESTAMP NOT NULL,
			stopped_at TIMESTAMP NULL,
			running BOOLEAN NOT NULL,
			exit_code INTEGER NULL,
			exit_err TEXT NULL,
			updated_at TIMESTAMP NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_task_runs_name ON task_runs(name);`,
		`CREATE INDEX IF NOT EXISTS idx_task_runs_running ON task_runs(running);`,
	}
	for _, q := range stmts {
		if _, err := s.db.ExecContext(ctx, q); err != nil {
			return err
		}
	}
	return nil
}

func (s *DB) Close() error { return s.db.Close() }

func (s *DB) RecordStart(ctx context.Context, rec store.Record) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO task_runs(run_id, name, pid, started_at, stopped_at, running, exit_code, exit_err, updated_at)
		VALUES(?, ?, ?, ?, NULL, 1, NULL, NULL, ?)
		ON CONFLICT(run_id) DO UPDATE SET
			name=excluded.name,
			pid=excluded.pid,
			started_at=excluded.started_at,
			running=excluded.running,
			stopped_at=NULL,
			exit_code=NULL,
			exit_err=NULL,
			updated_at=excluded.updated_at;`,
		rec.RunID, rec.Name, rec.PID, rec.StartedAt.UTC(), time.Now().UTC())
	return err
}

func (s *DB) RecordStop(ctx context.Context, runID string, stoppedAt time.Time, exitCode int, exitErr string) error {
	var errStr sql.NullString
	if exitErr != "" {
		errStr = sql.NullString{String: exitErr, Valid: true}
	}
	_, err := s.db.ExecContext(ctx, `
		UPDATE task_runs
		SET running=0, stopped_at=?, exit_code=?, exit_err=?, updated_at=?
		WHERE run_id=?;`,
		stoppedAt.UTC(), exitCode, errStr, time.Now().UTC(), runID)
	return err
}

func (s *DB) GetByName(ctx context.Context, name string, limit int) ([]store.Record, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, name, pid, started_at, stopped_at, running, exit_code, exit_err, updated_at
		FROM task_runs WHERE name=? ORDER BY started_at DESC LIMIT ?;`, name, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	return scanRecords(rows)
}

func (s *DB) GetRunning(ctx context.Context) ([]store.Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, name, pid, started_at, stopped_at, running, exit_code, exit_err, updated_at
		FROM task_runs WHERE running=1 ORDER BY started_at DESC;`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	return scanRecords(rows)
}

func (s *DB) PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM task_runs WHERE updated_at < ? AND running=0;`, cutoff.UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func scanRecords(rows *sql.Rows) ([]store.Record, error) {
	var out []store.Record
	for rows.Next() {
		var r store.Record
		if err := rows.Scan(&r.RunID, &r.Name, &r.PID, &r.StartedAt, &r.StoppedAt,
			&r.Running, &r.ExitCode, &r.ExitErr, &r.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
