package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/MBUFFMIRE/AICamera/internal/store"
)

// DB implements store.Store on PostgreSQL via the pgx stdlib driver.
type DB struct {
	db *sql.DB
}

func New(dsn string) (*DB, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, errors.New("empty postgres dsn")
	}
	d, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	return &DB{db: d}, nil
}

func (p *DB) EnsureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS task_runs(
			id BIGSERIAL PRIMARY KEY,
			run_id TEXT NOT NULL UNIQUE,
			name TEXT NOT NULL,
			pid INTEGER NOT NULL,
			started_at TIMESTAMPTZ NOT NULL,
			stopped_at TIMESTAMPTZ NULL,
			running BOOLEAN NOT NULL,
			exit_code INTEGER NULL,
			exit_err TEXT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_task_runs_name ON task_runs(name);`,
		`CREATE INDEX IF NOT EXISTS idx_task_runs_running ON task_runs(running);`,
	}
	for _, q := range stmts {
		if _, err := p.db.ExecContext(ctx, q); err != nil {
			return err
		}
	}
	return nil
}

func (p *DB) Close() error { return p.db.Close() }

func (p *DB) RecordStart(ctx context.Context, rec store.Record) error {
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO task_runs(run_id, name, pid, started_at, stopped_at, running, exit_code, exit_err, updated_at)
		VALUES($1, $2, $3, $4, NULL, TRUE, NULL, NULL, $5)
		ON CONFLICT(run_id) DO UPDATE SET
			name=EXCLUDED.name,
			pid=EXCLUDED.pid,
			started_at=EXCLUDED.started_at,
			running=EXCLUDED.running,
			stopped_at=NULL,
			exit_code=NULL,
			exit_err=NULL,
			updated_at=EXCLUDED.updated_at;`,
		rec.RunID, rec.Name, rec.PID, rec.StartedAt.UTC(), time.Now().UTC())
	return err
}

func (p *DB) RecordStop(ctx context.Context, runID string, stoppedAt time.Time, exitCode int, exitErr string) error {
	var errStr sql.NullString
	if exitErr != "" {
		errStr = sql.NullString{String: exitErr, Valid: true}
	}
	_, err := p.db.ExecContext(ctx, `
		UPDATE task_runs
		SET running=FALSE, stopped_at=$1, exit_code=$2, exit_err=$3, updated_at=$4
		WHERE run_id=$5;`,
		stoppedAt.UTC(), exitCode, errStr, time.Now().UTC(), runID)
	return err
}

func (p *DB) GetByName(ctx context.Context, name string, limit int) ([]store.Record, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := p.db.QueryContext(ctx, `
		SELECT run_id, name, pid, started_at, stopped_at, running, exit_code, exit_err, updated_at
		FROM task_runs WHERE name=$1 ORDER BY started_at DESC LIMIT $2;`, name, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	return scanRecords(rows)
}

func (p *DB) GetRunning(ctx context.Context) ([]store.Record, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT run_id, name, pid, started_at, stopped_at, running, exit_code, exit_err, updated_at
		FROM task_runs WHERE running=TRUE ORDER BY started_at DESC;`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	return scanRecords(rows)
}

func (p *DB) PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := p.db.ExecContext(ctx,
		`DELETE FROM task_runs WHERE updated_at < $1 AND running=FALSE;`, cutoff.UTC())
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
