package store

import (
	"context"
	"database/sql"
	"time"
)

// Record is one persisted task run. RunID is unique per launch.
type Record struct {
	RunID     string         `json:"run_id"`
	Name      string         `json:"name"`
	PID       int            `json:"pid"`
	StartedAt time.Time      `json:"started_at"`
	StoppedAt sql.NullTime   `json:"stopped_at"`
	Running   bool           `json:"running"`
	ExitCode  sql.NullInt64  `json:"exit_code"`
	ExitErr   sql.NullString `json:"exit_error"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// Store persists run history for managed tasks.
type Store interface {
	EnsureSchema(ctx context.Context) error
	RecordStart(ctx context.Context, rec Record) error
	RecordStop(ctx context.Context, runID string, stoppedAt time.Time, exitCode int, exitErr string) error
	GetByName(ctx context.Context, name string, limit int) ([]Record, error)
	GetRunning(ctx context.Context) ([]Record, error)
	PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
	Close() error
}

// Config selects and parameterizes a store backend.
type Config struct {
	Type string `json:"type" mapstructure:"type"` // "sqlite" or "postgres"
	// SQLite: filesystem path, or ":memory:".
	Path string `json:"path,omitempty" mapstructure:"path"`
	// Postgres: connection string.
	DSN string `json:"dsn,omitempty" mapstructure:"dsn"`
}
