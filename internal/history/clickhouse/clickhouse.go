package clickhouse

import (
	"context"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"github.com/MBUFFMIRE/AICamera/internal/history"
)

// Sink exports task lifecycle events to ClickHouse.
type Sink struct {
	conn  driver.Conn
	table string
}

func New(addr, table string) (*Sink, error) {
	if table == "" {
		table = "task_events"
	}
	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{addr},
		Auth: clickhouse.Auth{
			Database: "default",
			Username: "default",
		},
	})
	if err != nil {
		return nil, fmt.Errorf("connect to clickhouse: %w", err)
	}
	if err := conn.Ping(context.Background()); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("ping clickhouse: %w", err)
	}
	return &Sink{conn: conn, table: table}, nil
}

func (s *Sink) Close() error {
	if s.conn != nil {
		return s.conn.Close()
	}
	return nil
}

func (s *Sink) Send(ctx context.Context, e history.Event) error {
	var stoppedAt time.Time
	if e.Record.StoppedAt.Valid {
		stoppedAt = e.Record.StoppedAt.Time
	}
	query := fmt.Sprintf(`INSERT INTO %s (type, occurred_at, run_id, name, pid, started_at, stopped_at, running, exit_code, exit_err) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, s.table)
	err := s.conn.Exec(ctx, query,
		string(e.Type),
		e.OccurredAt,
		e.Record.RunID,
		e.Record.Name,
		e.Record.PID,
		e.Record.StartedAt,
		stoppedAt,
		e.Record.Running,
		e.Record.ExitCode.Int64,
		e.Record.ExitErr.String,
	)
	if err != nil {
		return fmt.Errorf("insert event into clickhouse: %w", err)
	}
	return nil
}
