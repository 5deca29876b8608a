package history

import (
	"context"
	"time"

	"github.com/MBUFFMIRE/AICamera/internal/store"
)

// EventType is the kind of lifecycle event.
type EventType string

const (
	EventStart EventType = "start"
	EventStop  EventType = "stop"
)

// Event is one task lifecycle event for export to external systems.
type Event struct {
	Type       EventType    `json:"type"`
	OccurredAt time.Time    `json:"occurred_at"`
	Record     store.Record `json:"record"`
}

// Sink receives lifecycle events. Implementations must be safe for
// concurrent use.
type Sink interface {
	Send(ctx context.Context, e Event) error
	Close() error
}

// Config selects an optional history backend.
type Config struct {
	Type  string `json:"type" mapstructure:"type"` // "clickhouse"
	Addr  string `json:"addr,omitempty" mapstructure:"addr"`
	Table string `json:"table,omitempty" mapstructure:"table"`
}
