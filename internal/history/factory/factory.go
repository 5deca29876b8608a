package factory

import (
	"fmt"
	"strings"

	"github.com/MBUFFMIRE/AICamera/internal/history"
	"github.com/MBUFFMIRE/AICamera/internal/history/clickhouse"
)

// New builds a history sink from config. An empty type means no sink.
func New(cfg history.Config) (history.Sink, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Type)) {
	case "":
		return nil, nil
	case "clickhouse":
		return clickhouse.New(cfg.Addr, cfg.Table)
	default:
		return nil, fmt.Errorf("unsupported history type %q", cfg.Type)
	}
}
