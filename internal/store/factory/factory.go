package factory

import (
	"fmt"
	"strings"

	"github.com/MBUFFMIRE/AICamera/internal/store"
	"github.com/MBUFFMIRE/AICamera/internal/store/postgres"
	"github.com/MBUFFMIRE/AICamera/internal/store/sqlite"
)

// New builds a store backend from config.
func New(cfg store.Config) (store.Store, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Type)) {
	case "", "sqlite":
		path := cfg.Path
		if path == "" {
			path = ":memory:"
		}
		return sqlite.New(path)
	case "postgres", "postgresql":
		return postgres.New(cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported store type %q", cfg.Type)
	}
}
