package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	lj "gopkg.in/natefinch/lumberjack.v2"
)

// Rotation defaults for captured task output.
const (
	DefaultMaxSizeMB  = 10
	DefaultMaxBackups = 3
	DefaultMaxAgeDays = 7
)

// CaptureConfig describes an optional rotated file that mirrors a task's
// combined stdout/stderr stream. If Path is empty and Dir is set, the file
// is Dir/<name>.out.log. Rotation parameters follow lumberjack semantics.
type CaptureConfig struct {
	Dir        string `json:"dir" mapstructure:"dir"`
	Path       string `json:"path" mapstructure:"path"`
	MaxSizeMB  int    `json:"max_size_mb" mapstructure:"max_size_mb"`
	MaxBackups int    `json:"max_backups" mapstructure:"max_backups"`
	MaxAgeDays int    `json:"max_age_days" mapstructure:"max_age_days"`
	Compress   bool   `json:"compress" mapstructure:"compress"`
}

// Enabled reports whether any capture destination is configured.
func (c CaptureConfig) Enabled() bool { return c.Dir != "" || c.Path != "" }

// Writer returns a rotated io.WriteCloser for the named task's output,
// or nil when capture is not configured.
func (c CaptureConfig) Writer(name string) (io.WriteCloser, error) {
	path := c.Path
	if path == "" {
		if c.Dir == "" {
			return nil, nil
		}
		path = filepath.Join(c.Dir, fmt.Sprintf("%s.out.log", name))
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, err
		}
	}
	return &lj.Logger{
		Filename:   path,
		MaxSize:    valOr(c.MaxSizeMB, DefaultMaxSizeMB),
		MaxBackups: valOr(c.MaxBackups, DefaultMaxBackups),
		MaxAge:     valOr(c.MaxAgeDays, DefaultMaxAgeDays),
		Compress:   c.Compress,
	}, nil
}

func valOr(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

// New builds a slog.Logger writing colorized text to w at the given level.
// Unknown level strings fall back to info.
func New(w io.Writer, level string) *slog.Logger {
	var lv slog.Level
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		lv = slog.LevelDebug
	case "warn", "warning":
		lv = slog.LevelWarn
	case "error":
		lv = slog.LevelError
	default:
		lv = slog.LevelInfo
	}
	return slog.New(NewColorTextHandler(w, &slog.HandlerOptions{Level: lv}))
}
