package sink

import (
	"fmt"
	"io"
	"log/slog"
	"sync"
)

// Sink consumes a managed task's output stream and exit notifications.
// Implementations must be safe for concurrent use; the supervisor calls
// them from per-task drain goroutines.
type Sink interface {
	// Line receives one full output line, tagged with the task name.
	Line(task, line string)
	// Exited receives the task's exit outcome. err is nil on a clean exit.
	Exited(task string, code int, err error)
}

// Resetter is implemented by sinks whose display surface can be cleared.
// The supervisor resets the surface when a new task takes it over.
type Resetter interface {
	Reset()
}

// Writer forwards output to an io.Writer, one prefixed line at a time.
type Writer struct {
	mu sync.Mutex
	w  io.Writer
}

func NewWriter(w io.Writer) *Writer { return &Writer{w: w} }

func (s *Writer) Line(task, line string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, _ = fmt.Fprintf(s.w, "%s: %s\n", task, line)
}

func (s *Writer) Exited(task string, code int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		_, _ = fmt.Fprintf(s.w, "%s: ended with code %d (%v)\n", task, code, err)
		return
	}
	_, _ = fmt.Fprintf(s.w, "%s: ended with code %d\n", task, code)
}

// Slog forwards output into a structured logger.
type Slog struct {
	l *slog.Logger
}

func NewSlog(l *slog.Logger) *Slog { return &Slog{l: l} }

func (s *Slog) Line(task, line string) {
	s.l.Info(line, "task", task)
}

func (s *Slog) Exited(task string, code int, err error) {
	if err != nil {
		s.l.Warn("task exited", "task", task, "code", code, "error", err)
		return
	}
	s.l.Info("task exited", "task", task, "code", code)
}

// Fanout duplicates events to several sinks. Reset is forwarded to any
// member that supports it.
type Fanout []Sink

func (f Fanout) Line(task, line string) {
	for _, s := range f {
		s.Line(task, line)
	}
}

func (f Fanout) Exited(task string, code int, err error) {
	for _, s := range f {
		s.Exited(task, code, err)
	}
}

func (f Fanout) Reset() {
	for _, s := range f {
		if r, ok := s.(Resetter); ok {
			r.Reset()
		}
	}
}

// Discard drops everything. Useful in tests and one-shot runs that only
// care about exit codes.
type Discard struct{}

func (Discard) Line(string, string)      {}
func (Discard) Exited(string, int, error) {}
