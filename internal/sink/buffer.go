package sink

import (
	"strconv"
	"sync"
)

// DefaultBufferSize bounds the retained scrollback.
const DefaultBufferSize = 500

// Entry is one retained display line.
type Entry struct {
	Task string `json:"task"`
	Line string `json:"line"`
}

// Buffer retains the most recent output lines in memory so a remote UI
// can render the display surface. It is the in-process stand-in for the
// scrollable console the desktop front-end shows.
type Buffer struct {
	mu      sync.Mutex
	entries []Entry
	max     int
	seq     uint64
	waiters []chan struct{}
}

func NewBuffer(max int) *Buffer {
	if max <= 0 {
		max = DefaultBufferSize
	}
	return &Buffer{max: max}
}

func (b *Buffer) Line(task, line string) {
	b.append(Entry{Task: task, Line: line})
}

func (b *Buffer) Exited(task string, code int, err error) {
	e := Entry{Task: task}
	if err != nil {
		e.Line = "ended with code " + strconv.Itoa(code) + " (" + err.Error() + ")"
	} else {
		e.Line = "ended with code " + strconv.Itoa(code)
	}
	b.append(e)
}

// Reset clears the scrollback, e.g. when a new task takes over the surface.
func (b *Buffer) Reset() {
	b.mu.Lock()
	b.entries = b.entries[:0]
	b.seq++
	b.notifyLocked()
	b.mu.Unlock()
}

// Tail returns up to n most recent entries, oldest first. n <= 0 means all.
func (b *Buffer) Tail(n int) []Entry {
	b.mu.Lock()
	defer b.mu.Unlock()
	if n <= 0 || n > len(b.entries) {
		n = len(b.entries)
	}
	out := make([]Entry, n)
	copy(out, b.entries[len(b.entries)-n:])
	return out
}

// Wait returns a channel closed on the next buffer change. UIs poll it to
// redraw only when there is something new.
func (b *Buffer) Wait() <-chan struct{} {
	b.mu.Lock()
	defer b.mu.Unlock()
	ch := make(chan struct{})
	b.waiters = append(b.waiters, ch)
	return ch
}

func (b *Buffer) append(e Entry) {
	b.mu.Lock()
	b.entries = append(b.entries, e)
	if over := len(b.entries) - b.max; over > 0 {
		b.entries = append(b.entries[:0], b.entries[over:]...)
	}
	b.seq++
	b.notifyLocked()
	b.mu.Unlock()
}

func (b *Buffer) notifyLocked() {
	for _, ch := range b.waiters {
		close(ch)
	}
	b.waiters = nil
}
