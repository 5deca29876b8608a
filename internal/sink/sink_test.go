package sink

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestWriterPrefixesLines(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	w.Line("qr-reader", "frame captured")
	w.Exited("qr-reader", 0, nil)
	got := buf.String()
	if !strings.Contains(got, "qr-reader: frame captured\n") {
		t.Fatalf("line not prefixed: %q", got)
	}
	if !strings.Contains(got, "qr-reader: ended with code 0\n") {
		t.Fatalf("exit message missing: %q", got)
	}
}

func TestWriterExitWithError(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	w.Exited("cam", 1, errors.New("exit status 1"))
	got := buf.String()
	if !strings.Contains(got, "cam: ended with code 1 (exit status 1)") {
		t.Fatalf("error detail missing: %q", got)
	}
}

func TestFanoutForwardsAndResets(t *testing.T) {
	var out bytes.Buffer
	buf := NewBuffer(10)
	f := Fanout{NewWriter(&out), buf, Discard{}}

	f.Line("cam", "hello")
	f.Exited("cam", 0, nil)
	if !strings.Contains(out.String(), "cam: hello") {
		t.Fatalf("writer member missed the line: %q", out.String())
	}
	if got := len(buf.Tail(0)); got != 2 {
		t.Fatalf("buffer member should hold 2 entries, got %d", got)
	}

	f.Reset()
	if got := len(buf.Tail(0)); got != 0 {
		t.Fatalf("reset should propagate to resettable members, got %d entries", got)
	}
}

func TestBufferTailOrderAndBound(t *testing.T) {
	b := NewBuffer(3)
	for _, l := range []string{"a", "b", "c", "d", "e"} {
		b.Line("t", l)
	}
	entries := b.Tail(0)
	if len(entries) != 3 {
		t.Fatalf("bound not enforced: %d", len(entries))
	}
	if entries[0].Line != "c" || entries[2].Line != "e" {
		t.Fatalf("wrong retained window: %+v", entries)
	}
	last := b.Tail(1)
	if len(last) != 1 || last[0].Line != "e" {
		t.Fatalf("tail(1) should return newest entry: %+v", last)
	}
}

func TestBufferExitedEntry(t *testing.T) {
	b := NewBuffer(10)
	b.Exited("cam", 2, errors.New("exit status 2"))
	entries := b.Tail(0)
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].Line != "ended with code 2 (exit status 2)" {
		t.Fatalf("unexpected exit entry: %q", entries[0].Line)
	}
}

func TestBufferWaitSignalsOnChange(t *testing.T) {
	b := NewBuffer(10)
	ch := b.Wait()
	select {
	case <-ch:
		t.Fatalf("waiter fired before any change")
	default:
	}
	b.Line("t", "x")
	select {
	case <-ch:
	case <-time.After(time.Second):
		t.Fatalf("waiter not notified")
	}

	// Reset also counts as a change.
	ch = b.Wait()
	b.Reset()
	select {
	case <-ch:
	case <-time.After(time.Second):
		t.Fatalf("waiter not notified on reset")
	}
}
