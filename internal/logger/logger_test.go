package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestCaptureConfigEnabled(t *testing.T) {
	if (CaptureConfig{}).Enabled() {
		t.Fatalf("zero config must be disabled")
	}
	if !(CaptureConfig{Dir: "x"}).Enabled() {
		t.Fatalf("dir should enable capture")
	}
	if !(CaptureConfig{Path: "x.log"}).Enabled() {
		t.Fatalf("path should enable capture")
	}
}

func TestCaptureWriterDisabled(t *testing.T) {
	w, err := (CaptureConfig{}).Writer("cam")
	if err != nil {
		t.Fatalf("writer: %v", err)
	}
	if w != nil {
		t.Fatalf("disabled capture should return nil writer")
	}
}

func TestCaptureWriterCreatesFile(t *testing.T) {
	dir := t.TempDir()
	c := CaptureConfig{Dir: dir}
	w, err := c.Writer("qr-reader")
	if err != nil {
		t.Fatalf("writer: %v", err)
	}
	if w == nil {
		t.Fatalf("expected writer")
	}
	if _, err := w.Write([]byte("frame captured\n")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	b, err := os.ReadFile(filepath.Join(dir, "qr-reader.out.log"))
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if !strings.Contains(string(b), "frame captured") {
		t.Fatalf("content: %q", b)
	}
}

func TestCaptureWriterExplicitPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "out.log")
	c := CaptureConfig{Path: path}
	w, err := c.Writer("ignored")
	if err != nil {
		t.Fatalf("writer: %v", err)
	}
	if _, err := w.Write([]byte("x")); err != nil {
		t.Fatalf("write: %v", err)
	}
	_ = w.Close()
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("file at explicit path: %v", err)
	}
}

func TestNewLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "warn")
	log.Info("hidden")
	log.Warn("visible")
	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("info leaked at warn level: %q", out)
	}
	if !strings.Contains(out, "visible") {
		t.Fatalf("warn suppressed: %q", out)
	}
}

func TestNewLoggerUnknownLevelDefaultsToInfo(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "banana")
	log.Debug("hidden")
	log.Info("visible")
	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("debug leaked at default level: %q", out)
	}
	if !strings.Contains(out, "visible") {
		t.Fatalf("info suppressed: %q", out)
	}
}
