package client

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
)

// fakeDaemon records requests and serves canned responses.
type fakeDaemon struct {
	mu       sync.Mutex
	requests []string
}

func (f *fakeDaemon) record(r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, r.Method+" "+r.URL.String())
}

func (f *fakeDaemon) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/start", func(w http.ResponseWriter, r *http.Request) {
		f.record(r)
		if r.URL.Query().Get("name") == "busy" {
			w.WriteHeader(http.StatusConflict)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "task already running"})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]bool{"ok": true})
	})
	mux.HandleFunc("/api/stop", func(w http.ResponseWriter, r *http.Request) {
		f.record(r)
		_ = json.NewEncoder(w).Encode(map[string]bool{"ok": true})
	})
	mux.HandleFunc("/api/toggle", func(w http.ResponseWriter, r *http.Request) {
		f.record(r)
		_ = json.NewEncoder(w).Encode(map[string]bool{"ok": true})
	})
	mux.HandleFunc("/api/status", func(w http.ResponseWriter, r *http.Request) {
		f.record(r)
		if name := r.URL.Query().Get("name"); name != "" {
			_ = json.NewEncoder(w).Encode(TaskStatus{Name: name, State: "running", Running: true, PID: 7})
			return
		}
		_ = json.NewEncoder(w).Encode([]TaskStatus{{Name: "a", State: "idle"}, {Name: "b", State: "running"}})
	})
	mux.HandleFunc("/api/output", func(w http.ResponseWriter, r *http.Request) {
		f.record(r)
		_ = json.NewEncoder(w).Encode([]OutputLine{{Task: "a", Line: "hello"}})
	})
	return mux
}

func newFake(t *testing.T) (*fakeDaemon, *Client) {
	t.Helper()
	f := &fakeDaemon{}
	srv := httptest.NewServer(f.handler())
	t.Cleanup(srv.Close)
	return f, New(srv.URL+"/api", time.Second)
}

func (f *fakeDaemon) lastRequest() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.requests) == 0 {
		return ""
	}
	return f.requests[len(f.requests)-1]
}

func TestIsReachable(t *testing.T) {
	_, c := newFake(t)
	if !c.IsReachable() {
		t.Fatalf("fake daemon should be reachable")
	}
	dead := New("http://127.0.0.1:1/api", 200*time.Millisecond)
	if dead.IsReachable() {
		t.Fatalf("closed port should be unreachable")
	}
}

func TestStartStopToggle(t *testing.T) {
	f, c := newFake(t)
	if err := c.Start("cam"); err != nil {
		t.Fatalf("start: %v", err)
	}
	if got := f.lastRequest(); !strings.Contains(got, "/api/start?name=cam") {
		t.Fatalf("start request: %s", got)
	}
	if err := c.Stop("cam", 3*time.Second); err != nil {
		t.Fatalf("stop: %v", err)
	}
	if got := f.lastRequest(); !strings.Contains(got, "wait=3s") {
		t.Fatalf("stop request should carry wait: %s", got)
	}
	if err := c.Toggle("cam"); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if got := f.lastRequest(); !strings.Contains(got, "/api/toggle?name=cam") {
		t.Fatalf("toggle request: %s", got)
	}
}

func TestStartErrorSurfaced(t *testing.T) {
	_, c := newFake(t)
	err := c.Start("busy")
	if err == nil || !strings.Contains(err.Error(), "task already running") {
		t.Fatalf("expected daemon error to surface, got %v", err)
	}
}

func TestStatus(t *testing.T) {
	_, c := newFake(t)
	st, err := c.Status("cam")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if st.Name != "cam" || !st.Running || st.PID != 7 {
		t.Fatalf("status: %+v", st)
	}
	all, err := c.StatusAll()
	if err != nil {
		t.Fatalf("status all: %v", err)
	}
	if len(all) != 2 || all[1].State != "running" {
		t.Fatalf("status all: %+v", all)
	}
}

func TestOutput(t *testing.T) {
	f, c := newFake(t)
	lines, err := c.Output(5)
	if err != nil {
		t.Fatalf("output: %v", err)
	}
	if len(lines) != 1 || lines[0].Line != "hello" {
		t.Fatalf("output: %+v", lines)
	}
	if got := f.lastRequest(); !strings.Contains(got, "limit=5") {
		t.Fatalf("output request should carry limit: %s", got)
	}
}

func TestDefaults(t *testing.T) {
	c := New("", 0)
	if c.baseURL != DefaultBaseURL {
		t.Fatalf("default base url: %s", c.baseURL)
	}
	if c.http.Timeout != 10*time.Second {
		t.Fatalf("default timeout: %v", c.http.Timeout)
	}
}
