package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/MBUFFMIRE/AICamera/internal/store"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := db.EnsureSchema(context.Background()); err != nil {
		t.Fatalf("schema: %v", err)
	}
	return db
}

func TestNewRejectsEmptyPath(t *testing.T) {
	if _, err := New("  "); err == nil {
		t.Fatalf("expected error for empty path")
	}
}

func TestEnsureSchemaIdempotent(t *testing.T) {
	db := newTestDB(t)
	if err := db.EnsureSchema(context.Background()); err != nil {
		t.Fatalf("second ensure: %v", err)
	}
}

func TestRecordStartStopRoundTrip(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	started := time.Now().UTC().Truncate(time.Second)

	rec := store.Record{RunID: "run-1", Name: "ai-vision", PID: 4242, StartedAt: started}
	if err := db.RecordStart(ctx, rec); err != nil {
		t.Fatalf("record start: %v", err)
	}

	running, err := db.GetRunning(ctx)
	if err != nil {
		t.Fatalf("get running: %v", err)
	}
	if len(running) != 1 || running[0].RunID != "run-1" || !running[0].Running {
		t.Fatalf("running rows: %+v", running)
	}

	stopped := started.Add(3 * time.Second)
	if err := db.RecordStop(ctx, "run-1", stopped, 0, ""); err != nil {
		t.Fatalf("record stop: %v", err)
	}

	running, err = db.GetRunning(ctx)
	if err != nil {
		t.Fatalf("get running: %v", err)
	}
	if len(running) != 0 {
		t.Fatalf("stopped run still listed running: %+v", running)
	}

	hist, err := db.GetByName(ctx, "ai-vision", 0)
	if err != nil {
		t.Fatalf("get by name: %v", err)
	}
	if len(hist) != 1 {
		t.Fatalf("history rows: %+v", hist)
	}
	got := hist[0]
	if got.Running || !got.StoppedAt.Valid || !got.ExitCode.Valid || got.ExitCode.Int64 != 0 {
		t.Fatalf("stop not applied: %+v", got)
	}
	if got.ExitErr.Valid {
		t.Fatalf("clean exit should leave exit_err NULL: %+v", got)
	}
}

func TestRecordStopWithError(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	if err := db.RecordStart(ctx, store.Record{RunID: "run-2", Name: "crash", PID: 1, StartedAt: time.Now()}); err != nil {
		t.Fatalf("record start: %v", err)
	}
	if err := db.RecordStop(ctx, "run-2", time.Now(), 3, "exit status 3"); err != nil {
		t.Fatalf("record stop: %v", err)
	}
	hist, err := db.GetByName(ctx, "crash", 1)
	if err != nil {
		t.Fatalf("get by name: %v", err)
	}
	if len(hist) != 1 || hist[0].ExitCode.Int64 != 3 || hist[0].ExitErr.String != "exit status 3" {
		t.Fatalf("failure details lost: %+v", hist)
	}
}

func TestRecordStartUpsertsOnRunID(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	rec := store.Record{RunID: "run-3", Name: "cam", PID: 10, StartedAt: time.Now()}
	if err := db.RecordStart(ctx, rec); err != nil {
		t.Fatalf("first insert: %v", err)
	}
	rec.PID = 11
	if err := db.RecordStart(ctx, rec); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	hist, err := db.GetByName(ctx, "cam", 0)
	if err != nil {
		t.Fatalf("get by name: %v", err)
	}
	if len(hist) != 1 || hist[0].PID != 11 {
		t.Fatalf("upsert did not replace: %+v", hist)
	}
}

func TestPurgeOlderThan(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	if err := db.RecordStart(ctx, store.Record{RunID: "old", Name: "a", PID: 1, StartedAt: time.Now()}); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := db.RecordStop(ctx, "old", time.Now(), 0, ""); err != nil {
		t.Fatalf("stop: %v", err)
	}
	// still-running rows survive the purge
	if err := db.RecordStart(ctx, store.Record{RunID: "live", Name: "b", PID: 2, StartedAt: time.Now()}); err != nil {
		t.Fatalf("start: %v", err)
	}

	n, err := db.PurgeOlderThan(ctx, time.Now().Add(time.Minute))
	if err != nil {
		t.Fatalf("purge: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 purged row, got %d", n)
	}
	running, err := db.GetRunning(ctx)
	if err != nil {
		t.Fatalf("get running: %v", err)
	}
	if len(running) != 1 || running[0].RunID != "live" {
		t.Fatalf("running row purged: %+v", running)
	}
}
