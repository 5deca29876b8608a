package supervisor

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/MBUFFMIRE/AICamera/internal/history"
	"github.com/MBUFFMIRE/AICamera/internal/sink"
	"github.com/MBUFFMIRE/AICamera/internal/store"
	"github.com/MBUFFMIRE/AICamera/internal/task"
)

// Supervisor owns zero-or-one external process per registered task slot
// and serializes all lifecycle operations. Tasks sharing a mutual-exclusion
// group never run concurrently: starting one fully stops the others first.
type Supervisor struct {
	snk    sink.Sink
	log    *slog.Logger
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu     sync.RWMutex
	slots  map[string]*slot
	order  []string
	groups map[string]*sync.Mutex
	st     store.Store
	hist   []history.Sink
}

// New creates a Supervisor forwarding task output to snk. A nil sink
// discards output.
func New(snk sink.Sink) *Supervisor {
	if snk == nil {
		snk = sink.Discard{}
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Supervisor{
		snk:    snk,
		log:    slog.Default(),
		ctx:    ctx,
		cancel: cancel,
		slots:  make(map[string]*slot),
		groups: make(map[string]*sync.Mutex),
	}
}

func (s *Supervisor) SetLogger(l *slog.Logger) {
	if l != nil {
		s.log = l
	}
}

// SetStore configures a persistence store for run history and ensures its
// schema. Passing nil clears it.
func (s *Supervisor) SetStore(st store.Store) error {
	s.mu.Lock()
	s.st = st
	s.mu.Unlock()
	if st == nil {
		return nil
	}
	return st.EnsureSchema(context.Background())
}

// SetHistorySinks configures external lifecycle-event sinks.
func (s *Supervisor) SetHistorySinks(sinks ...history.Sink) {
	s.mu.Lock()
	s.hist = append([]history.Sink(nil), sinks...)
	s.mu.Unlock()
}

// Register adds a task slot. Tasks are immutable once registered.
func (s *Supervisor) Register(t task.Task) error {
	if err := t.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.slots[t.Name]; ok {
		return fmt.Errorf("task %q already registered", t.Name)
	}
	sl := newSlot(t, s.snk)
	sl.lockGroup = s.groupLocker(t.Group)
	sl.stopPeers = func(time.Duration) { s.stopPeersOf(t.Name, t.Group) }
	sl.resetSurface = func() {
		if r, ok := s.snk.(sink.Resetter); ok {
			r.Reset()
		}
	}
	sl.recordStart = s.recordStart
	sl.recordStop = s.recordStop
	s.slots[t.Name] = sl
	s.order = append(s.order, t.Name)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		sl.run(s.ctx)
	}()
	return nil
}

// Start launches the named task. It returns ErrAlreadyRunning when the
// slot is busy and a LaunchError when the spawn itself fails. Any running
// member of the task's group is stopped first.
func (s *Supervisor) Start(name string) error {
	sl, err := s.lookup(name)
	if err != nil {
		return err
	}
	return sl.Start()
}

// Stop terminates the named task, waiting up to wait (the task's grace
// period when wait <= 0) before escalating to a kill. Stopping an idle
// task is a no-op.
func (s *Supervisor) Stop(name string, wait time.Duration) error {
	sl, err := s.lookup(name)
	if err != nil {
		return err
	}
	return sl.Stop(wait)
}

// Toggle stops the task when it is running and starts it otherwise.
// Concurrent toggles on the same task are serialized; a double start is
// impossible.
func (s *Supervisor) Toggle(name string) error {
	sl, err := s.lookup(name)
	if err != nil {
		return err
	}
	return sl.Toggle(0)
}

// Status reports the named slot.
func (s *Supervisor) Status(name string) (Status, error) {
	sl, err := s.lookup(name)
	if err != nil {
		return Status{}, err
	}
	return sl.Status(), nil
}

// StatusAll reports every slot in registration order.
func (s *Supervisor) StatusAll() []Status {
	s.mu.RLock()
	names := append([]string(nil), s.order...)
	s.mu.RUnlock()
	out := make([]Status, 0, len(names))
	for _, n := range names {
		if sl, err := s.lookup(n); err == nil {
			out = append(out, sl.Status())
		}
	}
	return out
}

// Tasks returns the registered task definitions in registration order.
func (s *Supervisor) Tasks() []task.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]task.Task, 0, len(s.order))
	for _, n := range s.order {
		out = append(out, s.slots[n].task)
	}
	return out
}

// Shutdown stops every task with its grace period and waits for all slot
// goroutines to exit.
func (s *Supervisor) Shutdown() {
	s.cancel()
	s.wg.Wait()
}

func (s *Supervisor) lookup(name string) (*slot, error) {
	s.mu.RLock()
	sl := s.slots[name]
	s.mu.RUnlock()
	if sl == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTask, name)
	}
	return sl, nil
}

// groupLocker returns the acquire-release closure for the task's group.
// The caller must hold s.mu; the returned closure itself never touches it.
func (s *Supervisor) groupLocker(group string) func() func() {
	if group == "" {
		return func() func() { return func() {} }
	}
	gm := s.groups[group]
	if gm == nil {
		gm = &sync.Mutex{}
		s.groups[group] = gm
	}
	return func() func() {
		gm.Lock()
		return gm.Unlock
	}
}

// stopPeersOf fully stops every other member of the group. Called with the
// group lock held, immediately before a start, so a freshly started peer
// cannot slip in between.
func (s *Supervisor) stopPeersOf(name, group string) {
	if group == "" {
		return
	}
	s.mu.RLock()
	var peers []*slot
	for _, n := range s.order {
		sl := s.slots[n]
		if n != name && sl.task.Group == group {
			peers = append(peers, sl)
		}
	}
	s.mu.RUnlock()
	for _, p := range peers {
		if p.currentState() == StateIdle {
			continue
		}
		s.log.Debug("stopping group peer", "group", group, "task", p.task.Name, "for", name)
		_ = p.stopNow(p.task.GracePeriod())
	}
}

func (s *Supervisor) recordStart(st Status) {
	s.mu.RLock()
	db := s.st
	sinks := append([]history.Sink(nil), s.hist...)
	s.mu.RUnlock()

	rec := store.Record{
		RunID:     st.RunID,
		Name:      st.Name,
		PID:       st.PID,
		StartedAt: st.StartedAt,
		Running:   true,
	}
	ctx := context.Background()
	if db != nil {
		if err := db.RecordStart(ctx, rec); err != nil {
			s.log.Warn("record start failed", "task", st.Name, "error", err)
		}
	}
	evt := history.Event{Type: history.EventStart, OccurredAt: time.Now().UTC(), Record: rec}
	for _, h := range sinks {
		_ = h.Send(ctx, evt)
	}
}

func (s *Supervisor) recordStop(st Status) {
	s.mu.RLock()
	db := s.st
	sinks := append([]history.Sink(nil), s.hist...)
	s.mu.RUnlock()

	rec := store.Record{
		RunID:     st.RunID,
		Name:      st.Name,
		PID:       st.PID,
		StartedAt: st.StartedAt,
		StoppedAt: sql.NullTime{Time: st.StoppedAt, Valid: !st.StoppedAt.IsZero()},
		ExitCode:  sql.NullInt64{Int64: int64(st.ExitCode), Valid: true},
		Running:   false,
	}
	if st.ExitErr != "" {
		rec.ExitErr = sql.NullString{String: st.ExitErr, Valid: true}
	}
	ctx := context.Background()
	if db != nil {
		if err := db.RecordStop(ctx, rec.RunID, st.StoppedAt, st.ExitCode, st.ExitErr); err != nil {
			s.log.Warn("record stop failed", "task", st.Name, "error", err)
		}
	}
	evt := history.Event{Type: history.EventStop, OccurredAt: time.Now().UTC(), Record: rec}
	for _, h := range sinks {
		_ = h.Send(ctx, evt)
	}
}
