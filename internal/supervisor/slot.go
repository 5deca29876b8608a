package supervisor

import (
	"bufio"
	"context"
	"errors"
	"io"
	"os/exec"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/MBUFFMIRE/AICamera/internal/metrics"
	"github.com/MBUFFMIRE/AICamera/internal/sink"
	"github.com/MBUFFMIRE/AICamera/internal/task"
)

// killGrace bounds how long a stop waits for the drain goroutine after
// escalating to SIGKILL. It only matters for unkillable children.
const killGrace = 500 * time.Millisecond

type ctrlType int

const (
	ctrlStart ctrlType = iota
	ctrlStop
	ctrlToggle
)

// ctrlMsg serializes lifecycle operations through the slot goroutine so
// concurrent start/stop/toggle requests can never double-start a task.
type ctrlMsg struct {
	typ   ctrlType
	wait  time.Duration
	reply chan error
}

// handle is the runtime state of one active run. It is created on a
// successful spawn and released when the drain goroutine confirms exit.
type handle struct {
	runID     string
	cmd       *exec.Cmd
	pid       int
	startedAt time.Time
	// drainDone is closed by the drain goroutine after the child has been
	// reaped. Stop waits on it so the slot never reports idle while a
	// stale handle could still be live.
	drainDone chan struct{}
	stopReq   atomic.Bool
	capture   io.WriteCloser
}

// slot owns the lifecycle of one task. All starts go through the slot
// goroutine; stops may additionally be invoked directly under the task's
// group lock (see supervisor.stopPeers).
type slot struct {
	task task.Task
	snk  sink.Sink

	ctrl chan ctrlMsg
	done chan struct{}

	// injected by the Supervisor at registration
	lockGroup    func() func() // returns release; no-op when ungrouped
	stopPeers    func(time.Duration)
	resetSurface func()
	recordStart  func(Status)
	recordStop   func(Status)

	mu    sync.Mutex
	state State
	h     *handle
	// last run outcome, kept for status reporting after the handle is gone
	lastRunID     string
	lastPID       int
	lastStartedAt time.Time
	stoppedAt     time.Time
	exitCode      int
	exitErr       error
}

func newSlot(t task.Task, snk sink.Sink) *slot {
	return &slot{
		task:  t,
		snk:   snk,
		ctrl:  make(chan ctrlMsg, 16),
		done:  make(chan struct{}),
		state: StateIdle,
	}
}

func (s *slot) run(ctx context.Context) {
	defer close(s.done)
	for {
		select {
		case <-ctx.Done():
			s.stopNow(s.task.GracePeriod())
			return
		case msg := <-s.ctrl:
			var err error
			switch msg.typ {
			case ctrlStart:
				err = s.doStart()
			case ctrlStop:
				err = s.stopNow(msg.wait)
			case ctrlToggle:
				if s.currentState() == StateRunning {
					err = s.stopNow(s.waitOr(msg.wait))
				} else {
					err = s.doStart()
				}
			}
			if msg.reply != nil {
				msg.reply <- err
			}
		}
	}
}

func (s *slot) send(m ctrlMsg) error {
	m.reply = make(chan error, 1)
	select {
	case s.ctrl <- m:
	case <-s.done:
		return ErrShuttingDown
	}
	select {
	case err := <-m.reply:
		return err
	case <-s.done:
		return ErrShuttingDown
	}
}

func (s *slot) Start() error                    { return s.send(ctrlMsg{typ: ctrlStart}) }
func (s *slot) Stop(wait time.Duration) error   { return s.send(ctrlMsg{typ: ctrlStop, wait: s.waitOr(wait)}) }
func (s *slot) Toggle(wait time.Duration) error { return s.send(ctrlMsg{typ: ctrlToggle, wait: wait}) }

func (s *slot) waitOr(wait time.Duration) time.Duration {
	if wait > 0 {
		return wait
	}
	return s.task.GracePeriod()
}

func (s *slot) currentState() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// doStart runs only in the slot goroutine. For grouped tasks it holds the
// group lock across peer shutdown and spawn so two group members can never
// end up running at once.
func (s *slot) doStart() error {
	if !s.currentState().startable() {
		return ErrAlreadyRunning
	}
	release := s.lockGroup()
	defer release()

	s.stopPeers(0)
	s.resetSurface()
	s.setState(StateStarting)

	cmd := s.task.BuildCommand()
	setSysProcAttrs(cmd)
	out, err := cmd.StdoutPipe()
	if err == nil {
		cmd.Stderr = cmd.Stdout // one combined stream, like the tools expect
		err = cmd.Start()
	}
	if err != nil {
		s.setState(StateFailed)
		metrics.IncFailure(s.task.Name)
		lerr := &LaunchError{Task: s.task.Name, Err: err}
		s.snk.Line(s.task.Name, lerr.Error())
		return lerr
	}

	var capture io.WriteCloser
	if s.task.Capture.Enabled() {
		var cerr error
		if capture, cerr = s.task.Capture.Writer(s.task.Name); cerr != nil {
			s.snk.Line(s.task.Name, "output capture disabled: "+cerr.Error())
		}
	}
	h := &handle{
		runID:     uuid.NewString(),
		cmd:       cmd,
		pid:       cmd.Process.Pid,
		startedAt: time.Now(),
		drainDone: make(chan struct{}),
		capture:   capture,
	}

	s.mu.Lock()
	s.h = h
	s.lastRunID = h.runID
	s.lastPID = h.pid
	s.lastStartedAt = h.startedAt
	s.exitCode = 0
	s.exitErr = nil
	old := s.state
	s.state = StateRunning
	s.mu.Unlock()
	noteTransition(s.task.Name, old, StateRunning)

	metrics.IncStart(s.task.Name)
	if s.recordStart != nil {
		s.recordStart(s.Status())
	}
	go s.drain(h, out)
	return nil
}

// stopNow requests graceful termination and waits for the drain goroutine
// to observe exit, escalating to a kill after wait. It is a no-op when the
// slot has no live handle and is safe to call from any goroutine.
func (s *slot) stopNow(wait time.Duration) error {
	s.mu.Lock()
	h := s.h
	if h == nil {
		s.mu.Unlock()
		return nil
	}
	old := s.state
	s.state = StateStopping
	s.mu.Unlock()
	noteTransition(s.task.Name, old, StateStopping)

	h.stopReq.Store(true)
	terminate(h.cmd)
	select {
	case <-h.drainDone:
	case <-time.After(wait):
		s.snk.Line(s.task.Name, "stop timed out after "+wait.String()+", killing")
		kill(h.cmd)
		select {
		case <-h.drainDone:
		case <-time.After(killGrace):
			// unkillable child; release the slot anyway
		}
	}

	s.mu.Lock()
	if s.h == h {
		s.h = nil
	}
	if s.state == StateStopping {
		s.state = StateIdle
		noteTransition(s.task.Name, StateStopping, StateIdle)
	}
	s.mu.Unlock()
	return nil
}

// drain forwards the child's combined output to the sink line by line,
// then reaps the process and applies the exit transition. It is the only
// writer of the exit transition, which is what eliminates the stale-handle
// race the supervisor exists to prevent.
func (s *slot) drain(h *handle, r io.Reader) {
	defer close(h.drainDone)

	br := bufio.NewReader(r)
	for {
		line, err := br.ReadString('\n')
		if len(line) > 0 {
			// A trailing fragment without a newline is dropped once a stop
			// has been requested.
			if err == nil || !h.stopReq.Load() {
				text := strings.TrimRight(line, "\r\n")
				s.snk.Line(s.task.Name, text)
				if h.capture != nil {
					_, _ = io.WriteString(h.capture, text+"\n")
				}
			}
		}
		if err != nil {
			break
		}
	}

	werr := h.cmd.Wait()
	if h.capture != nil {
		_ = h.capture.Close()
	}
	s.finishRun(h, werr)
}

func (s *slot) finishRun(h *handle, werr error) {
	code := exitCode(werr)
	stopReq := h.stopReq.Load()

	final := StateIdle
	var reportErr error
	if !stopReq && code != 0 {
		final = StateFailed
		reportErr = werr
	}

	s.mu.Lock()
	if s.h != h {
		// The slot was force-released past killGrace and may already own a
		// newer run; a late exit from the old handle must not touch it.
		s.mu.Unlock()
		s.snk.Exited(s.task.Name, code, reportErr)
		return
	}
	s.h = nil
	old := s.state
	s.state = final
	s.stoppedAt = time.Now()
	s.exitCode = code
	s.exitErr = reportErr
	s.mu.Unlock()
	noteTransition(s.task.Name, old, final)

	metrics.IncStop(s.task.Name)
	metrics.ObserveRunDuration(s.task.Name, time.Since(h.startedAt).Seconds())
	if final == StateFailed {
		metrics.IncFailure(s.task.Name)
	}
	s.snk.Exited(s.task.Name, code, reportErr)
	if s.recordStop != nil {
		s.recordStop(s.Status())
	}
}

func (s *slot) setState(next State) {
	s.mu.Lock()
	old := s.state
	s.state = next
	s.mu.Unlock()
	noteTransition(s.task.Name, old, next)
}

func noteTransition(name string, from, to State) {
	if from == to {
		return
	}
	metrics.RecordStateTransition(name, from.String(), to.String())
	metrics.SetCurrentState(name, from.String(), false)
	metrics.SetCurrentState(name, to.String(), true)
}

// Status returns a snapshot of the slot.
func (s *slot) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := Status{
		Name:      s.task.Name,
		Group:     s.task.Group,
		State:     s.state.String(),
		Running:   s.state == StateRunning,
		RunID:     s.lastRunID,
		PID:       s.lastPID,
		StartedAt: s.lastStartedAt,
		StoppedAt: s.stoppedAt,
		ExitCode:  s.exitCode,
	}
	if s.exitErr != nil {
		st.ExitErr = s.exitErr.Error()
	}
	return st
}

func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var ee *exec.ExitError
	if errors.As(err, &ee) {
		return ee.ExitCode()
	}
	return -1
}
