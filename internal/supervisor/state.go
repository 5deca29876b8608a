package supervisor

import "time"

// State is a task slot's lifecycle state.
//
// Idle -> Starting -> Running -> Stopping -> Idle, with Failed reachable
// from Starting (spawn error) or Running (unexpected exit). Failed is
// terminal for that run only; Start treats it like Idle.
type State int32

const (
	StateIdle State = iota
	StateStarting
	StateRunning
	StateStopping
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateStarting:
		return "starting"
	case StateRunning:
		return "running"
	case StateStopping:
		return "stopping"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// startable reports whether Start may proceed from this state.
func (s State) startable() bool { return s == StateIdle || s == StateFailed }

// Status is an externally consumable snapshot of one task slot.
type Status struct {
	Name      string    `json:"name"`
	Group     string    `json:"group,omitempty"`
	State     string    `json:"state"`
	Running   bool      `json:"running"`
	PID       int       `json:"pid,omitempty"`
	RunID     string    `json:"run_id,omitempty"`
	StartedAt time.Time `json:"started_at,omitempty"`
	StoppedAt time.Time `json:"stopped_at,omitempty"`
	ExitCode  int       `json:"exit_code"`
	ExitErr   string    `json:"exit_error,omitempty"`
}
