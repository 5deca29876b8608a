package client

import "time"

// TaskStatus mirrors the daemon's status JSON.
type TaskStatus struct {
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

// OutputLine is one retained display-surface line.
type OutputLine struct {
	Task string `json:"task"`
	Line string `json:"line"`
}
