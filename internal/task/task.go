package task

import (
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/MBUFFMIRE/AICamera/internal/logger"
)

// DefaultGrace is how long a task gets to exit after SIGTERM before the
// supervisor escalates to SIGKILL, when the task does not set its own.
const DefaultGrace = 2 * time.Second

// Task describes one external camera-stack tool the supervisor manages.
// Arguments are opaque strings passed through unmodified. A Task is
// immutable once registered.
type Task struct {
	Name    string        `json:"name" mapstructure:"name"`
	Binary  string        `json:"binary" mapstructure:"binary"`
	Args    []string      `json:"args" mapstructure:"args"`
	WorkDir string        `json:"work_dir" mapstructure:"work_dir"`
	Env     []string      `json:"env" mapstructure:"env"`
	Grace   time.Duration `json:"grace" mapstructure:"grace"` // shutdown grace period
	// Group names a mutual-exclusion group: tasks sharing a group share one
	// display surface and may not run concurrently. Empty means unconstrained.
	Group   string               `json:"group" mapstructure:"group"`
	Capture logger.CaptureConfig `json:"capture" mapstructure:"capture"`
}

// Validate checks the fields a Task needs before it can be registered.
func (t Task) Validate() error {
	name := strings.TrimSpace(t.Name)
	if name == "" {
		return fmt.Errorf("task name is required")
	}
	if strings.ContainsAny(name, " \t\n\r/\\<>:\"|?*") {
		return fmt.Errorf("task %q: name contains invalid characters", name)
	}
	if strings.TrimSpace(t.Binary) == "" {
		return fmt.Errorf("task %q: binary is required", name)
	}
	if t.Grace < 0 {
		return fmt.Errorf("task %q: grace cannot be negative", name)
	}
	for i, kv := range t.Env {
		if !strings.Contains(kv, "=") {
			return fmt.Errorf("task %q: env[%d] %q must be KEY=VALUE", name, i, kv)
		}
	}
	return nil
}

// GracePeriod returns the configured shutdown grace or the default.
func (t Task) GracePeriod() time.Duration {
	if t.Grace > 0 {
		return t.Grace
	}
	return DefaultGrace
}

// BuildCommand constructs an *exec.Cmd for this task. The binary is
// resolved via the executable search path; absence surfaces as a launch
// failure at start time, not here.
func (t Task) BuildCommand() *exec.Cmd {
	// #nosec G204 -- task commands come from operator config
	cmd := exec.Command(t.Binary, t.Args...)
	if t.WorkDir != "" {
		cmd.Dir = t.WorkDir
	}
	if len(t.Env) > 0 {
		cmd.Env = t.Env
	}
	return cmd
}

// CommandLine renders the invocation for status messages.
func (t Task) CommandLine() string {
	return strings.Join(append([]string{t.Binary}, t.Args...), " ")
}
