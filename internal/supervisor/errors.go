package supervisor

import (
	"errors"
	"fmt"
)

var (
	// ErrAlreadyRunning is returned by Start when the slot is not idle.
	ErrAlreadyRunning = errors.New("task already running")
	// ErrUnknownTask is returned for names that were never registered.
	ErrUnknownTask = errors.New("unknown task")
	// ErrShuttingDown is returned when the supervisor is tearing down.
	ErrShuttingDown = errors.New("supervisor shutting down")
)

// LaunchError wraps the OS error that prevented a task from spawning.
// The binary being absent from the search path surfaces here too.
type LaunchError struct {
	Task string
	Err  error
}

func (e *LaunchError) Error() string {
	return fmt.Sprintf("launch %s failed: %v", e.Task, e.Err)
}

func (e *LaunchError) Unwrap() error { return e.Err }

// IsLaunchError reports whether err is (or wraps) a LaunchError.
func IsLaunchError(err error) bool {
	var le *LaunchError
	return errors.As(err, &le)
}
