//go:build !windows

package supervisor

import (
	"os/exec"
	"syscall"
)

// setSysProcAttrs puts the child in its own process group so signals reach
// the whole camera pipeline, not just the leader.
func setSysProcAttrs(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

// terminate requests graceful shutdown of the child's process group.
func terminate(cmd *exec.Cmd) {
	if cmd.Process == nil {
		return
	}
	_ = syscall.Kill(-cmd.Process.Pid, syscall.SIGTERM)
}

// kill forcibly ends the child's process group.
func kill(cmd *exec.Cmd) {
	if cmd.Process == nil {
		return
	}
	_ = syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
}
