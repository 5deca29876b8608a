//go:build windows

package supervisor

import "os/exec"

func setSysProcAttrs(_ *exec.Cmd) {}

// Windows has no process groups or SIGTERM; both paths hard-kill.
func terminate(cmd *exec.Cmd) {
	if cmd.Process == nil {
		return
	}
	_ = cmd.Process.Kill()
}

func kill(cmd *exec.Cmd) {
	if cmd.Process == nil {
		return
	}
	_ = cmd.Process.Kill()
}
