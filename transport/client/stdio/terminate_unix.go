//go:build !windows

package stdio

import (
	"os/exec"
	"syscall"
)

// terminate requests graceful shutdown via SIGTERM, giving the child a
// chance to flush and exit before Close escalates to a hard kill.
func terminate(cmd *exec.Cmd) error {
	if cmd.Process == nil {
		return nil
	}
	return cmd.Process.Signal(syscall.SIGTERM)
}
