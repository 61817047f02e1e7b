//go:build windows

package stdio

import "os/exec"

// terminate has no graceful SIGTERM equivalent on Windows, so the first
// shutdown attempt is already a hard kill; Close's escalation step becomes
// a no-op retry of the same Kill.
func terminate(cmd *exec.Cmd) error {
	if cmd.Process == nil {
		return nil
	}
	return cmd.Process.Kill()
}
