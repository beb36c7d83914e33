//go:build !windows
// +build !windows

package testreport

import (
	"os/exec"
	"syscall"
)

// setCmdProcessAttrs puts go test in its own process group so a terminal
// interrupt reaches bshim first. Cancellation kills the whole group,
// including the test binaries go test has started.
func setCmdProcessAttrs(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Setpgid: true,
	}
	cmd.Cancel = func() error {
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	}
}
