//go:build windows
// +build windows

package testreport

import "os/exec"

func setCmdProcessAttrs(cmd *exec.Cmd) {}
