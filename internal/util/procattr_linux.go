//go:build linux

package util

import (
	"os/exec"
	"syscall"
)

// configureChild asks the kernel to SIGKILL the child if this process dies.
func configureChild(cmd *exec.Cmd) {
	if cmd.SysProcAttr == nil {
		cmd.SysProcAttr = &syscall.SysProcAttr{}
	}
	cmd.SysProcAttr.Pdeathsig = syscall.SIGKILL
}
