//go:build !windows

package media

import (
	"os/exec"
	"syscall"
)

func suspendProcess(cmd *exec.Cmd) error {
	return cmd.Process.Signal(syscall.SIGSTOP)
}

func resumeProcess(cmd *exec.Cmd) error {
	return cmd.Process.Signal(syscall.SIGCONT)
}
