//go:build windows

package media

import (
	"errors"
	"os/exec"
)

var errSuspendUnsupported = errors.New("suspending the player is not supported on windows")

func suspendProcess(cmd *exec.Cmd) error {
	return errSuspendUnsupported
}

func resumeProcess(cmd *exec.Cmd) error {
	return errSuspendUnsupported
}
