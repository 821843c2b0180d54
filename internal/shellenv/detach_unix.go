//go:build unix

package shellenv

import (
	"errors"
	"os"
	"os/exec"
	"syscall"
)

// detach runs c in a new session so an interactive shell cannot take over
// the terminal hookproxy runs in. The session is also a process group;
// canceling c kills the whole group, including anything the profile or
// the helper left running.
func detach(c *exec.Cmd) {
	c.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
	c.Cancel = func() error {
		err := syscall.Kill(-c.Process.Pid, syscall.SIGKILL)
		if errors.Is(err, syscall.ESRCH) {
			return os.ErrProcessDone
		}
		return err
	}
}
