//go:build windows

package shellenv

import (
	"os/exec"
	"syscall"
)

// prepareCommandLine passes the cmd.exe command line verbatim; the default
// argument escaping of os/exec does not match cmd's parser.
func prepareCommandLine(c *exec.Cmd, s Shell, line string) {
	if s.dialect != dialectCmd {
		return
	}
	c.SysProcAttr = &syscall.SysProcAttr{
		CmdLine: `"` + s.Path + `" /s /c "` + line + `"`,
	}
}
