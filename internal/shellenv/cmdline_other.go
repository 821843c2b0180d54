//go:build !windows

package shellenv

import "os/exec"

func prepareCommandLine(*exec.Cmd, Shell, string) {}
