package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/raphi011/hookproxy/internal/proxy"
	"github.com/raphi011/hookproxy/internal/shellenv"
)

const printenvzCmdName = shellenv.HelperCommand

// newPrintenvzCmd is the helper the environment loader runs inside the
// user's login shell.
func newPrintenvzCmd() *cobra.Command {
	return &cobra.Command{
		Use:    printenvzCmdName,
		Short:  "Print the environment between markers, NUL-separated",
		Hidden: true,
		Args:   cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return shellenv.WriteEnv(os.Stdout, os.Environ())
		},
	}
}

// newStubCmd is the hook entry point used where hook links cannot be
// symlinks.
func newStubCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:                proxy.StubCommand + " <hook> [args]...",
		Short:              "Forward a hook invocation to its hookproxy session",
		Hidden:             true,
		Args:               cobra.MinimumNArgs(1),
		DisableFlagParsing: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			code := runStub(args)
			if code != 0 {
				return &exitCodeError{code: code}
			}
			return nil
		},
	}
	return cmd
}

