package main

import (
	"github.com/spf13/cobra"

	"github.com/raphi011/hookproxy/internal/config"
	"github.com/raphi011/hookproxy/internal/log"
	"github.com/raphi011/hookproxy/internal/output"
	"github.com/raphi011/hookproxy/internal/termout"
)

func newGitCmd() *cobra.Command {
	var intercept []string

	cmd := &cobra.Command{
		Use:         "git [--intercept hook,...] [--] <git args>...",
		Short:       "Run a git command with hook interception",
		GroupID:     GroupGit,
		Args:        cobra.MinimumNArgs(1),
		Annotations: map[string]string{annotationNeedsGit: "true"},
		Long: `Run a git command with the repository's hooks intercepted.

Every hook found in the repository's hooks directory (core.hooksPath or
.git/hooks) runs in your login shell environment. With --intercept, only the
named hooks are intercepted; the others run the way git runs them.

The exit code is the exit code of git.`,
		Example: `  hookproxy git commit -m "fix: typo"
  hookproxy git --intercept pre-commit -- commit -m "wip"
  hookproxy git -v push origin main`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			l := log.FromContext(ctx)
			out := output.FromContext(ctx)
			dir := config.WorkDirFromContext(ctx)

			in, err := startInterception(ctx, dir, intercept)
			if err != nil {
				return err
			}
			defer in.close()

			b := termout.NewBroadcaster(printOutput(out.Writer()), in.config(ctx).Output.Capacity)
			code, err := runGitOperation(ctx, in, dir, args, b)
			if err != nil {
				return err
			}
			l.Debug("git done", "args", args, "exit", code)
			if code != 0 {
				return &exitCodeError{code: code}
			}
			return nil
		},
	}

	// Everything after the first git argument belongs to git.
	cmd.Flags().SetInterspersed(false)
	cmd.Flags().StringSliceVarP(&intercept, "intercept", "i", nil, "Only intercept these hooks (default: all)")
	cmd.RegisterFlagCompletionFunc("intercept", completeHookNames)

	return cmd
}
