package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/raphi011/hookproxy/internal/config"
	"github.com/raphi011/hookproxy/internal/doctor"
	"github.com/raphi011/hookproxy/internal/git"
	"github.com/raphi011/hookproxy/internal/history"
	"github.com/raphi011/hookproxy/internal/output"
	"github.com/raphi011/hookproxy/internal/shellenv"
)

func newDoctorCmd() *cobra.Command {
	var (
		fix     bool
		loadEnv bool
	)

	cmd := &cobra.Command{
		Use:     "doctor",
		Short:   "Diagnose and repair issues",
		GroupID: GroupConfig,
		Args:    cobra.NoArgs,
		Long: `Diagnose and repair hookproxy issues.

Checks:
- git is installed
- The configured shell exists (and, with --env, its environment loads)
- The global config and the repository's .hookproxy.toml are valid
- The run history is readable
- No proxy sessions were left behind by killed processes

With --fix, stale sessions are removed and an unreadable history is moved
aside.`,
		Example: `  hookproxy doctor          # Check for issues
  hookproxy doctor --env    # Also start the login shell
  hookproxy doctor --fix    # Auto-fix recoverable issues`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := output.FromContext(ctx)
			dir := config.WorkDirFromContext(ctx)

			effCfg := config.FromContext(ctx)
			var repo string
			if root, err := git.RepoRoot(ctx, dir); err == nil {
				repo = root
				// An invalid local config is reported by the check itself.
				if merged, err := config.ResolverFromContext(ctx).ConfigForRepo(repo); err == nil {
					effCfg = merged
				}
			}

			shells := shellenv.NewResolver()
			opts := doctor.Options{
				Config:      effCfg,
				ConfigErr:   cfgErr,
				Repo:        repo,
				Dir:         dir,
				SessionRoot: os.TempDir(),
				Shells:      shells,
				Fix:         fix,
				Out:         out.Writer(),
			}
			if path, err := history.Path(); err == nil {
				opts.HistoryPath = path
			}
			if loadEnv {
				sc := effCfg.Shell
				sc.LoadEnv, sc.CacheEnv = true, false
				loader, closeLoader := envLoader(ctx, sc, shells)
				defer closeLoader()
				opts.Env = loader
			}

			issues, err := doctor.Run(ctx, opts)
			if err != nil {
				return err
			}
			if len(issues) > 0 {
				return fmt.Errorf("%d issues found", len(issues))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&fix, "fix", false, "Auto-fix recoverable issues")
	cmd.Flags().BoolVar(&loadEnv, "env", false, "Also load the login shell environment")

	return cmd
}
