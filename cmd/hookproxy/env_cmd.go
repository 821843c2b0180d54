package main

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/raphi011/hookproxy/internal/config"
	"github.com/raphi011/hookproxy/internal/git"
	"github.com/raphi011/hookproxy/internal/hooks"
	"github.com/raphi011/hookproxy/internal/output"
	"github.com/raphi011/hookproxy/internal/shellenv"
)

func newEnvCmd() *cobra.Command {
	var (
		shell string
		raw   bool
	)

	cmd := &cobra.Command{
		Use:     "env",
		Short:   "Print the login-shell environment hooks run with",
		GroupID: GroupInspect,
		Args:    cobra.NoArgs,
		Long: `Print the environment a hook started in the current directory would see.

The environment is loaded by starting the configured shell as an interactive
login shell, exactly as for hooks. Use --shell to try another shell and --raw
to print the loader's wire format instead of sorted NAME=VALUE lines.`,
		Example: `  hookproxy env
  hookproxy env --shell fish
  hookproxy env --raw | od -c | head`,
		ValidArgsFunction: cobra.NoFileCompletions,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := output.FromContext(ctx)
			dir := config.WorkDirFromContext(ctx)

			effCfg := config.FromContext(ctx)
			if repo, err := git.RepoRoot(ctx, dir); err == nil {
				if effCfg, err = config.ResolverFromContext(ctx).ConfigForRepo(repo); err != nil {
					return err
				}
			}

			kind := effCfg.Shell.Kind
			if cmd.Flags().Changed("shell") {
				k, err := shellenv.ParseKind(shell)
				if err != nil {
					return err
				}
				kind = k
			}

			loader, closeLoader := envLoader(ctx, effCfg.Shell, shellenv.NewResolver())
			defer closeLoader()
			env, err := loader.Load(ctx, dir, kind)
			if err != nil {
				return envError(err)
			}
			env[hooks.MarkerVar] = "1"

			if raw {
				return shellenv.WriteEnv(out.Writer(), env.Environ())
			}
			lines := env.Environ()
			slices.Sort(lines)
			for _, line := range lines {
				out.Println(line)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&shell, "shell", "s", "", "Shell kind to load ("+joinKinds()+")")
	cmd.Flags().BoolVar(&raw, "raw", false, "Print the NUL-separated loader format")
	cmd.RegisterFlagCompletionFunc("shell", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return config.ValidShellKinds(), cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func joinKinds() string {
	return strings.Join(config.ValidShellKinds(), ", ")
}

// envError adds the remedy for a missing shell.
func envError(err error) error {
	var notFound *shellenv.ShellNotFoundError
	if errors.As(err, &notFound) {
		return fmt.Errorf("%w\n%s", err, shellenv.Remedy(notFound.Kind))
	}
	return err
}
