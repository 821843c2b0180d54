package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/raphi011/hookproxy/internal/config"
	"github.com/raphi011/hookproxy/internal/git"
	"github.com/raphi011/hookproxy/internal/log"
	"github.com/raphi011/hookproxy/internal/output"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "config",
		Short:   "Manage configuration",
		Aliases: []string{"cfg"},
		GroupID: GroupConfig,
		Long: `Manage hookproxy configuration.

Global config: ~/.config/hookproxy/config.toml ($HOOKPROXY_CONFIG overrides)
Local config:  .hookproxy.toml (in the repository root)`,
		Example: `  hookproxy config init          # Create default global config
  hookproxy config init --local  # Create local repo config
  hookproxy config show          # Show effective config`,
	}

	cmd.AddCommand(newConfigInitCmd())
	cmd.AddCommand(newConfigShowCmd())

	return cmd
}

func newConfigInitCmd() *cobra.Command {
	var (
		force  bool
		stdout bool
		local  bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create default config file",
		Args:  cobra.NoArgs,
		Long: `Create default config file.

Without flags, creates the global config. With --local, creates
.hookproxy.toml in the root of the current repository.`,
		Example: `  hookproxy config init           # Create global config
  hookproxy config init --local   # Create local repo config
  hookproxy config init -f        # Overwrite existing config
  hookproxy config init -s        # Print config to stdout`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := output.FromContext(ctx)

			if local {
				if stdout {
					out.Print(config.DefaultLocalConfig())
					return nil
				}
				repo, err := git.RepoRoot(ctx, config.WorkDirFromContext(ctx))
				if err != nil {
					return fmt.Errorf("not inside a git repository: %w", err)
				}
				path := filepath.Join(repo, config.LocalConfigFileName)
				if !force {
					if _, err := os.Stat(path); err == nil {
						return fmt.Errorf("local config already exists: %s (use -f to overwrite)", path)
					}
				}
				if err := os.WriteFile(path, []byte(config.DefaultLocalConfig()), 0o644); err != nil {
					return err
				}
				out.Printf("Created local config: %s\n", path)
				return nil
			}

			if stdout {
				out.Print(config.DefaultConfig())
				return nil
			}
			if !force {
				if path, err := config.Path(); err == nil {
					if _, err := os.Stat(path); err == nil {
						return fmt.Errorf("config file already exists: %s (use -f to overwrite)", path)
					}
				}
			}
			path, err := config.Init(force)
			if err != nil {
				return err
			}
			out.Printf("Created config file: %s\n", path)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite existing config")
	cmd.Flags().BoolVarP(&stdout, "stdout", "s", false, "Print config to stdout")
	cmd.Flags().BoolVar(&local, "local", false, "Create per-repo .hookproxy.toml instead of global config")

	return cmd
}

func newConfigShowCmd() *cobra.Command {
	var global bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show effective configuration",
		Args:  cobra.NoArgs,
		Long: `Show effective configuration as TOML.

Inside a repository the local .hookproxy.toml is merged in, unless --global
is set.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			l := log.FromContext(ctx)
			out := output.FromContext(ctx)

			if cfgErr != nil {
				return cfgErr
			}

			effCfg := config.FromContext(ctx)
			source := "global"
			if !global {
				if repo, err := git.RepoRoot(ctx, config.WorkDirFromContext(ctx)); err == nil {
					merged, err := config.ResolverFromContext(ctx).ConfigForRepo(repo)
					if err != nil {
						l.Printf("Warning: %v (using global config)\n", err)
					} else {
						effCfg = merged
						source = "global + " + filepath.Join(repo, config.LocalConfigFileName)
					}
				}
			}

			text, err := effCfg.TOML()
			if err != nil {
				return err
			}
			if path, err := config.Path(); err == nil {
				l.Printf("# %s (%s)\n", source, path)
			}
			out.Print(text)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&global, "global", "g", false, "Ignore the repository's local config")

	return cmd
}
