package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/colorprofile"
	"github.com/spf13/cobra"

	"github.com/raphi011/hookproxy/internal/config"
	"github.com/raphi011/hookproxy/internal/git"
	"github.com/raphi011/hookproxy/internal/log"
	"github.com/raphi011/hookproxy/internal/output"
	"github.com/raphi011/hookproxy/internal/ui/styles"
)

var (
	// Global flags
	verbose bool
	quiet   bool
)

// Command group IDs for organizing help output
const (
	GroupGit     = "git"
	GroupInspect = "inspect"
	GroupConfig  = "config"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "hookproxy",
	Short: "Run git with hooks in your login shell environment",
	Long: `hookproxy runs git commands and intercepts the repository's hooks.

Each intercepted hook runs in the environment of your interactive login
shell (version managers, PATH additions from your shell profile), receives
only the git variables of the invocation, and streams its output back to
git. Hook runs are recorded and can be listed with 'hookproxy history'.`,
	SilenceUsage:               true,
	SilenceErrors:              true,
	SuggestionsMinimumDistance: 2, // Enable typo suggestions
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Validate mutually exclusive flags
		if verbose && quiet {
			return fmt.Errorf("--verbose and --quiet are mutually exclusive")
		}

		// Flags are parsed by now, so the logger sees -v/-q.
		ctx := log.WithLogger(cmd.Context(), log.New(os.Stderr, verbose, quiet))
		cmd.SetContext(ctx)

		if cfgErr != nil && !skipsConfig(cmd) {
			return cfgErr
		}

		if !needsGit(cmd) {
			return nil
		}
		return git.CheckGit()
	},
	// Run is not set - shows help when no subcommand provided
}

// cfgErr is the error of loading the global config. Commands that repair,
// diagnose or print the config run anyway.
var cfgErr error

func skipsConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Name() == "config" || c.Name() == "doctor" || c.Name() == "help" || c.Name() == "completion" || c.Name() == "__complete" {
			return true
		}
	}
	// Hidden plumbing runs inside hooks and login shells.
	return cmd.Hidden
}

func needsGit(cmd *cobra.Command) bool {
	return cmd.Annotations[annotationNeedsGit] == "true"
}

const annotationNeedsGit = "needs-git"

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	cfg, err := config.Load()
	if err != nil {
		cfgErr = err
		cfg = config.Default()
	}

	workDir, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(os.Stderr, "hookproxy: failed to get working directory: %v\n", err)
		os.Exit(1)
	}

	styles.Init(colorprofile.Detect(os.Stderr, os.Environ()))

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	ctx = output.WithPrinter(ctx, os.Stdout)
	ctx = config.WithResolver(ctx, config.NewResolver(&cfg))
	ctx = config.WithWorkDir(ctx, workDir)

	rootCmd.SetContext(ctx)

	err = rootCmd.Execute()
	if err == nil {
		return
	}
	var exit *exitCodeError
	if errors.As(err, &exit) {
		cancel()
		os.Exit(exit.code)
	}
	fmt.Fprintln(os.Stderr, err)
	fmt.Fprintln(os.Stderr)
	fmt.Fprintln(os.Stderr, "Run 'hookproxy -h' for help")
	cancel()
	os.Exit(1)
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Show external commands and hook diagnostics")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress all log output")
	rootCmd.MarkFlagsMutuallyExclusive("verbose", "quiet")

	rootCmd.Version = versionString()
	rootCmd.SetVersionTemplate("{{.Version}}\n")

	rootCmd.AddGroup(
		&cobra.Group{ID: GroupGit, Title: "Git Commands:"},
		&cobra.Group{ID: GroupInspect, Title: "Inspection Commands:"},
		&cobra.Group{ID: GroupConfig, Title: "Configuration Commands:"},
	)

	// Git commands
	rootCmd.AddCommand(newGitCmd())
	rootCmd.AddCommand(newBatchCmd())

	// Inspection commands
	rootCmd.AddCommand(newHooksCmd())
	rootCmd.AddCommand(newEnvCmd())
	rootCmd.AddCommand(newHistoryCmd())

	// Config commands
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newDoctorCmd())

	// Hidden plumbing
	rootCmd.AddCommand(newPrintenvzCmd())
	rootCmd.AddCommand(newStubCmd())
}
