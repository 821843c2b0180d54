package doctor

import (
	"context"
	"fmt"
	"io"

	"github.com/raphi011/hookproxy/internal/config"
	"github.com/raphi011/hookproxy/internal/hooks"
)

// Options configures Run.
type Options struct {
	// Config is the effective config; its [shell] table selects the shell.
	Config *config.Config
	// ConfigErr is the error of loading the global config, if any.
	ConfigErr error
	// Repo is the repository root; empty outside a repository.
	Repo string
	// Dir is the directory the login shell environment is loaded in.
	Dir string

	HistoryPath string
	// SessionRoot is the directory proxy sessions are created in.
	SessionRoot string

	Shells hooks.ShellResolver
	// Env loads the login shell environment. Nil skips that check.
	Env hooks.EnvLoader

	Fix bool
	Out io.Writer
}

// Run performs the diagnostic checks and optionally fixes issues. It
// returns the issues that remain.
func Run(ctx context.Context, opts Options) ([]Issue, error) {
	w := opts.Out
	if w == nil {
		w = io.Discard
	}

	var stats IssueStats
	var allIssues []Issue

	// Category 1: Setup
	fmt.Fprintln(w, "Checking git and shell...")
	setupIssues, ok := checkSetupIssues(ctx, opts)
	allIssues = append(allIssues, categorize(setupIssues, CategorySetup)...)
	stats.SetupOK = ok

	// Category 2: Config files
	fmt.Fprintln(w, "Checking config...")
	configIssues, checked := checkConfigIssues(opts)
	allIssues = append(allIssues, categorize(configIssues, CategoryConfig)...)
	stats.ConfigFiles = checked
	stats.ConfigIssues = len(configIssues)

	// Category 3: History
	fmt.Fprintln(w, "Checking history...")
	historyIssues := checkHistoryIssues(opts.HistoryPath)
	allIssues = append(allIssues, categorize(historyIssues, CategoryHistory)...)
	stats.HistoryIssues = len(historyIssues)

	// Category 4: Sessions
	if opts.SessionRoot != "" {
		fmt.Fprintln(w, "Checking proxy sessions...")
		sessionIssues, live, err := checkSessionIssues(opts.SessionRoot)
		if err != nil {
			return nil, fmt.Errorf("list sessions: %w", err)
		}
		allIssues = append(allIssues, categorize(sessionIssues, CategorySession)...)
		stats.SessionsLive = live
		stats.SessionsStale = len(sessionIssues)
	}

	printSummary(w, stats)

	if len(allIssues) == 0 {
		fmt.Fprintln(w, "\n✓ No issues found")
		return nil, nil
	}

	fmt.Fprintf(w, "\nFound %d issues:\n", len(allIssues))
	printIssuesByCategory(w, allIssues)

	if opts.Fix {
		fmt.Fprintln(w)
		return fixAllIssues(w, allIssues), nil
	}

	if fixable(allIssues) {
		fmt.Fprintln(w, "\nRun 'hookproxy doctor --fix' to repair.")
	}
	return allIssues, nil
}

func categorize(issues []Issue, cat IssueCategory) []Issue {
	for i := range issues {
		issues[i].Category = cat
	}
	return issues
}

func fixable(issues []Issue) bool {
	for _, issue := range issues {
		if issue.FixAction != FixNone {
			return true
		}
	}
	return false
}

// printSummary prints a categorized summary.
func printSummary(w io.Writer, stats IssueStats) {
	fmt.Fprintln(w)

	if stats.SetupOK > 0 {
		fmt.Fprintf(w, "  ✓ %d setup checks passed\n", stats.SetupOK)
	}

	valid := stats.ConfigFiles - stats.ConfigIssues
	fmt.Fprintf(w, "  ✓ %d config files valid\n", valid)
	if stats.ConfigIssues > 0 {
		fmt.Fprintf(w, "  ✗ %d config files invalid\n", stats.ConfigIssues)
	}

	if stats.HistoryIssues > 0 {
		fmt.Fprintln(w, "  ⚠ history unreadable")
	}

	if stats.SessionsLive > 0 {
		fmt.Fprintf(w, "  ✓ %d proxy sessions running\n", stats.SessionsLive)
	}
	if stats.SessionsStale > 0 {
		fmt.Fprintf(w, "  ⚠ %d stale proxy sessions\n", stats.SessionsStale)
	}
}

// printIssuesByCategory groups and prints issues.
func printIssuesByCategory(w io.Writer, issues []Issue) {
	byCategory := make(map[IssueCategory][]Issue)
	for _, issue := range issues {
		byCategory[issue.Category] = append(byCategory[issue.Category], issue)
	}

	categoryNames := map[IssueCategory]string{
		CategorySetup:   "Setup issues",
		CategoryConfig:  "Config issues",
		CategoryHistory: "History issues",
		CategorySession: "Session issues",
	}

	for _, cat := range []IssueCategory{CategorySetup, CategoryConfig, CategoryHistory, CategorySession} {
		catIssues := byCategory[cat]
		if len(catIssues) == 0 {
			continue
		}

		fmt.Fprintf(w, "\n%s:\n", categoryNames[cat])
		for _, issue := range catIssues {
			fmt.Fprintf(w, "  • %s: %s\n", issue.Key, issue.Description)
		}
	}
}
