package main

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"charm.land/lipgloss/v2"
	"github.com/spf13/cobra"

	"github.com/raphi011/hookproxy/internal/history"
	"github.com/raphi011/hookproxy/internal/hooks"
	"github.com/raphi011/hookproxy/internal/output"
	"github.com/raphi011/hookproxy/internal/ui/static"
	"github.com/raphi011/hookproxy/internal/ui/styles"
)

func newHistoryCmd() *cobra.Command {
	var (
		limit      int
		hook       string
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:     "history",
		Short:   "Show recent hook runs",
		GroupID: GroupInspect,
		Args:    cobra.NoArgs,
		Example: `  hookproxy history
  hookproxy history -n 5 --hook pre-commit
  hookproxy history --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := output.FromContext(ctx)

			path, err := history.Path()
			if err != nil {
				return err
			}
			h, err := history.Load(path)
			if err != nil {
				return fmt.Errorf("load history: %w", err)
			}

			var entries []history.Entry
			for _, e := range h.Recent(0) {
				if hook != "" && e.Hook != hook {
					continue
				}
				entries = append(entries, e)
				if limit > 0 && len(entries) == limit {
					break
				}
			}

			if jsonOutput {
				if entries == nil {
					entries = []history.Entry{}
				}
				return out.JSON(entries)
			}

			if len(entries) == 0 {
				out.Println("No hook runs recorded")
				return nil
			}
			out.Print(static.RenderTable(historyColumns, historyRows(entries, time.Now())))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "number", "n", 20, "Number of runs to show (0 for all)")
	cmd.Flags().StringVar(&hook, "hook", "", "Only show runs of this hook")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	cmd.RegisterFlagCompletionFunc("hook", completeHookNames)

	return cmd
}

var historyColumns = []static.Column{
	{Title: "TIME"},
	{Title: "REPO"},
	{Title: "HOOK"},
	{Title: "OUTCOME", Style: outcomeStyle},
	{Title: "EXIT", Right: true},
	{Title: "DURATION", Right: true},
}

// outcomeStyle colors an OUTCOME cell as rendered by historyRows.
func outcomeStyle(outcome string) lipgloss.Style {
	switch outcome {
	case string(hooks.Finished):
		return styles.SuccessStyle
	case string(hooks.Failed):
		return styles.ErrorStyle
	case strings.ReplaceAll(string(hooks.Tolerated), "-", " "):
		return styles.WarningStyle
	}
	return styles.MutedStyle
}

func historyRows(entries []history.Entry, now time.Time) [][]string {
	rows := make([][]string, len(entries))
	for i, e := range entries {
		exit := fmt.Sprint(e.ExitCode)
		if e.Signal != "" {
			exit = e.Signal
		}
		rows[i] = []string{
			formatAge(now.Sub(e.Time)),
			filepath.Base(e.Repo),
			e.Hook,
			strings.ReplaceAll(e.Outcome, "-", " "),
			exit,
			e.Duration.Round(time.Millisecond).String(),
		}
	}
	return rows
}

// formatAge renders d like "3m ago", coarsening with age.
func formatAge(d time.Duration) string {
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d/time.Minute))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d/time.Hour))
	}
	return fmt.Sprintf("%dd ago", int(d/(24*time.Hour)))
}
