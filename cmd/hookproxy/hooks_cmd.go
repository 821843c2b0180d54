package main

import (
	"fmt"
	"slices"

	"charm.land/lipgloss/v2"
	"github.com/spf13/cobra"

	"github.com/raphi011/hookproxy/internal/config"
	"github.com/raphi011/hookproxy/internal/git"
	"github.com/raphi011/hookproxy/internal/hooks"
	"github.com/raphi011/hookproxy/internal/output"
	"github.com/raphi011/hookproxy/internal/ui/static"
	"github.com/raphi011/hookproxy/internal/ui/styles"
)

func newHooksCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:               "hooks [name]",
		Short:             "List the repository's hooks",
		GroupID:           GroupInspect,
		Args:              cobra.MaximumNArgs(1),
		Annotations:       map[string]string{annotationNeedsGit: "true"},
		ValidArgsFunction: completeHookNames,
		Long: `List the hooks hookproxy would intercept in the current repository.

With a name, print the path of that hook. Misspelled names get suggestions.`,
		Example: `  hookproxy hooks
  hookproxy hooks pre-commit`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := output.FromContext(ctx)

			dir := config.WorkDirFromContext(ctx)
			if !git.IsInsideRepoPath(ctx, dir) {
				return fmt.Errorf("not inside a git repository: %s", dir)
			}
			repo, err := git.RepoRoot(ctx, dir)
			if err != nil {
				return err
			}
			repoCfg, err := config.ResolverFromContext(ctx).ConfigForRepo(repo)
			if err != nil {
				return err
			}
			repoHooks, err := git.LoadRepoHooks(ctx, repo)
			if err != nil {
				return err
			}

			if len(args) == 1 {
				name := args[0]
				if err := validateHookNames(args); err != nil {
					return err
				}
				path, ok := repoHooks.FindHook(name)
				if !ok {
					return fmt.Errorf("no %s hook in %s", name, repoHooks.Dir)
				}
				out.Println(path)
				return nil
			}

			list, err := repoHooks.List()
			if err != nil {
				return err
			}
			if len(list) == 0 {
				out.Printf("No hooks in %s\n", repoHooks.Dir)
				return nil
			}
			rows := make([][]string, len(list))
			for i, h := range list {
				rows[i] = []string{h.Name, h.Path, hookNote(h.Name, repoCfg.Hooks.Tolerate)}
			}
			out.Print(static.RenderTable(hooksColumns, rows))
			return nil
		},
	}

	return cmd
}

var hooksColumns = []static.Column{
	{Title: "HOOK"},
	{Title: "PATH"},
	{Title: "NOTE", Style: func(string) lipgloss.Style { return styles.MutedStyle }},
}

// hookNote describes how a failure of the hook is treated.
func hookNote(name string, tolerate []string) string {
	switch {
	case hooks.IsTolerated(name):
		return "failure ignored"
	case slices.Contains(tolerate, name):
		return "failure ignored (config)"
	}
	return ""
}
