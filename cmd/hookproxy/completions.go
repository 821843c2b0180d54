package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/raphi011/hookproxy/internal/hooks"
)

// completeHookNames completes git hook names.
func completeHookNames(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	// --intercept takes a comma-separated list; complete the last element.
	prefix := ""
	if i := strings.LastIndex(toComplete, ","); i >= 0 {
		prefix, toComplete = toComplete[:i+1], toComplete[i+1:]
	}
	var out []string
	for _, name := range hooks.Names {
		if strings.HasPrefix(name, toComplete) {
			out = append(out, prefix+name)
		}
	}
	return out, cobra.ShellCompDirectiveNoFileComp
}
