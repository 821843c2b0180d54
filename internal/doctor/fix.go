package doctor

import (
	"fmt"
	"io"
	"os"
)

// corruptSuffix is appended to a history file that is moved aside.
const corruptSuffix = ".corrupt"

// fixAllIssues applies fixes for all detected issues. It returns the issues
// that remain.
func fixAllIssues(w io.Writer, issues []Issue) []Issue {
	var (
		fixed  int
		failed []Issue
	)

	for _, issue := range issues {
		switch issue.FixAction {
		case FixRemoveSession:
			if err := os.RemoveAll(issue.Key); err != nil {
				fmt.Fprintf(w, "  ✗ Failed to remove %s: %v\n", issue.Key, err)
				failed = append(failed, issue)
				continue
			}
			fmt.Fprintf(w, "  ✓ Removed stale session %s\n", issue.Key)
			fixed++

		case FixResetHistory:
			if err := os.Rename(issue.Key, issue.Key+corruptSuffix); err != nil {
				fmt.Fprintf(w, "  ✗ Failed to reset history: %v\n", err)
				failed = append(failed, issue)
				continue
			}
			fmt.Fprintf(w, "  ✓ Moved unreadable history to %s\n", issue.Key+corruptSuffix)
			fixed++

		default:
			fmt.Fprintf(w, "  ⚠ Cannot fix %s automatically: %s\n", issue.Key, issue.Description)
			failed = append(failed, issue)
		}
	}

	if len(failed) > 0 {
		fmt.Fprintf(w, "\nFixed %d issues, %d remaining.\n", fixed, len(failed))
	} else {
		fmt.Fprintf(w, "\nFixed %d issues.\n", fixed)
	}
	return failed
}
