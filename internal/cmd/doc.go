// Package cmd provides helpers for executing external commands with proper
// error handling and verbose logging.
//
// Failed commands return their trimmed stderr as the error message, which
// makes git and shell failures readable without extra wrapping. A command
// stopped by context cancellation returns the context error instead.
//
// # Usage
//
//	if err := cmd.RunContext(ctx, repo, "git", "fetch"); err != nil {
//	    return fmt.Errorf("fetch: %w", err)
//	}
//
//	out, err := cmd.OutputContext(ctx, repo, "git", "rev-parse", "HEAD")
//
// Commands that need a custom environment or stdin are prepared by the caller
// and passed to [Output].
package cmd
