package main

import (
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"github.com/raphi011/hookproxy/internal/config"
	"github.com/raphi011/hookproxy/internal/log"
	"github.com/raphi011/hookproxy/internal/output"
	"github.com/raphi011/hookproxy/internal/termout"
)

// batchSeparator separates the git commands of a batch.
const batchSeparator = ";"

func newBatchCmd() *cobra.Command {
	var (
		intercept []string
		copyOut   bool
		keepGoing bool
	)

	cmd := &cobra.Command{
		Use:         "batch [flags] -- <git args>... [';' <git args>...]...",
		Short:       "Run several git commands sharing one output stream",
		GroupID:     GroupGit,
		Args:        cobra.MinimumNArgs(1),
		Annotations: map[string]string{annotationNeedsGit: "true"},
		Long: `Run several git commands in sequence with hook interception.

Commands are separated by a standalone ';' (quote it from your shell). Their
output, including the output of every hook, is merged into one stream. The
batch stops at the first failing command unless --keep-going is set; the exit
code is the exit code of the first failing command.`,
		Example: `  hookproxy batch -- fetch origin \; rebase origin/main
  hookproxy batch --copy -- add -A \; commit -m "wip" \; push`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			l := log.FromContext(ctx)
			out := output.FromContext(ctx)
			dir := config.WorkDirFromContext(ctx)

			ops, err := splitBatch(args)
			if err != nil {
				return err
			}

			in, err := startInterception(ctx, dir, intercept)
			if err != nil {
				return err
			}
			defer in.close()

			b := termout.NewBroadcaster(printOutput(out.Writer()), in.config(ctx).Output.Capacity)
			firstFailure := 0
			for i, op := range ops {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				if len(ops) > 1 {
					b.Push(fmt.Sprintf("$ git %s\n", strings.Join(op, " ")))
				}
				code, err := runGitOperation(ctx, in, dir, op, b)
				if err != nil {
					return err
				}
				l.Debug("batch step done", "step", i+1, "args", op, "exit", code)
				if code != 0 && firstFailure == 0 {
					firstFailure = code
					if !keepGoing {
						break
					}
				}
			}

			if copyOut {
				if err := clipboard.WriteAll(b.String()); err != nil {
					l.Printf("Warning: could not copy output to the clipboard: %v\n", err)
				} else {
					l.Println("Output copied to the clipboard")
				}
			}

			if firstFailure != 0 {
				return &exitCodeError{code: firstFailure}
			}
			return nil
		},
	}

	cmd.Flags().SetInterspersed(false)
	cmd.Flags().StringSliceVarP(&intercept, "intercept", "i", nil, "Only intercept these hooks (default: all)")
	cmd.Flags().BoolVarP(&copyOut, "copy", "c", false, "Copy the merged output to the clipboard")
	cmd.Flags().BoolVarP(&keepGoing, "keep-going", "k", false, "Run every command even after a failure")
	cmd.RegisterFlagCompletionFunc("intercept", completeHookNames)

	return cmd
}

// splitBatch splits args at standalone separators into git commands.
func splitBatch(args []string) ([][]string, error) {
	var (
		ops [][]string
		cur []string
	)
	for _, a := range args {
		if a == batchSeparator {
			if len(cur) == 0 {
				return nil, fmt.Errorf("empty git command in batch")
			}
			ops = append(ops, cur)
			cur = nil
			continue
		}
		cur = append(cur, a)
	}
	if len(cur) == 0 {
		return nil, fmt.Errorf("empty git command in batch")
	}
	return append(ops, cur), nil
}
