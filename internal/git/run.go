package git

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"slices"
	"strings"

	"github.com/raphi011/hookproxy/internal/cmd"
	"github.com/raphi011/hookproxy/internal/termout"
)

// RunOptions configures Run.
type RunOptions struct {
	// ConfigArgs go before the subcommand, e.g. "-c", "core.hooksPath=...".
	ConfigArgs []string
	// Env is appended to the current process environment.
	Env   []string
	Stdin io.Reader

	// OnOutput is called with the operation's output once git is running.
	OnOutput termout.AvailableFunc
	// Capacity bounds the buffered output; 0 means termout.DefaultCapacity.
	Capacity int
}

// RunResult is a finished git operation.
type RunResult struct {
	ExitCode int
	Output   string // tail of the combined output
}

// ExitError is a git operation that exited non-zero.
type ExitError struct {
	Args   []string
	Code   int
	Output string
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("git %s exited with code %d", strings.Join(e.Args, " "), e.Code)
}

// Run runs one git operation in dir, streaming its combined output to a
// termout.Source. A non-zero exit returns the result together with an
// *ExitError.
func Run(ctx context.Context, dir string, args []string, opts RunOptions) (RunResult, error) {
	capacity := opts.Capacity
	if capacity <= 0 {
		capacity = termout.DefaultCapacity
	}
	src := termout.NewSource(capacity)

	full := gitArgs(dir, append(slices.Clone(opts.ConfigArgs), args...))
	c := exec.CommandContext(ctx, "git", full...)
	c.Env = append(os.Environ(), opts.Env...)
	c.Stdin = opts.Stdin

	var started func()
	if opts.OnOutput != nil {
		started = func() { opts.OnOutput(src) }
	}
	err := cmd.Stream(ctx, c, src, started)
	res := RunResult{ExitCode: cmd.ExitCode(err), Output: src.String()}
	switch {
	case err == nil:
		res.ExitCode = 0
		return res, nil
	case res.ExitCode > 0:
		return res, &ExitError{Args: args, Code: res.ExitCode, Output: res.Output}
	}
	return res, err
}
