package hooks

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"sync/atomic"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/raphi011/hookproxy/internal/log"
	"github.com/raphi011/hookproxy/internal/shellenv"
	"github.com/raphi011/hookproxy/internal/termout"
)

// DefaultTerminateGrace is how long an aborted hook has between SIGTERM and
// SIGKILL.
const DefaultTerminateGrace = 3 * time.Second

// exitTimeout bounds reporting the exit code over a connection.
const exitTimeout = 5 * time.Second

// HookFinder resolves a hook name to the repository's hook executable.
type HookFinder interface {
	FindHook(name string) (path string, ok bool)
}

// EnvLoader produces the environment snapshot a hook starts from.
type EnvLoader interface {
	Load(ctx context.Context, cwd string, kind shellenv.Kind) (shellenv.Env, error)
}

// ShellResolver resolves the shell a hook runs in.
type ShellResolver interface {
	Resolve(kind shellenv.Kind) (shellenv.Shell, error)
}

// Handler runs intercepted hook invocations. It keeps no per-invocation
// state, so one Handler may serve concurrent invocations.
type Handler struct {
	Hooks     HookFinder
	Env       EnvLoader
	Shells    ShellResolver
	ShellKind shellenv.Kind
	Policy    EnvPolicy

	// Tolerate extends the built-in set of silently tolerated hooks.
	Tolerate []string

	OnProgress func(Progress)
	OnFailure  func(ctx context.Context, hook string, stderr []byte) FailureAction

	// TerminateGrace overrides DefaultTerminateGrace when positive.
	TerminateGrace time.Duration
}

// Handle runs one invocation to completion and reports its exit code over
// conn. It always calls conn.Exit, whatever happens.
func (h *Handler) Handle(ctx context.Context, conn Connection) Result {
	exitCtx := context.WithoutCancel(ctx)

	ctx, abort := context.WithCancelCause(ctx)
	defer abort(nil)
	go func() {
		select {
		case <-conn.Done():
			abort(ErrAborted)
		case <-ctx.Done():
		}
	}()

	res := h.run(ctx, abort, conn)
	if res.started {
		status := StatusFinished
		if res.Outcome == Failed || res.Outcome == Aborted {
			status = StatusFailed
		}
		h.progress(Progress{Hook: res.Hook, Status: status})
	}

	l := log.FromContext(ctx)
	l.Debug("hook done", "hook", res.Hook, "outcome", res.Outcome, "exit", res.ExitCode, "elapsed", res.Duration)

	ectx, cancel := context.WithTimeout(exitCtx, exitTimeout)
	defer cancel()
	if err := conn.Exit(ectx, res.ExitCode); err != nil {
		l.Debug("failed to exit proxy", "hook", res.Hook, "err", err)
	}
	return res
}

func (h *Handler) run(ctx context.Context, abort context.CancelCauseFunc, conn Connection) Result {
	args, err := conn.Args(ctx)
	if err != nil {
		return h.fail(ctx, conn, Result{}, "Error: could not read hook arguments: %v", err)
	}
	if len(args) == 0 {
		return h.fail(ctx, conn, Result{}, "Error: hook invocation without arguments")
	}
	res := Result{Hook: HookName(args[0]), HookCode: -1}

	invEnv, err := conn.Env(ctx)
	if err != nil {
		return h.fail(ctx, conn, res, "Error: could not read hook environment: %v", err)
	}
	cwd, err := conn.Cwd(ctx)
	if err != nil {
		return h.fail(ctx, conn, res, "Error: could not read hook working directory: %v", err)
	}
	safeEnv := h.Policy.Apply(invEnv)

	hookPath, ok := h.Hooks.FindHook(res.Hook)
	if !ok {
		return h.fail(ctx, conn, res, "Error: hook executable not found for %s", res.Hook)
	}

	h.progress(Progress{Hook: res.Hook, Status: StatusStarted, Abort: func() { abort(ErrAborted) }})
	res.started = true

	if ctx.Err() != nil {
		return aborted(ctx, res)
	}
	shellEnv, err := h.Env.Load(ctx, cwd, h.ShellKind)
	if err != nil {
		if ctx.Err() != nil {
			return aborted(ctx, res)
		}
		return h.fail(ctx, conn, res, "%s", envErrorMessage(err))
	}
	shell, err := h.Shells.Resolve(h.ShellKind)
	if err != nil {
		return h.fail(ctx, conn, res, "%s", envErrorMessage(err))
	}

	if ctx.Err() != nil {
		return aborted(ctx, res)
	}

	env := shellenv.Merge(shellEnv, safeEnv, shellenv.Env{MarkerVar: "1"})
	argv := append([]string{hookPath}, args[1:]...)
	return h.spawn(ctx, abort, conn, res, shell, argv, env, cwd)
}

func (h *Handler) spawn(ctx context.Context, abort context.CancelCauseFunc, conn Connection, res Result, shell shellenv.Shell, argv []string, env shellenv.Env, cwd string) Result {
	l := log.FromContext(ctx)
	grace := h.TerminateGrace
	if grace <= 0 {
		grace = DefaultTerminateGrace
	}

	cmd := shell.Command(ctx, argv...)
	cmd.Env = env.Environ()
	cmd.Dir = cwd
	setProcessGroup(cmd)
	var killTimer atomic.Pointer[time.Timer]
	cmd.Cancel = func() error {
		killTimer.Store(time.AfterFunc(grace, func() { killProcessGroup(cmd) }))
		return terminateProcessGroup(cmd)
	}
	cmd.WaitDelay = grace + time.Second

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return h.fail(ctx, conn, res, "Error: command failed: %v", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return h.fail(ctx, conn, res, "Error: command failed: %v", err)
	}
	var stdin io.WriteCloser
	if conn.StdinConnected() {
		if stdin, err = cmd.StdinPipe(); err != nil {
			return h.fail(ctx, conn, res, "Error: command failed: %v", err)
		}
	}

	start := time.Now()
	if err := cmd.Start(); err != nil {
		if ctx.Err() != nil {
			return aborted(ctx, res)
		}
		return h.fail(ctx, conn, res, "Error: command failed: %v", err)
	}
	l.Debug("hook started", "hook", res.Hook, "pid", cmd.Process.Pid, "shell", shell.Path)

	// Pipe reads must not outlive an abort even if a grandchild that escaped
	// the process group keeps the write ends open.
	stopCloser := context.AfterFunc(ctx, func() {
		time.AfterFunc(grace+time.Second, func() {
			stdout.Close()
			stderr.Close()
		})
	})
	defer stopCloser()

	if stdin != nil {
		go func() {
			_, err := io.Copy(stdin, conn.Stdin())
			stdin.Close()
			if err != nil && !isClosedPipe(err) && ctx.Err() == nil {
				abort(fmt.Errorf("%w: stdin: %v", ErrStreamPipe, err))
			}
		}()
	}

	errOut := termout.NewBuffer(termout.DefaultCapacity)
	pipe := func(name string, dst io.Writer, src io.Reader) func() error {
		return func() error {
			_, err := io.Copy(dst, src)
			if err == nil || ctx.Err() != nil {
				return nil
			}
			err = fmt.Errorf("%w: %s: %v", ErrStreamPipe, name, err)
			abort(err)
			return err
		}
	}
	var g errgroup.Group
	g.Go(pipe("stdout", conn.Stdout(), stdout))
	g.Go(pipe("stderr", io.MultiWriter(errOut, conn.Stderr()), stderr))
	pipeErr := g.Wait()

	waitErr := cmd.Wait()
	res.Duration = time.Since(start)
	if t := killTimer.Load(); t != nil {
		t.Stop()
	}
	if waitErr != nil {
		l.Debug("hook wait", "hook", res.Hook, "err", waitErr)
	}

	code, signal := exitStatus(cmd.ProcessState)
	res.HookCode, res.Signal = code, signal
	fmt.Fprintln(conn.Stderr(), terminationLine(res.Hook, res.Duration, code, signal))

	switch {
	case ctx.Err() != nil:
		res = aborted(ctx, res)
		if pipeErr != nil {
			res.Err = pipeErr
		}
		res.ExitCode = nonZero(code)
	case code == 0:
		res.Outcome, res.ExitCode = Finished, 0
	case h.tolerated(res.Hook):
		res.Outcome, res.ExitCode = Tolerated, 0
	case h.OnFailure != nil && h.OnFailure(ctx, res.Hook, errOut.Bytes()) == FailureIgnore:
		res.Outcome, res.ExitCode = Tolerated, 0
	default:
		res.Outcome, res.ExitCode = Failed, nonZero(code)
	}
	return res
}

func (h *Handler) tolerated(name string) bool {
	return IsTolerated(name) || slices.Contains(h.Tolerate, name)
}

func (h *Handler) progress(p Progress) {
	if h.OnProgress != nil {
		h.OnProgress(p)
	}
}

// fail writes msg to the invocation's stderr and marks it failed with
// exit code 1.
func (h *Handler) fail(ctx context.Context, conn Connection, res Result, format string, args ...any) Result {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(conn.Stderr(), msg)
	if ctx.Err() != nil {
		return aborted(ctx, res)
	}
	res.Outcome = Failed
	res.ExitCode = 1
	res.Err = errors.New(msg)
	return res
}

func aborted(ctx context.Context, res Result) Result {
	res.Outcome = Aborted
	res.ExitCode = 1
	res.Err = context.Cause(ctx)
	if !errors.Is(res.Err, ErrAborted) && !errors.Is(res.Err, ErrStreamPipe) {
		res.Err = fmt.Errorf("%w: %v", ErrAborted, res.Err)
	}
	return res
}

func envErrorMessage(err error) string {
	var notFound *shellenv.ShellNotFoundError
	if errors.As(err, &notFound) {
		return fmt.Sprintf("Error: could not find the %s shell to run hooks in. %s", notFound.Kind, shellenv.Remedy(notFound.Kind))
	}
	return fmt.Sprintf("Error: could not load the environment of your login shell: %v", err)
}

// exitStatus returns the exit code, or -1 and the signal name when the
// process was killed by a signal.
func exitStatus(ps *os.ProcessState) (int, string) {
	if ps == nil {
		return -1, ""
	}
	if ws, ok := ps.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		return -1, ws.Signal().String()
	}
	return ps.ExitCode(), ""
}

func nonZero(code int) int {
	if code <= 0 {
		return 1
	}
	return code
}

func terminationLine(hook string, elapsed time.Duration, code int, signal string) string {
	elapsed = elapsed.Round(time.Millisecond)
	if signal != "" {
		return fmt.Sprintf("hook %s was terminated by signal %q after %s", hook, signal, elapsed)
	}
	return fmt.Sprintf("hook %s exited with code %d after %s", hook, code, elapsed)
}

func isClosedPipe(err error) bool {
	return errors.Is(err, syscall.EPIPE) || errors.Is(err, os.ErrClosed) || errors.Is(err, io.ErrClosedPipe)
}
