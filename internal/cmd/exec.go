package cmd

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os/exec"
	"strings"
	"time"

	"github.com/raphi011/hookproxy/internal/log"
)

// RunContext executes name in dir and returns stderr in the error if it fails.
func RunContext(ctx context.Context, dir, name string, args ...string) error {
	c := exec.CommandContext(ctx, name, args...)
	c.Dir = dir
	_, err := Output(ctx, c)
	return err
}

// OutputContext executes name in dir and returns stdout, with stderr in the
// error if it fails.
func OutputContext(ctx context.Context, dir, name string, args ...string) ([]byte, error) {
	c := exec.CommandContext(ctx, name, args...)
	c.Dir = dir
	return Output(ctx, c)
}

// Output runs a prepared command, logging it when verbose. c.Stdout and
// c.Stderr must be unset.
func Output(ctx context.Context, c *exec.Cmd) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	done := log.FromContext(ctx).Command(c.Dir, c.Args[0], c.Args[1:]...)
	start := time.Now()

	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = &stderr
	err := c.Run()
	done(time.Since(start))

	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, &Error{Msg: msg, Err: err}
		}
		return nil, err
	}
	return stdout.Bytes(), nil
}

// Stream runs a prepared command with stdout and stderr both written to w.
// started, if non-nil, is called once the process is running.
func Stream(ctx context.Context, c *exec.Cmd, w io.Writer, started func()) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	done := log.FromContext(ctx).Command(c.Dir, c.Args[0], c.Args[1:]...)
	start := time.Now()

	c.Stdout = w
	c.Stderr = w
	if err := c.Start(); err != nil {
		done(time.Since(start))
		return err
	}
	if started != nil {
		started()
	}
	err := c.Wait()
	done(time.Since(start))

	if err != nil && ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

// Error is a failed command whose stderr explains the failure.
type Error struct {
	Msg string
	Err error
}

func (e *Error) Error() string { return e.Msg }

func (e *Error) Unwrap() error { return e.Err }

// ExitCode returns the exit code of a failed command, or -1 if err does not
// come from a process that exited.
func ExitCode(err error) int {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}
