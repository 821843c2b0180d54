package shellenv

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/raphi011/hookproxy/internal/log"
)

// HelperCommand is the subcommand of the hookproxy binary that dumps its
// environment in the marker format.
const HelperCommand = "printenvz"

// LoadError is a failure to obtain an environment from a resolved shell.
type LoadError struct {
	Kind  Kind
	Shell string
	Err   error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load environment from %s shell %s: %v", e.Kind, e.Shell, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// waitDelay bounds how long a canceled load waits for the shell's output
// pipes to close.
const waitDelay = time.Second

// Loader loads login-shell environments.
type Loader struct {
	Shells *Resolver

	// Helper is the environment-dump program followed by its arguments.
	// Empty means the running executable with HelperCommand.
	Helper []string

	// Cache, when set, is consulted before spawning a shell.
	Cache *Cache
}

// NewLoader returns a loader using a fresh Resolver and the default helper.
func NewLoader() *Loader {
	return &Loader{Shells: NewResolver()}
}

// Load starts kind as an interactive login shell in cwd with an empty
// environment and returns the environment its profile produced.
//
// A missing shell yields *ShellNotFoundError; anything that goes wrong after
// resolution yields *LoadError.
func (l *Loader) Load(ctx context.Context, cwd string, kind Kind) (Env, error) {
	if l.Cache != nil {
		if env, ok := l.Cache.Get(kind, cwd); ok {
			log.FromContext(ctx).Debug("shell env cache hit", "kind", kind, "cwd", cwd)
			return env, nil
		}
	}

	shell, err := l.Shells.Resolve(kind)
	if err != nil {
		return nil, err
	}
	helper, err := l.helper()
	if err != nil {
		return nil, &LoadError{Kind: kind, Shell: shell.Path, Err: err}
	}

	c := shell.Command(ctx, helper...)
	c.Env = []string{}
	c.Dir = cwd
	detach(c)
	// Descendants that escaped the group kill may still hold stdout open.
	c.WaitDelay = waitDelay

	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = &stderr

	done := log.FromContext(ctx).Command(cwd, shell.Path, c.Args[1:]...)
	start := time.Now()
	runErr := c.Run()
	done(time.Since(start))

	env, parseErr := Parse(stdout.Bytes())
	switch {
	case parseErr == nil:
		if runErr != nil {
			// Logout scripts may fail after the helper already printed.
			log.FromContext(ctx).Debug("shell exited with error after printing env", "err", runErr)
		}
	case ctx.Err() != nil:
		return nil, ctx.Err()
	case runErr != nil:
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			runErr = fmt.Errorf("%w: %s", runErr, lastLine(msg))
		}
		return nil, &LoadError{Kind: kind, Shell: shell.Path, Err: runErr}
	default:
		return nil, &LoadError{Kind: kind, Shell: shell.Path, Err: parseErr}
	}

	if l.Cache != nil {
		l.Cache.Put(kind, cwd, env)
	}
	return env, nil
}

func (l *Loader) helper() ([]string, error) {
	if len(l.Helper) > 0 {
		return l.Helper, nil
	}
	exe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("locate helper: %w", err)
	}
	return []string{exe, HelperCommand}, nil
}

func lastLine(s string) string {
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		return s[i+1:]
	}
	return s
}

// HostEnv is an environment source that skips the shell and returns the
// environment of the running process.
type HostEnv struct{}

// Load returns the current process environment.
func (HostEnv) Load(context.Context, string, Kind) (Env, error) {
	return FromEnviron(os.Environ()), nil
}
