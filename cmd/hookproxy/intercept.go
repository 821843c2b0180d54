package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/colorprofile"
	"github.com/mattn/go-isatty"

	"github.com/raphi011/hookproxy/internal/config"
	"github.com/raphi011/hookproxy/internal/git"
	"github.com/raphi011/hookproxy/internal/history"
	"github.com/raphi011/hookproxy/internal/hooks"
	"github.com/raphi011/hookproxy/internal/log"
	"github.com/raphi011/hookproxy/internal/proxy"
	"github.com/raphi011/hookproxy/internal/shellenv"
	"github.com/raphi011/hookproxy/internal/termout"
	"github.com/raphi011/hookproxy/internal/ui/prompt"
	"github.com/raphi011/hookproxy/internal/ui/styles"
)

// interception is a running proxy session for one repository. A nil
// *interception runs git without intercepting anything.
type interception struct {
	repo    string
	cfg     *config.Config
	session *proxy.Session
	cleanup []func()
}

// startInterception intercepts the hooks of the repository containing dir.
// Outside a repository it returns nil: there are no hooks to intercept.
func startInterception(ctx context.Context, dir string, only []string) (*interception, error) {
	l := log.FromContext(ctx)

	if err := validateHookNames(only); err != nil {
		return nil, err
	}

	repo, err := git.RepoRoot(ctx, dir)
	if err != nil {
		l.Debug("not inside a repository, hooks are not intercepted", "dir", dir)
		return nil, nil
	}

	repoCfg, err := config.ResolverFromContext(ctx).ConfigForRepo(repo)
	if err != nil {
		return nil, err
	}

	repoHooks, err := git.LoadRepoHooks(ctx, repo)
	if err != nil {
		return nil, err
	}
	present, err := repoHooks.List()
	if err != nil {
		return nil, fmt.Errorf("list hooks in %s: %w", repoHooks.Dir, err)
	}
	intercept, passthrough := selectHooks(present, only)
	l.Debug("hooks", "dir", repoHooks.Dir, "intercept", intercept, "passthrough", len(passthrough))

	in := &interception{repo: repo, cfg: repoCfg}

	shells := shellenv.NewResolver()
	loader, closeLoader := envLoader(ctx, repoCfg.Shell, shells)
	in.cleanup = append(in.cleanup, closeLoader)

	status := newStatusPrinter(os.Stderr, l.IsQuiet())
	policy := hooks.DefaultEnvPolicy()
	policy.AllowPrefixes = slices.Clone(repoCfg.Env.AllowPrefixes)
	policy = policy.WithDeny(repoCfg.Env.Deny...)

	handler := &hooks.Handler{
		Hooks:      repoHooks,
		Env:        loader,
		Shells:     shells,
		ShellKind:  repoCfg.Shell.Kind,
		Policy:     policy,
		Tolerate:   repoCfg.Hooks.Tolerate,
		OnProgress: status.progress,
		OnFailure:  failureAction(repoCfg.Hooks.OnFailure, stdinIsTerminal(), confirmIgnore),
	}

	record := recorder(ctx, repo, repoCfg.Output.HistoryLimit)
	session, err := proxy.Start(ctx, proxy.Options{
		Handler:     handler,
		Hooks:       intercept,
		Passthrough: passthrough,
		OnResult: func(res hooks.Result) {
			status.result(res)
			record(res)
		},
	})
	if err != nil {
		in.close()
		return nil, err
	}
	in.session = session
	return in, nil
}

func (in *interception) close() {
	if in == nil {
		return
	}
	if in.session != nil {
		in.session.Close()
	}
	for _, fn := range in.cleanup {
		fn()
	}
}

// config returns the repository's effective config, or the global config
// outside a repository.
func (in *interception) config(ctx context.Context) *config.Config {
	if in == nil || in.cfg == nil {
		return config.FromContext(ctx)
	}
	return in.cfg
}

// runOptions returns the git options that route hooks through the session.
func (in *interception) runOptions(opts git.RunOptions) git.RunOptions {
	if in == nil || in.session == nil {
		return opts
	}
	opts.ConfigArgs = append(opts.ConfigArgs, in.session.GitArgs()...)
	opts.Env = append(opts.Env, in.session.Env()...)
	return opts
}

func validateHookNames(names []string) error {
	for _, name := range names {
		if hooks.IsKnown(name) {
			continue
		}
		if s := hooks.Suggest(name, 1); len(s) > 0 {
			return fmt.Errorf("unknown hook %q, did you mean %q?", name, s[0])
		}
		return fmt.Errorf("unknown hook %q", name)
	}
	return nil
}

// selectHooks splits the repository's hooks into intercepted ones and ones
// git runs directly. An empty only intercepts every hook.
func selectHooks(present []git.Hook, only []string) (intercept []string, passthrough map[string]string) {
	passthrough = make(map[string]string)
	for _, h := range present {
		if len(only) == 0 || slices.Contains(only, h.Name) {
			intercept = append(intercept, h.Name)
			continue
		}
		passthrough[h.Name] = h.Path
	}
	return intercept, passthrough
}

// envLoader picks the environment source for hooks per the shell config.
func envLoader(ctx context.Context, sc config.ShellConfig, shells *shellenv.Resolver) (hooks.EnvLoader, func()) {
	if !sc.LoadEnv {
		return shellenv.HostEnv{}, func() {}
	}
	loader := &shellenv.Loader{Shells: shells}
	if !sc.CacheEnv {
		return loader, func() {}
	}

	loader.Cache = shellenv.NewCache(sc.CacheTTL)
	if home, err := os.UserHomeDir(); err == nil {
		if err := loader.Cache.Watch(ctx, shellenv.RCDirs(home)...); err != nil {
			log.FromContext(ctx).Debug("not watching shell profiles", "err", err)
		}
	}
	return loader, func() { loader.Cache.Close() }
}

// confirmFunc asks whether a failed hook should be ignored.
type confirmFunc func(hook string) (bool, error)

func confirmIgnore(hook string) (bool, error) {
	res, err := prompt.Confirm(fmt.Sprintf("hook %s failed, ignore and continue?", hook), prompt.Options{
		Output:  os.Stderr,
		Environ: os.Environ(),
	})
	if err != nil {
		return false, err
	}
	return res.Confirmed && !res.Cancelled, nil
}

// failureAction maps [hooks] on_failure to a Handler.OnFailure callback.
// Asking needs a terminal; without one the failure stands.
func failureAction(mode string, interactive bool, confirm confirmFunc) func(context.Context, string, []byte) hooks.FailureAction {
	switch mode {
	case config.OnFailureIgnore:
		return func(context.Context, string, []byte) hooks.FailureAction { return hooks.FailureIgnore }
	case config.OnFailureAsk:
		if !interactive || confirm == nil {
			return nil
		}
	default:
		return nil
	}

	var mu sync.Mutex
	return func(ctx context.Context, hook string, _ []byte) hooks.FailureAction {
		mu.Lock()
		defer mu.Unlock()
		if ctx.Err() != nil {
			return hooks.FailureReport
		}
		ok, err := confirm(hook)
		if err != nil {
			log.FromContext(ctx).Debug("failure prompt", "hook", hook, "err", err)
			return hooks.FailureReport
		}
		if ok {
			return hooks.FailureIgnore
		}
		return hooks.FailureReport
	}
}

func stdinIsTerminal() bool {
	fd := os.Stdin.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// recorder returns an OnResult callback that appends to the run history.
func recorder(ctx context.Context, repo string, limit int) func(hooks.Result) {
	l := log.FromContext(ctx)
	path, err := history.Path()
	if err != nil {
		l.Debug("hook runs are not recorded", "err", err)
		return func(hooks.Result) {}
	}
	return func(res hooks.Result) {
		if err := history.Record(path, limit, historyEntry(repo, res, time.Now())); err != nil {
			l.Debug("record hook run", "hook", res.Hook, "err", err)
		}
	}
}

func historyEntry(repo string, res hooks.Result, now time.Time) history.Entry {
	e := history.Entry{
		Hook:     res.Hook,
		Repo:     repo,
		Outcome:  string(res.Outcome),
		ExitCode: res.ExitCode,
		Signal:   res.Signal,
		Duration: res.Duration,
		Time:     now,
	}
	if res.Err != nil && !errors.Is(res.Err, context.Canceled) {
		e.Error = res.Err.Error()
	}
	return e
}

// statusPrinter writes hook status lines. Handlers call it from their own
// goroutines.
type statusPrinter struct {
	mu    sync.Mutex
	w     io.Writer
	quiet bool
}

func newStatusPrinter(w io.Writer, quiet bool) *statusPrinter {
	return &statusPrinter{w: colorprofile.NewWriter(w, os.Environ()), quiet: quiet}
}

func (p *statusPrinter) progress(ev hooks.Progress) {
	if ev.Status != hooks.StatusStarted {
		return
	}
	p.println(styles.HookStatus(ev.Hook, string(ev.Status)))
}

func (p *statusPrinter) result(res hooks.Result) {
	if res.Hook == "" || res.Outcome == "" {
		return
	}
	line := styles.HookStatus(res.Hook, string(res.Outcome))
	if res.Duration > 0 {
		line += " " + styles.Elapsed(res.Duration)
	}
	p.println(line)
}

func (p *statusPrinter) println(line string) {
	if p.quiet {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintln(p.w, line)
}

// printOutput returns an AvailableFunc that copies a stream to w.
func printOutput(w io.Writer) termout.AvailableFunc {
	var mu sync.Mutex
	return func(src termout.Subscriber) {
		src.Subscribe(func(o termout.Output) {
			mu.Lock()
			defer mu.Unlock()
			if o.Replay != nil {
				io.WriteString(w, strings.Join(o.Replay, ""))
				return
			}
			io.WriteString(w, o.Chunk)
		})
	}
}

// runGitOperation runs one git command, attaching its output to b. It
// returns git's exit code; err is only set when git could not be run.
func runGitOperation(ctx context.Context, in *interception, dir string, args []string, b *termout.Broadcaster) (int, error) {
	opts := in.runOptions(git.RunOptions{
		Stdin:    os.Stdin,
		OnOutput: b.Attach,
		Capacity: in.config(ctx).Output.Capacity,
	})
	res, err := git.Run(ctx, dir, args, opts)
	var exitErr *git.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code, nil
	}
	return res.ExitCode, err
}
