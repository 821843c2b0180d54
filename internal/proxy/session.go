package proxy

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/raphi011/hookproxy/internal/hooks"
	"github.com/raphi011/hookproxy/internal/log"
)

// StubCommand is the hidden subcommand the wrapper scripts call when the
// hooks directory cannot hold symlinks.
const StubCommand = "__stub"

// SessionPrefix starts the name of every session directory.
const SessionPrefix = "hookproxy-"

// Handler serves one intercepted invocation. *hooks.Handler implements it.
type Handler interface {
	Handle(ctx context.Context, conn hooks.Connection) hooks.Result
}

// Options configures a session.
type Options struct {
	Handler Handler

	// Hooks are the hook names routed to Handler.
	Hooks []string

	// Passthrough maps hook names to executables git should run directly,
	// bypassing the handler.
	Passthrough map[string]string

	// Executable is the hookproxy binary the hook links point to. Empty
	// means the running executable.
	Executable string

	// OnResult, when set, is called after each handled invocation.
	OnResult func(hooks.Result)
}

// Session is a running interception endpoint.
type Session struct {
	dir      string
	hooksDir string
	socket   string
	token    string

	ln  net.Listener
	srv *http.Server

	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup

	closeOnce sync.Once
	closeErr  error
}

// Start creates the session directory, installs the hook links and starts
// serving. The caller must Close the session.
func Start(ctx context.Context, opts Options) (*Session, error) {
	if opts.Handler == nil {
		return nil, errors.New("proxy: no handler")
	}
	exe := opts.Executable
	if exe == "" {
		var err error
		if exe, err = os.Executable(); err != nil {
			return nil, fmt.Errorf("locate hookproxy executable: %w", err)
		}
	}

	dir, err := os.MkdirTemp("", SessionPrefix)
	if err != nil {
		return nil, fmt.Errorf("create session directory: %w", err)
	}
	s := &Session{
		dir:      dir,
		hooksDir: filepath.Join(dir, "hooks"),
		socket:   filepath.Join(dir, socketName),
		token:    uuid.NewString(),
	}
	if err := s.install(exe, opts); err != nil {
		os.RemoveAll(dir)
		return nil, err
	}

	ln, err := net.Listen("unix", s.socket)
	if err != nil {
		os.RemoveAll(dir)
		return nil, fmt.Errorf("listen on %s: %w", s.socket, err)
	}
	s.ln = ln
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.srv = &http.Server{Handler: s.serveHTTP(opts)}

	l := log.FromContext(ctx)
	l.Debug("proxy session started", "dir", dir, "hooks", len(opts.Hooks), "passthrough", len(opts.Passthrough))
	go func() {
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			l.Debug("proxy serve", "err", err)
		}
	}()
	return s, nil
}

func (s *Session) install(exe string, opts Options) error {
	if err := os.Mkdir(s.hooksDir, 0o700); err != nil {
		return fmt.Errorf("create hooks directory: %w", err)
	}
	for _, name := range opts.Hooks {
		if err := installHook(s.hooksDir, name, exe, []string{StubCommand, name}); err != nil {
			return err
		}
	}
	for name, path := range opts.Passthrough {
		if err := installHook(s.hooksDir, name, path, nil); err != nil {
			return err
		}
	}
	return nil
}

// installHook links dir/name to target. If symlinks are not available it
// writes a shell wrapper that execs target with wrapperArgs.
func installHook(dir, name, target string, wrapperArgs []string) error {
	if !hooks.IsKnown(name) {
		return fmt.Errorf("invalid hook name %q", name)
	}
	path := filepath.Join(dir, name)
	if err := os.Symlink(target, path); err == nil {
		return nil
	}
	script := "#!/bin/sh\nexec " + shellQuote(target)
	for _, a := range wrapperArgs {
		script += " " + shellQuote(a)
	}
	script += " \"$@\"\n"
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		return fmt.Errorf("install hook %s: %w", name, err)
	}
	return nil
}

func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

func (s *Session) serveHTTP(opts Options) http.Handler {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  chunkSize,
		WriteBufferSize: chunkSize,
		// Only local stubs reach the socket; they send no Origin.
		CheckOrigin: func(*http.Request) bool { return true },
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		l := log.FromContext(s.ctx)
		token := r.Header.Get(tokenHeader)
		if subtle.ConstantTimeCompare([]byte(token), []byte(s.token)) != 1 {
			l.Debug("proxy connection rejected", "reason", "invalid token")
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		if !s.track() {
			http.Error(w, "session closed", http.StatusServiceUnavailable)
			return
		}
		defer s.wg.Done()

		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			l.Debug("proxy upgrade failed", "err", err)
			return
		}
		c, err := accept(ws)
		if err != nil {
			l.Debug("proxy handshake failed", "err", err)
			ws.Close()
			return
		}
		res := opts.Handler.Handle(s.ctx, c)
		// No-op unless the handler forgot to exit.
		c.Exit(context.WithoutCancel(s.ctx), res.ExitCode)
		if opts.OnResult != nil {
			opts.OnResult(res)
		}
	})
}

// track registers an in-flight connection unless the session is closing.
func (s *Session) track() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	s.wg.Add(1)
	return true
}

// Dir is the session's private directory.
func (s *Session) Dir() string { return s.dir }

// HooksDir is the directory git must use as core.hooksPath.
func (s *Session) HooksDir() string { return s.hooksDir }

// GitArgs returns the git options that route hooks through the session.
func (s *Session) GitArgs() []string {
	return []string{"-c", "core.hooksPath=" + s.hooksDir}
}

// Env returns the variables a stub needs to reach the session, in
// NAME=VALUE form.
func (s *Session) Env() []string {
	return []string{SocketEnv + "=" + s.socket, TokenEnv + "=" + s.token}
}

// Close stops accepting connections, aborts in-flight invocations, waits
// for their handlers and removes the session directory.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.closed = true
		s.mu.Unlock()

		s.cancel()
		err := s.srv.Close()
		s.wg.Wait()
		if rmErr := os.RemoveAll(s.dir); rmErr != nil && err == nil {
			err = rmErr
		}
		s.closeErr = err
	})
	return s.closeErr
}
