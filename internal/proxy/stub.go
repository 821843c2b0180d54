package proxy

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gorilla/websocket"
	"github.com/mattn/go-isatty"

	"github.com/raphi011/hookproxy/internal/shellenv"
)

var (
	// ErrNoSession means the stub was started outside a hookproxy session.
	ErrNoSession = errors.New("not running under hookproxy")
	// ErrConnectionLost means the session went away before reporting an
	// exit code.
	ErrConnectionLost = errors.New("lost connection to hookproxy")
)

// dialWait bounds how long a stub keeps retrying the socket.
const dialWait = 2 * time.Second

// Stub is the git-facing end of an intercepted hook.
type Stub struct {
	Stdin    io.Reader
	Stdout   io.Writer
	Stderr   io.Writer
	HasStdin bool
	Environ  []string
	Cwd      string
}

// RunStub forwards the current process's hook invocation to its session and
// returns the exit code the process should exit with. args[0] names the
// hook.
func RunStub(ctx context.Context, args []string) (int, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return 1, err
	}
	fd := os.Stdin.Fd()
	s := Stub{
		Stdin:    os.Stdin,
		Stdout:   os.Stdout,
		Stderr:   os.Stderr,
		HasStdin: !isatty.IsTerminal(fd) && !isatty.IsCygwinTerminal(fd),
		Environ:  os.Environ(),
		Cwd:      cwd,
	}
	return s.Run(ctx, args)
}

// Run sends the invocation, relays stdio and waits for the exit frame.
func (s Stub) Run(ctx context.Context, args []string) (int, error) {
	env := shellenv.FromEnviron(s.Environ)
	socket := env[SocketEnv]
	if socket == "" {
		return 1, ErrNoSession
	}

	ws, err := dial(ctx, socket, env[TokenEnv])
	if err != nil {
		return 1, err
	}
	defer ws.Close()
	ws.SetReadLimit(maxFrameSize)

	var writeMu sync.Mutex
	send := func(f frame) error {
		writeMu.Lock()
		defer writeMu.Unlock()
		_ = ws.SetWriteDeadline(time.Now().Add(writeWait))
		return ws.WriteJSON(f)
	}

	hello := frame{Type: frameHello, Args: args, Env: env, Cwd: s.Cwd, Stdin: s.HasStdin && s.Stdin != nil}
	if err := send(hello); err != nil {
		return 1, fmt.Errorf("%w: %v", ErrConnectionLost, err)
	}
	if hello.Stdin {
		go pumpStdin(s.Stdin, send)
	}

	for {
		var f frame
		if err := ws.ReadJSON(&f); err != nil {
			return 1, fmt.Errorf("%w: %v", ErrConnectionLost, err)
		}
		switch f.Type {
		case frameStdout:
			s.Stdout.Write(f.Data)
		case frameStderr:
			s.Stderr.Write(f.Data)
		case frameExit:
			return f.Code, nil
		}
	}
}

func pumpStdin(r io.Reader, send func(frame) error) {
	buf := make([]byte, chunkSize)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			if send(frame{Type: frameStdin, Data: buf[:n]}) != nil {
				return
			}
		}
		if err != nil {
			send(frame{Type: frameStdinEOF})
			return
		}
	}
}

func dial(ctx context.Context, socket, token string) (*websocket.Conn, error) {
	d := websocket.Dialer{
		NetDialContext: func(ctx context.Context, _, _ string) (net.Conn, error) {
			var nd net.Dialer
			return nd.DialContext(ctx, "unix", socket)
		},
		HandshakeTimeout: helloWait,
		ReadBufferSize:   chunkSize,
		WriteBufferSize:  chunkSize,
	}
	header := http.Header{tokenHeader: []string{token}}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 20 * time.Millisecond
	b.MaxInterval = 500 * time.Millisecond
	b.MaxElapsedTime = dialWait

	var ws *websocket.Conn
	err := backoff.Retry(func() error {
		c, resp, err := d.DialContext(ctx, "ws://hookproxy/hook", header)
		if resp != nil && resp.Body != nil {
			resp.Body.Close()
		}
		switch {
		case err == nil:
			ws = c
			return nil
		case errors.Is(err, fs.ErrNotExist):
			return backoff.Permanent(fmt.Errorf("%w: socket %s does not exist", ErrNoSession, socket))
		case resp != nil && resp.StatusCode == http.StatusUnauthorized:
			return backoff.Permanent(errors.New("hookproxy rejected the session token"))
		}
		return err
	}, backoff.WithContext(b, ctx))
	if err != nil {
		return nil, fmt.Errorf("connect to hookproxy: %w", err)
	}
	return ws, nil
}
