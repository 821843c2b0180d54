package hooks

import (
	"context"
	"io"
)

// Connection is one intercepted hook invocation.
//
// The accessors may block on the transport. Stdin is only read when
// StdinConnected reports true. Done is closed when the invoking side goes
// away; Exit reports the final code and releases the connection, and must
// be safe to call after Done is closed.
type Connection interface {
	Args(ctx context.Context) ([]string, error)
	Env(ctx context.Context) (map[string]string, error)
	Cwd(ctx context.Context) (string, error)
	StdinConnected() bool

	Stdin() io.Reader
	Stdout() io.Writer
	Stderr() io.Writer

	Exit(ctx context.Context, code int) error
	Done() <-chan struct{}
}
