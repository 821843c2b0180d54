package proxy

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/raphi011/hookproxy/internal/hooks"
)

// conn is the session side of one stub connection.
type conn struct {
	ws    *websocket.Conn
	hello frame

	writeMu sync.Mutex

	stdinR *io.PipeReader
	stdinW *io.PipeWriter
	stdinQ *stdinQueue

	done     chan struct{}
	doneOnce sync.Once
	exitOnce sync.Once
	exitErr  error
}

var _ hooks.Connection = (*conn)(nil)

// accept reads the hello frame and starts the read loop.
func accept(ws *websocket.Conn) (*conn, error) {
	ws.SetReadLimit(maxFrameSize)
	_ = ws.SetReadDeadline(time.Now().Add(helloWait))
	var hello frame
	if err := ws.ReadJSON(&hello); err != nil {
		return nil, fmt.Errorf("read hello: %w", err)
	}
	if hello.Type != frameHello {
		return nil, fmt.Errorf("expected hello frame, got %q", hello.Type)
	}
	_ = ws.SetReadDeadline(time.Time{})

	c := &conn{ws: ws, hello: hello, done: make(chan struct{}), stdinQ: newStdinQueue()}
	c.stdinR, c.stdinW = io.Pipe()
	go c.readLoop()
	go c.pumpStdin()
	return c, nil
}

// readLoop never blocks on stdin delivery: a hook that does not read its
// input must not keep a disconnect from closing Done.
func (c *conn) readLoop() {
	defer c.closeDone()
	defer c.stdinQ.close()
	for {
		var f frame
		if err := c.ws.ReadJSON(&f); err != nil {
			return
		}
		switch f.Type {
		case frameStdin:
			c.stdinQ.push(f.Data)
		case frameStdinEOF:
			c.stdinQ.close()
		}
	}
}

// pumpStdin moves queued stdin into the pipe read by the handler.
func (c *conn) pumpStdin() {
	defer c.stdinW.Close()
	for {
		data, ok := c.stdinQ.next()
		if !ok {
			return
		}
		// A failed write means the reader is gone; later chunks fail the
		// same way until the queue is closed.
		_, _ = c.stdinW.Write(data)
	}
}

// stdinQueue is an unbounded FIFO of stdin chunks between readLoop and
// pumpStdin.
type stdinQueue struct {
	mu     sync.Mutex
	chunks [][]byte
	closed bool
	wake   chan struct{}
}

func newStdinQueue() *stdinQueue {
	return &stdinQueue{wake: make(chan struct{}, 1)}
}

func (q *stdinQueue) push(data []byte) {
	q.mu.Lock()
	if !q.closed {
		q.chunks = append(q.chunks, data)
	}
	q.mu.Unlock()
	q.signal()
}

func (q *stdinQueue) close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
	q.signal()
}

func (q *stdinQueue) signal() {
	select {
	case q.wake <- struct{}{}:
	default:
	}
}

// next blocks until a chunk is queued. It returns false once the queue is
// closed and drained.
func (q *stdinQueue) next() ([]byte, bool) {
	for {
		q.mu.Lock()
		if len(q.chunks) > 0 {
			data := q.chunks[0]
			q.chunks[0] = nil
			q.chunks = q.chunks[1:]
			q.mu.Unlock()
			return data, true
		}
		closed := q.closed
		q.mu.Unlock()
		if closed {
			return nil, false
		}
		<-q.wake
	}
}

func (c *conn) closeDone() { c.doneOnce.Do(func() { close(c.done) }) }

func (c *conn) Args(context.Context) ([]string, error) { return c.hello.Args, nil }

func (c *conn) Env(context.Context) (map[string]string, error) { return c.hello.Env, nil }

func (c *conn) Cwd(context.Context) (string, error) {
	if c.hello.Cwd == "" {
		return "", errors.New("hello frame without working directory")
	}
	return c.hello.Cwd, nil
}

func (c *conn) StdinConnected() bool { return c.hello.Stdin }
func (c *conn) Stdin() io.Reader     { return c.stdinR }
func (c *conn) Stdout() io.Writer    { return frameWriter{typ: frameStdout, send: c.send} }
func (c *conn) Stderr() io.Writer    { return frameWriter{typ: frameStderr, send: c.send} }
func (c *conn) Done() <-chan struct{} { return c.done }

func (c *conn) send(f frame) error {
	return c.sendDeadline(f, time.Now().Add(writeWait))
}

func (c *conn) sendDeadline(f frame, deadline time.Time) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = c.ws.SetWriteDeadline(deadline)
	return c.ws.WriteJSON(f)
}

// Exit sends the exit frame and closes the connection. Later calls return
// the first call's result.
func (c *conn) Exit(ctx context.Context, code int) error {
	c.exitOnce.Do(func() {
		deadline := time.Now().Add(writeWait)
		if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
			deadline = d
		}
		c.exitErr = c.sendDeadline(frame{Type: frameExit, Code: code}, deadline)
		if c.exitErr == nil {
			c.writeMu.Lock()
			_ = c.ws.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
			c.writeMu.Unlock()
		}
		c.stdinR.CloseWithError(io.ErrClosedPipe)
		if err := c.ws.Close(); err != nil && c.exitErr == nil {
			c.exitErr = err
		}
		c.closeDone()
	})
	return c.exitErr
}
