package proxy

import (
	"time"

	"github.com/gorilla/websocket"
)

// Environment variables that tell a stub where its session is.
const (
	SocketEnv = "HOOKPROXY_SOCKET"
	TokenEnv  = "HOOKPROXY_TOKEN"
)

const (
	socketName  = "hookproxy.sock"
	tokenHeader = "X-Hookproxy-Token"

	// maxFrameSize bounds one frame; hello carries the whole environment.
	maxFrameSize = 4 << 20
	// chunkSize is how much stdin goes into one frame.
	chunkSize = 32 << 10

	helloWait = 10 * time.Second
	writeWait = 10 * time.Second
)

type frameType string

const (
	frameHello    frameType = "hello"
	frameStdin    frameType = "stdin"
	frameStdinEOF frameType = "stdin_eof"
	frameStdout   frameType = "stdout"
	frameStderr   frameType = "stderr"
	frameExit     frameType = "exit"
)

type frame struct {
	Type frameType `json:"type"`

	// hello
	Args  []string          `json:"args,omitempty"`
	Env   map[string]string `json:"env,omitempty"`
	Cwd   string            `json:"cwd,omitempty"`
	Stdin bool              `json:"stdin,omitempty"`

	// stdin, stdout, stderr
	Data []byte `json:"data,omitempty"`

	// exit
	Code int `json:"code,omitempty"`
}

// frameWriter sends data frames of one type. gorilla/websocket allows only
// one concurrent writer, so all writes go through send.
type frameWriter struct {
	typ  frameType
	send func(frame) error
}

func (w frameWriter) Write(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if err := w.send(frame{Type: w.typ, Data: p}); err != nil {
		return 0, err
	}
	return len(p), nil
}

func isClosed(err error) bool {
	return websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway)
}
