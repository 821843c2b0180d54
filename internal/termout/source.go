package termout

import "sync"

// Source is the terminal output of one operation. It is an io.Writer, so a
// process's stdout and stderr can be pointed at it directly.
type Source struct {
	mu   sync.Mutex
	buf  *Buffer
	subs subscribers
}

// NewSource returns a source that keeps up to capacity characters for
// subscribers that attach late.
func NewSource(capacity int) *Source {
	return &Source{buf: NewBuffer(capacity)}
}

// Write records p and delivers it to all current subscribers.
func (s *Source) Write(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	chunk := string(p)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.buf.Push(chunk)
	s.subs.publish(Output{Chunk: chunk})
	return len(p), nil
}

// Subscribe hands fn the buffered output as a single replay batch, then
// every chunk written afterwards until unsubscribe is called.
func (s *Source) Subscribe(fn Listener) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(Output{Replay: s.buf.Chunks()})
	return s.subs.add(fn)
}

// String returns the buffered output.
func (s *Source) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.String()
}
