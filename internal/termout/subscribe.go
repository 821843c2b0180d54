package termout

import "sync/atomic"

// Output is what a Listener receives: either one live chunk, or every chunk a
// producer had buffered at the time of subscription.
type Output struct {
	Chunk  string
	Replay []string
}

// Listener receives output. Listeners run while the producer holds its lock,
// so they must not subscribe to the same producer from inside the callback.
// Unsubscribing from inside the callback is fine.
type Listener func(Output)

// Subscriber is anything that replays its output and then streams it live.
type Subscriber interface {
	Subscribe(fn Listener) (unsubscribe func())
}

// AvailableFunc is called when an operation's output becomes available.
type AvailableFunc func(Subscriber)

type subscription struct {
	fn     Listener
	closed atomic.Bool
}

// subscribers is a listener set. Removal only flags an entry; it is pruned
// on the next publish so that unsubscribing never races with delivery to
// the remaining listeners.
type subscribers struct {
	list []*subscription
}

func (s *subscribers) add(fn Listener) func() {
	sub := &subscription{fn: fn}
	s.list = append(s.list, sub)
	return func() { sub.closed.Store(true) }
}

func (s *subscribers) publish(o Output) {
	live := s.list[:0]
	for _, sub := range s.list {
		if sub.closed.Load() {
			continue
		}
		live = append(live, sub)
		sub.fn(o)
	}
	clear(s.list[len(live):])
	s.list = live
}

func (s *subscribers) len() int {
	n := 0
	for _, sub := range s.list {
		if !sub.closed.Load() {
			n++
		}
	}
	return n
}
