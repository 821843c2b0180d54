package termout

import "sync"

// Broadcaster merges the output of several operations into one bounded,
// replayable stream.
//
// The consumer is told about the stream once, on the first push. From then
// on it may subscribe at any time: each subscriber gets the buffered chunks
// in order, followed by every live chunk, until it unsubscribes. Pushes keep
// accumulating while nobody is subscribed.
type Broadcaster struct {
	onFirstAccess AvailableFunc
	once          sync.Once

	mu   sync.Mutex
	buf  *Buffer
	subs subscribers
}

// NewBroadcaster returns a broadcaster that keeps capacity characters and
// calls onFirstAccess, at most once, when the first chunk is pushed.
// onFirstAccess may be nil.
func NewBroadcaster(onFirstAccess AvailableFunc, capacity int) *Broadcaster {
	return &Broadcaster{
		onFirstAccess: onFirstAccess,
		buf:           NewBuffer(capacity),
	}
}

// Push records chunk and forwards it, untrimmed, to all subscribers.
func (b *Broadcaster) Push(chunk string) {
	b.announce()

	b.mu.Lock()
	defer b.mu.Unlock()
	b.push(chunk)
}

func (b *Broadcaster) push(chunk string) {
	b.buf.Push(chunk)
	b.subs.publish(Output{Chunk: chunk})
}

// Write pushes p as text. It never fails.
func (b *Broadcaster) Write(p []byte) (int, error) {
	b.Push(string(p))
	return len(p), nil
}

// PushOutput pushes a listener payload. A replay batch is split into its
// chunks, in order, under one lock acquisition.
func (b *Broadcaster) PushOutput(o Output) {
	if o.Replay == nil {
		b.Push(o.Chunk)
		return
	}
	if len(o.Replay) == 0 {
		return
	}
	b.announce()

	b.mu.Lock()
	defer b.mu.Unlock()
	for _, c := range o.Replay {
		b.push(c)
	}
}

// announce runs onFirstAccess without holding mu, so it may subscribe.
func (b *Broadcaster) announce() {
	b.once.Do(func() {
		if b.onFirstAccess != nil {
			b.onFirstAccess(b)
		}
	})
}

// Attach subscribes the broadcaster to an operation's output. It has the
// AvailableFunc shape so it can be handed to each operation of a batch.
func (b *Broadcaster) Attach(src Subscriber) {
	src.Subscribe(b.PushOutput)
}

// Subscribe replays the buffered chunks to fn, oldest first, and then
// delivers every live chunk until unsubscribe is called.
func (b *Broadcaster) Subscribe(fn Listener) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, c := range b.buf.Chunks() {
		fn(Output{Chunk: c})
	}
	return b.subs.add(fn)
}

// Subscribers returns the number of live subscribers.
func (b *Broadcaster) Subscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.subs.len()
}

// String returns the buffered output.
func (b *Broadcaster) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
