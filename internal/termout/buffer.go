package termout

import (
	"strings"
	"unicode/utf8"
)

// DefaultCapacity is the number of characters kept for late subscribers.
const DefaultCapacity = 256 * 1024

// Buffer is a character-capacity-limited FIFO of output chunks.
// It is not safe for concurrent use; Source and Broadcaster guard their
// buffers with a mutex.
type Buffer struct {
	capacity int
	chunks   []chunk
	length   int
}

type chunk struct {
	text string
	n    int // characters
}

// NewBuffer returns an empty buffer that keeps at most capacity characters.
// A negative capacity is treated as zero.
func NewBuffer(capacity int) *Buffer {
	return &Buffer{capacity: max(capacity, 0)}
}

// Push appends s and drops characters from the oldest end until the buffer
// fits its capacity again.
func (b *Buffer) Push(s string) {
	if s == "" {
		return
	}
	n := utf8.RuneCountInString(s)
	b.chunks = append(b.chunks, chunk{text: s, n: n})
	b.length += n
	b.trim()
}

// Write pushes p as text. It never fails.
func (b *Buffer) Write(p []byte) (int, error) {
	b.Push(string(p))
	return len(p), nil
}

func (b *Buffer) trim() {
	drop := 0
	for b.length > b.capacity {
		overrun := b.length - b.capacity
		head := &b.chunks[drop]
		if overrun >= head.n {
			b.length -= head.n
			drop++
			continue
		}
		head.text = dropChars(head.text, overrun)
		head.n -= overrun
		b.length -= overrun
	}
	if drop > 0 {
		clear(b.chunks[:drop])
		b.chunks = b.chunks[drop:]
	}
}

// dropChars removes the first n characters of s.
func dropChars(s string, n int) string {
	for i := range s {
		if n == 0 {
			return s[i:]
		}
		n--
	}
	return ""
}

// Chunks returns a copy of the buffered chunks, oldest first.
func (b *Buffer) Chunks() []string {
	out := make([]string, len(b.chunks))
	for i, c := range b.chunks {
		out[i] = c.text
	}
	return out
}

// Len returns the number of buffered characters.
func (b *Buffer) Len() int {
	return b.length
}

// Cap returns the buffer's capacity in characters.
func (b *Buffer) Cap() int {
	return b.capacity
}

// String returns the buffered chunks concatenated.
func (b *Buffer) String() string {
	var sb strings.Builder
	for _, c := range b.chunks {
		sb.WriteString(c.text)
	}
	return sb.String()
}

// Bytes returns the buffered output as bytes.
func (b *Buffer) Bytes() []byte {
	return []byte(b.String())
}
