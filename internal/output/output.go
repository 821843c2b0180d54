// Package output provides context-aware output for hookproxy.
// Stdout is used for primary data output: git and hook output, tables,
// paths and JSON. Stderr (via log package) is used for diagnostics and hook
// status lines.
package output

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
)

type ctxKey struct{}

// Printer writes primary output to stdout. Hook output arrives from the
// proxy's goroutines, so every write is serialized.
type Printer struct {
	mu sync.Mutex
	w  io.Writer
}

// New creates a new Printer writing to the given writer.
func New(w io.Writer) *Printer {
	return &Printer{w: w}
}

// WithPrinter attaches a Printer to the context.
func WithPrinter(ctx context.Context, w io.Writer) context.Context {
	return context.WithValue(ctx, ctxKey{}, New(w))
}

// FromContext retrieves the Printer from context.
// Returns a Printer writing to os.Stdout if none is attached.
func FromContext(ctx context.Context) *Printer {
	if p, ok := ctx.Value(ctxKey{}).(*Printer); ok {
		return p
	}
	return New(os.Stdout)
}

// Write writes b in one piece.
func (p *Printer) Write(b []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.w.Write(b)
}

// Print writes output without a newline.
func (p *Printer) Print(a ...any) {
	fmt.Fprint(p, a...)
}

// Printf writes formatted output.
func (p *Printer) Printf(format string, a ...any) {
	fmt.Fprintf(p, format, a...)
}

// Println writes a line of output.
func (p *Printer) Println(a ...any) {
	fmt.Fprintln(p, a...)
}

// JSON writes v as indented JSON followed by a newline.
func (p *Printer) JSON(v any) error {
	enc := json.NewEncoder(p)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Writer returns a writer that shares the Printer's serialization.
func (p *Printer) Writer() io.Writer {
	return p
}
