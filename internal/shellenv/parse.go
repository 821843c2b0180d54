package shellenv

import (
	"bufio"
	"bytes"
	"errors"
	"io"
)

// Marker lines bracketing the helper's output.
const (
	BeginMarker = "--printenvz--begin"
	EndMarker   = "--printenvz--end"
)

// ErrMarkerNotFound means the shell output did not contain a complete
// begin/end marker pair.
var ErrMarkerNotFound = errors.New("could not find start/end marker")

// Parse extracts the environment printed by the helper from raw shell output.
//
// The region ends at the last end marker, so output written after the helper
// exits is ignored. It starts at the first begin marker that opens a line
// before that, so banners printed by the profile are skipped even when a
// variable's value contains the marker text.
func Parse(out []byte) (Env, error) {
	end := bytes.LastIndex(out, []byte(EndMarker))
	if end < 0 {
		return nil, ErrMarkerNotFound
	}
	region := out[:end]

	begin := beginIndex(region)
	if begin < 0 {
		return nil, ErrMarkerNotFound
	}
	body := region[begin+len(BeginMarker):]
	if rest, ok := bytes.CutPrefix(body, []byte("\r\n")); ok {
		body = rest
	} else if rest, ok := bytes.CutPrefix(body, []byte("\n")); ok {
		body = rest
	}

	env := make(Env)
	for {
		entry, rest, ok := bytes.Cut(body, []byte{0})
		if !ok {
			// Unterminated remainder: the newline before the end marker.
			break
		}
		body = rest
		if k, v, ok := splitEntry(string(entry)); ok {
			env[k] = v
		}
	}
	return env, nil
}

func beginIndex(b []byte) int {
	marker := []byte(BeginMarker)
	off := 0
	for {
		i := bytes.Index(b[off:], marker)
		if i < 0 {
			return -1
		}
		pos := off + i
		if pos == 0 || b[pos-1] == '\n' {
			return pos
		}
		off = pos + len(marker)
	}
}

// WriteEnv writes environ in the helper format: the begin marker line,
// every entry terminated by NUL, then the end marker line.
func WriteEnv(w io.Writer, environ []string) error {
	bw := bufio.NewWriter(w)
	bw.WriteString(BeginMarker + "\n")
	for _, kv := range environ {
		bw.WriteString(kv)
		bw.WriteByte(0)
	}
	bw.WriteString("\n" + EndMarker + "\n")
	return bw.Flush()
}
