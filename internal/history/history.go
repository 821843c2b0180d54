// Package history keeps a bounded log of recent hook runs in
// ~/.hookproxy/history.json, so `hookproxy history` can show what ran, where
// and how it ended.
package history

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/raphi011/hookproxy/internal/storage"
)

// Entry records one hook invocation.
type Entry struct {
	Hook     string        `json:"hook"`
	Repo     string        `json:"repo"`
	Outcome  string        `json:"outcome"`
	ExitCode int           `json:"exit_code"`
	Signal   string        `json:"signal,omitempty"`
	Duration time.Duration `json:"duration"`
	Time     time.Time     `json:"time"`
	Error    string        `json:"error,omitempty"`
}

// History is the on-disk list of entries, oldest first.
type History struct {
	Entries []Entry `json:"entries"`
}

// Path returns the path to the history file.
func Path() (string, error) {
	dir, err := storage.Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "history.json"), nil
}

// Load reads the history at path. A missing or corrupted file yields an
// empty history.
func Load(path string) (*History, error) {
	var h History
	if err := storage.LoadJSON(path, &h); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &History{}, nil
		}
		var pathErr *fs.PathError
		if errors.As(err, &pathErr) {
			return nil, err
		}
		// Corrupted - start fresh
		return &History{}, nil
	}
	return &h, nil
}

// Verify reports whether the history at path can be read. A missing file is
// fine; a corrupted one returns the decode error.
func Verify(path string) error {
	var h History
	err := storage.LoadJSON(path, &h)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// Record appends entries to the history at path and drops the oldest ones
// beyond limit. A limit of zero or less disables recording.
func Record(path string, limit int, entries ...Entry) error {
	if limit <= 0 || len(entries) == 0 {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	return storage.WithLock(path+".lock", func() error {
		h, err := Load(path)
		if err != nil {
			return err
		}
		h.Entries = append(h.Entries, entries...)
		if over := len(h.Entries) - limit; over > 0 {
			h.Entries = slices.Delete(h.Entries, 0, over)
		}
		return storage.SaveJSON(path, h)
	})
}

// Recent returns up to n entries, newest first. n <= 0 returns all of them.
func (h *History) Recent(n int) []Entry {
	out := slices.Clone(h.Entries)
	slices.Reverse(out)
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}
