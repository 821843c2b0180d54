package history

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func entry(hook string, code int) Entry {
	return Entry{Hook: hook, Repo: "/src/app", Outcome: "finished", ExitCode: code, Time: time.Now()}
}

func TestRecord(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "history.json")

	e := Entry{
		Hook:     "pre-commit",
		Repo:     "/src/app",
		Outcome:  "failed",
		ExitCode: 2,
		Duration: 1500 * time.Millisecond,
		Time:     time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Error:    "lint failed",
	}
	if err := Record(path, 10, e); err != nil {
		t.Fatalf("Record failed: %v", err)
	}

	h, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(h.Entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(h.Entries))
	}
	got := h.Entries[0]
	if got.Hook != e.Hook || got.ExitCode != e.ExitCode || got.Duration != e.Duration || !got.Time.Equal(e.Time) || got.Error != e.Error {
		t.Errorf("entry = %+v, want %+v", got, e)
	}
}

func TestRecord_TrimsToLimit(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "history.json")
	for i := range 5 {
		if err := Record(path, 3, entry("pre-commit", i)); err != nil {
			t.Fatalf("Record(%d) failed: %v", i, err)
		}
	}

	h, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(h.Entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(h.Entries))
	}
	for i, e := range h.Entries {
		if want := i + 2; e.ExitCode != want {
			t.Errorf("Entries[%d].ExitCode = %d, want %d", i, e.ExitCode, want)
		}
	}
}

func TestRecord_Disabled(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "history.json")
	if err := Record(path, 0, entry("pre-commit", 0)); err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("history file written with limit 0: %v", err)
	}
}

func TestRecord_Concurrent(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "history.json")

	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := Record(path, 100, entry("commit-msg", i)); err != nil {
				t.Errorf("Record(%d) failed: %v", i, err)
			}
		}()
	}
	wg.Wait()

	h, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(h.Entries) != 8 {
		t.Errorf("expected 8 entries after concurrent records, got %d", len(h.Entries))
	}
}

func TestLoad_Missing(t *testing.T) {
	t.Parallel()

	h, err := Load(filepath.Join(t.TempDir(), "history.json"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(h.Entries) != 0 {
		t.Errorf("expected empty history, got %d entries", len(h.Entries))
	}
}

func TestLoad_Corrupted(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "history.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}

	h, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(h.Entries) != 0 {
		t.Errorf("expected corrupted history to load empty, got %d entries", len(h.Entries))
	}
}

func TestVerify(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	good := filepath.Join(dir, "good.json")
	if err := Record(good, 5, entry("pre-commit", 0)); err != nil {
		t.Fatal(err)
	}
	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}

	if err := Verify(filepath.Join(dir, "missing.json")); err != nil {
		t.Errorf("Verify(missing) = %v, want nil", err)
	}
	if err := Verify(good); err != nil {
		t.Errorf("Verify(good) = %v, want nil", err)
	}
	if err := Verify(bad); err == nil {
		t.Error("Verify(corrupted) = nil, want error")
	}
}

func TestHistory_Recent(t *testing.T) {
	t.Parallel()

	h := &History{Entries: []Entry{entry("a", 0), entry("b", 0), entry("c", 0)}}

	tests := []struct {
		n    int
		want []string
	}{
		{0, []string{"c", "b", "a"}},
		{2, []string{"c", "b"}},
		{10, []string{"c", "b", "a"}},
	}
	for _, tt := range tests {
		got := h.Recent(tt.n)
		var hooks []string
		for _, e := range got {
			hooks = append(hooks, e.Hook)
		}
		if len(hooks) != len(tt.want) {
			t.Errorf("Recent(%d) = %v, want %v", tt.n, hooks, tt.want)
			continue
		}
		for i := range hooks {
			if hooks[i] != tt.want[i] {
				t.Errorf("Recent(%d) = %v, want %v", tt.n, hooks, tt.want)
				break
			}
		}
	}

	if h.Entries[0].Hook != "a" {
		t.Error("Recent must not reorder the stored entries")
	}
}
