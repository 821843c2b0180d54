package hooks

import "testing"

func TestIsTolerated(t *testing.T) {
	t.Parallel()

	tests := []struct {
		hook string
		want bool
	}{
		{"post-checkout", true},
		{"post-commit", true},
		{"post-merge", true},
		{"post-rewrite", true},
		{"pre-commit", false},
		{"commit-msg", false},
		{"pre-push", false},
		{"reference-transaction", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsTolerated(tt.hook); got != tt.want {
			t.Errorf("IsTolerated(%q) = %v, want %v", tt.hook, got, tt.want)
		}
	}
}

func TestHookName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		argv0 string
		goos  string
		want  string
	}{
		{"/tmp/hookproxy-1/hooks/pre-commit", "linux", "pre-commit"},
		{"pre-commit", "linux", "pre-commit"},
		{"/tmp/hooks/pre-commit.exe", "linux", "pre-commit.exe"},
		{`C:\Temp\hooks\pre-commit.exe`, "windows", "pre-commit"},
		{`C:\Temp\hooks\post-checkout.EXE`, "windows", "post-checkout"},
		{"C:/Temp/hooks/commit-msg", "windows", "commit-msg"},
		{`hooks\pre-push`, "windows", "pre-push"},
	}
	for _, tt := range tests {
		if got := hookName(tt.argv0, tt.goos); got != tt.want {
			t.Errorf("hookName(%q, %q) = %q, want %q", tt.argv0, tt.goos, got, tt.want)
		}
	}
}

func TestIsKnown(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"pre-commit", "post-checkout", "reference-transaction", "post-index-change"} {
		if !IsKnown(name) {
			t.Errorf("IsKnown(%q) = false, want true", name)
		}
	}
	for _, name := range []string{"hookproxy", "pre-commit.sample", "", "git"} {
		if IsKnown(name) {
			t.Errorf("IsKnown(%q) = true, want false", name)
		}
	}
	for name := range tolerated {
		if !IsKnown(name) {
			t.Errorf("tolerated hook %q is not a known hook", name)
		}
	}
}

func TestSuggest(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		want string
	}{
		{"precommit", "pre-commit"},
		{"pre-comit", "pre-commit"},
		{"postcheckout", "post-checkout"},
		{"commitmsg", "commit-msg"},
	}
	for _, tt := range tests {
		got := Suggest(tt.name, 3)
		if len(got) == 0 || got[0] != tt.want {
			t.Errorf("Suggest(%q) = %q, want %q first", tt.name, got, tt.want)
		}
	}
	if got := Suggest("zzz", 3); len(got) != 0 {
		t.Errorf("Suggest(%q) = %q, want none", "zzz", got)
	}
	if got := Suggest("p", 2); len(got) != 2 {
		t.Errorf("Suggest(%q, 2) returned %d names", "p", len(got))
	}
}
