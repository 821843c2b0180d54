package git

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"

	"github.com/raphi011/hookproxy/internal/hooks"
)

// Hook is an installed repository hook.
type Hook struct {
	Name string
	Path string
}

// HooksPath returns the directory git runs hooks from for repo, honoring
// core.hooksPath.
func HooksPath(ctx context.Context, repo string) (string, error) {
	out, err := outputGit(ctx, repo, "rev-parse", "--path-format=absolute", "--git-path", "hooks")
	if err != nil {
		return "", err
	}
	return filepath.Clean(strings.TrimSpace(string(out))), nil
}

// ListHooks returns the runnable hooks of repo, sorted by name. Samples and
// files that are not named after a git hook are skipped.
func ListHooks(ctx context.Context, repo string) ([]Hook, error) {
	dir, err := HooksPath(ctx, repo)
	if err != nil {
		return nil, err
	}
	return (&RepoHooks{Dir: dir}).List()
}

// RepoHooks finds hook executables in one hooks directory.
type RepoHooks struct {
	Dir  string
	GOOS string // defaults to runtime.GOOS
}

// LoadRepoHooks returns the hooks of repo.
func LoadRepoHooks(ctx context.Context, repo string) (*RepoHooks, error) {
	dir, err := HooksPath(ctx, repo)
	if err != nil {
		return nil, err
	}
	return &RepoHooks{Dir: dir}, nil
}

func (r *RepoHooks) goos() string {
	if r.GOOS != "" {
		return r.GOOS
	}
	return runtime.GOOS
}

// FindHook returns the executable for the named hook.
func (r *RepoHooks) FindHook(name string) (string, bool) {
	candidates := []string{name}
	if r.goos() == "windows" {
		candidates = append(candidates, name+".exe")
	}
	for _, c := range candidates {
		path := filepath.Join(r.Dir, c)
		if r.runnable(path) {
			return path, true
		}
	}
	return "", false
}

// List returns every runnable hook in the directory. A missing directory
// has no hooks.
func (r *RepoHooks) List() ([]Hook, error) {
	entries, err := os.ReadDir(r.Dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var out []Hook
	for _, e := range entries {
		name := e.Name()
		if r.goos() == "windows" {
			name = strings.TrimSuffix(name, ".exe")
		}
		if !hooks.IsKnown(name) {
			continue
		}
		path := filepath.Join(r.Dir, e.Name())
		if !r.runnable(path) {
			continue
		}
		out = append(out, Hook{Name: name, Path: path})
	}
	slices.SortFunc(out, func(a, b Hook) int { return strings.Compare(a.Name, b.Name) })
	return slices.CompactFunc(out, func(a, b Hook) bool { return a.Name == b.Name }), nil
}

func (r *RepoHooks) runnable(path string) bool {
	fi, err := os.Stat(path)
	if err != nil || fi.IsDir() {
		return false
	}
	if r.goos() == "windows" {
		return true
	}
	return fi.Mode().Perm()&0o111 != 0
}
