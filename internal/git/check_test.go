package git

import (
	"context"
	"errors"
	"path/filepath"
	"slices"
	"testing"
)

func TestCheckGit_Available(t *testing.T) {
	t.Parallel()
	// git must be available in CI and dev environments
	if err := CheckGit(); err != nil {
		t.Fatalf("CheckGit() = %v, want nil (git should be in PATH)", err)
	}
}

func TestErrGitNotFound_Sentinel(t *testing.T) {
	t.Parallel()
	if !errors.Is(ErrGitNotFound, ErrGitNotFound) {
		t.Error("ErrGitNotFound should match itself with errors.Is")
	}
}

func TestIsInsideRepoPath(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := setupTestRepo(t)

	if !IsInsideRepoPath(ctx, repo) {
		t.Errorf("IsInsideRepoPath(%q) = false, want true", repo)
	}
	if !IsInsideRepoPath(ctx, filepath.Join(repo, ".git")) {
		t.Error("IsInsideRepoPath(.git) = false, want true")
	}
	if IsInsideRepoPath(ctx, resolveTempDir(t)) {
		t.Error("IsInsideRepoPath(empty dir) = true, want false")
	}
}

func TestRepoRoot(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := setupTestRepo(t)
	sub := filepath.Join(repo, "sub")
	writeHook(t, sub, "file", "")

	got, err := RepoRoot(ctx, sub)
	if err != nil {
		t.Fatal(err)
	}
	if got != repo {
		t.Errorf("RepoRoot(%q) = %q, want %q", sub, got, repo)
	}
}

func TestRepoRoot_IgnoresHookRepoEnv(t *testing.T) {
	repo := setupTestRepo(t)
	other := setupTestRepo(t)
	plain := resolveTempDir(t)
	// What git exports to a hook running in the other repository.
	t.Setenv("GIT_DIR", filepath.Join(other, ".git"))
	t.Setenv("GIT_WORK_TREE", other)

	got, err := RepoRoot(context.Background(), repo)
	if err != nil {
		t.Fatalf("RepoRoot() error = %v", err)
	}
	if got != repo {
		t.Errorf("RepoRoot() = %q, want %q", got, repo)
	}
	if IsInsideRepoPath(context.Background(), plain) {
		t.Errorf("IsInsideRepoPath(%q) = true, want false", plain)
	}
}

func TestLookupEnv(t *testing.T) {
	t.Parallel()

	environ := []string{"PATH=/bin", "GIT_DIR=.git", "GIT_AUTHOR_NAME=a", "GIT_WORK_TREE=/w", "GIT_DIRX=1"}
	want := []string{"PATH=/bin", "GIT_AUTHOR_NAME=a", "GIT_DIRX=1"}
	if got := lookupEnv(environ); !slices.Equal(got, want) {
		t.Errorf("lookupEnv() = %q, want %q", got, want)
	}
	if len(environ) != 5 {
		t.Error("lookupEnv() modified its input")
	}
}
