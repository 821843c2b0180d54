//go:build integration

package main

import (
	"bytes"
	"context"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/raphi011/hookproxy/internal/config"
	"github.com/raphi011/hookproxy/internal/log"
	"github.com/raphi011/hookproxy/internal/output"
	"github.com/raphi011/hookproxy/internal/shellenv"
)

// resolvePath resolves symlinks in a path.
// This is needed on macOS where /var is a symlink to /private/var.
func resolvePath(t *testing.T, path string) string {
	t.Helper()
	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		t.Fatalf("failed to resolve path %s: %v", path, err)
	}
	return resolved
}

// setupTestRepo creates a git repo with initial commit in dir/name.
// Returns the absolute path to the created repo (with symlinks resolved).
func setupTestRepo(t *testing.T, dir, name string) string {
	t.Helper()

	dir = resolvePath(t, dir)
	repoPath := filepath.Join(dir, name)
	if err := os.MkdirAll(repoPath, 0755); err != nil {
		t.Fatalf("failed to create repo dir: %v", err)
	}

	gitCmd(t, repoPath, "init", "-b", "main")
	gitCmd(t, repoPath, "config", "user.email", "test@test.com")
	gitCmd(t, repoPath, "config", "user.name", "Test User")
	gitCmd(t, repoPath, "config", "commit.gpgsign", "false")

	if err := os.WriteFile(filepath.Join(repoPath, "README.md"), []byte("# "+name+"\n"), 0644); err != nil {
		t.Fatalf("failed to write README: %v", err)
	}
	gitCmd(t, repoPath, "add", "README.md")
	gitCmd(t, repoPath, "commit", "-m", "Initial commit")

	return repoPath
}

// gitCmd runs git in dir and returns its trimmed output.
func gitCmd(t *testing.T, dir string, args ...string) string {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("failed to run git %v: %v\n%s", args, err, out)
	}
	return strings.TrimSpace(string(out))
}

// commitCount returns the number of commits on HEAD.
func commitCount(t *testing.T, repo string) string {
	t.Helper()
	return gitCmd(t, repo, "rev-list", "--count", "HEAD")
}

// writeHook installs an executable shell hook in the repository's
// .git/hooks directory.
func writeHook(t *testing.T, repo, name, body string) string {
	t.Helper()
	path := filepath.Join(repo, ".git", "hooks", name)
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0755); err != nil {
		t.Fatalf("failed to write hook %s: %v", name, err)
	}
	return path
}

// readFile returns the trimmed contents of path.
func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read %s: %v", path, err)
	}
	return strings.TrimSpace(string(data))
}

// testConfig returns a config that runs hooks with the test's own
// environment in sh, so no login shell profile is sourced.
func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Shell.Kind = shellenv.Sh
	cfg.Shell.LoadEnv = false
	cfg.Hooks.OnFailure = config.OnFailureFail
	return &cfg
}

// testContext returns a context for running commands in dir with cfg. The
// returned buffer collects the command's output. History goes to a
// temporary HOOKPROXY_HOME.
func testContext(t *testing.T, dir string, cfg *config.Config) (context.Context, *bytes.Buffer) {
	t.Helper()
	t.Setenv("HOOKPROXY_HOME", t.TempDir())

	var out bytes.Buffer
	ctx := context.Background()
	ctx = log.WithLogger(ctx, log.New(io.Discard, false, true))
	ctx = output.WithPrinter(ctx, &out)
	ctx = config.WithResolver(ctx, config.NewResolver(cfg))
	ctx = config.WithWorkDir(ctx, dir)
	return ctx, &out
}
