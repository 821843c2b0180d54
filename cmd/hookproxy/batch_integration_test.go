//go:build integration

package main

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
)

// TestBatch_RunsAll tests a batch of passing commands.
//
// Scenario: User runs `hookproxy batch -- commit ... ';' commit ...`
// Expected: Both commits are created, the hook runs twice and every step is
// announced in the shared output
func TestBatch_RunsAll(t *testing.T) {
	tmpDir := resolvePath(t, t.TempDir())
	repo := setupTestRepo(t, tmpDir, "app")
	counter := filepath.Join(tmpDir, "runs")
	writeHook(t, repo, "pre-commit", `echo run >> `+counter)

	ctx, out := testContext(t, repo, testConfig())
	cmd := newBatchCmd()
	cmd.SetContext(ctx)
	cmd.SetArgs([]string{"--", "commit", "--allow-empty", "-m", "one", ";", "commit", "--allow-empty", "-m", "two"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("batch failed: %v\n%s", err, out)
	}
	if got := commitCount(t, repo); got != "3" {
		t.Errorf("commit count = %s, want 3", got)
	}
	if got := readFile(t, counter); got != "run\nrun" {
		t.Errorf("hook runs = %q, want two", got)
	}
	for _, want := range []string{"$ git commit --allow-empty -m one", "$ git commit --allow-empty -m two"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output should contain %q, got:\n%s", want, out)
		}
	}
}

// TestBatch_StopsAtFailure tests that a failing step ends the batch.
//
// Scenario: The first command of a batch fails
// Expected: The second command does not run and the batch fails
func TestBatch_StopsAtFailure(t *testing.T) {
	tmpDir := resolvePath(t, t.TempDir())
	repo := setupTestRepo(t, tmpDir, "app")

	ctx, out := testContext(t, repo, testConfig())
	cmd := newBatchCmd()
	cmd.SetContext(ctx)
	cmd.SetArgs([]string{"--", "checkout", "does-not-exist", ";", "commit", "--allow-empty", "-m", "two"})

	err := cmd.Execute()
	var exit *exitCodeError
	if !errors.As(err, &exit) || exit.code == 0 {
		t.Fatalf("expected non-zero exitCodeError, got %v\n%s", err, out)
	}
	if got := commitCount(t, repo); got != "1" {
		t.Errorf("commit count = %s, want 1", got)
	}
}

// TestBatch_KeepGoing tests --keep-going.
//
// Scenario: The first command fails and --keep-going is set
// Expected: The second command still runs and the batch fails
func TestBatch_KeepGoing(t *testing.T) {
	tmpDir := resolvePath(t, t.TempDir())
	repo := setupTestRepo(t, tmpDir, "app")

	ctx, out := testContext(t, repo, testConfig())
	cmd := newBatchCmd()
	cmd.SetContext(ctx)
	cmd.SetArgs([]string{"-k", "--", "checkout", "does-not-exist", ";", "commit", "--allow-empty", "-m", "two"})

	err := cmd.Execute()
	var exit *exitCodeError
	if !errors.As(err, &exit) || exit.code == 0 {
		t.Fatalf("expected non-zero exitCodeError, got %v\n%s", err, out)
	}
	if got := commitCount(t, repo); got != "2" {
		t.Errorf("commit count = %s, want 2", got)
	}
}

// TestBatch_EmptyStep tests a batch with an empty command.
//
// Scenario: User runs `hookproxy batch -- status ';'`
// Expected: Command fails before running git
func TestBatch_EmptyStep(t *testing.T) {
	tmpDir := resolvePath(t, t.TempDir())
	repo := setupTestRepo(t, tmpDir, "app")

	ctx, _ := testContext(t, repo, testConfig())
	cmd := newBatchCmd()
	cmd.SetContext(ctx)
	cmd.SetArgs([]string{"--", "status", ";"})

	if err := cmd.Execute(); err == nil || !strings.Contains(err.Error(), "empty git command") {
		t.Errorf("expected empty command error, got %v", err)
	}
}
