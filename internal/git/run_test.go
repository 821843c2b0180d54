package git

import (
	"context"
	"errors"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/raphi011/hookproxy/internal/termout"
)

func TestRun_Output(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := setupTestRepo(t)

	var announced []termout.Subscriber
	res, err := Run(ctx, repo, []string{"log", "--format=%s"}, RunOptions{
		OnOutput: func(s termout.Subscriber) { announced = append(announced, s) },
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if res.ExitCode != 0 || res.Output != "Initial commit\n" {
		t.Errorf("Run() = %+v", res)
	}
	if len(announced) != 1 {
		t.Fatalf("OnOutput called %d times, want 1", len(announced))
	}

	var replay []string
	announced[0].Subscribe(func(o termout.Output) { replay = append(replay, o.Replay...) })
	if strings.Join(replay, "") != "Initial commit\n" {
		t.Errorf("late subscriber replay = %q", replay)
	}
}

func TestRun_ExitError(t *testing.T) {
	t.Parallel()
	repo := setupTestRepo(t)

	res, err := Run(context.Background(), repo, []string{"checkout", "no-such-branch"}, RunOptions{})
	var exitErr *ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("Run() error = %v, want *ExitError", err)
	}
	if exitErr.Code != res.ExitCode || res.ExitCode == 0 {
		t.Errorf("exit codes = %d / %d", exitErr.Code, res.ExitCode)
	}
	if !strings.Contains(res.Output, "no-such-branch") {
		t.Errorf("Output = %q, want git's error", res.Output)
	}
}

func TestRun_ConfigArgsAndHooks(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell hooks")
	}
	t.Parallel()
	ctx := context.Background()
	repo := setupTestRepo(t)
	hooksDir := filepath.Join(resolveTempDir(t), "hooks")
	writeHook(t, hooksDir, "pre-commit", `echo "pre-commit sees $HOOK_TEST"; exit 1`)

	res, err := Run(ctx, repo, []string{"commit", "--allow-empty", "-m", "blocked"}, RunOptions{
		ConfigArgs: []string{"-c", "core.hooksPath=" + hooksDir},
		Env:        []string{"HOOK_TEST=from-env"},
	})
	var exitErr *ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("Run() error = %v, want *ExitError", err)
	}
	if !strings.Contains(res.Output, "pre-commit sees from-env") {
		t.Errorf("Output = %q, want hook output", res.Output)
	}
}

func TestRun_Cancelled(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	_, err := Run(ctx, "", []string{"version"}, RunOptions{
		OnOutput: func(termout.Subscriber) { called = true },
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Run() error = %v, want context.Canceled", err)
	}
	if called {
		t.Error("OnOutput called for a cancelled run")
	}
}
