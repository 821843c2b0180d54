package cmd

import (
	"bytes"
	"context"
	"os/exec"
	"strings"
	"testing"

	"github.com/raphi011/hookproxy/internal/log"
)

func logCtx() context.Context {
	l := log.New(&bytes.Buffer{}, false, false)
	return log.WithLogger(context.Background(), l)
}

func TestRunContext_Success(t *testing.T) {
	t.Parallel()
	err := RunContext(logCtx(), "", "echo", "hello")
	if err != nil {
		t.Errorf("RunContext(echo hello) = %v, want nil", err)
	}
}

func TestRunContext_Failure(t *testing.T) {
	t.Parallel()
	err := RunContext(logCtx(), "", "sh", "-c", "exit 1")
	if err == nil {
		t.Error("RunContext(exit 1) = nil, want error")
	}
}

func TestRunContext_StderrMessage(t *testing.T) {
	t.Parallel()
	err := RunContext(logCtx(), "", "sh", "-c", "echo 'bad thing' >&2; exit 1")
	if err == nil {
		t.Fatal("RunContext = nil, want error")
	}
	if err.Error() != "bad thing" {
		t.Errorf("RunContext error = %q, want %q", err.Error(), "bad thing")
	}
}

func TestRunContext_ContextCancelled(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(logCtx())
	cancel()
	err := RunContext(ctx, "", "sleep", "10")
	if err == nil {
		t.Error("RunContext with cancelled context = nil, want error")
	}
	if err != context.Canceled {
		t.Errorf("RunContext error = %v, want context.Canceled", err)
	}
}

func TestRunContext_Dir(t *testing.T) {
	t.Parallel()
	// Verify command runs in specified directory
	err := RunContext(logCtx(), "/tmp", "pwd")
	if err != nil {
		t.Errorf("RunContext with dir = %v, want nil", err)
	}
}

func TestOutputContext_Success(t *testing.T) {
	t.Parallel()
	out, err := OutputContext(logCtx(), "", "echo", "hello")
	if err != nil {
		t.Fatalf("OutputContext(echo hello) = %v, want nil", err)
	}
	if got := string(out); got != "hello\n" {
		t.Errorf("OutputContext output = %q, want %q", got, "hello\n")
	}
}

func TestOutputContext_Failure(t *testing.T) {
	t.Parallel()
	_, err := OutputContext(logCtx(), "", "sh", "-c", "exit 1")
	if err == nil {
		t.Error("OutputContext(exit 1) = nil, want error")
	}
}

func TestOutputContext_StderrMessage(t *testing.T) {
	t.Parallel()
	_, err := OutputContext(logCtx(), "", "sh", "-c", "echo 'error msg' >&2; exit 1")
	if err == nil {
		t.Fatal("OutputContext = nil, want error")
	}
	if err.Error() != "error msg" {
		t.Errorf("OutputContext error = %q, want %q", err.Error(), "error msg")
	}
}

func TestOutputContext_ContextCancelled(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(logCtx())
	cancel()
	_, err := OutputContext(ctx, "", "sleep", "10")
	if err == nil {
		t.Error("OutputContext with cancelled context = nil, want error")
	}
	if err != context.Canceled {
		t.Errorf("OutputContext error = %v, want context.Canceled", err)
	}
}

func TestOutput_PreparedCommandEnv(t *testing.T) {
	t.Parallel()
	c := exec.Command("sh", "-c", `printf %s "$HOOKPROXY_TEST"`)
	c.Env = []string{"HOOKPROXY_TEST=from-env"}
	out, err := Output(logCtx(), c)
	if err != nil {
		t.Fatalf("Output = %v, want nil", err)
	}
	if got := string(out); got != "from-env" {
		t.Errorf("Output = %q, want %q", got, "from-env")
	}
}

func TestExitCode(t *testing.T) {
	t.Parallel()
	err := RunContext(logCtx(), "", "sh", "-c", "echo nope >&2; exit 3")
	if got := ExitCode(err); got != 3 {
		t.Errorf("ExitCode(%v) = %d, want 3", err, got)
	}
	if got := ExitCode(nil); got != -1 {
		t.Errorf("ExitCode(nil) = %d, want -1", got)
	}
}

func TestVerboseLogsCommand(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	ctx := log.WithLogger(context.Background(), log.New(&buf, true, false))
	if err := RunContext(ctx, "/tmp", "echo", "hi"); err != nil {
		t.Fatalf("RunContext = %v", err)
	}
	if got := buf.String(); !strings.Contains(got, "[/tmp] $ echo hi") {
		t.Errorf("log = %q, want to contain %q", got, "[/tmp] $ echo hi")
	}
}

func TestStream(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	started := false
	c := exec.Command("sh", "-c", "echo one; echo two >&2; exit 3")
	err := Stream(logCtx(), c, &out, func() { started = true })
	if got := ExitCode(err); got != 3 {
		t.Errorf("ExitCode(Stream()) = %d, want 3 (err %v)", got, err)
	}
	if !started {
		t.Error("started callback not called")
	}
	if out.String() != "one\ntwo\n" {
		t.Errorf("output = %q, want %q", out.String(), "one\ntwo\n")
	}
}

func TestStream_NotStarted(t *testing.T) {
	t.Parallel()

	called := false
	c := exec.Command("/nonexistent/binary")
	if err := Stream(logCtx(), c, &bytes.Buffer{}, func() { called = true }); err == nil {
		t.Error("Stream() = nil, want error")
	}
	if called {
		t.Error("started called for a command that never started")
	}
}
