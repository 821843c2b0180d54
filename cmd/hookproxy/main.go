package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"

	"github.com/raphi011/hookproxy/internal/hooks"
	"github.com/raphi011/hookproxy/internal/proxy"
)

// Version information - set by goreleaser
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	// Installed as a git hook, the binary runs under the hook's name.
	if name := hooks.HookName(os.Args[0]); hooks.IsKnown(name) {
		os.Exit(runStub(os.Args))
	}
	Execute()
}

// runStub forwards a hook invocation to the session that installed it and
// returns the exit code.
func runStub(args []string) int {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	code, err := proxy.RunStub(ctx, args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "hookproxy: %s: %v\n", filepath.Base(args[0]), err)
	}
	return code
}

// versionString returns the version string.
func versionString() string {
	return fmt.Sprintf("hookproxy %s (%s, %s, %s)", version, commit[:min(7, len(commit))], date, runtime.Version())
}
