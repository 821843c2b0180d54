package hooks

import (
	"path/filepath"
	"runtime"
	"strings"
)

// tolerated are hooks that run after git has done its work; git ignores
// their exit status.
var tolerated = map[string]bool{
	"post-applypatch":   true,
	"post-checkout":     true,
	"post-commit":       true,
	"post-merge":        true,
	"post-rewrite":      true,
	"post-index-change": true,
	"post-update":       true,
	"post-receive":      true,
}

// IsTolerated reports whether a failure of the named hook is ignored silently.
func IsTolerated(name string) bool {
	return tolerated[name]
}

// HookName derives the hook name from the argv[0] of an intercepted
// invocation.
func HookName(argv0 string) string {
	return hookName(argv0, runtime.GOOS)
}

func hookName(argv0, goos string) string {
	if goos == "windows" {
		argv0 = strings.ReplaceAll(argv0, `\`, "/")
	}
	name := filepath.Base(argv0)
	if goos == "windows" && strings.EqualFold(filepath.Ext(name), ".exe") {
		name = name[:len(name)-len(".exe")]
	}
	return name
}
