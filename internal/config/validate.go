package config

import (
	"fmt"
	"slices"
	"strings"

	"github.com/raphi011/hookproxy/internal/hooks"
	"github.com/raphi011/hookproxy/internal/shellenv"
)

// ValidOnFailure lists the accepted [hooks] on_failure values.
var ValidOnFailure = []string{OnFailureAsk, OnFailureIgnore, OnFailureFail}

// ValidShellKinds lists the accepted [shell] kind values.
func ValidShellKinds() []string {
	kinds := []string{"default"}
	for _, k := range shellenv.Kinds {
		kinds = append(kinds, string(k))
	}
	return kinds
}

func parseShellKind(kind string) (shellenv.Kind, error) {
	k, err := shellenv.ParseKind(kind)
	if err != nil {
		return shellenv.Default, fmt.Errorf("invalid shell.kind %q: must be %s", kind, formatOptions(ValidShellKinds()))
	}
	return k, nil
}

// validateEnum checks that value (if non-empty) is one of the allowed values.
// Returns a formatted error mentioning the field name and allowed options.
func validateEnum(value, field string, allowed []string) error {
	if value == "" {
		return nil
	}
	if !slices.Contains(allowed, value) {
		return fmt.Errorf("invalid %s %q: must be %s", field, value, formatOptions(allowed))
	}
	return nil
}

// validateNames rejects empty entries and entries containing '='.
func validateNames(names []string, field string) error {
	for i, n := range names {
		if n == "" || strings.Contains(n, "=") {
			return fmt.Errorf("invalid %s[%d] %q: must be a variable name", field, i, n)
		}
	}
	return nil
}

// validateHookNames checks that every entry names a git hook.
func validateHookNames(names []string, field string) error {
	for i, n := range names {
		if hooks.IsKnown(n) {
			continue
		}
		if s := hooks.Suggest(n, 1); len(s) > 0 {
			return fmt.Errorf("invalid %s[%d] %q: not a git hook (did you mean %q?)", field, i, n, s[0])
		}
		return fmt.Errorf("invalid %s[%d] %q: not a git hook", field, i, n)
	}
	return nil
}

// formatOptions formats a list of allowed values for error messages.
// E.g., ["a", "b", "c"] -> `"a", "b", or "c"`
func formatOptions(opts []string) string {
	quoted := make([]string, len(opts))
	for i, o := range opts {
		quoted[i] = fmt.Sprintf("%q", o)
	}
	if len(quoted) <= 2 {
		return strings.Join(quoted, " or ")
	}
	return strings.Join(quoted[:len(quoted)-1], ", ") + ", or " + quoted[len(quoted)-1]
}
