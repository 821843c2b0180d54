package styles

import (
	"fmt"
	"time"
)

// Hook lifecycle symbols
const (
	SymbolStarted   = "›"
	SymbolFinished  = "✓"
	SymbolFailed    = "✗"
	SymbolTolerated = "!"
)

// HookStatus renders the one-line notice printed when a hook starts or ends.
// Unknown statuses render without a symbol.
func HookStatus(hook, status string) string {
	name := PrimaryStyle.Render(hook)
	switch status {
	case "started":
		return fmt.Sprintf("%s %s %s", MutedStyle.Render(SymbolStarted), name, MutedStyle.Render("running"))
	case "finished":
		return fmt.Sprintf("%s %s %s", SuccessStyle.Render(SymbolFinished), name, status)
	case "failed":
		return fmt.Sprintf("%s %s %s", ErrorStyle.Render(SymbolFailed), name, ErrorStyle.Render(status))
	case "failed-tolerated":
		return fmt.Sprintf("%s %s %s", WarningStyle.Render(SymbolTolerated), name, WarningStyle.Render("failed, ignored"))
	}
	return fmt.Sprintf("%s %s", name, status)
}

// Elapsed renders a duration as muted, millisecond-rounded text.
func Elapsed(d time.Duration) string {
	return MutedStyle.Render("(" + d.Round(time.Millisecond).String() + ")")
}
