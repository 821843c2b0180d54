// Package git provides the git operations hookproxy needs via the git CLI.
//
// Commands run through [os/exec] rather than a Go git library so that the
// user's configuration (credential helpers, aliases, includes) applies.
//
// # Hooks
//
// [HooksPath] asks git where it runs hooks from, which honors
// core.hooksPath. [RepoHooks] looks hooks up in that directory and is what
// the hook handler uses to find the executable behind an intercepted name.
//
// # Running operations
//
// [Run] runs one git command and writes its combined output to a
// [termout.Source]. The source is handed to RunOptions.OnOutput as soon as
// the process starts, so a broadcaster can follow several operations in a
// row.
package git
