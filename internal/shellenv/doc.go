// Package shellenv reconstructs the environment a user's interactive login
// shell would give a hook.
//
// Hooks launched by git from a GUI or a service manager inherit a bare
// environment: no version managers, no PATH additions from ~/.zshrc. The
// [Loader] fixes that by starting the configured shell as an interactive
// login shell with an empty environment, letting it source its profile, and
// running a helper (hookproxy printenvz) that dumps the resulting
// environment between two marker lines:
//
//	--printenvz--begin
//	NAME=VALUE\0NAME=VALUE\0
//	--printenvz--end
//
// Profiles are free to print banners before the helper runs or after it
// exits; [Parse] only reads between the markers.
//
// # Shell kinds
//
// A [Kind] selects the shell: the default is $SHELL (falling back to
// /bin/sh) on POSIX systems and Git Bash on Windows. Each shell has its own
// quoting dialect; the [Resolver] owns a per-path cache of quote functions.
//
// # Errors
//
// Resolution failures are [*ShellNotFoundError] and carry the requested
// kind so callers can print remediation hints ([Remedy]). Spawn and parse
// failures are [*LoadError]; a missing marker unwraps to [ErrMarkerNotFound].
package shellenv
