// Package hooks runs git hooks that were intercepted by hookproxy.
//
// When git invokes a hook under hookproxy, it actually runs a stub that
// forwards the invocation over a [Connection]. The [Handler] takes that
// invocation and does what git would have done, with two differences: the
// hook runs inside the user's interactive login shell, so PATH and tool
// managers from the shell profile are available, and the outcome is
// reported to optional progress and failure callbacks.
//
// # Environment
//
// The hook's environment is layered, later layers winning:
//
//   - the login-shell snapshot from [shellenv.Loader]
//   - the invocation's own variables that pass [Sanitize]
//   - HOOKPROXY=1, so scripts can detect that they run under hookproxy
//
// Only variables matching an allow prefix (GIT_ by default) are forwarded
// from git, and [DefaultDenyList] removes the ones that point at
// hookproxy's own configuration.
//
// # Outcomes
//
// A non-zero exit is tolerated silently for hooks whose failure does not
// stop the git operation anyway ([IsTolerated]). Other failures are passed
// to Handler.OnFailure, which may choose to ignore them; the exit code sent
// back to git is then 0.
//
// # Cancellation
//
// Closing the connection, or cancelling the context passed to
// [Handler.Handle], aborts the invocation. A running hook gets SIGTERM on
// its whole process group, then SIGKILL after [DefaultTerminateGrace].
// Hooks are never given a timeout of their own.
package hooks
