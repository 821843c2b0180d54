// Package proxy intercepts git hooks and forwards them to an in-process
// handler.
//
// [Start] creates a session: a private directory holding a unix socket and
// a hooks directory. Running git with [Session.GitArgs] points
// core.hooksPath at that directory, where every intercepted hook is a link
// back to the hookproxy binary. When git runs one, the binary notices its
// own name is a hook and runs [RunStub], which dials the socket, sends the
// invocation and relays stdio until the handler reports an exit code.
//
// The protocol is JSON frames over a websocket. The stub opens with a hello
// frame carrying args, env, cwd and whether it has stdin, then sends stdin
// and stdin_eof frames. The session answers with stdout, stderr and a
// final exit frame.
package proxy
