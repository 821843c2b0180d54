package hooks

import (
	"errors"
	"time"
)

var (
	// ErrAborted means the invocation was torn down before the hook finished.
	ErrAborted = errors.New("hook invocation aborted")
	// ErrStreamPipe means copying one of the hook's streams failed.
	ErrStreamPipe = errors.New("hook stream failed")
)

// Outcome classifies how a hook invocation ended.
type Outcome string

const (
	Finished  Outcome = "finished"
	Failed    Outcome = "failed"
	Tolerated Outcome = "failed-tolerated"
	Aborted   Outcome = "aborted"
)

// Status is a lifecycle event reported to Handler.OnProgress.
type Status string

const (
	StatusStarted  Status = "started"
	StatusFinished Status = "finished"
	StatusFailed   Status = "failed"
)

// Progress is passed to Handler.OnProgress. Abort is only set with
// StatusStarted and cancels the invocation.
type Progress struct {
	Hook   string
	Status Status
	Abort  func()
}

// FailureAction is the answer of Handler.OnFailure.
type FailureAction int

const (
	// FailureReport lets the failure stand; git sees the hook's exit code.
	FailureReport FailureAction = iota
	// FailureIgnore treats the failure as tolerated; git sees exit code 0.
	FailureIgnore
)

// Result describes one handled invocation.
type Result struct {
	Hook     string
	Outcome  Outcome
	ExitCode int           // code sent over the connection
	HookCode int           // code the hook exited with; -1 if it never ran or was signaled
	Signal   string        // set when the hook was killed by a signal
	Duration time.Duration // time the hook process ran
	Err      error

	started bool
}
