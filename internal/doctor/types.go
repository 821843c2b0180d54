package doctor

// IssueCategory groups issues by type.
type IssueCategory string

const (
	// CategorySetup represents missing tools or an unusable shell.
	CategorySetup IssueCategory = "setup"
	// CategoryConfig represents config files that do not load.
	CategoryConfig IssueCategory = "config"
	// CategoryHistory represents an unreadable run history.
	CategoryHistory IssueCategory = "history"
	// CategorySession represents stale proxy session directories.
	CategorySession IssueCategory = "session"
)

// FixAction names what --fix does about an issue.
type FixAction string

const (
	// FixNone means the issue needs manual attention.
	FixNone FixAction = ""
	// FixRemoveSession deletes a stale session directory.
	FixRemoveSession FixAction = "remove_session"
	// FixResetHistory moves a corrupted history file aside.
	FixResetHistory FixAction = "reset_history"
)

// Issue represents a problem detected by doctor.
type Issue struct {
	Key         string        // path or name of what was checked
	Description string        // human-readable description
	FixAction   FixAction     // what --fix would do
	Category    IssueCategory // issue category
}

// IssueStats tracks counts by category.
type IssueStats struct {
	SetupOK       int // setup checks that passed
	ConfigFiles   int // config files checked
	ConfigIssues  int // config files that failed to load
	HistoryIssues int // unreadable history files
	SessionsLive  int // sessions served by a running hookproxy
	SessionsStale int // sessions nobody serves
}
