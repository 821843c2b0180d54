package doctor

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/raphi011/hookproxy/internal/config"
	"github.com/raphi011/hookproxy/internal/git"
	"github.com/raphi011/hookproxy/internal/history"
	"github.com/raphi011/hookproxy/internal/proxy"
	"github.com/raphi011/hookproxy/internal/shellenv"
)

// checkSetupIssues checks git and the shell hooks run in. It returns the
// issues and the number of checks that passed.
func checkSetupIssues(ctx context.Context, opts Options) ([]Issue, int) {
	var (
		issues []Issue
		ok     int
	)

	if err := git.CheckGit(); err != nil {
		issues = append(issues, Issue{Key: "git", Description: err.Error()})
	} else {
		ok++
	}

	kind := opts.Config.Shell.Kind
	if _, err := opts.Shells.Resolve(kind); err != nil {
		issues = append(issues, Issue{
			Key:         "shell " + kind.String(),
			Description: fmt.Sprintf("%v. %s", err, shellenv.Remedy(kind)),
		})
		// Loading the environment needs the shell.
		return issues, ok
	}
	ok++

	if opts.Env == nil {
		return issues, ok
	}
	if _, err := opts.Env.Load(ctx, opts.Dir, kind); err != nil {
		issues = append(issues, Issue{
			Key:         "login shell " + kind.String(),
			Description: fmt.Sprintf("environment did not load: %v", err),
		})
	} else {
		ok++
	}
	return issues, ok
}

// checkConfigIssues reports config files that do not load. It returns the
// issues and the number of files checked.
func checkConfigIssues(opts Options) ([]Issue, int) {
	var issues []Issue
	checked := 1

	if opts.ConfigErr != nil {
		key := "global config"
		if path, err := config.Path(); err == nil {
			key = path
		}
		issues = append(issues, Issue{Key: key, Description: opts.ConfigErr.Error()})
	}

	if opts.Repo != "" {
		checked++
		if _, err := config.LoadLocal(opts.Repo); err != nil {
			issues = append(issues, Issue{
				Key:         filepath.Join(opts.Repo, config.LocalConfigFileName),
				Description: err.Error(),
			})
		}
	}
	return issues, checked
}

// checkHistoryIssues reports a history file that cannot be decoded.
func checkHistoryIssues(path string) []Issue {
	if path == "" {
		return nil
	}
	if err := history.Verify(path); err != nil {
		return []Issue{{
			Key:         path,
			Description: fmt.Sprintf("unreadable: %v", err),
			FixAction:   FixResetHistory,
		}}
	}
	return nil
}

// checkSessionIssues finds session directories no process serves anymore.
// It returns the issues and the number of live sessions.
func checkSessionIssues(root string) ([]Issue, int, error) {
	dirs, err := proxy.Sessions(root)
	if err != nil {
		return nil, 0, err
	}
	var (
		issues []Issue
		live   int
	)
	for _, dir := range dirs {
		if proxy.SessionAlive(dir) {
			live++
			continue
		}
		issues = append(issues, Issue{
			Key:         dir,
			Description: "stale session (no running hookproxy)",
			FixAction:   FixRemoveSession,
		})
	}
	return issues, live, nil
}
