package git

import (
	"context"
	"os"
	"os/exec"
	"slices"
	"strings"

	"github.com/raphi011/hookproxy/internal/cmd"
)

// repoEnv are the variables git exports to hooks that pin a repository.
// hookproxy may itself run inside a hook, where GIT_DIR is often relative,
// so lookups by directory drop them and let -C decide.
var repoEnv = []string{
	"GIT_DIR",
	"GIT_WORK_TREE",
	"GIT_INDEX_FILE",
	"GIT_COMMON_DIR",
	"GIT_PREFIX",
}

// gitArgs prepends -C <dir> to args if dir is non-empty.
func gitArgs(dir string, args []string) []string {
	if dir == "" {
		return args
	}
	return append([]string{"-C", dir}, args...)
}

// lookupEnv returns environ without repoEnv.
func lookupEnv(environ []string) []string {
	return slices.DeleteFunc(slices.Clone(environ), func(kv string) bool {
		name, _, _ := strings.Cut(kv, "=")
		return slices.Contains(repoEnv, name)
	})
}

// lookupCommand is a git command that locates the repository from dir only.
func lookupCommand(ctx context.Context, dir string, args []string) *exec.Cmd {
	c := exec.CommandContext(ctx, "git", gitArgs(dir, args)...)
	c.Env = lookupEnv(os.Environ())
	return c
}

// runGit executes a git command with context support and verbose logging.
func runGit(ctx context.Context, dir string, args ...string) error {
	_, err := cmd.Output(ctx, lookupCommand(ctx, dir, args))
	return err
}

// outputGit executes a git command with context support and verbose logging,
// returning stdout.
func outputGit(ctx context.Context, dir string, args ...string) ([]byte, error) {
	return cmd.Output(ctx, lookupCommand(ctx, dir, args))
}
