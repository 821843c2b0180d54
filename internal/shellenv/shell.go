package shellenv

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"sync"
)

// Kind names a shell the user can pick for running hooks.
type Kind string

const (
	Default    Kind = ""
	Bash       Kind = "bash"
	Zsh        Kind = "zsh"
	Fish       Kind = "fish"
	Sh         Kind = "sh"
	GitBash    Kind = "git-bash"
	Pwsh       Kind = "pwsh"
	PowerShell Kind = "powershell"
	Cmd        Kind = "cmd"
)

// Kinds lists every selectable non-default kind.
var Kinds = []Kind{Bash, Zsh, Fish, Sh, GitBash, Pwsh, PowerShell, Cmd}

// ParseKind validates a configured shell kind. The empty string and
// "default" both select the platform default.
func ParseKind(s string) (Kind, error) {
	if s == "" || s == "default" {
		return Default, nil
	}
	k := Kind(s)
	if !slices.Contains(Kinds, k) {
		names := make([]string, len(Kinds))
		for i, k := range Kinds {
			names[i] = string(k)
		}
		return Default, fmt.Errorf("invalid shell kind %q: must be one of %s", s, strings.Join(names, ", "))
	}
	return k, nil
}

func (k Kind) String() string {
	if k == Default {
		return "default"
	}
	return string(k)
}

// Quoter quotes one argument for a shell command line.
type Quoter func(string) string

type dialect int

const (
	dialectPOSIX dialect = iota
	dialectFish
	dialectPowerShell
	dialectCmd
)

// dialectOf derives the quoting dialect from a shell executable's name.
func dialectOf(path string) (dialect, bool) {
	name := strings.ToLower(filepath.Base(path))
	name = strings.TrimSuffix(name, ".exe")
	switch name {
	case "sh", "bash", "dash", "zsh", "ksh", "mksh", "ash":
		return dialectPOSIX, true
	case "fish":
		return dialectFish, true
	case "pwsh", "powershell":
		return dialectPowerShell, true
	case "cmd":
		return dialectCmd, true
	}
	return 0, false
}

// Shell is a resolved shell executable plus the arguments that make it run a
// command string as an interactive login shell.
type Shell struct {
	Kind    Kind
	Path    string
	Args    []string
	Quote   Quoter
	dialect dialect
}

// CommandLine quotes argv into one command string for the shell.
func (s Shell) CommandLine(argv ...string) string {
	parts := make([]string, len(argv))
	for i, a := range argv {
		parts[i] = s.Quote(a)
	}
	line := strings.Join(parts, " ")
	if s.dialect == dialectPowerShell {
		// A quoted path is a string literal in PowerShell; & invokes it.
		line = "& " + line
	}
	return line
}

// Command returns a command that runs argv inside the shell.
func (s Shell) Command(ctx context.Context, argv ...string) *exec.Cmd {
	line := s.CommandLine(argv...)
	c := exec.CommandContext(ctx, s.Path, append(slices.Clone(s.Args), line)...)
	prepareCommandLine(c, s, line)
	return c
}

func argsFor(d dialect) []string {
	switch d {
	case dialectFish:
		return []string{"-l", "-i", "-c"}
	case dialectPowerShell:
		return []string{"-NoLogo", "-Command"}
	case dialectCmd:
		return []string{"/s", "/c"}
	}
	return []string{"-ilc"}
}

// ShellNotFoundError reports that no usable executable exists for a kind.
type ShellNotFoundError struct {
	Kind Kind
	Path string // candidate that was rejected, if any
}

func (e *ShellNotFoundError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("shell %s not usable: %s", e.Kind, e.Path)
	}
	return fmt.Sprintf("shell %s not found", e.Kind)
}

// Remedy returns a hint for fixing a missing shell of the given kind.
func Remedy(kind Kind) string {
	switch kind {
	case GitBash:
		return "Install Git for Windows (https://git-scm.com/download/win) or pick another shell with [shell] kind in the hookproxy config."
	case Pwsh:
		return "Install PowerShell 7 (https://aka.ms/powershell) or pick another shell with [shell] kind in the hookproxy config."
	case PowerShell:
		return "Windows PowerShell is only available on Windows; pick another shell with [shell] kind in the hookproxy config."
	case Cmd:
		return "cmd.exe is only available on Windows; pick another shell with [shell] kind in the hookproxy config."
	case Fish:
		return "Install fish (https://fishshell.com) or pick another shell with [shell] kind in the hookproxy config."
	case Default:
		return "Set $SHELL to an installed shell or pick one with [shell] kind in the hookproxy config."
	}
	return fmt.Sprintf("Install %s or pick another shell with [shell] kind in the hookproxy config.", kind)
}

// Resolver maps shell kinds to executables. It owns the quote function
// cache, keyed by shell path.
type Resolver struct {
	LookPath func(string) (string, error)
	Getenv   func(string) string
	Stat     func(string) (os.FileInfo, error)
	GOOS     string

	mu      sync.Mutex
	quoters map[string]Quoter
}

// NewResolver returns a resolver for the running system.
func NewResolver() *Resolver {
	return &Resolver{
		LookPath: exec.LookPath,
		Getenv:   os.Getenv,
		Stat:     os.Stat,
		GOOS:     runtime.GOOS,
	}
}

// Resolve finds the executable for kind. It returns a *ShellNotFoundError
// when nothing usable exists.
func (r *Resolver) Resolve(kind Kind) (Shell, error) {
	path, err := r.find(kind)
	if err != nil {
		return Shell{}, err
	}
	d, ok := dialectOf(path)
	if !ok {
		return Shell{}, &ShellNotFoundError{Kind: kind, Path: path}
	}
	return Shell{
		Kind:    kind,
		Path:    path,
		Args:    argsFor(d),
		Quote:   r.quoter(path, d),
		dialect: d,
	}, nil
}

func (r *Resolver) find(kind Kind) (string, error) {
	switch kind {
	case Default:
		return r.defaultShell()
	case GitBash:
		return r.gitBash()
	case Cmd:
		if comspec := r.Getenv("ComSpec"); comspec != "" && r.isFile(comspec) {
			return comspec, nil
		}
	}
	path, err := r.LookPath(string(kind))
	if err != nil {
		return "", &ShellNotFoundError{Kind: kind}
	}
	return path, nil
}

func (r *Resolver) defaultShell() (string, error) {
	if r.GOOS == "windows" {
		for _, k := range []Kind{GitBash, Pwsh, PowerShell, Cmd} {
			if path, err := r.find(k); err == nil {
				return path, nil
			}
		}
		return "", &ShellNotFoundError{Kind: Default}
	}

	if sh := r.Getenv("SHELL"); filepath.IsAbs(sh) && r.isFile(sh) {
		if _, ok := dialectOf(sh); ok {
			return sh, nil
		}
	}
	if r.isFile("/bin/sh") {
		return "/bin/sh", nil
	}
	return "", &ShellNotFoundError{Kind: Default}
}

// gitBash locates bash.exe shipped with Git for Windows, next to git's cmd dir.
func (r *Resolver) gitBash() (string, error) {
	var candidates []string
	if git, err := r.LookPath("git"); err == nil {
		root := filepath.Dir(filepath.Dir(git))
		candidates = append(candidates, filepath.Join(root, "bin", "bash.exe"))
	}
	for _, env := range []string{"ProgramFiles", "ProgramW6432", "LOCALAPPDATA"} {
		if dir := r.Getenv(env); dir != "" {
			sub := "Git"
			if env == "LOCALAPPDATA" {
				sub = filepath.Join("Programs", "Git")
			}
			candidates = append(candidates, filepath.Join(dir, sub, "bin", "bash.exe"))
		}
	}
	for _, c := range candidates {
		if r.isFile(c) {
			return c, nil
		}
	}
	return "", &ShellNotFoundError{Kind: GitBash}
}

func (r *Resolver) isFile(path string) bool {
	fi, err := r.Stat(path)
	return err == nil && fi.Mode().IsRegular()
}

func (r *Resolver) quoter(path string, d dialect) Quoter {
	r.mu.Lock()
	defer r.mu.Unlock()
	if q, ok := r.quoters[path]; ok {
		return q
	}
	if r.quoters == nil {
		r.quoters = make(map[string]Quoter)
	}
	q := quoterFor(d)
	r.quoters[path] = q
	return q
}

// cachedQuoters reports how many quote functions are cached.
func (r *Resolver) cachedQuoters() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.quoters)
}
