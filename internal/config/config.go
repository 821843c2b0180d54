package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/raphi011/hookproxy/internal/shellenv"
)

// Failure handling modes for [hooks] on_failure.
const (
	OnFailureAsk    = "ask"
	OnFailureIgnore = "ignore"
	OnFailureFail   = "fail"
)

// Defaults for values that are not set in any config file.
const (
	DefaultCacheTTL     = 10 * time.Minute
	DefaultCapacity     = 256 * 1024
	DefaultHistoryLimit = 100
)

// ConfigEnv overrides the location of the global config file.
const ConfigEnv = "HOOKPROXY_CONFIG"

// ShellConfig selects the shell hooks run in.
type ShellConfig struct {
	Kind     shellenv.Kind
	LoadEnv  bool
	CacheEnv bool
	CacheTTL time.Duration
}

// EnvConfig controls which variables of the git invocation reach a hook.
type EnvConfig struct {
	AllowPrefixes []string
	Deny          []string // added to the built-in deny list
}

// HooksConfig controls how hook failures are treated.
type HooksConfig struct {
	OnFailure string
	Tolerate  []string
}

// OutputConfig bounds buffered output and run history.
type OutputConfig struct {
	Capacity     int
	HistoryLimit int
}

// Config holds the hookproxy configuration
type Config struct {
	Shell  ShellConfig
	Env    EnvConfig
	Hooks  HooksConfig
	Output OutputConfig
}

// Default returns the default configuration
func Default() Config {
	return Config{
		Shell: ShellConfig{
			Kind:     shellenv.Default,
			LoadEnv:  true,
			CacheTTL: DefaultCacheTTL,
		},
		Env: EnvConfig{
			AllowPrefixes: []string{"GIT_"},
		},
		Hooks: HooksConfig{
			OnFailure: OnFailureAsk,
		},
		Output: OutputConfig{
			Capacity:     DefaultCapacity,
			HistoryLimit: DefaultHistoryLimit,
		},
	}
}

// rawConfig mirrors the file layout. Pointers tell unset from zero.
type rawConfig struct {
	Shell struct {
		Kind     string `toml:"kind"`
		LoadEnv  *bool  `toml:"load_env"`
		CacheEnv *bool  `toml:"cache_env"`
		CacheTTL string `toml:"cache_ttl"`
	} `toml:"shell"`
	Env struct {
		AllowPrefixes []string `toml:"allow_prefixes"`
		Deny          []string `toml:"deny"`
	} `toml:"env"`
	Hooks struct {
		OnFailure string   `toml:"on_failure"`
		Tolerate  []string `toml:"tolerate"`
	} `toml:"hooks"`
	Output struct {
		Capacity     *int `toml:"capacity"`
		HistoryLimit *int `toml:"history_limit"`
	} `toml:"output"`
}

// Path returns the path to the global config file.
func Path() (string, error) {
	if p := os.Getenv(ConfigEnv); p != "" {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "hookproxy", "config.toml"), nil
}

// Load reads the global config file.
// Returns Default() if file doesn't exist (no error)
// Returns error only if file exists but is invalid
func Load() (Config, error) {
	path, err := Path()
	if err != nil {
		return Default(), nil
	}
	return LoadFile(path)
}

// LoadFile reads config from path. A missing file yields Default().
func LoadFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return Default(), fmt.Errorf("failed to read config file: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Default(), fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes and validates a config file's contents on top of Default().
func Parse(data []byte) (Config, error) {
	var raw rawConfig
	md, err := toml.Decode(string(data), &raw)
	if err != nil {
		return Default(), fmt.Errorf("failed to parse config file: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return Default(), fmt.Errorf("unknown config key %q", undecoded[0].String())
	}

	cfg := Default()
	if err := applyShell(&cfg.Shell, raw.Shell.Kind, raw.Shell.LoadEnv, raw.Shell.CacheEnv, raw.Shell.CacheTTL); err != nil {
		return Default(), err
	}

	if md.IsDefined("env", "allow_prefixes") {
		cfg.Env.AllowPrefixes = raw.Env.AllowPrefixes
	}
	if err := validateNames(cfg.Env.AllowPrefixes, "env.allow_prefixes"); err != nil {
		return Default(), err
	}
	cfg.Env.Deny = raw.Env.Deny
	if err := validateNames(cfg.Env.Deny, "env.deny"); err != nil {
		return Default(), err
	}

	if raw.Hooks.OnFailure != "" {
		if err := validateEnum(raw.Hooks.OnFailure, "hooks.on_failure", ValidOnFailure); err != nil {
			return Default(), err
		}
		cfg.Hooks.OnFailure = raw.Hooks.OnFailure
	}
	if err := validateHookNames(raw.Hooks.Tolerate, "hooks.tolerate"); err != nil {
		return Default(), err
	}
	cfg.Hooks.Tolerate = raw.Hooks.Tolerate

	if raw.Output.Capacity != nil {
		if *raw.Output.Capacity <= 0 {
			return Default(), fmt.Errorf("invalid output.capacity %d: must be positive", *raw.Output.Capacity)
		}
		cfg.Output.Capacity = *raw.Output.Capacity
	}
	if raw.Output.HistoryLimit != nil {
		if *raw.Output.HistoryLimit < 0 {
			return Default(), fmt.Errorf("invalid output.history_limit %d: must not be negative", *raw.Output.HistoryLimit)
		}
		cfg.Output.HistoryLimit = *raw.Output.HistoryLimit
	}

	return cfg, nil
}

// applyShell overlays set [shell] values onto sc.
func applyShell(sc *ShellConfig, kind string, loadEnv, cacheEnv *bool, ttl string) error {
	if kind != "" {
		k, err := parseShellKind(kind)
		if err != nil {
			return err
		}
		sc.Kind = k
	}
	if loadEnv != nil {
		sc.LoadEnv = *loadEnv
	}
	if cacheEnv != nil {
		sc.CacheEnv = *cacheEnv
	}
	if ttl != "" {
		d, err := time.ParseDuration(ttl)
		if err != nil || d <= 0 {
			return fmt.Errorf("invalid shell.cache_ttl %q: must be a positive duration like \"10m\"", ttl)
		}
		sc.CacheTTL = d
	}
	return nil
}

// showConfig is the shape `config show` prints.
type showConfig struct {
	Shell struct {
		Kind     string `toml:"kind"`
		LoadEnv  bool   `toml:"load_env"`
		CacheEnv bool   `toml:"cache_env"`
		CacheTTL string `toml:"cache_ttl"`
	} `toml:"shell"`
	Env struct {
		AllowPrefixes []string `toml:"allow_prefixes"`
		Deny          []string `toml:"deny"`
	} `toml:"env"`
	Hooks struct {
		OnFailure string   `toml:"on_failure"`
		Tolerate  []string `toml:"tolerate"`
	} `toml:"hooks"`
	Output struct {
		Capacity     int `toml:"capacity"`
		HistoryLimit int `toml:"history_limit"`
	} `toml:"output"`
}

// TOML renders the effective configuration in config file syntax.
func (c Config) TOML() (string, error) {
	var s showConfig
	s.Shell.Kind = string(c.Shell.Kind)
	s.Shell.LoadEnv = c.Shell.LoadEnv
	s.Shell.CacheEnv = c.Shell.CacheEnv
	s.Shell.CacheTTL = c.Shell.CacheTTL.String()
	s.Env.AllowPrefixes = nonNil(c.Env.AllowPrefixes)
	s.Env.Deny = nonNil(c.Env.Deny)
	s.Hooks.OnFailure = c.Hooks.OnFailure
	s.Hooks.Tolerate = nonNil(c.Hooks.Tolerate)
	s.Output.Capacity = c.Output.Capacity
	s.Output.HistoryLimit = c.Output.HistoryLimit

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(s); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

const defaultConfig = `# hookproxy configuration

# Shell hooks run in
[shell]
# Shell kind: "" (default), bash, zsh, fish, sh, git-bash, pwsh, powershell, cmd
# The default is $SHELL on macOS and Linux and Git Bash on Windows.
# kind = ""

# Load the environment of an interactive login shell before running hooks,
# so PATH additions and version managers from your profile are available.
load_env = true

# Reuse a loaded environment for the same shell and directory. Cached
# environments are dropped when a shell rc file in your home changes.
# cache_env = false
# cache_ttl = "10m"

# Variables from git's environment that are forwarded to hooks
[env]
allow_prefixes = ["GIT_"]
# Extra names never forwarded (added to the built-in deny list)
# deny = ["GIT_TRACE"]

# Hook failure handling
[hooks]
# ask: prompt whether to ignore the failure (when running in a terminal)
# ignore: treat every failure as tolerated
# fail: let git see the failure
on_failure = "ask"

# Hooks whose failure is ignored silently, in addition to the post-* hooks
# git ignores anyway
# tolerate = ["pre-push"]

[output]
# Characters of output kept for late subscribers
capacity = 262144
# Number of hook runs kept by "hookproxy history"
history_limit = 100
`

// DefaultConfig returns the commented config template.
func DefaultConfig() string {
	return defaultConfig
}

// Init creates a default config file at Path().
// If force is true, overwrites existing file
// Returns the path to the created file
func Init(force bool) (string, error) {
	path, err := Path()
	if err != nil {
		return "", err
	}

	if !force {
		if _, err := os.Stat(path); err == nil {
			return "", errors.New("config file already exists: " + path)
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, []byte(defaultConfig), 0644); err != nil {
		return "", err
	}

	return path, nil
}
