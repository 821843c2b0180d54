package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// LocalConfigFileName is the per-repo config file at the worktree root.
const LocalConfigFileName = ".hookproxy.toml"

// LocalConfig holds per-repo configuration overrides from .hookproxy.toml.
// Nil pointers and empty strings mean "not set" (inherit from global).
type LocalConfig struct {
	Shell LocalShell `toml:"shell"`
	Env   LocalEnv   `toml:"env"`
	Hooks LocalHooks `toml:"hooks"`
}

// LocalShell holds local shell overrides
type LocalShell struct {
	Kind     string `toml:"kind"`
	LoadEnv  *bool  `toml:"load_env"`
	CacheEnv *bool  `toml:"cache_env"`
}

// LocalEnv holds names appended to the global deny list
type LocalEnv struct {
	Deny []string `toml:"deny"`
}

// LocalHooks holds local hook overrides
type LocalHooks struct {
	OnFailure string   `toml:"on_failure"` // replaces global
	Tolerate  []string `toml:"tolerate"`   // appended to global
}

// LoadLocal reads a per-repo .hookproxy.toml config from the given repo path.
// Returns nil (no error) if the file doesn't exist.
// Returns an error only on parse or validation failure.
func LoadLocal(repoPath string) (*LocalConfig, error) {
	configFile := filepath.Join(repoPath, LocalConfigFileName)

	data, err := os.ReadFile(configFile)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read local config %s: %w", configFile, err)
	}

	var local LocalConfig
	md, err := toml.Decode(string(data), &local)
	if err != nil {
		return nil, fmt.Errorf("failed to parse local config %s: %w", configFile, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("unknown key %q in %s", undecoded[0].String(), configFile)
	}

	if local.Shell.Kind != "" {
		if _, err := parseShellKind(local.Shell.Kind); err != nil {
			return nil, fmt.Errorf("%w in %s", err, configFile)
		}
	}
	if err := validateNames(local.Env.Deny, "env.deny"); err != nil {
		return nil, fmt.Errorf("%w in %s", err, configFile)
	}
	if err := validateEnum(local.Hooks.OnFailure, "hooks.on_failure", ValidOnFailure); err != nil {
		return nil, fmt.Errorf("%w in %s", err, configFile)
	}
	if err := validateHookNames(local.Hooks.Tolerate, "hooks.tolerate"); err != nil {
		return nil, fmt.Errorf("%w in %s", err, configFile)
	}

	return &local, nil
}

// defaultLocalConfig is the template for hookproxy config init --local
const defaultLocalConfig = `# hookproxy local config (per-repo overrides)
# Place this file at the root of your repository.
# Settings here override ~/.config/hookproxy/config.toml for this repo only.

# [shell]
# kind = "bash"
# load_env = false

# Names added to the deny list
# [env]
# deny = ["GIT_TRACE"]

# [hooks]
# on_failure = "fail"
# tolerate = ["pre-push"]   # added to the global list
`

// DefaultLocalConfig returns the default local configuration template content.
func DefaultLocalConfig() string {
	return defaultLocalConfig
}
