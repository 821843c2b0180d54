package config

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/raphi011/hookproxy/internal/shellenv"
)

func TestDefault(t *testing.T) {
	t.Parallel()
	cfg := Default()
	if !cfg.Shell.LoadEnv || cfg.Shell.CacheEnv {
		t.Errorf("shell = %+v, want load_env on and cache_env off", cfg.Shell)
	}
	if cfg.Shell.CacheTTL != DefaultCacheTTL {
		t.Errorf("cache_ttl = %s, want %s", cfg.Shell.CacheTTL, DefaultCacheTTL)
	}
	if !slices.Equal(cfg.Env.AllowPrefixes, []string{"GIT_"}) {
		t.Errorf("allow_prefixes = %q", cfg.Env.AllowPrefixes)
	}
	if cfg.Hooks.OnFailure != OnFailureAsk {
		t.Errorf("on_failure = %q, want %q", cfg.Hooks.OnFailure, OnFailureAsk)
	}
	if cfg.Output.Capacity != DefaultCapacity || cfg.Output.HistoryLimit != DefaultHistoryLimit {
		t.Errorf("output = %+v", cfg.Output)
	}
}

func TestParse(t *testing.T) {
	t.Parallel()

	cfg, err := Parse([]byte(`
[shell]
kind = "zsh"
load_env = false
cache_env = true
cache_ttl = "90s"

[env]
allow_prefixes = ["GIT_", "LC_"]
deny = ["GIT_TRACE"]

[hooks]
on_failure = "fail"
tolerate = ["pre-push"]

[output]
capacity = 1024
history_limit = 0
`))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	want := Config{
		Shell:  ShellConfig{Kind: shellenv.Zsh, LoadEnv: false, CacheEnv: true, CacheTTL: 90 * time.Second},
		Env:    EnvConfig{AllowPrefixes: []string{"GIT_", "LC_"}, Deny: []string{"GIT_TRACE"}},
		Hooks:  HooksConfig{OnFailure: OnFailureFail, Tolerate: []string{"pre-push"}},
		Output: OutputConfig{Capacity: 1024, HistoryLimit: 0},
	}
	if cfg.Shell != want.Shell {
		t.Errorf("shell = %+v, want %+v", cfg.Shell, want.Shell)
	}
	if !slices.Equal(cfg.Env.AllowPrefixes, want.Env.AllowPrefixes) || !slices.Equal(cfg.Env.Deny, want.Env.Deny) {
		t.Errorf("env = %+v, want %+v", cfg.Env, want.Env)
	}
	if cfg.Hooks.OnFailure != want.Hooks.OnFailure || !slices.Equal(cfg.Hooks.Tolerate, want.Hooks.Tolerate) {
		t.Errorf("hooks = %+v, want %+v", cfg.Hooks, want.Hooks)
	}
	if cfg.Output != want.Output {
		t.Errorf("output = %+v, want %+v", cfg.Output, want.Output)
	}
}

func TestParse_PartialKeepsDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := Parse([]byte("[hooks]\ntolerate = [\"pre-commit\"]\n"))
	if err != nil {
		t.Fatal(err)
	}
	if !cfg.Shell.LoadEnv || cfg.Hooks.OnFailure != OnFailureAsk || !slices.Equal(cfg.Env.AllowPrefixes, []string{"GIT_"}) {
		t.Errorf("Parse() = %+v, want defaults for unset keys", cfg)
	}
}

func TestParse_EmptyAllowPrefixes(t *testing.T) {
	t.Parallel()

	cfg, err := Parse([]byte("[env]\nallow_prefixes = []\n"))
	if err != nil {
		t.Fatal(err)
	}
	if len(cfg.Env.AllowPrefixes) != 0 {
		t.Errorf("allow_prefixes = %q, want none", cfg.Env.AllowPrefixes)
	}
}

func TestParse_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		wantErr string
	}{
		{"shell kind", "[shell]\nkind = \"tcsh\"", `invalid shell.kind "tcsh"`},
		{"cache ttl", "[shell]\ncache_ttl = \"soon\"", `invalid shell.cache_ttl "soon"`},
		{"negative ttl", "[shell]\ncache_ttl = \"-1m\"", `invalid shell.cache_ttl "-1m"`},
		{"on failure", "[hooks]\non_failure = \"retry\"", `invalid hooks.on_failure "retry": must be "ask", "ignore", or "fail"`},
		{"tolerate", "[hooks]\ntolerate = [\"precommit\"]", `did you mean "pre-commit"?`},
		{"deny", "[env]\ndeny = [\"A=B\"]", `invalid env.deny[0] "A=B"`},
		{"capacity", "[output]\ncapacity = 0", "invalid output.capacity 0"},
		{"history", "[output]\nhistory_limit = -1", "invalid output.history_limit -1"},
		{"unknown key", "[shell]\nknd = \"zsh\"", `unknown config key "shell.knd"`},
		{"syntax", "[shell\n", "failed to parse config file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Parse([]byte(tt.input))
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Parse() error = %v, want %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadFile(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	cfg, err := LoadFile(filepath.Join(dir, "missing.toml"))
	if err != nil {
		t.Fatalf("LoadFile(missing) error = %v", err)
	}
	if cfg.Hooks.OnFailure != OnFailureAsk {
		t.Errorf("LoadFile(missing) = %+v, want Default()", cfg)
	}

	bad := filepath.Join(dir, "bad.toml")
	if err := os.WriteFile(bad, []byte("[hooks]\non_failure = 1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFile(bad); err == nil || !strings.Contains(err.Error(), bad) {
		t.Errorf("LoadFile(bad) error = %v, want it to name the file", err)
	}
}

func TestDefaultConfigIsValid(t *testing.T) {
	t.Parallel()
	cfg, err := Parse([]byte(DefaultConfig()))
	if err != nil {
		t.Fatalf("DefaultConfig() does not parse: %v", err)
	}
	def := Default()
	if cfg.Shell != def.Shell || cfg.Output != def.Output || cfg.Hooks.OnFailure != def.Hooks.OnFailure {
		t.Errorf("template = %+v, want the defaults %+v", cfg, def)
	}
}

func TestDefaultLocalConfigIsValidTOML(t *testing.T) {
	t.Parallel()
	var local LocalConfig
	if _, err := toml.Decode(DefaultLocalConfig(), &local); err != nil {
		t.Fatalf("DefaultLocalConfig() is not valid TOML: %v", err)
	}
}

func TestTOML_RoundTrip(t *testing.T) {
	t.Parallel()

	cfg := Default()
	cfg.Shell.Kind = shellenv.Fish
	cfg.Shell.CacheTTL = 5 * time.Minute
	cfg.Hooks.Tolerate = []string{"pre-push"}

	out, err := cfg.TOML()
	if err != nil {
		t.Fatal(err)
	}
	back, err := Parse([]byte(out))
	if err != nil {
		t.Fatalf("Parse(TOML()) error = %v\n%s", err, out)
	}
	if back.Shell != cfg.Shell || !slices.Equal(back.Hooks.Tolerate, cfg.Hooks.Tolerate) {
		t.Errorf("round trip = %+v, want %+v", back, cfg)
	}
}

func TestInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	t.Setenv(ConfigEnv, path)

	got, err := Init(false)
	if err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	if got != path {
		t.Errorf("Init() = %q, want %q", got, path)
	}
	if _, err := Init(false); err == nil {
		t.Error("second Init(false) succeeded, want already exists")
	}
	if _, err := Init(true); err != nil {
		t.Errorf("Init(true) error = %v", err)
	}
	if _, err := Load(); err != nil {
		t.Errorf("Load() of the written template error = %v", err)
	}
}

func TestFormatOptions(t *testing.T) {
	t.Parallel()
	tests := []struct {
		opts []string
		want string
	}{
		{[]string{"a"}, `"a"`},
		{[]string{"a", "b"}, `"a" or "b"`},
		{[]string{"a", "b", "c"}, `"a", "b", or "c"`},
	}
	for _, tt := range tests {
		if got := formatOptions(tt.opts); got != tt.want {
			t.Errorf("formatOptions(%q) = %q, want %q", tt.opts, got, tt.want)
		}
	}
}

func TestValidShellKinds(t *testing.T) {
	t.Parallel()
	for _, k := range ValidShellKinds() {
		if _, err := parseShellKind(k); err != nil {
			t.Errorf("parseShellKind(%q) error = %v", k, err)
		}
	}
}
