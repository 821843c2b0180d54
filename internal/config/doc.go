// Package config handles loading and validation of hookproxy configuration.
//
// Configuration is read from ~/.config/hookproxy/config.toml, or from the
// file named by $HOOKPROXY_CONFIG. A missing file means [Default].
//
// # Key Settings
//
//   - shell.kind: shell hooks run in ("" picks the platform default)
//   - shell.load_env: load the login-shell environment for hooks
//   - shell.cache_env, shell.cache_ttl: reuse loaded environments
//   - env.allow_prefixes, env.deny: which git variables reach hooks
//   - hooks.on_failure: "ask", "ignore" or "fail"
//   - hooks.tolerate: extra hooks whose failure is ignored silently
//   - output.capacity, output.history_limit
//
// # Per-repo Overrides
//
// A .hookproxy.toml at the root of a repository overrides the shell
// settings and on_failure, and extends env.deny and hooks.tolerate. Lists
// are only ever extended, so a repository cannot re-enable a variable the
// global config denies. [Resolver] merges and caches per repo.
package config
