package config

// MergeLocal merges a local per-repo config into a global config,
// returning a new Config without mutating the global.
// Returns global unchanged if local is nil.
func MergeLocal(global *Config, local *LocalConfig) *Config {
	if local == nil {
		return global
	}

	// Output settings are global-only and carried over by the copy.
	merged := *global

	if k, err := parseShellKind(local.Shell.Kind); local.Shell.Kind != "" && err == nil {
		merged.Shell.Kind = k
	}
	if local.Shell.LoadEnv != nil {
		merged.Shell.LoadEnv = *local.Shell.LoadEnv
	}
	if local.Shell.CacheEnv != nil {
		merged.Shell.CacheEnv = *local.Shell.CacheEnv
	}

	if len(local.Env.Deny) > 0 {
		merged.Env.Deny = appendUnique(global.Env.Deny, local.Env.Deny)
	}

	if local.Hooks.OnFailure != "" {
		merged.Hooks.OnFailure = local.Hooks.OnFailure
	}
	if len(local.Hooks.Tolerate) > 0 {
		merged.Hooks.Tolerate = appendUnique(global.Hooks.Tolerate, local.Hooks.Tolerate)
	}

	return &merged
}

// appendUnique appends items from extra to base, skipping duplicates.
// Returns a new slice (never mutates base).
func appendUnique(base, extra []string) []string {
	seen := make(map[string]bool, len(base))
	for _, v := range base {
		seen[v] = true
	}

	result := make([]string, len(base))
	copy(result, base)

	for _, v := range extra {
		if !seen[v] {
			result = append(result, v)
			seen[v] = true
		}
	}

	return result
}
