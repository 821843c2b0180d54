package hooks

import (
	"slices"
	"strings"

	"github.com/raphi011/hookproxy/internal/shellenv"
)

// MarkerVar is set to "1" in every hook's environment.
const MarkerVar = "HOOKPROXY"

// DefaultAllowPrefixes selects the invocation variables forwarded to hooks.
var DefaultAllowPrefixes = []string{"GIT_"}

// DefaultDenyList names variables that are never forwarded, even when they
// match an allow prefix.
var DefaultDenyList = []string{
	// Points git at a system config owned by the host application.
	"GIT_SYSTEM_CONFIG",
	// Carries -c core.hooksPath=<proxy dir>; a hook running git itself
	// would otherwise be intercepted again.
	"GIT_CONFIG_PARAMETERS",
	"GIT_CONFIG_COUNT",
	// Host credential helper.
	"GIT_ASKPASS",
	// Proxy plumbing.
	"HOOKPROXY_SOCKET",
	"HOOKPROXY_TOKEN",
}

// Sanitize returns the variables of env whose name starts with one of
// allowPrefixes and is not listed in denyNames.
func Sanitize(env map[string]string, allowPrefixes, denyNames []string) shellenv.Env {
	out := make(shellenv.Env)
	for k, v := range env {
		if slices.Contains(denyNames, k) {
			continue
		}
		if slices.ContainsFunc(allowPrefixes, func(p string) bool { return strings.HasPrefix(k, p) }) {
			out[k] = v
		}
	}
	return out
}

// EnvPolicy decides which invocation variables reach a hook. The zero
// value forwards nothing.
type EnvPolicy struct {
	AllowPrefixes []string
	Deny          []string
}

// DefaultEnvPolicy returns the built-in policy.
func DefaultEnvPolicy() EnvPolicy {
	return EnvPolicy{
		AllowPrefixes: slices.Clone(DefaultAllowPrefixes),
		Deny:          slices.Clone(DefaultDenyList),
	}
}

// WithDeny returns a copy of p that also denies names.
func (p EnvPolicy) WithDeny(names ...string) EnvPolicy {
	p.Deny = append(slices.Clone(p.Deny), names...)
	return p
}

// Apply filters env through the policy.
func (p EnvPolicy) Apply(env map[string]string) shellenv.Env {
	return Sanitize(env, p.AllowPrefixes, p.Deny)
}
