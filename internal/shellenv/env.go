package shellenv

import (
	"maps"
	"slices"
	"strings"
)

// Env is an environment snapshot.
type Env map[string]string

// FromEnviron builds an Env from KEY=VALUE entries as returned by os.Environ.
// Entries without '=' are skipped; a leading '=' is part of the name, as in
// the per-drive variables Windows keeps.
func FromEnviron(environ []string) Env {
	env := make(Env, len(environ))
	for _, kv := range environ {
		if k, v, ok := splitEntry(kv); ok {
			env[k] = v
		}
	}
	return env
}

func splitEntry(kv string) (key, value string, ok bool) {
	if len(kv) < 2 {
		return "", "", false
	}
	i := strings.IndexByte(kv[1:], '=')
	if i < 0 {
		return "", "", false
	}
	return kv[:i+1], kv[i+2:], true
}

// Environ returns the snapshot as sorted KEY=VALUE entries for exec.Cmd.Env.
func (e Env) Environ() []string {
	out := make([]string, 0, len(e))
	for _, k := range slices.Sorted(maps.Keys(e)) {
		out = append(out, k+"="+e[k])
	}
	return out
}

// Merge returns a new Env with the entries of each layer applied in order;
// later layers win.
func Merge(layers ...Env) Env {
	out := make(Env)
	for _, l := range layers {
		maps.Copy(out, l)
	}
	return out
}
