package hooks

import "github.com/sahilm/fuzzy"

// Suggest returns up to limit known hook names that fuzzy-match name, best
// match first.
func Suggest(name string, limit int) []string {
	return SuggestFrom(name, Names, limit)
}

// SuggestFrom is Suggest over an arbitrary candidate list.
func SuggestFrom(name string, candidates []string, limit int) []string {
	var out []string
	for _, m := range fuzzy.Find(name, candidates) {
		if len(out) == limit {
			break
		}
		out = append(out, m.Str)
	}
	return out
}
