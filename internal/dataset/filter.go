package dataset

import (
	"sort"
	"strings"
)

// Filter is a set of equality constraints on dataset columns defining
// the subset of samples under analysis. The quantity store caches
// derived quantities relative to exactly one filter at a time, keyed by
// the canonical Signature.
type Filter map[string]string

// Signature returns a canonical serialization of the filter: entries
// sorted by key and joined as "k=v;...". The empty filter serializes to
// the empty string. Two filters with equal signatures select identical
// subsets, which is what makes the signature a sound cache key.
func (f Filter) Signature() string {
	if len(f) == 0 {
		return ""
	}
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte(';')
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(f[k])
	}
	return b.String()
}

// Equal reports whether two filters select the same subset.
func (f Filter) Equal(other Filter) bool {
	return f.Signature() == other.Signature()
}
