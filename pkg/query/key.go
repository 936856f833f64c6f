package query

import (
	"encoding/json"
	"fmt"
)

// Key identifies a cache entry. Segments are compared by their JSON form,
// so 1 and 1.0 are the same segment.
type Key []any

// Hash returns the canonical string form of k used to index the cache.
func (k Key) Hash() string {
	b, err := json.Marshal([]any(k))
	if err != nil {
		return fmt.Sprintf("%#v", []any(k))
	}
	return string(b)
}

func segment(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%#v", v)
	}
	return string(b)
}

// HasPrefix reports whether prefix matches the leading segments of k.
func (k Key) HasPrefix(prefix Key) bool {
	if len(prefix) > len(k) {
		return false
	}
	for i := range prefix {
		if segment(k[i]) != segment(prefix[i]) {
			return false
		}
	}
	return true
}

// String implements fmt.Stringer.
func (k Key) String() string { return k.Hash() }
