package types

import (
	"sort"
	"strings"
)

// Attributes are the free-form key/value pairs describing a concrete SKU (color, size, ...).
type Attributes map[string]string

// Get returns the trimmed value stored under key.
func (a Attributes) Get(key string) string {
	if a == nil {
		return ""
	}
	return strings.TrimSpace(a[key])
}

// Label renders the attributes as a stable "key: value" list for display.
func (a Attributes) Label() string {
	if len(a) == 0 {
		return ""
	}
	keys := make([]string, 0, len(a))
	for k := range a {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+a[k])
	}
	return strings.Join(parts, ", ")
}
