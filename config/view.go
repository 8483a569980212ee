package config

import (
	"sort"
	"strings"

	"github.com/shaverlee/gearbox/core/errors"
)

// View is a read-only snapshot of the keys sharing a common dot-prefix, with
// the prefix stripped. Views never alias the underlying store: mutations made
// after construction are not reflected.
type View map[string]any

// Get returns the value for a key in the view, or a coded NotFound error.
func (v View) Get(key string) (any, error) {
	value, ok := v[key]
	if !ok {
		return nil, errors.NotFoundKey(key)
	}
	return value, nil
}

// Lookup returns the value for a key and whether it exists.
func (v View) Lookup(key string) (any, bool) {
	value, ok := v[key]
	return value, ok
}

// Keys returns the view's keys in sorted order.
func (v View) Keys() []string {
	keys := make([]string, 0, len(v))
	for k := range v {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Len returns the number of keys in the view.
func (v View) Len() int {
	return len(v)
}

// View narrows the view to a nested dot-prefix group.
func (v View) View(prefix string) (View, error) {
	return group(prefix, v)
}

// StringOr returns the key's value as a string, or def.
func (v View) StringOr(key string, def string) string {
	if value, ok := v[key]; ok {
		if str, ok := value.(string); ok {
			return str
		}
	}
	return def
}

// group collects the entries of values whose keys start with prefix followed
// by a dot. The bare prefix key itself is not part of the group. An empty
// group is a coded NotFound error.
func group(prefix string, values map[string]any) (View, error) {
	match := prefix + "."
	view := make(View)
	for key, value := range values {
		if strings.HasPrefix(key, match) {
			view[key[len(match):]] = value
		}
	}
	if len(view) == 0 {
		return nil, errors.NotFoundKey(prefix)
	}
	return view, nil
}
