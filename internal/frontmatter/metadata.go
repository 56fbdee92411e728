package frontmatter

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Metadata maps lower-cased frontmatter keys to their ordered values.
type Metadata map[string][]string

// First returns the first value stored under key.
func (m Metadata) First(key string) (string, bool) {
	values, ok := m[strings.ToLower(key)]
	if !ok || len(values) == 0 {
		return "", false
	}
	return values[0], true
}

// Has reports whether key has at least one value.
func (m Metadata) Has(key string) bool {
	_, ok := m.First(key)
	return ok
}

// Set replaces the values stored under key.
func (m Metadata) Set(key string, values ...string) {
	m[strings.ToLower(key)] = values
}

// Flatten keeps the first value of every key.
func (m Metadata) Flatten() map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		if len(v) > 0 {
			out[k] = v[0]
		}
	}
	return out
}

// Clone returns a deep copy.
func (m Metadata) Clone() Metadata {
	out := make(Metadata, len(m))
	for k, v := range m {
		out[k] = append([]string(nil), v...)
	}
	return out
}

// Keys returns the keys in sorted order.
func (m Metadata) Keys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// fromFields converts decoded YAML/TOML fields into Metadata. Scalars become
// single values, lists keep their order, nested maps are dropped.
func fromFields(fields map[string]any) Metadata {
	m := make(Metadata, len(fields))
	for k, v := range fields {
		if values, ok := scalarValues(v); ok {
			m[strings.ToLower(strings.TrimSpace(k))] = values
		}
	}
	return m
}

func scalarValues(v any) ([]string, bool) {
	switch vv := v.(type) {
	case nil:
		return nil, false
	case string:
		return []string{strings.TrimSpace(vv)}, true
	case time.Time:
		if vv.Hour() == 0 && vv.Minute() == 0 && vv.Second() == 0 && vv.Nanosecond() == 0 {
			return []string{vv.Format("2006-01-02")}, true
		}
		return []string{vv.Format("2006-01-02 15:04:05")}, true
	case []any:
		out := make([]string, 0, len(vv))
		for _, item := range vv {
			if s, ok := scalarValues(item); ok && len(s) == 1 {
				out = append(out, s[0])
			}
		}
		return out, true
	case []string:
		return append([]string(nil), vv...), true
	case map[string]any, map[any]any:
		return nil, false
	default:
		return []string{fmt.Sprint(vv)}, true
	}
}
