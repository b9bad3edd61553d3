package domain

import (
	"strings"
)

// Record is a single resource row keyed by column name. Values are the
// JSON-decoded shapes (string, float64, bool, nil) on the way in and the
// database-scanned shapes (string, int64, float64, bool, nil) on the way out.
type Record map[string]any

// String returns the value under key as a trimmed string.
func (r Record) String(key string) (string, bool) {
	v, ok := r[key]
	if !ok || v == nil {
		return "", false
	}
	s, ok := v.(string)
	if !ok {
		return "", false
	}
	return strings.TrimSpace(s), true
}

// Int returns the value under key as an int64. JSON decoding produces
// float64 for all numbers, so both shapes are accepted; a float with a
// fractional part is rejected.
func (r Record) Int(key string) (int64, bool) {
	v, ok := r[key]
	if !ok || v == nil {
		return 0, false
	}
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case float64:
		if n != float64(int64(n)) {
			return 0, false
		}
		return int64(n), true
	}
	return 0, false
}

// Float returns the value under key as a float64.
func (r Record) Float(key string) (float64, bool) {
	v, ok := r[key]
	if !ok || v == nil {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return n, true
	case int64:
		return float64(n), true
	case int:
		return float64(n), true
	}
	return 0, false
}

// Bool returns the value under key as a bool.
func (r Record) Bool(key string) (bool, bool) {
	v, ok := r[key]
	if !ok || v == nil {
		return false, false
	}
	b, ok := v.(bool)
	return b, ok
}

// Has reports whether key is present with a non-nil value.
func (r Record) Has(key string) bool {
	v, ok := r[key]
	return ok && v != nil
}

// Clone returns a shallow copy.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}
