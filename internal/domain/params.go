package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Params is one parameter set from a test catalog entry, e.g.
// {host: leaf1, destination: 10.0.0.2, max_drop: 1}
type Params map[string]any

// Has reports whether key is present with a non-nil value
func (p Params) Has(key string) bool {
	v, ok := p[key]
	return ok && v != nil
}

// Host returns the host the parameter set targets
func (p Params) Host() string {
	return p.String("host", "")
}

// String returns the value at key rendered as text, or fallback
func (p Params) String(key, fallback string) string {
	v, ok := p[key]
	if !ok || v == nil {
		return fallback
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

// Int returns the value at key as an int, or fallback when absent or not
// numeric
func (p Params) Int(key string, fallback int) int {
	if n, ok := ToInt(p[key]); ok {
		return n
	}
	return fallback
}

// Strings returns the value at key as a list of strings
func (p Params) Strings(key string) []string {
	switch v := p[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			out = append(out, fmt.Sprintf("%v", item))
		}
		return out
	case string:
		if v == "" {
			return nil
		}
		return []string{v}
	default:
		return nil
	}
}

// ToInt converts loosely-typed numeric values: ints, whole floats and numeric
// strings
func ToInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case uint:
		return int(n), true
	case uint32:
		return int(n), true
	case uint64:
		return int(n), true
	case float32:
		return floatToInt(float64(n))
	case float64:
		return floatToInt(n)
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil {
			return 0, false
		}
		return i, true
	default:
		return 0, false
	}
}

func floatToInt(f float64) (int, bool) {
	if f != math.Trunc(f) || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, false
	}
	return int(f), true
}
