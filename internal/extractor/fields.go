package extractor

import (
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"netintent/internal/domain"
)

// parseLiteral decodes a textual serialization of nested output. JSON and
// Python-literal dict reprs are both valid YAML flow syntax, so the YAML
// decoder serves as a data-only parser.
func parseLiteral(text string) (any, error) {
	var out any
	if err := yaml.Unmarshal([]byte(text), &out); err != nil {
		return nil, fmt.Errorf("decode literal: %w", err)
	}
	return out, nil
}

// decodeStructured returns command output as a mapping, parsing text first
func decodeStructured(output any) (map[string]any, error) {
	switch v := output.(type) {
	case string:
		parsed, err := parseLiteral(v)
		if err != nil {
			return nil, err
		}
		output = parsed
	case []byte:
		parsed, err := parseLiteral(string(v))
		if err != nil {
			return nil, err
		}
		output = parsed
	}

	m, ok := asMap(output)
	if !ok {
		return nil, fmt.Errorf("output is %T, not a mapping", output)
	}
	return m, nil
}

// asMap accepts both string-keyed and any-keyed maps
func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, val := range m {
			out[fmt.Sprintf("%v", k)] = val
		}
		return out, true
	default:
		return nil, false
	}
}

// asList accepts generic and map-typed slices
func asList(v any) ([]any, bool) {
	switch l := v.(type) {
	case []any:
		return l, true
	case []map[string]any:
		out := make([]any, 0, len(l))
		for _, item := range l {
			out = append(out, item)
		}
		return out, true
	default:
		return nil, false
	}
}

// sortedValues returns map values ordered by key
func sortedValues(m map[string]any) []any {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	values := make([]any, 0, len(keys))
	for _, k := range keys {
		values = append(values, m[k])
	}
	return values
}

// getStringField extracts a string field, rendering scalars as text
func getStringField(m map[string]any, key string) (string, bool) {
	v, ok := m[key]
	if !ok || v == nil {
		return "", false
	}
	if s, ok := v.(string); ok {
		return s, true
	}
	return fmt.Sprintf("%v", v), true
}

// getIntField extracts an integer field, falling back to def when the field
// is missing or not numeric
func getIntField(m map[string]any, key string, def int, entry *logrus.Entry) int {
	v, ok := m[key]
	if !ok || v == nil {
		entry.WithFields(logrus.Fields{"field": key, "default": def}).Debug("default applied")
		return def
	}
	n, ok := domain.ToInt(v)
	if !ok {
		entry.WithFields(logrus.Fields{"field": key, "value": v, "default": def}).Debug("default applied for non-numeric value")
		return def
	}
	return n
}
