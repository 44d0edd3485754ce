package models

import (
	"fmt"
	"strings"
)

// InvalidValueError reports a string that does not belong to a closed enumeration.
type InvalidValueError struct {
	Kind  string
	Value string
}

func (e *InvalidValueError) Error() string {
	return fmt.Sprintf("invalid %s %q", e.Kind, e.Value)
}

// normalizeName folds "Partially Compliant", "PARTIALLY_COMPLIANT" and
// "partially-compliant" onto the same key.
func normalizeName(s string) string {
	s = strings.ToUpper(strings.TrimSpace(s))
	return strings.NewReplacer(" ", "_", "-", "_").Replace(s)
}

func parseEnum[T ~string](kind, raw string, all []T) (T, error) {
	key := normalizeName(raw)
	for _, v := range all {
		if normalizeName(string(v)) == key {
			return v, nil
		}
	}
	var zero T
	return zero, &InvalidValueError{Kind: kind, Value: raw}
}

func containsEnum[T ~string](v T, all []T) bool {
	for _, candidate := range all {
		if candidate == v {
			return true
		}
	}
	return false
}

// Fields is an opaque string-keyed passthrough map (tags, custom fields, findings).
type Fields map[string]any
