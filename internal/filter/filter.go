// Package filter evaluates metadata predicate trees against vector records.
package filter

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// Filter is a predicate evaluated against a single metadata document.
// Implementations are immutable and safe to share across goroutines.
type Filter interface {
	// Match reports whether metadata satisfies the predicate. Missing paths
	// and type mismatches evaluate to false; Match never errors or panics.
	Match(metadata map[string]interface{}) bool
	// Validate checks the filter's own configuration (not the metadata it
	// will be evaluated against).
	Validate() error
	// String renders the filter for logging/debugging.
	String() string
}

// Error represents a malformed filter (not a match-time condition).
type Error struct {
	Kind    string
	Field   string
	Message string
}

func (e *Error) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("filter: %s on field %q: %s", e.Kind, e.Field, e.Message)
	}
	return fmt.Sprintf("filter: %s: %s", e.Kind, e.Message)
}

func newError(kind, field, message string) *Error {
	return &Error{Kind: kind, Field: field, Message: message}
}

// lookup walks a dot-separated path through metadata, indexing arrays by
// integer segments. It returns (value, true) on success, or (nil, false) if
// any segment is missing or the path otherwise cannot be followed.
func lookup(metadata map[string]interface{}, path string) (interface{}, bool) {
	if metadata == nil || path == "" {
		return nil, false
	}

	var current interface{} = metadata
	for _, segment := range strings.Split(path, ".") {
		switch node := current.(type) {
		case map[string]interface{}:
			v, ok := node[segment]
			if !ok {
				return nil, false
			}
			current = v
		case []interface{}:
			idx, err := strconv.Atoi(segment)
			if err != nil || idx < 0 || idx >= len(node) {
				return nil, false
			}
			current = node[idx]
		default:
			return nil, false
		}
	}
	return current, true
}

func toFloat64(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}

func toTime(v interface{}) (time.Time, bool) {
	switch val := v.(type) {
	case time.Time:
		return val, true
	case string:
		formats := []string{
			time.RFC3339,
			time.RFC3339Nano,
			"2006-01-02T15:04:05",
			"2006-01-02",
		}
		for _, f := range formats {
			if t, err := time.Parse(f, val); err == nil {
				return t, true
			}
		}
	case int64:
		return time.Unix(val, 0), true
	}
	return time.Time{}, false
}

// compare returns -1, 0, or 1 if a<b, a==b, a>b under a best-effort common
// type, or (0, false) if a and b are not comparable.
func compare(a, b interface{}) (int, bool) {
	if af, aok := toFloat64(a); aok {
		if bf, bok := toFloat64(b); bok {
			switch {
			case af < bf:
				return -1, true
			case af > bf:
				return 1, true
			default:
				return 0, true
			}
		}
	}
	if as, aok := a.(string); aok {
		if bs, bok := b.(string); bok {
			return strings.Compare(as, bs), true
		}
	}
	if at, aok := toTime(a); aok {
		if bt, bok := toTime(b); bok {
			switch {
			case at.Before(bt):
				return -1, true
			case at.After(bt):
				return 1, true
			default:
				return 0, true
			}
		}
	}
	return 0, false
}

func valuesEqual(a, b interface{}) bool {
	if reflect.DeepEqual(a, b) {
		return true
	}
	if c, ok := compare(a, b); ok {
		return c == 0
	}
	return false
}
