package form

import (
	"fmt"
	"strconv"
	"strings"
)

// Stock messages.
const (
	MsgRequired = "This field is required."
	MsgInvalid  = "This field is invalid."
)

// Required rejects nil, blank strings and empty lists.
func Required(value any, _ map[string]any) string {
	if IsEmpty(value) {
		return MsgRequired
	}
	return ""
}

// RequiredString rejects anything that is not a non-blank string.
func RequiredString(value any, _ map[string]any) string {
	s, ok := value.(string)
	if !ok || strings.TrimSpace(s) == "" {
		return MsgRequired
	}
	return ""
}

// DefaultUndefined marks a field that may legitimately be absent. It never
// fails; it exists so schemas spell out every field they accept.
func DefaultUndefined(any, map[string]any) string {
	return ""
}

// OneOf accepts absent values and strings from the given set.
func OneOf(allowed ...string) Validator {
	return func(value any, _ map[string]any) string {
		if value == nil {
			return ""
		}
		s, ok := value.(string)
		if !ok {
			return MsgInvalid
		}
		if s == "" {
			return ""
		}
		for _, a := range allowed {
			if s == a {
				return ""
			}
		}
		return fmt.Sprintf("%q is not one of %s.", s, strings.Join(allowed, ", "))
	}
}

// GreaterThanOrEqual requires a numeric field to be at least the numeric
// sibling field named other. Absent values on either side pass; numbers may
// arrive as strings.
func GreaterThanOrEqual(other string) Validator {
	return func(value any, parent map[string]any) string {
		x, ok1 := number(value)
		y, ok2 := number(parent[other])
		if !ok1 || !ok2 {
			return ""
		}
		if x < y {
			return fmt.Sprintf("Must be greater than or equal to %s.", other)
		}
		return ""
	}
}

// Number rejects values that are neither numbers nor numeric strings.
func Number(value any, _ map[string]any) string {
	if value == nil || value == "" {
		return ""
	}
	if _, ok := number(value); !ok {
		return "This field must be a number."
	}
	return ""
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	}
	return 0, false
}

// IsEmpty reports whether a JSON-shaped value holds no data: nil, a blank
// string, an empty list or an object whose members are all empty.
func IsEmpty(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	case []any:
		return len(v) == 0
	case []string:
		return len(v) == 0
	case map[string]any:
		for _, member := range v {
			if !IsEmpty(member) {
				return false
			}
		}
		return true
	default:
		return false
	}
}
