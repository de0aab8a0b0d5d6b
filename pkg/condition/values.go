package condition

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// isEmpty reports whether a parent value holds nothing: nil, a blank string,
// an empty list, or a map whose leaves are all empty or false. Date and time
// ranges with neither bound set are empty.
func isEmpty(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	case bool:
		return !v
	case []any:
		return len(v) == 0
	case []string:
		return len(v) == 0
	case map[string]any:
		for _, member := range v {
			if !isEmpty(member) {
				return false
			}
		}
		return true
	case map[string]bool:
		for _, set := range v {
			if set {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// toFloat converts a value to float64 if possible.
// Strings are accepted because number inputs often travel as text.
func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// toString returns v as a string. Only strings are accepted.
func toString(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

// toStrings normalises a list value ([]any of strings, []string, or a single
// string) into []string. Non-string members are skipped.
func toStrings(v any) []string {
	switch l := v.(type) {
	case nil:
		return nil
	case string:
		if l == "" {
			return nil
		}
		return []string{l}
	case []string:
		return l
	case []any:
		out := make([]string, 0, len(l))
		for _, item := range l {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

// toMap returns v as a JSON object.
func toMap(v any) map[string]any {
	switch m := v.(type) {
	case map[string]any:
		return m
	case map[string]bool:
		out := make(map[string]any, len(m))
		for k, b := range m {
			out[k] = b
		}
		return out
	default:
		return nil
	}
}

// parseDate parses a date value (string or time.Time).
// Supports ISO 8601 formats.
func parseDate(v any) (time.Time, bool) {
	if v == nil {
		return time.Time{}, false
	}

	switch d := v.(type) {
	case time.Time:
		return d, true
	case string:
		formats := []string{
			time.RFC3339,
			"2006-01-02T15:04:05",
			"2006-01-02",
		}
		for _, format := range formats {
			if t, err := time.Parse(format, d); err == nil {
				return t, true
			}
		}
		return time.Time{}, false
	default:
		return time.Time{}, false
	}
}

// dayOf truncates t to its calendar day in its own location.
func dayOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// parseClock parses HH:MM or HH:MM:SS into seconds since midnight.
func parseClock(v any) (int, bool) {
	s, ok := v.(string)
	if !ok {
		return 0, false
	}
	for _, layout := range []string{"15:04:05", "15:04"} {
		if t, err := time.Parse(layout, strings.TrimSpace(s)); err == nil {
			return t.Hour()*3600 + t.Minute()*60 + t.Second(), true
		}
	}
	return 0, false
}

// bounds reads a range value, an object with start/end members under the
// given names.
func bounds(v any, startKey, endKey string) (any, any, bool) {
	m := toMap(v)
	if m == nil {
		return nil, nil, false
	}
	start, end := m[startKey], m[endKey]
	if start == nil && end == nil {
		return nil, nil, false
	}
	return start, end, true
}

// describe renders a value for log fields.
func describe(v any) string {
	return fmt.Sprintf("%v", v)
}

// IsDate reports whether v is a date string the evaluator understands.
func IsDate(v any) bool {
	_, ok := parseDate(v)
	return ok
}

// IsTime reports whether v is an HH:MM or HH:MM:SS string.
func IsTime(v any) bool {
	_, ok := parseClock(v)
	return ok
}
