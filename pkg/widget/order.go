package widget

import (
	"fmt"
	"sort"
)

// Renumber returns a copy of widgets sorted by their current order with
// Order rewritten to 1..n. Ties keep their relative position.
func Renumber(widgets []Widget) []Widget {
	out := make([]Widget, len(widgets))
	copy(out, widgets)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Order < out[j].Order
	})
	for i := range out {
		out[i].Order = i + 1
	}
	return out
}

// Reorder returns widgets arranged in the order of keys (client ids) with
// Order rewritten to 1..n. keys must name every widget exactly once.
func Reorder(widgets []Widget, keys []string) ([]Widget, error) {
	if len(keys) != len(widgets) {
		return nil, fmt.Errorf("reorder: got %d keys for %d widgets", len(keys), len(widgets))
	}

	byKey := make(map[string]Widget, len(widgets))
	for _, w := range widgets {
		byKey[w.ClientID] = w
	}

	out := make([]Widget, 0, len(widgets))
	seen := make(map[string]bool, len(keys))
	for i, key := range keys {
		w, ok := byKey[key]
		if !ok {
			return nil, fmt.Errorf("reorder: unknown widget %q", key)
		}
		if seen[key] {
			return nil, fmt.Errorf("reorder: widget %q listed twice", key)
		}
		seen[key] = true
		w.Order = i + 1
		out = append(out, w)
	}
	return out, nil
}

// RenumberConditions returns a copy of conditions with Order rewritten to
// their 1-based position.
func RenumberConditions(conditions []Condition) []Condition {
	out := make([]Condition, len(conditions))
	copy(out, conditions)
	for i := range out {
		out[i].Order = i + 1
	}
	return out
}

// SortedConditions returns a copy of conditions sorted by Order ascending.
func SortedConditions(conditions []Condition) []Condition {
	out := make([]Condition, len(conditions))
	copy(out, conditions)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Order < out[j].Order
	})
	return out
}

// Contiguous reports whether the orders of conditions are exactly 1..n in
// list order.
func Contiguous(conditions []Condition) bool {
	for i, c := range conditions {
		if c.Order != i+1 {
			return false
		}
	}
	return true
}

// ReorderConditions returns conditions arranged in the order of keys with
// Order rewritten to 1..n. keys must name every condition exactly once.
func ReorderConditions(conditions []Condition, keys []string) ([]Condition, error) {
	if len(keys) != len(conditions) {
		return nil, fmt.Errorf("reorder: got %d keys for %d conditions", len(keys), len(conditions))
	}

	byKey := make(map[string]Condition, len(conditions))
	for _, c := range conditions {
		byKey[c.Key] = c
	}

	out := make([]Condition, 0, len(conditions))
	seen := make(map[string]bool, len(keys))
	for i, key := range keys {
		c, ok := byKey[key]
		if !ok {
			return nil, fmt.Errorf("reorder: unknown condition %q", key)
		}
		if seen[key] {
			return nil, fmt.Errorf("reorder: condition %q listed twice", key)
		}
		seen[key] = true
		c.Order = i + 1
		out = append(out, c)
	}
	return out, nil
}
