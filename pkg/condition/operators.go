package condition

import (
	"strings"

	"github.com/dlovans/tagform/pkg/widget"
)

// executeOperator tests one condition against the parent widget's value.
// The second result is false when the operator is unknown.
// Nil or malformed parent values make every comparison false; only OpEmpty
// is true for them.
func executeOperator(c widget.Condition, parent *widget.Widget, value any) (bool, bool) {
	switch c.Operator {
	case OpEmpty:
		return isEmpty(value), true

	// === Number ===
	case OpNumberGreaterThan:
		return compareNumeric(value, c.Value, func(x, y float64) bool { return x > y }), true
	case OpNumberLessThan:
		return compareNumeric(value, c.Value, func(x, y float64) bool { return x < y }), true
	case OpNumberEqualTo:
		return compareNumeric(value, c.Value, func(x, y float64) bool { return x == y }), true

	// === Text ===
	case OpTextStartsWith:
		return compareText(value, c.Value, strings.HasPrefix), true
	case OpTextEndsWith:
		return compareText(value, c.Value, strings.HasSuffix), true
	case OpTextContains:
		return compareText(value, c.Value, strings.Contains), true

	// === Date ===
	case OpDateAfter:
		return compareDate(value, c.Value, func(x, y int) bool { return x > y }), true
	case OpDateBefore:
		return compareDate(value, c.Value, func(x, y int) bool { return x < y }), true
	case OpDateEqualTo:
		return compareDate(value, c.Value, func(x, y int) bool { return x == y }), true

	// === Time ===
	case OpTimeAfter:
		return compareClock(value, c.Value, func(x, y int) bool { return x > y }), true
	case OpTimeBefore:
		return compareClock(value, c.Value, func(x, y int) bool { return x < y }), true
	case OpTimeEqualTo:
		return compareClock(value, c.Value, func(x, y int) bool { return x == y }), true

	// === Ranges ===
	case OpDateRangeAfter, OpDateRangeBefore, OpDateRangeIncludes:
		start, end, ok := bounds(value, "startDate", "endDate")
		if !ok {
			return false, true
		}
		return compareRange(c.Operator, start, end, c.Value, dateOrdinal), true
	case OpTimeRangeAfter, OpTimeRangeBefore, OpTimeRangeIncludes:
		start, end, ok := bounds(value, "startTime", "endTime")
		if !ok {
			return false, true
		}
		return compareRange(c.Operator, start, end, c.Value, parseClock), true

	// === Selections ===
	case OpSingleSelectionSelected, OpScaleSelected:
		s, ok := toString(value)
		if !ok || s == "" {
			return false, true
		}
		return contains(toStrings(c.Value), s), true
	case OpMultiSelectionSelected, OpOrganigramSelected:
		return matchKeys(toStrings(value), toStrings(c.Value), c.OperatorModifier), true

	case OpScaleMoreThan:
		return compareScale(parent, value, c.Value, func(x, y int) bool { return x >= y }), true
	case OpScaleLessThan:
		return compareScale(parent, value, c.Value, func(x, y int) bool { return x <= y }), true

	case OpOrganigramDescendentSelected:
		return descendentSelected(parent, toStrings(value), toStrings(c.Value), c.OperatorModifier), true

	// === Matrices ===
	case OpMatrix1DRowsSelected:
		return matchKeys(matrix1DRows(value), toStrings(c.Value), c.OperatorModifier), true
	case OpMatrix1DCellsSelected:
		return matchKeys(matrix1DCells(value), toStrings(c.Value), c.OperatorModifier), true
	case OpMatrix2DRowsSelected:
		return matchKeys(matrix2DKeys(value, 0), toStrings(c.Value), c.OperatorModifier), true
	case OpMatrix2DSubRowsSelected:
		return matchKeys(matrix2DKeys(value, 1), toStrings(c.Value), c.OperatorModifier), true
	case OpMatrix2DColumnsSelected:
		return matchKeys(matrix2DKeys(value, 2), toStrings(c.Value), c.OperatorModifier), true
	case OpMatrix2DSubColumnsSelected:
		return matchKeys(matrix2DKeys(value, 3), toStrings(c.Value), c.OperatorModifier), true

	default:
		return false, false
	}
}

func compareNumeric(a, b any, cmp func(float64, float64) bool) bool {
	x, ok1 := toFloat(a)
	y, ok2 := toFloat(b)
	if !ok1 || !ok2 {
		return false
	}
	return cmp(x, y)
}

// compareText matches case-insensitively. An empty needle never matches.
func compareText(a, b any, match func(s, substr string) bool) bool {
	s, ok1 := toString(a)
	sub, ok2 := toString(b)
	if !ok1 || !ok2 || sub == "" {
		return false
	}
	return match(strings.ToLower(s), strings.ToLower(sub))
}

// dateOrdinal maps a date to a comparable day number.
func dateOrdinal(v any) (int, bool) {
	t, ok := parseDate(v)
	if !ok {
		return 0, false
	}
	y, m, d := dayOf(t).Date()
	return y*10000 + int(m)*100 + d, true
}

func compareDate(a, b any, cmp func(int, int) bool) bool {
	x, ok1 := dateOrdinal(a)
	y, ok2 := dateOrdinal(b)
	if !ok1 || !ok2 {
		return false
	}
	return cmp(x, y)
}

func compareClock(a, b any, cmp func(int, int) bool) bool {
	x, ok1 := parseClock(a)
	y, ok2 := parseClock(b)
	if !ok1 || !ok2 {
		return false
	}
	return cmp(x, y)
}

// compareRange implements after/before/includes over a range with optional
// bounds. A missing bound is open for includes and fails after/before.
func compareRange(op string, start, end, want any, ordinal func(any) (int, bool)) bool {
	w, ok := ordinal(want)
	if !ok {
		return false
	}
	s, hasStart := ordinal(start)
	e, hasEnd := ordinal(end)

	switch op {
	case OpDateRangeAfter, OpTimeRangeAfter:
		return hasStart && s > w
	case OpDateRangeBefore, OpTimeRangeBefore:
		return hasEnd && e < w
	default:
		if !hasStart && !hasEnd {
			return false
		}
		return (!hasStart || s <= w) && (!hasEnd || w <= e)
	}
}

// compareScale compares the option order of the selected scale key with the
// order of the condition's key.
func compareScale(parent *widget.Widget, a, b any, cmp func(int, int) bool) bool {
	if parent == nil {
		return false
	}
	selected, ok1 := toString(a)
	want, ok2 := toString(b)
	if !ok1 || !ok2 {
		return false
	}
	x, ok1 := parent.Properties.OptionOrder(selected)
	y, ok2 := parent.Properties.OptionOrder(want)
	if !ok1 || !ok2 {
		return false
	}
	return cmp(x, y)
}

// descendentSelected reports whether the selection holds a node at or below
// each (every) or any (some) of the wanted nodes.
func descendentSelected(parent *widget.Widget, selected, wanted []string, mod widget.Modifier) bool {
	if parent == nil || parent.Properties == nil || len(wanted) == 0 || len(selected) == 0 {
		return false
	}
	root := parent.Properties.Organigram
	within := func(key string) bool {
		node := root.Find(key)
		if node == nil {
			return false
		}
		return intersects(node.Descendants(), selected)
	}

	if mod == widget.ModifierEvery {
		for _, key := range wanted {
			if !within(key) {
				return false
			}
		}
		return true
	}
	for _, key := range wanted {
		if within(key) {
			return true
		}
	}
	return false
}

// matchKeys tests the wanted keys against a selection. every requires all of
// them, some (the default) requires at least one.
func matchKeys(selected, wanted []string, mod widget.Modifier) bool {
	if len(wanted) == 0 || len(selected) == 0 {
		return false
	}
	if mod == widget.ModifierEvery {
		for _, key := range wanted {
			if !contains(selected, key) {
				return false
			}
		}
		return true
	}
	return intersects(selected, wanted)
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}

func intersects(a, b []string) bool {
	for _, item := range a {
		if contains(b, item) {
			return true
		}
	}
	return false
}

// matrix1DRows lists the rows with at least one selected cell.
// A Matrix1D value is {rowKey: {cellKey: true}}.
func matrix1DRows(value any) []string {
	var out []string
	for row, cells := range toMap(value) {
		if !isEmpty(cells) {
			out = append(out, row)
		}
	}
	return out
}

// matrix1DCells lists every selected cell key across rows.
func matrix1DCells(value any) []string {
	var out []string
	for _, cells := range toMap(value) {
		for cell, set := range toMap(cells) {
			if !isEmpty(set) && !contains(out, cell) {
				out = append(out, cell)
			}
		}
	}
	return out
}

// matrix2DKeys lists the keys with a non-empty selection at one depth of a
// Matrix2D value {rowKey: {subRowKey: {columnKey: [subColumnKey]}}}.
// Depth 0 is rows, 1 sub-rows, 2 columns and 3 sub-columns.
func matrix2DKeys(value any, depth int) []string {
	var out []string
	add := func(key string) {
		if !contains(out, key) {
			out = append(out, key)
		}
	}
	for row, subRows := range toMap(value) {
		if depth == 0 {
			if !isEmpty(subRows) {
				add(row)
			}
			continue
		}
		for subRow, columns := range toMap(subRows) {
			if depth == 1 {
				if !isEmpty(columns) {
					add(subRow)
				}
				continue
			}
			for column, subColumns := range toMap(columns) {
				if depth == 2 {
					if !isEmpty(subColumns) {
						add(column)
					}
					continue
				}
				for _, subColumn := range toStrings(subColumns) {
					add(subColumn)
				}
			}
		}
	}
	return out
}
