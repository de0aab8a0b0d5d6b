// Package condition evaluates the conditional rules that tie a child
// widget's visibility to its parent widget's value.
package condition

import (
	"github.com/dlovans/tagform/pkg/widget"
)

// Operator keys. Every parent type supports OpEmpty.
const (
	OpEmpty = "empty"

	OpNumberGreaterThan = "number-greater-than"
	OpNumberLessThan    = "number-less-than"
	OpNumberEqualTo     = "number-equal-to"

	OpTextStartsWith = "text-starts-with"
	OpTextEndsWith   = "text-ends-with"
	OpTextContains   = "text-contains"

	OpDateAfter   = "date-after"
	OpDateBefore  = "date-before"
	OpDateEqualTo = "date-equal-to"

	OpTimeAfter   = "time-after"
	OpTimeBefore  = "time-before"
	OpTimeEqualTo = "time-equal-to"

	OpDateRangeAfter    = "date-range-after"
	OpDateRangeBefore   = "date-range-before"
	OpDateRangeIncludes = "date-range-includes"

	OpTimeRangeAfter    = "time-range-after"
	OpTimeRangeBefore   = "time-range-before"
	OpTimeRangeIncludes = "time-range-includes"

	OpSingleSelectionSelected = "single-selection-selected"
	OpMultiSelectionSelected  = "multi-selection-selected"

	OpScaleSelected = "scale-selected"
	OpScaleMoreThan = "scale-more-than"
	OpScaleLessThan = "scale-less-than"

	OpOrganigramSelected           = "organigram-selected"
	OpOrganigramDescendentSelected = "organigram-descendent-selected"

	OpMatrix1DRowsSelected  = "matrix1d-rows-selected"
	OpMatrix1DCellsSelected = "matrix1d-cells-selected"

	OpMatrix2DRowsSelected       = "matrix2d-rows-selected"
	OpMatrix2DSubRowsSelected    = "matrix2d-sub-rows-selected"
	OpMatrix2DColumnsSelected    = "matrix2d-columns-selected"
	OpMatrix2DSubColumnsSelected = "matrix2d-sub-columns-selected"
)

// ValueKind is the shape of the comparison value an operator takes.
type ValueKind string

const (
	ValueNone   ValueKind = ""       // operator takes no value
	ValueNumber ValueKind = "number" // float64
	ValueText   ValueKind = "text"   // string
	ValueDate   ValueKind = "date"   // YYYY-MM-DD
	ValueTime   ValueKind = "time"   // HH:MM[:SS]
	ValueKey    ValueKind = "key"    // one option key
	ValueKeys   ValueKind = "keys"   // list of option keys
)

// Operator describes one comparison available for a parent widget type.
type Operator struct {
	Key           string    `json:"key"`
	Label         string    `json:"label"`
	InvertedLabel string    `json:"invertedLabel"`
	Value         ValueKind `json:"value,omitempty"`
	Modifier      bool      `json:"modifier,omitempty"` // takes every/some
}

var emptyOperator = Operator{Key: OpEmpty, Label: "Is empty", InvertedLabel: "Is not empty"}

var catalog = map[widget.Type][]Operator{
	widget.TypeNumber: {
		emptyOperator,
		{Key: OpNumberGreaterThan, Label: "Greater than", InvertedLabel: "Not greater than", Value: ValueNumber},
		{Key: OpNumberLessThan, Label: "Less than", InvertedLabel: "Not less than", Value: ValueNumber},
		{Key: OpNumberEqualTo, Label: "Equal to", InvertedLabel: "Not equal to", Value: ValueNumber},
	},
	widget.TypeText: {
		emptyOperator,
		{Key: OpTextStartsWith, Label: "Starts with", InvertedLabel: "Does not start with", Value: ValueText},
		{Key: OpTextEndsWith, Label: "Ends with", InvertedLabel: "Does not end with", Value: ValueText},
		{Key: OpTextContains, Label: "Contains", InvertedLabel: "Does not contain", Value: ValueText},
	},
	widget.TypeDate: {
		emptyOperator,
		{Key: OpDateAfter, Label: "After", InvertedLabel: "Not after", Value: ValueDate},
		{Key: OpDateBefore, Label: "Before", InvertedLabel: "Not before", Value: ValueDate},
		{Key: OpDateEqualTo, Label: "Equal to", InvertedLabel: "Not equal to", Value: ValueDate},
	},
	widget.TypeTime: {
		emptyOperator,
		{Key: OpTimeAfter, Label: "After", InvertedLabel: "Not after", Value: ValueTime},
		{Key: OpTimeBefore, Label: "Before", InvertedLabel: "Not before", Value: ValueTime},
		{Key: OpTimeEqualTo, Label: "Equal to", InvertedLabel: "Not equal to", Value: ValueTime},
	},
	widget.TypeDateRange: {
		emptyOperator,
		{Key: OpDateRangeAfter, Label: "Starts after", InvertedLabel: "Does not start after", Value: ValueDate},
		{Key: OpDateRangeBefore, Label: "Ends before", InvertedLabel: "Does not end before", Value: ValueDate},
		{Key: OpDateRangeIncludes, Label: "Includes", InvertedLabel: "Does not include", Value: ValueDate},
	},
	widget.TypeTimeRange: {
		emptyOperator,
		{Key: OpTimeRangeAfter, Label: "Starts after", InvertedLabel: "Does not start after", Value: ValueTime},
		{Key: OpTimeRangeBefore, Label: "Ends before", InvertedLabel: "Does not end before", Value: ValueTime},
		{Key: OpTimeRangeIncludes, Label: "Includes", InvertedLabel: "Does not include", Value: ValueTime},
	},
	widget.TypeSelect: {
		emptyOperator,
		{Key: OpSingleSelectionSelected, Label: "Is any of", InvertedLabel: "Is none of", Value: ValueKeys},
	},
	widget.TypeMultiSelect: {
		emptyOperator,
		{Key: OpMultiSelectionSelected, Label: "Has selected", InvertedLabel: "Has not selected", Value: ValueKeys, Modifier: true},
	},
	widget.TypeScale: {
		emptyOperator,
		{Key: OpScaleSelected, Label: "Is any of", InvertedLabel: "Is none of", Value: ValueKeys},
		{Key: OpScaleMoreThan, Label: "At least", InvertedLabel: "Below", Value: ValueKey},
		{Key: OpScaleLessThan, Label: "At most", InvertedLabel: "Above", Value: ValueKey},
	},
	widget.TypeOrganigram: {
		emptyOperator,
		{Key: OpOrganigramSelected, Label: "Has selected", InvertedLabel: "Has not selected", Value: ValueKeys, Modifier: true},
		{Key: OpOrganigramDescendentSelected, Label: "Has selected within", InvertedLabel: "Has not selected within", Value: ValueKeys, Modifier: true},
	},
	widget.TypeMatrix1D: {
		emptyOperator,
		{Key: OpMatrix1DRowsSelected, Label: "Has rows selected", InvertedLabel: "Has rows not selected", Value: ValueKeys, Modifier: true},
		{Key: OpMatrix1DCellsSelected, Label: "Has cells selected", InvertedLabel: "Has cells not selected", Value: ValueKeys, Modifier: true},
	},
	widget.TypeMatrix2D: {
		emptyOperator,
		{Key: OpMatrix2DRowsSelected, Label: "Has rows selected", InvertedLabel: "Has rows not selected", Value: ValueKeys, Modifier: true},
		{Key: OpMatrix2DSubRowsSelected, Label: "Has sub-rows selected", InvertedLabel: "Has sub-rows not selected", Value: ValueKeys, Modifier: true},
		{Key: OpMatrix2DColumnsSelected, Label: "Has columns selected", InvertedLabel: "Has columns not selected", Value: ValueKeys, Modifier: true},
		{Key: OpMatrix2DSubColumnsSelected, Label: "Has sub-columns selected", InvertedLabel: "Has sub-columns not selected", Value: ValueKeys, Modifier: true},
	},
	widget.TypeGeo: {
		emptyOperator,
	},
}

// Operators returns the operators available when the parent widget has type
// t. The result is a copy; nil for types that cannot be a parent.
func Operators(t widget.Type) []Operator {
	ops, ok := catalog[t]
	if !ok {
		return nil
	}
	out := make([]Operator, len(ops))
	copy(out, ops)
	return out
}

// Lookup finds operator key for parent type t.
func Lookup(t widget.Type, key string) (Operator, bool) {
	for _, op := range catalog[t] {
		if op.Key == key {
			return op, true
		}
	}
	return Operator{}, false
}
