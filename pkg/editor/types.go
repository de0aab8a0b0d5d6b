package editor

import (
	"github.com/dlovans/tagform/pkg/condition"
	"github.com/dlovans/tagform/pkg/widget"
)

// newRuleEditor picks the editor for the rule's parent type. It returns nil
// for types without an editor.
func newRuleEditor(rule *widget.Conditional, parent *widget.Widget, newKey func() string) RuleEditor {
	var props *widget.Properties
	if parent != nil {
		props = parent.Properties
	}

	switch rule.ParentWidgetType {
	case widget.TypeText:
		return &textEditor{newBase(widget.TypeText, rule, newKey, nil)}
	case widget.TypeNumber:
		return newNumberEditor(rule, props, newKey)
	case widget.TypeDate:
		return &dateEditor{newBase(widget.TypeDate, rule, newKey, nil)}
	case widget.TypeTime:
		return &timeEditor{newBase(widget.TypeTime, rule, newKey, nil)}
	case widget.TypeDateRange:
		return &dateRangeEditor{newBase(widget.TypeDateRange, rule, newKey, nil)}
	case widget.TypeTimeRange:
		return &timeRangeEditor{newBase(widget.TypeTimeRange, rule, newKey, nil)}
	case widget.TypeSelect:
		return newSelectEditor(widget.TypeSelect, rule, props, newKey)
	case widget.TypeMultiSelect:
		return newSelectEditor(widget.TypeMultiSelect, rule, props, newKey)
	case widget.TypeScale:
		return newSelectEditor(widget.TypeScale, rule, props, newKey)
	case widget.TypeOrganigram:
		return newOrganigramEditor(rule, props, newKey)
	case widget.TypeMatrix1D:
		return newMatrix1DEditor(rule, props, newKey)
	case widget.TypeMatrix2D:
		return newMatrix2DEditor(rule, props, newKey)
	case widget.TypeGeo:
		return &geoEditor{newBase(widget.TypeGeo, rule, newKey, nil)}
	default:
		return nil
	}
}

type textEditor struct{ *base }

type dateEditor struct{ *base }

type timeEditor struct{ *base }

type dateRangeEditor struct{ *base }

type timeRangeEditor struct{ *base }

// geoEditor only offers the empty operator; region options are loaded by the
// caller and never part of the rule.
type geoEditor struct{ *base }

// numberEditor rejects comparison values outside the parent's bounds.
type numberEditor struct {
	*base
	min, max *float64
}

func newNumberEditor(rule *widget.Conditional, props *widget.Properties, newKey func() string) *numberEditor {
	e := &numberEditor{}
	if props != nil {
		e.min, e.max = props.MinValue, props.MaxValue
	}
	e.base = newBase(widget.TypeNumber, rule, newKey, e.checkBounds)
	return e
}

func (e *numberEditor) checkBounds(_ condition.Operator, v any) string {
	n, _ := v.(float64)
	if e.min != nil && n < *e.min {
		return MsgOutOfRange
	}
	if e.max != nil && n > *e.max {
		return MsgOutOfRange
	}
	return ""
}

// selectEditor serves SELECT, MULTISELECT and SCALE parents, whose values
// are keys of the parent's flat option list.
type selectEditor struct {
	*base
	options []widget.Option
}

func newSelectEditor(t widget.Type, rule *widget.Conditional, props *widget.Properties, newKey func() string) *selectEditor {
	e := &selectEditor{}
	if props != nil {
		e.options = props.OptionList(t)
	}
	e.base = newBase(t, rule, newKey, membership(func(condition.Operator) []string {
		if e.options == nil {
			return nil
		}
		return optionKeys(e.options)
	}))
	return e
}

// Options lists the parent's options to pick condition values from.
func (e *selectEditor) Options() []widget.Option {
	return e.options
}

type organigramEditor struct {
	*base
	root *widget.OrganigramNode
}

func newOrganigramEditor(rule *widget.Conditional, props *widget.Properties, newKey func() string) *organigramEditor {
	e := &organigramEditor{}
	if props != nil {
		e.root = props.Organigram
	}
	e.base = newBase(widget.TypeOrganigram, rule, newKey, membership(func(condition.Operator) []string {
		if e.root == nil {
			return nil
		}
		return e.root.Descendants()
	}))
	return e
}

// Tree returns the parent's organigram.
func (e *organigramEditor) Tree() *widget.OrganigramNode {
	return e.root
}

type matrix1DEditor struct {
	*base
	rows []widget.MatrixRow
}

func newMatrix1DEditor(rule *widget.Conditional, props *widget.Properties, newKey func() string) *matrix1DEditor {
	e := &matrix1DEditor{}
	if props != nil {
		e.rows = props.Rows
	}
	e.base = newBase(widget.TypeMatrix1D, rule, newKey, membership(e.keysFor))
	return e
}

func (e *matrix1DEditor) keysFor(op condition.Operator) []string {
	if e.rows == nil {
		return nil
	}
	var keys []string
	for _, row := range e.rows {
		switch op.Key {
		case condition.OpMatrix1DRowsSelected:
			keys = append(keys, row.Key)
		case condition.OpMatrix1DCellsSelected:
			keys = append(keys, optionKeys(row.Cells)...)
		}
	}
	return keys
}

// Rows returns the parent's rows with their cells.
func (e *matrix1DEditor) Rows() []widget.MatrixRow {
	return e.rows
}

type matrix2DEditor struct {
	*base
	rows    []widget.MatrixRow
	columns []widget.MatrixColumn
}

func newMatrix2DEditor(rule *widget.Conditional, props *widget.Properties, newKey func() string) *matrix2DEditor {
	e := &matrix2DEditor{}
	if props != nil {
		e.rows, e.columns = props.Rows, props.Columns
	}
	e.base = newBase(widget.TypeMatrix2D, rule, newKey, membership(e.keysFor))
	return e
}

func (e *matrix2DEditor) keysFor(op condition.Operator) []string {
	if e.rows == nil && e.columns == nil {
		return nil
	}
	var keys []string
	switch op.Key {
	case condition.OpMatrix2DRowsSelected:
		for _, row := range e.rows {
			keys = append(keys, row.Key)
		}
	case condition.OpMatrix2DSubRowsSelected:
		for _, row := range e.rows {
			keys = append(keys, optionKeys(row.SubRows)...)
		}
	case condition.OpMatrix2DColumnsSelected:
		for _, col := range e.columns {
			keys = append(keys, col.Key)
		}
	case condition.OpMatrix2DSubColumnsSelected:
		for _, col := range e.columns {
			keys = append(keys, optionKeys(col.SubColumns)...)
		}
	}
	return keys
}

// Axes returns the parent's rows and columns.
func (e *matrix2DEditor) Axes() ([]widget.MatrixRow, []widget.MatrixColumn) {
	return e.rows, e.columns
}

func optionKeys(options []widget.Option) []string {
	keys := make([]string, 0, len(options))
	for _, o := range options {
		keys = append(keys, o.Key)
	}
	return keys
}
