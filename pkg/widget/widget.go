// Package widget describes the widgets of an analytical framework.
// A widget is one configurable tagging field; a child widget may carry a
// conditional rule that ties its visibility to another widget's value.
package widget

import (
	"github.com/google/uuid"
)

// MaxConditions is the most conditions a single conditional rule may hold.
const MaxConditions = 10

// Type is the closed set of widget kinds.
type Type string

const (
	TypeText        Type = "TEXT"
	TypeNumber      Type = "NUMBER"
	TypeDate        Type = "DATE"
	TypeTime        Type = "TIME"
	TypeDateRange   Type = "DATE_RANGE"
	TypeTimeRange   Type = "TIME_RANGE"
	TypeSelect      Type = "SELECT"
	TypeMultiSelect Type = "MULTISELECT"
	TypeScale       Type = "SCALE"
	TypeMatrix1D    Type = "MATRIX1D"
	TypeMatrix2D    Type = "MATRIX2D"
	TypeOrganigram  Type = "ORGANIGRAM"
	TypeGeo         Type = "GEO"
	TypeConditional Type = "CONDITIONAL"
)

// Types lists every widget type in declaration order.
var Types = []Type{
	TypeText, TypeNumber, TypeDate, TypeTime, TypeDateRange, TypeTimeRange,
	TypeSelect, TypeMultiSelect, TypeScale, TypeMatrix1D, TypeMatrix2D,
	TypeOrganigram, TypeGeo, TypeConditional,
}

// Valid reports whether t is one of the known widget types.
func (t Type) Valid() bool {
	for _, known := range Types {
		if t == known {
			return true
		}
	}
	return false
}

// Conditionable reports whether a widget of this type may act as the parent
// of a conditional rule. Every concrete type qualifies; the legacy
// CONDITIONAL wrapper does not.
func (t Type) Conditionable() bool {
	return t.Valid() && t != TypeConditional
}

// Width is a layout hint.
type Width string

const (
	WidthFull Width = "FULL"
	WidthHalf Width = "HALF"
)

// Conjunction joins the result of one condition with the next one.
type Conjunction string

const (
	ConjunctionAnd  Conjunction = "AND"
	ConjunctionOr   Conjunction = "OR"
	ConjunctionXor  Conjunction = "XOR"
	ConjunctionNor  Conjunction = "NOR"
	ConjunctionNand Conjunction = "NAND"
	ConjunctionNxor Conjunction = "NXOR"
)

// Valid reports whether c is a representable conjunction.
func (c Conjunction) Valid() bool {
	switch c {
	case ConjunctionAnd, ConjunctionOr, ConjunctionXor, ConjunctionNor, ConjunctionNand, ConjunctionNxor:
		return true
	}
	return false
}

// Reserved reports whether c is representable but not offered to authors.
func (c Conjunction) Reserved() bool {
	return c.Valid() && c != ConjunctionAnd && c != ConjunctionOr
}

// Modifier selects how a list-valued condition matches: every listed key
// must be selected, or at least one of them.
type Modifier string

const (
	ModifierEvery Modifier = "every"
	ModifierSome  Modifier = "some"
)

// Widget is one configurable tagging field.
// ID is empty until the widget has been persisted.
type Widget struct {
	ID          string       `json:"id,omitempty"`
	ClientID    string       `json:"clientId"`
	Key         string       `json:"key,omitempty"` // local array key, mirrors ClientID
	Title       string       `json:"title,omitempty"`
	Type        Type         `json:"widgetType"`
	Properties  *Properties  `json:"properties,omitempty"`
	Conditional *Conditional `json:"conditional,omitempty"`
	Order       int          `json:"order"`
	Width       Width        `json:"width,omitempty"`
}

// Persisted reports whether the widget has a server-assigned id.
func (w Widget) Persisted() bool {
	return w.ID != ""
}

// IsChild reports whether the widget's visibility depends on another widget.
func (w Widget) IsChild() bool {
	return w.Conditional != nil && w.Conditional.ParentWidget != ""
}

// Conditional is the visibility rule attached to a child widget.
type Conditional struct {
	ParentWidget     string      `json:"parentWidget"`
	ParentWidgetType Type        `json:"parentWidgetType"`
	Conditions       []Condition `json:"conditions"`
}

// Condition is one clause of a conditional rule.
// ConjunctionOperator links this condition to the next one; it is unused on
// the last condition.
type Condition struct {
	Key                 string      `json:"key"`
	Operator            string      `json:"operator"`
	OperatorModifier    Modifier    `json:"operatorModifier,omitempty"`
	Value               any         `json:"value,omitempty"`
	Invert              bool        `json:"invert"`
	Order               int         `json:"order"`
	ConjunctionOperator Conjunction `json:"conjunctionOperator"`
}

// NewClientID returns a fresh locally unique identifier.
func NewClientID() string {
	return uuid.NewString()
}

// DefaultCondition returns the condition a freshly created rule starts with.
func DefaultCondition(key string) Condition {
	return Condition{
		Key:                 key,
		Operator:            "empty",
		Invert:              false,
		Order:               1,
		ConjunctionOperator: ConjunctionAnd,
	}
}

// NewConditional builds a rule for the given parent with one default
// condition.
func NewConditional(parent Widget, key string) *Conditional {
	return &Conditional{
		ParentWidget:     parent.ID,
		ParentWidgetType: parent.Type,
		Conditions:       []Condition{DefaultCondition(key)},
	}
}

// Clone returns a copy whose condition list can be modified independently.
// Condition values are shared; they are treated as immutable.
func (c *Conditional) Clone() *Conditional {
	if c == nil {
		return nil
	}
	out := *c
	if c.Conditions != nil {
		out.Conditions = make([]Condition, len(c.Conditions))
		copy(out.Conditions, c.Conditions)
	}
	return &out
}

// Refresh recomputes the denormalised ParentWidgetType from the widget list.
// It returns false, leaving the rule unchanged, when the parent is missing.
func (c *Conditional) Refresh(widgets []Widget) bool {
	if c == nil {
		return false
	}
	parent, ok := Find(widgets, c.ParentWidget)
	if !ok {
		return false
	}
	c.ParentWidgetType = parent.Type
	return true
}

// Find returns the widget with the given server id.
func Find(widgets []Widget, id string) (Widget, bool) {
	if id == "" {
		return Widget{}, false
	}
	for _, w := range widgets {
		if w.ID == id {
			return w, true
		}
	}
	return Widget{}, false
}

// FindByKey returns the widget whose id, client id or key equals key.
func FindByKey(widgets []Widget, key string) (Widget, bool) {
	if key == "" {
		return Widget{}, false
	}
	for _, w := range widgets {
		if w.ID == key || w.ClientID == key || w.Key == key {
			return w, true
		}
	}
	return Widget{}, false
}

// Children returns the widgets whose conditional rule names id as parent.
func Children(widgets []Widget, id string) []Widget {
	if id == "" {
		return nil
	}
	var out []Widget
	for _, w := range widgets {
		if w.Conditional != nil && w.Conditional.ParentWidget == id {
			out = append(out, w)
		}
	}
	return out
}
