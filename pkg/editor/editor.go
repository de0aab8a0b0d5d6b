package editor

import (
	"errors"
	"fmt"

	"github.com/dlovans/tagform/pkg/condition"
	"github.com/dlovans/tagform/pkg/form"
	"github.com/dlovans/tagform/pkg/widget"
)

var (
	ErrChildBlocked    = errors.New("widget already has child widgets")
	ErrConditionLimit  = fmt.Errorf("a rule holds at most %d conditions", widget.MaxConditions)
	ErrLastCondition   = errors.New("a rule must keep at least one condition")
	ErrIndex           = errors.New("condition index out of range")
	ErrUnknownOperator = errors.New("operator not available for parent type")
	ErrConjunction     = errors.New("only AND and OR conjunctions are offered")
	ErrModifier        = errors.New("modifier must be every or some")
)

// RuleEditor edits the conditions of one rule whose parent has a fixed
// type. Every mutation replaces the whole condition list in one update and
// keeps Order contiguous.
type RuleEditor interface {
	Type() widget.Type
	Operators() []condition.Operator
	Value() *widget.Conditional
	Pristine() bool

	AddCondition(conj widget.Conjunction) error
	RemoveCondition(index int) error
	Reorder(keys []string) error
	SetOperator(index int, op string) error
	SetInvert(index int, invert bool) error
	SetValue(index int, value any) error
	SetModifier(index int, mod widget.Modifier) error
	SetConjunction(index int, conj widget.Conjunction) error

	CanAdd() bool
	CanRemove() bool
	ConjunctionHidden(index int) bool

	Validate() form.FormResult[widget.Conditional]
	Assemble() (*widget.Conditional, error)

	reset(rule *widget.Conditional)
}

// valueCheck validates a JSON-shaped condition value for an operator that
// takes one. It returns a message or "".
type valueCheck func(op condition.Operator, value any) string

// base holds the draft shared by every type specific editor.
type base struct {
	typ    widget.Type
	form   *form.Form[widget.Conditional]
	newKey func() string
	check  valueCheck
}

func newBase(t widget.Type, rule *widget.Conditional, newKey func() string, check valueCheck) *base {
	b := &base{typ: t, newKey: newKey, check: check}
	b.reset(rule)
	return b
}

func (b *base) reset(rule *widget.Conditional) {
	initial := widget.Conditional{}
	if rule != nil {
		initial = *rule.Clone()
	}
	b.form = form.New(ruleSchema(b.typ, b.check), initial)
}

func (b *base) Type() widget.Type {
	return b.typ
}

func (b *base) Operators() []condition.Operator {
	return condition.Operators(b.typ)
}

func (b *base) Value() *widget.Conditional {
	v := b.form.Value()
	return v.Clone()
}

func (b *base) Pristine() bool {
	return b.form.Pristine()
}

func (b *base) conditions() []widget.Condition {
	return b.form.Value().Conditions
}

func (b *base) CanAdd() bool {
	return len(b.conditions()) < widget.MaxConditions
}

func (b *base) CanRemove() bool {
	return len(b.conditions()) > 1
}

// ConjunctionHidden reports whether the conjunction picker of a condition is
// hidden; the last condition links to nothing.
func (b *base) ConjunctionHidden(index int) bool {
	return index == len(b.conditions())-1
}

// AddCondition appends a default condition. conj becomes the conjunction of
// the previous last condition, linking it to the new one.
func (b *base) AddCondition(conj widget.Conjunction) error {
	if !b.CanAdd() {
		return ErrConditionLimit
	}
	if conj != widget.ConjunctionAnd && conj != widget.ConjunctionOr {
		return ErrConjunction
	}

	key := b.newKey()
	b.form.SetValue(func(old widget.Conditional) widget.Conditional {
		conditions := make([]widget.Condition, len(old.Conditions), len(old.Conditions)+1)
		copy(conditions, old.Conditions)
		if n := len(conditions); n > 0 {
			conditions[n-1].ConjunctionOperator = conj
		}
		conditions = append(conditions, widget.DefaultCondition(key))
		old.Conditions = widget.RenumberConditions(conditions)
		return old
	})
	return nil
}

func (b *base) RemoveCondition(index int) error {
	if !b.CanRemove() {
		return ErrLastCondition
	}
	if err := b.checkIndex(index); err != nil {
		return err
	}

	b.form.SetValue(func(old widget.Conditional) widget.Conditional {
		conditions := make([]widget.Condition, 0, len(old.Conditions)-1)
		conditions = append(conditions, old.Conditions[:index]...)
		conditions = append(conditions, old.Conditions[index+1:]...)
		old.Conditions = widget.RenumberConditions(conditions)
		return old
	})
	return nil
}

// Reorder arranges the conditions in the order of keys and renumbers them.
func (b *base) Reorder(keys []string) error {
	reordered, err := widget.ReorderConditions(b.conditions(), keys)
	if err != nil {
		return err
	}
	b.form.SetValue(func(old widget.Conditional) widget.Conditional {
		old.Conditions = reordered
		return old
	})
	return nil
}

// SetOperator switches a condition's operator. The value is dropped when
// the new operator takes a different kind of value, and so is the modifier
// when the new operator has none.
func (b *base) SetOperator(index int, key string) error {
	if err := b.checkIndex(index); err != nil {
		return err
	}
	op, ok := condition.Lookup(b.typ, key)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownOperator, key)
	}
	prev, _ := condition.Lookup(b.typ, b.conditions()[index].Operator)

	b.form.SetValue(func(old widget.Conditional) widget.Conditional {
		conditions := make([]widget.Condition, len(old.Conditions))
		copy(conditions, old.Conditions)
		c := &conditions[index]
		c.Operator = op.Key
		if op.Value != prev.Value || op.Value == condition.ValueNone {
			c.Value = nil
		}
		if !op.Modifier {
			c.OperatorModifier = ""
		} else if c.OperatorModifier == "" {
			c.OperatorModifier = widget.ModifierSome
		}
		old.Conditions = conditions
		return old
	})
	return nil
}

func (b *base) SetInvert(index int, invert bool) error {
	return b.setField(index, "invert", invert)
}

func (b *base) SetValue(index int, value any) error {
	return b.setField(index, "value", value)
}

func (b *base) SetModifier(index int, mod widget.Modifier) error {
	if mod != widget.ModifierEvery && mod != widget.ModifierSome {
		return ErrModifier
	}
	return b.setField(index, "operatorModifier", mod)
}

func (b *base) SetConjunction(index int, conj widget.Conjunction) error {
	if conj != widget.ConjunctionAnd && conj != widget.ConjunctionOr {
		return ErrConjunction
	}
	return b.setField(index, "conjunctionOperator", conj)
}

func (b *base) setField(index int, name string, value any) error {
	if err := b.checkIndex(index); err != nil {
		return err
	}
	return b.form.SetFieldValue(fmt.Sprintf("conditions.%d.%s", index, name), value)
}

func (b *base) checkIndex(index int) error {
	if index < 0 || index >= len(b.conditions()) {
		return fmt.Errorf("%w: %d", ErrIndex, index)
	}
	return nil
}

func (b *base) Validate() form.FormResult[widget.Conditional] {
	return b.form.Validate()
}

// Assemble validates the draft and returns the rule ready to be saved, with
// conditions in order.
func (b *base) Assemble() (*widget.Conditional, error) {
	res := b.form.Validate()
	if res.Errored {
		return nil, res.Error
	}
	rule := res.Value.Clone()
	rule.Conditions = widget.RenumberConditions(widget.SortedConditions(rule.Conditions))
	return rule, nil
}
