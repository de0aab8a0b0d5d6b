package editor

import (
	"fmt"

	"github.com/dlovans/tagform/pkg/condition"
	"github.com/dlovans/tagform/pkg/form"
	"github.com/dlovans/tagform/pkg/widget"
)

// Validation messages.
const (
	MsgNoConditions   = "At least one condition is required."
	MsgTooMany        = "A rule holds at most 10 conditions."
	MsgUnknownOp      = "This operator is not available for the parent widget."
	MsgConjunction    = "Only AND and OR are allowed."
	MsgModifier       = "Choose every or some."
	MsgValueRequired  = "A value is required for this operator."
	MsgNotNumber      = "Enter a number."
	MsgOutOfRange     = "The number is outside the parent widget's range."
	MsgNotText        = "Enter some text."
	MsgNotDate        = "Enter a date as YYYY-MM-DD."
	MsgNotTime        = "Enter a time as HH:MM."
	MsgNotKey         = "Select an option."
	MsgNotKeys        = "Select at least one option."
	MsgUnknownOptions = "Some selected options no longer exist: %v."
)

func ruleSchema(t widget.Type, check valueCheck) *form.ObjectSchema {
	return &form.ObjectSchema{
		Fields: func(map[string]any) map[string]form.Field {
			return map[string]form.Field{
				"parentWidget":     form.Rules(form.RequiredString),
				"parentWidgetType": form.Rules(form.RequiredString),
				"conditions": form.Array(&form.ArraySchema{
					KeySelector: func(item map[string]any) string {
						key, _ := item["key"].(string)
						return key
					},
					Member: func(map[string]any) *form.ObjectSchema {
						return conditionSchema(t, check)
					},
					Validation: func(items []any) string {
						switch {
						case len(items) == 0:
							return MsgNoConditions
						case len(items) > widget.MaxConditions:
							return MsgTooMany
						}
						return ""
					},
				}),
			}
		},
	}
}

func conditionSchema(t widget.Type, check valueCheck) *form.ObjectSchema {
	return &form.ObjectSchema{
		Fields: func(value map[string]any) map[string]form.Field {
			key, _ := value["operator"].(string)
			op, known := condition.Lookup(t, key)

			fields := map[string]form.Field{
				"key":                 form.Rules(form.RequiredString),
				"operator":            form.Rules(form.RequiredString, operatorIn(t)),
				"invert":              form.Rules(form.DefaultUndefined),
				"order":               form.Rules(form.DefaultUndefined),
				"conjunctionOperator": form.Rules(conjunctionOffered),
				"operatorModifier":    form.Rules(form.DefaultUndefined),
				"value":               form.Rules(form.DefaultUndefined),
			}
			if !known {
				return fields
			}
			if op.Modifier {
				fields["operatorModifier"] = form.Rules(requiredWith(MsgModifier),
					form.OneOf(string(widget.ModifierEvery), string(widget.ModifierSome)))
			}
			if op.Value != condition.ValueNone {
				fields["value"] = form.Rules(requiredWith(MsgValueRequired), func(v any, _ map[string]any) string {
					if msg := checkKind(op.Value, v); msg != "" {
						return msg
					}
					if check == nil {
						return ""
					}
					return check(op, v)
				})
			}
			return fields
		},
	}
}

func operatorIn(t widget.Type) form.Validator {
	return func(value any, _ map[string]any) string {
		key, _ := value.(string)
		if key == "" {
			return ""
		}
		if _, ok := condition.Lookup(t, key); !ok {
			return MsgUnknownOp
		}
		return ""
	}
}

func conjunctionOffered(value any, _ map[string]any) string {
	s, _ := value.(string)
	switch widget.Conjunction(s) {
	case "", widget.ConjunctionAnd, widget.ConjunctionOr:
		return ""
	}
	return MsgConjunction
}

func requiredWith(msg string) form.Validator {
	return func(value any, _ map[string]any) string {
		if form.IsEmpty(value) {
			return msg
		}
		return ""
	}
}

// checkKind verifies the JSON shape of a condition value.
func checkKind(kind condition.ValueKind, v any) string {
	switch kind {
	case condition.ValueNumber:
		if _, ok := v.(float64); !ok {
			return MsgNotNumber
		}
	case condition.ValueText:
		if _, ok := v.(string); !ok {
			return MsgNotText
		}
	case condition.ValueDate:
		if !condition.IsDate(v) {
			return MsgNotDate
		}
	case condition.ValueTime:
		if !condition.IsTime(v) {
			return MsgNotTime
		}
	case condition.ValueKey:
		if s, ok := v.(string); !ok || s == "" {
			return MsgNotKey
		}
	case condition.ValueKeys:
		if len(keysOf(v)) == 0 {
			return MsgNotKeys
		}
	}
	return ""
}

// keysOf returns the option keys held by a JSON-shaped value.
func keysOf(v any) []string {
	switch l := v.(type) {
	case string:
		if l == "" {
			return nil
		}
		return []string{l}
	case []any:
		out := make([]string, 0, len(l))
		for _, item := range l {
			if s, ok := item.(string); ok && s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// membership builds a value check that rejects keys missing from known.
// A nil known set skips the check; the parent's options are unavailable.
func membership(known func(op condition.Operator) []string) valueCheck {
	return func(op condition.Operator, v any) string {
		allowed := known(op)
		if allowed == nil {
			return ""
		}
		var missing []string
		for _, key := range keysOf(v) {
			if !containsKey(allowed, key) {
				missing = append(missing, key)
			}
		}
		if len(missing) > 0 {
			return fmt.Sprintf(MsgUnknownOptions, missing)
		}
		return ""
	}
}

func containsKey(list []string, key string) bool {
	for _, item := range list {
		if item == key {
			return true
		}
	}
	return false
}
