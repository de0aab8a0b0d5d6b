package filter

import (
	"time"

	"github.com/dlovans/tagform/pkg/form"
)

// Validation messages.
const (
	MsgUnknownFilter = "This filter does not exist in the framework."
	MsgListOnly      = "This filter takes a list of options."
	MsgScalarOnly    = "This filter does not take a list of options."
	MsgTextOnly      = "This filter only takes text."
	MsgNotDateTime   = "Enter a valid date."
	MsgNotTime       = "Enter a time as HH:MM."
)

// Validate checks values against the filters they target: each slot must
// name a known filter and use only the fields of that filter's kind.
// Errors are keyed by filter key.
func Validate(filters []Filter, values []Value) form.Result {
	byKey := make(map[string]Filter, len(filters))
	for _, f := range filters {
		byKey[f.SlotKey()] = f
	}

	schema := &form.ObjectSchema{
		Fields: func(map[string]any) map[string]form.Field {
			return map[string]form.Field{
				"filterableData": form.Array(&form.ArraySchema{
					KeySelector: func(item map[string]any) string {
						key, _ := item["filterKey"].(string)
						return key
					},
					Member: func(item map[string]any) *form.ObjectSchema {
						key, _ := item["filterKey"].(string)
						f, ok := byKey[key]
						if !ok {
							return &form.ObjectSchema{
								Validation: func(map[string]any) string { return MsgUnknownFilter },
							}
						}
						return valueSchema(f)
					},
				}),
			}
		},
	}

	return form.Validate(schema, struct {
		FilterableData []Value `json:"filterableData"`
	}{values})
}

func valueSchema(f Filter) *form.ObjectSchema {
	kind, _ := KindOf(f.WidgetType)
	return &form.ObjectSchema{
		Fields: func(map[string]any) map[string]form.Field {
			fields := map[string]form.Field{
				"filterKey": form.Rules(form.RequiredString),
				"value":     form.Rules(form.DefaultUndefined),
				"valueGte":  form.Rules(form.DefaultUndefined),
				"valueLte":  form.Rules(form.DefaultUndefined),
				"valueList": form.Rules(form.DefaultUndefined),
			}
			switch {
			case kind.usesList():
				fields["value"] = form.Rules(absent(MsgListOnly))
				fields["valueGte"] = form.Rules(absent(MsgListOnly))
				fields["valueLte"] = form.Rules(absent(MsgListOnly))
			case kind.usesBounds():
				fields["value"] = form.Rules(absent(MsgScalarOnly))
				fields["valueList"] = form.Rules(absent(MsgScalarOnly))
				bound := boundRule(kind)
				fields["valueGte"] = form.Rules(bound)
				fields["valueLte"] = form.Rules(bound, lowerFirst(kind))
			default:
				fields["valueGte"] = form.Rules(absent(MsgTextOnly))
				fields["valueLte"] = form.Rules(absent(MsgTextOnly))
				fields["valueList"] = form.Rules(absent(MsgTextOnly))
			}
			return fields
		},
	}
}

func absent(msg string) form.Validator {
	return func(value any, _ map[string]any) string {
		if !form.IsEmpty(value) {
			return msg
		}
		return ""
	}
}

func boundRule(kind Kind) form.Validator {
	switch kind {
	case KindNumber:
		return form.Number
	case KindTime, KindTimeRange:
		return func(value any, _ map[string]any) string {
			s, _ := value.(string)
			if s != "" && !isClock(s) {
				return MsgNotTime
			}
			return ""
		}
	default:
		return func(value any, _ map[string]any) string {
			s, _ := value.(string)
			if s == "" {
				return ""
			}
			if _, err := time.Parse(time.RFC3339, s); err != nil {
				return MsgNotDateTime
			}
			return ""
		}
	}
}

// lowerFirst requires valueLte to be at or after valueGte. Numbers compare
// numerically, dates as instants and times as clock strings.
func lowerFirst(kind Kind) form.Validator {
	if kind == KindNumber {
		return form.GreaterThanOrEqual("valueGte")
	}
	return func(value any, parent map[string]any) string {
		lte, _ := value.(string)
		gte, _ := parent["valueGte"].(string)
		if lte == "" || gte == "" {
			return ""
		}
		if kind == KindTime || kind == KindTimeRange {
			if normaliseClock(lte) < normaliseClock(gte) {
				return "Must be after valueGte."
			}
			return ""
		}
		a, err1 := time.Parse(time.RFC3339, gte)
		b, err2 := time.Parse(time.RFC3339, lte)
		if err1 == nil && err2 == nil && b.Before(a) {
			return "Must be after valueGte."
		}
		return ""
	}
}

func normaliseClock(s string) string {
	if len(s) == len("15:04") {
		return s + ":00"
	}
	return s
}
