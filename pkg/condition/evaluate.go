package condition

import (
	"go.uber.org/zap"

	"github.com/dlovans/tagform/pkg/widget"
)

// Evaluate decides whether a conditional rule passes for the parent's
// current value. parent may be nil; operators that need the parent's
// options (scale order, organigram tree) are then false.
// A nil rule or an empty condition list passes.
func Evaluate(rule *widget.Conditional, parent *widget.Widget, value any) bool {
	return evaluate(zap.NewNop(), rule, parent, value)
}

func evaluate(logger *zap.Logger, rule *widget.Conditional, parent *widget.Widget, value any) bool {
	if rule == nil || len(rule.Conditions) == 0 {
		return true
	}

	t := resolveType(rule, parent)
	conditions := widget.SortedConditions(rule.Conditions)

	acc := test(logger, t, conditions[0], parent, value)
	for i := 1; i < len(conditions); i++ {
		conj := conditions[i-1].ConjunctionOperator
		switch conj {
		case widget.ConjunctionAnd, "":
			if !acc {
				continue
			}
			acc = test(logger, t, conditions[i], parent, value)
		case widget.ConjunctionOr:
			if acc {
				continue
			}
			acc = test(logger, t, conditions[i], parent, value)
		default:
			acc = combine(conj, acc, test(logger, t, conditions[i], parent, value))
		}
	}
	return acc
}

// combine applies the non short-circuiting conjunctions.
func combine(conj widget.Conjunction, a, b bool) bool {
	switch conj {
	case widget.ConjunctionXor:
		return a != b
	case widget.ConjunctionNor:
		return !(a || b)
	case widget.ConjunctionNand:
		return !(a && b)
	case widget.ConjunctionNxor:
		return a == b
	default:
		return a && b
	}
}

// test evaluates one condition, applying Invert. Unknown operators are false
// whatever the Invert flag says.
func test(logger *zap.Logger, t widget.Type, c widget.Condition, parent *widget.Widget, value any) bool {
	if _, known := catalog[t]; known {
		if _, ok := Lookup(t, c.Operator); !ok {
			logger.Warn("operator not available for parent type",
				zap.String("operator", c.Operator),
				zap.String("parentType", string(t)),
				zap.String("condition", c.Key))
			return false
		}
	}

	result, ok := executeOperator(c, parent, value)
	if !ok {
		logger.Warn("unknown operator",
			zap.String("operator", c.Operator),
			zap.String("condition", c.Key))
		return false
	}
	if c.Invert {
		result = !result
	}
	logger.Debug("condition evaluated",
		zap.String("condition", c.Key),
		zap.String("operator", c.Operator),
		zap.String("value", describe(value)),
		zap.Bool("result", result))
	return result
}

// resolveType picks the operator set for a rule: the denormalised parent
// type, falling back to the parent itself. The CONDITIONAL wrapper defers to
// its target type.
func resolveType(rule *widget.Conditional, parent *widget.Widget) widget.Type {
	t := rule.ParentWidgetType
	if t == "" && parent != nil {
		t = parent.Type
	}
	if t == widget.TypeConditional && parent != nil && parent.Properties != nil {
		t = parent.Properties.TargetType
	}
	return t
}
