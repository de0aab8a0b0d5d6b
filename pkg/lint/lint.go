// Package lint provides static analysis for framework widget lists.
// It detects broken conditional rules without evaluating them.
package lint

import (
	"encoding/json"
	"fmt"

	"github.com/dlovans/tagform/pkg/condition"
	"github.com/dlovans/tagform/pkg/widget"
)

// Issue represents a problem found during static analysis.
type Issue struct {
	Severity  string `json:"severity"` // "error", "warning"
	Widget    string `json:"widget,omitempty"`
	Condition string `json:"condition,omitempty"`
	Message   string `json:"message"`
}

// Result contains all issues found by the linter.
type Result struct {
	Valid  bool    `json:"valid"`
	Issues []Issue `json:"issues"`
}

// Run lints a framework document of the form {"widgets": [...]} or
// {"records": [...]}.
func Run(jsonText string) (*Result, error) {
	var f widget.Framework
	if err := json.Unmarshal([]byte(jsonText), &f); err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}
	widgets, err := f.Resolve()
	if err != nil {
		return nil, err
	}
	return Widgets(widgets), nil
}

// Widgets lints a widget list.
func Widgets(widgets []widget.Widget) *Result {
	result := &Result{
		Valid:  true,
		Issues: make([]Issue, 0),
	}

	// Check 1: widget types and duplicate client ids
	seen := make(map[string]bool)
	for _, w := range widgets {
		name := label(w)
		if !w.Type.Valid() {
			result.addError(name, "", fmt.Sprintf("widget '%s' has unknown type '%s'", name, w.Type))
		}
		if w.ClientID == "" {
			result.addWarning(name, "", fmt.Sprintf("widget '%s' has no client id", name))
			continue
		}
		if seen[w.ClientID] {
			result.addError(name, "", fmt.Sprintf("client id '%s' is used by more than one widget", w.ClientID))
		}
		seen[w.ClientID] = true
	}

	// Check 2: conditional rules
	for _, w := range widgets {
		if w.Conditional == nil {
			continue
		}
		checkRule(result, widgets, w)
	}

	return result
}

func checkRule(result *Result, widgets []widget.Widget, child widget.Widget) {
	name := label(child)
	rule := child.Conditional

	if rule.ParentWidget == "" {
		result.addWarning(name, "", "conditional rule has no parent widget")
		return
	}
	if rule.ParentWidget == child.ID {
		result.addError(name, "", "widget is its own parent")
		return
	}

	parent, ok := widget.Find(widgets, rule.ParentWidget)
	if !ok {
		result.addError(name, "", fmt.Sprintf("parent widget '%s' does not exist", rule.ParentWidget))
		return
	}
	if parent.IsChild() {
		result.addError(name, "", fmt.Sprintf("parent widget '%s' is itself conditional", label(parent)))
	}

	t := parent.Type
	if t == widget.TypeConditional && parent.Properties != nil {
		t = parent.Properties.TargetType
	}
	if rule.ParentWidgetType != parent.Type {
		result.addWarning(name, "", fmt.Sprintf(
			"parentWidgetType '%s' is stale, parent is '%s'", rule.ParentWidgetType, parent.Type))
	}

	switch n := len(rule.Conditions); {
	case n == 0:
		result.addError(name, "", "conditional rule has no conditions")
	case n > widget.MaxConditions:
		result.addError(name, "", fmt.Sprintf("conditional rule has %d conditions, at most %d allowed", n, widget.MaxConditions))
	}

	conditions := widget.SortedConditions(rule.Conditions)
	if !widget.Contiguous(conditions) {
		result.addWarning(name, "", "condition order is not 1..n")
	}

	keys := make(map[string]bool)
	for i, c := range conditions {
		if keys[c.Key] {
			result.addError(name, c.Key, fmt.Sprintf("condition key '%s' is not unique", c.Key))
		}
		keys[c.Key] = true

		op, ok := condition.Lookup(t, c.Operator)
		if !ok {
			result.addError(name, c.Key, fmt.Sprintf("operator '%s' is not available for %s parents", c.Operator, t))
		} else if op.Modifier && c.OperatorModifier == "" {
			result.addWarning(name, c.Key, fmt.Sprintf("operator '%s' has no modifier, 'some' is assumed", c.Operator))
		}

		if i == len(conditions)-1 {
			continue
		}
		switch {
		case c.ConjunctionOperator == "":
		case !c.ConjunctionOperator.Valid():
			result.addError(name, c.Key, fmt.Sprintf("unknown conjunction '%s'", c.ConjunctionOperator))
		case c.ConjunctionOperator.Reserved():
			result.addWarning(name, c.Key, fmt.Sprintf("conjunction '%s' cannot be edited", c.ConjunctionOperator))
		}
	}
}

func (r *Result) addError(w, cond, message string) {
	r.Valid = false
	r.Issues = append(r.Issues, Issue{
		Severity:  "error",
		Widget:    w,
		Condition: cond,
		Message:   message,
	})
}

func (r *Result) addWarning(w, cond, message string) {
	r.Issues = append(r.Issues, Issue{
		Severity:  "warning",
		Widget:    w,
		Condition: cond,
		Message:   message,
	})
}

// label names a widget in issues: id, client id, then title.
func label(w widget.Widget) string {
	switch {
	case w.ID != "":
		return w.ID
	case w.ClientID != "":
		return w.ClientID
	default:
		return w.Title
	}
}
