package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dlovans/tagform/pkg/condition"
	"github.com/dlovans/tagform/pkg/editor"
	"github.com/dlovans/tagform/pkg/widget"
)

var (
	editorFile string
	editorSave bool
)

var editorCmd = &cobra.Command{
	Use:   "editor",
	Short: "Replay edits on a widget's conditional rule",
	Long: `Reads {"widgetId": ..., "widgets": [...], "value": {...}, "steps": [...]},
opens the rule editor for the widget and applies each step in order.

Steps:
  {"op": "parent", "value": "<widget id or empty>"}
  {"op": "add", "value": "AND"}
  {"op": "remove", "index": 1}
  {"op": "reorder", "value": ["c2", "c1"]}
  {"op": "operator", "index": 0, "value": "number-greater-than"}
  {"op": "value", "index": 0, "value": 5}
  {"op": "invert", "index": 0, "value": true}
  {"op": "modifier", "index": 0, "value": "every"}
  {"op": "conjunction", "index": 0, "value": "OR"}`,
	RunE: runEditor,
}

func init() {
	editorCmd.Flags().StringVarP(&editorFile, "file", "f", "", "Editor script (JSON or YAML, stdin if empty)")
	editorCmd.Flags().BoolVar(&editorSave, "save", false, "Validate and print the rule ready to persist")
}

type editorStep struct {
	Op    string `json:"op"`
	Index int    `json:"index"`
	Value any    `json:"value"`
}

type editorScript struct {
	WidgetID string              `json:"widgetId"`
	Widgets  []widget.Widget     `json:"widgets"`
	Value    *widget.Conditional `json:"value"`
	Steps    []editorStep        `json:"steps"`
}

type editorOutput struct {
	State     string               `json:"state"`
	Message   string               `json:"message,omitempty"`
	Operators []condition.Operator `json:"operators,omitempty"`
	Value     *widget.Conditional  `json:"value"`
	Errors    []string             `json:"errors,omitempty"`
}

func runEditor(cmd *cobra.Command, args []string) error {
	var script editorScript
	if err := readInput(cmd.InOrStdin(), editorFile, &script); err != nil {
		return err
	}
	if script.WidgetID == "" {
		return errors.New("widgetId is required")
	}

	var saved *widget.Conditional
	s := editor.Open(script.WidgetID, script.Widgets, script.Value, editor.Options{
		Logger: logger,
		OnChange: func(rule *widget.Conditional) {
			logger.Debug("parent changed", zap.Bool("cleared", rule == nil))
		},
		OnSave: func(rule *widget.Conditional) { saved = rule },
	})

	for i, step := range script.Steps {
		if err := applyStep(s, step); err != nil {
			return fmt.Errorf("step %d (%s): %w", i+1, step.Op, err)
		}
	}

	out := editorOutput{
		State:   s.State().String(),
		Message: s.Message(),
		Value:   s.Value(),
	}
	if e := s.Editor(); e != nil {
		out.Operators = e.Operators()
		if res := e.Validate(); res.Errored {
			out.Errors = res.Error.Messages()
		}
	}

	if editorSave {
		if err := s.Save(); err != nil {
			return fmt.Errorf("save: %w", err)
		}
		out.Value = saved
	}
	return printJSON(cmd.OutOrStdout(), out)
}

func applyStep(s *editor.Session, step editorStep) error {
	if step.Op == "parent" {
		id, _ := step.Value.(string)
		s.SelectParent(id)
		return nil
	}

	e := s.Editor()
	if e == nil {
		return fmt.Errorf("no rule editor in state %s", s.State())
	}

	switch step.Op {
	case "add":
		return e.AddCondition(widget.Conjunction(stepString(step.Value)))
	case "remove":
		return e.RemoveCondition(step.Index)
	case "reorder":
		items, _ := step.Value.([]any)
		keys := make([]string, 0, len(items))
		for _, item := range items {
			keys = append(keys, stepString(item))
		}
		return e.Reorder(keys)
	case "operator":
		return e.SetOperator(step.Index, stepString(step.Value))
	case "value":
		return e.SetValue(step.Index, step.Value)
	case "invert":
		invert, _ := step.Value.(bool)
		return e.SetInvert(step.Index, invert)
	case "modifier":
		return e.SetModifier(step.Index, widget.Modifier(stepString(step.Value)))
	case "conjunction":
		return e.SetConjunction(step.Index, widget.Conjunction(stepString(step.Value)))
	default:
		return fmt.Errorf("unknown step %q", step.Op)
	}
}

func stepString(v any) string {
	s, _ := v.(string)
	return s
}
