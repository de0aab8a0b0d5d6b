// Package editor mediates the authoring of a widget's conditional rule:
// choosing the parent widget, editing the condition list with the editor
// matching the parent's type, and saving or cancelling the draft.
package editor

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/dlovans/tagform/pkg/widget"
)

// State is the phase a Session is in.
type State int

const (
	// StateSelectParent: no rule yet, only the parent picker is offered.
	StateSelectParent State = iota
	// StateChildBlocked: the widget is already a parent; nothing can be saved.
	StateChildBlocked
	// StateEditing: a rule exists and a RuleEditor is attached.
	StateEditing
	// StateUnimplemented: the parent type has no editor; Save passes the
	// rule through unchanged.
	StateUnimplemented
)

func (s State) String() string {
	switch s {
	case StateSelectParent:
		return "select-parent"
	case StateChildBlocked:
		return "child-blocked"
	case StateEditing:
		return "editing"
	case StateUnimplemented:
		return "unimplemented"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// MsgNotImplemented is the message shown for parent types without an editor.
const MsgNotImplemented = "Not implemented"

// Options wires a Session to its caller.
type Options struct {
	Title    string
	OnChange func(rule *widget.Conditional) // staged, not saved
	OnSave   func(rule *widget.Conditional)
	OnCancel func()
	Logger   *zap.Logger
	NewKey   func() string // condition keys; widget.NewClientID by default
}

// Session is one opening of the rule editor for one widget.
// It is not safe for concurrent use.
type Session struct {
	widgetID string
	widgets  []widget.Widget
	opts     Options
	logger   *zap.Logger

	initial *widget.Conditional
	value   *widget.Conditional
	state   State
	message string
	editor  RuleEditor
}

// Open starts editing the rule of widgetID. value is the widget's current
// rule, or nil.
func Open(widgetID string, widgets []widget.Widget, value *widget.Conditional, opts Options) *Session {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.NewKey == nil {
		opts.NewKey = widget.NewClientID
	}

	s := &Session{
		widgetID: widgetID,
		widgets:  widgets,
		opts:     opts,
		logger:   opts.Logger.With(zap.String("widget", widgetID)),
		initial:  value.Clone(),
		value:    value.Clone(),
	}

	if n := len(widget.Children(widgets, widgetID)); n > 0 {
		s.state = StateChildBlocked
		s.message = fmt.Sprintf("this widget already has %d child widgets", n)
		return s
	}

	s.attach()
	return s
}

// attach moves the session to the state matching its current value.
func (s *Session) attach() {
	s.editor = nil
	s.message = ""

	if s.value == nil {
		s.state = StateSelectParent
		return
	}

	var parent *widget.Widget
	if p, ok := widget.Find(s.widgets, s.value.ParentWidget); ok {
		parent = &p
		if p.Type != s.value.ParentWidgetType {
			s.logger.Warn("stale parent widget type",
				zap.String("parent", p.ID),
				zap.String("stored", string(s.value.ParentWidgetType)),
				zap.String("actual", string(p.Type)))
			s.value.Refresh(s.widgets)
		}
	} else {
		s.logger.Error("widget not found", zap.String("parent", s.value.ParentWidget))
	}

	s.editor = newRuleEditor(s.value, parent, s.opts.NewKey)
	if s.editor == nil {
		s.state = StateUnimplemented
		s.message = MsgNotImplemented
		return
	}
	s.state = StateEditing
}

func (s *Session) State() State {
	return s.state
}

// Message is the terminal message of the child-blocked and unimplemented
// states, or "".
func (s *Session) Message() string {
	return s.message
}

func (s *Session) Title() string {
	return s.opts.Title
}

// Editor returns the attached rule editor, or nil outside StateEditing.
func (s *Session) Editor() RuleEditor {
	return s.editor
}

// Value returns the current rule: the editor's draft while editing.
func (s *Session) Value() *widget.Conditional {
	if s.editor != nil {
		return s.editor.Value()
	}
	return s.value.Clone()
}

// Candidates lists the widgets that may become the parent: persisted, not
// the edited widget, and not themselves conditional.
func (s *Session) Candidates() []widget.Widget {
	var out []widget.Widget
	for _, w := range s.widgets {
		if !w.Persisted() || w.ID == s.widgetID || w.Conditional != nil {
			continue
		}
		out = append(out, w)
	}
	return out
}

// SelectParent stages a new rule for the chosen parent with one default
// condition, or clears the rule when id is empty. Unknown ids are logged and
// ignored.
func (s *Session) SelectParent(id string) {
	if s.state == StateChildBlocked {
		s.logger.Warn("parent selection ignored", zap.String("reason", s.message))
		return
	}

	if id == "" {
		s.value = nil
		s.attach()
		s.changed(nil)
		return
	}

	var parent *widget.Widget
	for _, c := range s.Candidates() {
		if c.ID == id {
			parent = &c
			break
		}
	}
	if parent == nil {
		s.logger.Error("widget not found", zap.String("parent", id))
		return
	}

	s.value = widget.NewConditional(*parent, s.opts.NewKey())
	s.attach()
	s.changed(s.value.Clone())
}

func (s *Session) changed(rule *widget.Conditional) {
	if s.opts.OnChange != nil {
		s.opts.OnChange(rule)
	}
}

// Save commits the current value through OnSave. While editing, the draft
// must validate; the returned error is then a *form.Error. Nothing is saved
// while child-blocked.
func (s *Session) Save() error {
	var rule *widget.Conditional

	switch s.state {
	case StateChildBlocked:
		return fmt.Errorf("%w: %s", ErrChildBlocked, s.message)
	case StateEditing:
		assembled, err := s.editor.Assemble()
		if err != nil {
			return err
		}
		rule = assembled
		s.value = assembled.Clone()
		s.editor.reset(s.value)
	default:
		rule = s.value.Clone()
	}

	s.initial = rule.Clone()
	if s.opts.OnSave != nil {
		s.opts.OnSave(rule)
	}
	return nil
}

// Cancel discards the draft, restoring the value the session was opened or
// last saved with.
func (s *Session) Cancel() {
	if s.state != StateChildBlocked {
		s.value = s.initial.Clone()
		s.attach()
	}
	if s.opts.OnCancel != nil {
		s.opts.OnCancel()
	}
}
