package condition

import (
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/dlovans/tagform/pkg/widget"
)

// Engine evaluates the conditional rules of one framework's widgets.
// It holds no state beyond the widget list and is safe for concurrent use.
type Engine struct {
	widgets []widget.Widget
	logger  *zap.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger routes evaluation diagnostics to logger.
func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewEngine creates an engine over widgets.
func NewEngine(widgets []widget.Widget, opts ...Option) *Engine {
	e := &Engine{
		widgets: widgets,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Evaluate resolves the rule's parent from the engine's widgets and tests
// value against it. A rule whose parent cannot be resolved passes.
func (e *Engine) Evaluate(rule *widget.Conditional, value any) bool {
	if rule == nil {
		return true
	}
	parent, ok := widget.Find(e.widgets, rule.ParentWidget)
	if !ok {
		e.logger.Error("conditional parent not found", zap.String("parent", rule.ParentWidget))
		return true
	}
	return evaluate(e.logger, rule, &parent, value)
}

// Visible reports whether the widget identified by key (id, client id or
// key) is shown. values holds parent values keyed by widget id.
// Widgets without a rule are visible, and so are widgets whose parent cannot
// be resolved.
func (e *Engine) Visible(key string, values map[string]any) bool {
	w, ok := widget.FindByKey(e.widgets, key)
	if !ok {
		e.logger.Warn("widget not found", zap.String("widget", key))
		return true
	}
	return e.visible(w, values)
}

func (e *Engine) visible(w widget.Widget, values map[string]any) bool {
	if !w.IsChild() {
		return true
	}
	parent, ok := widget.Find(e.widgets, w.Conditional.ParentWidget)
	if !ok {
		e.logger.Error("conditional parent not found",
			zap.String("widget", identity(w)),
			zap.String("parent", w.Conditional.ParentWidget))
		return true
	}
	return evaluate(e.logger, w.Conditional, &parent, values[parent.ID])
}

// Visibility computes the visibility of every widget, keyed by id (client id
// for unsaved widgets).
func (e *Engine) Visibility(values map[string]any) map[string]bool {
	out := make(map[string]bool, len(e.widgets))
	for _, w := range e.widgets {
		out[identity(w)] = e.visible(w, values)
	}
	return out
}

// Document is the input and output of Run. Widgets may arrive as storage
// records; the output always carries them as widgets.
type Document struct {
	widget.Framework
	Values     map[string]any  `json:"values"`
	Visibility map[string]bool `json:"visibility,omitempty"`
}

// Resolve replaces records with the decoded widgets.
func (d *Document) Resolve() error {
	widgets, err := d.Framework.Resolve()
	if err != nil {
		return err
	}
	d.Framework = widget.Framework{Widgets: widgets}
	return nil
}

// Run evaluates every widget of a JSON document and returns the same
// document with visibility filled in.
func Run(jsonText string, opts ...Option) (string, error) {
	var doc Document
	if err := json.Unmarshal([]byte(jsonText), &doc); err != nil {
		return "", fmt.Errorf("unmarshal: %w", err)
	}
	if err := doc.Resolve(); err != nil {
		return "", err
	}

	engine := NewEngine(doc.Widgets, opts...)
	doc.Visibility = engine.Visibility(doc.Values)

	out, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("marshal: %w", err)
	}
	return string(out), nil
}

func identity(w widget.Widget) string {
	if w.ID != "" {
		return w.ID
	}
	return w.ClientID
}
