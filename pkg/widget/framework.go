package widget

import (
	"fmt"
)

// Framework is a framework's widget list as exchanged with callers: either
// in local shape or as storage records straight from the provider.
type Framework struct {
	Widgets []Widget `json:"widgets,omitempty"`
	Records []Record `json:"records,omitempty"`
}

// Resolve returns the framework's widgets, decoding records when present,
// with sibling order renumbered 1..n.
func (f Framework) Resolve() ([]Widget, error) {
	widgets := f.Widgets
	if len(f.Records) > 0 {
		if len(f.Widgets) > 0 {
			return nil, fmt.Errorf("framework: widgets and records are exclusive")
		}
		decoded, err := FromRecords(f.Records)
		if err != nil {
			return nil, fmt.Errorf("framework: %w", err)
		}
		widgets = decoded
	}
	return Renumber(widgets), nil
}
