package widget

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Record is the storage shape of a widget as the framework provider returns
// it and the persistence sink accepts it. The widget type travels as
// `widgetId` and properties stay raw until decoded for the type.
type Record struct {
	ID          string          `json:"id,omitempty"`
	ClientID    string          `json:"clientId,omitempty"`
	Title       string          `json:"title"`
	WidgetID    Type            `json:"widgetId"`
	Properties  json.RawMessage `json:"properties,omitempty"`
	Conditional *Conditional    `json:"conditional,omitempty"`
	Order       int             `json:"order"`
	Width       Width           `json:"width,omitempty"`
}

// storedProperties mirrors Properties in its stored form: organigram trees
// live under `options` instead of a separate field.
type storedProperties struct {
	Options      json.RawMessage `json:"options,omitempty"`
	Rows         []MatrixRow     `json:"rows,omitempty"`
	Columns      []MatrixColumn  `json:"columns,omitempty"`
	MinValue     *float64        `json:"minValue,omitempty"`
	MaxValue     *float64        `json:"maxValue,omitempty"`
	DefaultValue any             `json:"defaultValue,omitempty"`
	TargetType   Type            `json:"targetType,omitempty"`
}

// RecordOption tunes ToRecord.
type RecordOption func(*recordConfig)

type recordConfig struct {
	withoutClientID bool
}

// WithoutClientID strips the client id for stores that do not accept it.
func WithoutClientID() RecordOption {
	return func(c *recordConfig) {
		c.withoutClientID = true
	}
}

// FromRecord decodes a stored widget. The client id is promoted to Key for
// local array addressing; a record without client id falls back to its
// server id. Malformed option payloads decode to no options instead of
// failing the whole widget.
func FromRecord(r Record) (Widget, error) {
	w := Widget{
		ID:          r.ID,
		ClientID:    r.ClientID,
		Title:       r.Title,
		Type:        r.WidgetID,
		Conditional: r.Conditional.Clone(),
		Order:       r.Order,
		Width:       r.Width,
	}
	if w.ClientID == "" {
		w.ClientID = r.ID
	}
	w.Key = w.ClientID

	props, err := decodeProperties(r.WidgetID, r.Properties)
	if err != nil {
		return Widget{}, fmt.Errorf("widget %q properties: %w", w.ClientID, err)
	}
	w.Properties = props
	return w, nil
}

// ToRecord produces the storage record for w. Key is client-only and never
// stored.
func ToRecord(w Widget, opts ...RecordOption) (Record, error) {
	var cfg recordConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	r := Record{
		ID:          w.ID,
		ClientID:    w.ClientID,
		Title:       w.Title,
		WidgetID:    w.Type,
		Conditional: w.Conditional.Clone(),
		Order:       w.Order,
		Width:       w.Width,
	}
	if cfg.withoutClientID {
		r.ClientID = ""
	}

	raw, err := encodeProperties(w.Type, w.Properties)
	if err != nil {
		return Record{}, fmt.Errorf("widget %q properties: %w", w.ClientID, err)
	}
	r.Properties = raw
	return r, nil
}

// FromRecords decodes a list of stored widgets.
func FromRecords(records []Record) ([]Widget, error) {
	out := make([]Widget, 0, len(records))
	for _, r := range records {
		w, err := FromRecord(r)
		if err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, nil
}

func decodeProperties(t Type, raw json.RawMessage) (*Properties, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}

	var stored storedProperties
	if err := json.Unmarshal(trimmed, &stored); err != nil {
		return nil, fmt.Errorf("unmarshal: %w", err)
	}

	props := &Properties{
		Rows:         stored.Rows,
		Columns:      stored.Columns,
		MinValue:     stored.MinValue,
		MaxValue:     stored.MaxValue,
		DefaultValue: stored.DefaultValue,
		TargetType:   stored.TargetType,
	}

	if len(stored.Options) > 0 && !bytes.Equal(stored.Options, []byte("null")) {
		if t == TypeOrganigram {
			var root OrganigramNode
			if err := json.Unmarshal(stored.Options, &root); err == nil {
				props.Organigram = &root
			}
		} else {
			var options []Option
			if err := json.Unmarshal(stored.Options, &options); err == nil {
				props.Options = options
			}
		}
	}
	return props, nil
}

func encodeProperties(t Type, props *Properties) (json.RawMessage, error) {
	if props == nil {
		return nil, nil
	}

	stored := storedProperties{
		Rows:         props.Rows,
		Columns:      props.Columns,
		MinValue:     props.MinValue,
		MaxValue:     props.MaxValue,
		DefaultValue: props.DefaultValue,
		TargetType:   props.TargetType,
	}

	var options any
	switch {
	case t == TypeOrganigram && props.Organigram != nil:
		options = props.Organigram
	case props.Options != nil:
		options = props.Options
	}
	if options != nil {
		raw, err := json.Marshal(options)
		if err != nil {
			return nil, fmt.Errorf("marshal options: %w", err)
		}
		stored.Options = raw
	}

	raw, err := json.Marshal(stored)
	if err != nil {
		return nil, fmt.Errorf("marshal: %w", err)
	}
	return raw, nil
}
