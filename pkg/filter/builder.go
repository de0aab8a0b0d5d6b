package filter

import (
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/dlovans/tagform/pkg/widget"
)

// isoLayout matches the ISO date-times the query layer expects.
const isoLayout = "2006-01-02T15:04:05.000Z07:00"

// Field names of a Value, used by Part.
const (
	FieldValue             = "value"
	FieldValueGte          = "valueGte"
	FieldValueLte          = "valueLte"
	FieldValueList         = "valueList"
	FieldUseAndOperator    = "useAndOperator"
	FieldUseExclude        = "useExclude"
	FieldIncludeSubRegions = "includeSubRegions"
)

// Part is one editable field of an input.
type Part struct {
	Field string `json:"field"`
	Label string `json:"label"`
}

// Action is a modifier toggle shown next to an input.
type Action struct {
	Field   string `json:"field"`
	Tooltip string `json:"tooltip"`
	Value   bool   `json:"value"`
}

// Input describes how one filter is rendered and where it writes.
type Input struct {
	Key        string          `json:"key"`
	Title      string          `json:"title"`
	WidgetType widget.Type     `json:"widgetType"`
	Kind       Kind            `json:"kind"`
	Parts      []Part          `json:"parts"`
	Options    []widget.Option `json:"options,omitempty"`
	Actions    []Action        `json:"actions,omitempty"`
	Value      Value           `json:"value"`
	Hidden     bool            `json:"hidden"`
}

// Builder builds filter inputs and query variables.
type Builder struct {
	logger     *zap.Logger
	loc        *time.Location
	geoOptions func(filterKey string) []widget.Option
}

// BuilderOption configures a Builder.
type BuilderOption func(*Builder)

func WithLogger(logger *zap.Logger) BuilderOption {
	return func(b *Builder) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// WithLocation sets the zone calendar dates are read in. UTC by default.
func WithLocation(loc *time.Location) BuilderOption {
	return func(b *Builder) {
		if loc != nil {
			b.loc = loc
		}
	}
}

// WithGeoOptions supplies the region options loaded for GEO filters.
func WithGeoOptions(load func(filterKey string) []widget.Option) BuilderOption {
	return func(b *Builder) {
		b.geoOptions = load
	}
}

func NewBuilder(opts ...BuilderOption) *Builder {
	b := &Builder{
		logger: zap.NewNop(),
		loc:    time.UTC,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Inputs describes an input per filter. An input without data is hidden
// unless allVisible is set.
func (b *Builder) Inputs(filters []Filter, values []Value, allVisible bool) []Input {
	out := make([]Input, 0, len(filters))
	for _, f := range filters {
		kind, ok := KindOf(f.WidgetType)
		if !ok {
			b.logger.Debug("filter not rendered", zap.String("filter", f.SlotKey()), zap.String("type", string(f.WidgetType)))
			continue
		}
		value, _ := Get(values, f.SlotKey())
		value.FilterKey = f.SlotKey()

		in := Input{
			Key:        f.SlotKey(),
			Title:      f.Title,
			WidgetType: f.WidgetType,
			Kind:       kind,
			Parts:      parts(kind, f.Title),
			Value:      value,
			Hidden:     !value.HasData() && !allVisible,
		}

		switch kind {
		case KindGeoMultiSelect:
			in.Options = []widget.Option{}
			if b.geoOptions != nil {
				if opts := b.geoOptions(f.SlotKey()); opts != nil {
					in.Options = opts
				}
			}
			if len(value.ValueList) > 0 {
				tooltip := "Include sub regions"
				if value.IncludeSubRegions {
					tooltip = "Exclude sub regions"
				}
				in.Actions = []Action{{Field: FieldIncludeSubRegions, Tooltip: tooltip, Value: value.IncludeSubRegions}}
			}
		case KindSelect, KindMultiSelect:
			in.Options = f.Properties.Options
			if in.Options == nil {
				in.Options = []widget.Option{}
			}
			if kind == KindMultiSelect {
				in.Actions = []Action{
					{Field: FieldUseAndOperator, Tooltip: "Match all selected", Value: value.UseAndOperator},
					{Field: FieldUseExclude, Tooltip: "Exclude selected", Value: value.UseExclude},
				}
			}
		}
		out = append(out, in)
	}
	return out
}

func parts(kind Kind, title string) []Part {
	switch kind {
	case KindNumber:
		return []Part{
			{Field: FieldValueGte, Label: title + " (Greater than or equal)"},
			{Field: FieldValueLte, Label: title + " (Less than or equal)"},
		}
	case KindDate, KindDateRange, KindTime, KindTimeRange:
		return []Part{
			{Field: FieldValueGte, Label: title + " (From)"},
			{Field: FieldValueLte, Label: title + " (To)"},
		}
	case KindText:
		return []Part{{Field: FieldValue, Label: title}}
	default:
		return []Part{{Field: FieldValueList, Label: title}}
	}
}

// Encode keeps the raw values that target a known filter and carry data,
// ordered by filter order. Values for unknown keys are logged and dropped.
func (b *Builder) Encode(filters []Filter, raw []Value) []Value {
	rank := make(map[string]int, len(filters))
	for i, f := range filters {
		rank[f.SlotKey()] = i
	}

	out := make([]Value, 0, len(raw))
	for _, v := range raw {
		if _, ok := rank[v.FilterKey]; !ok {
			b.logger.Warn("filter value without filter", zap.String("filter", v.FilterKey))
			continue
		}
		if !v.HasData() {
			continue
		}
		out = append(out, v)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return rank[out[i].FilterKey] < rank[out[j].FilterKey]
	})
	return out
}

// SetDateRange writes a calendar date range as ISO date-times: the start of
// the first day and the end of the last, in the builder's zone. Two empty
// dates clear the slot.
func (b *Builder) SetDateRange(values []Value, key, start, end string) ([]Value, error) {
	if start == "" && end == "" {
		return Clear(values, key), nil
	}
	gte, err := b.isoDateTime(start, false)
	if err != nil {
		return values, err
	}
	lte, err := b.isoDateTime(end, true)
	if err != nil {
		return values, err
	}
	return Set(values, key, func(old Value) Value {
		old.ValueGte = textPtr(gte)
		old.ValueLte = textPtr(lte)
		return old
	}), nil
}

// DateRange reads a slot's bounds back as calendar dates.
func (b *Builder) DateRange(v Value) (start, end string) {
	return b.calendarDate(v.ValueGte), b.calendarDate(v.ValueLte)
}

// SetTimeRange writes a time range. Two empty times clear the slot.
func (b *Builder) SetTimeRange(values []Value, key, start, end string) ([]Value, error) {
	if start == "" && end == "" {
		return Clear(values, key), nil
	}
	for _, s := range []string{start, end} {
		if s != "" && !isClock(s) {
			return values, fmt.Errorf("time range: %q is not HH:MM", s)
		}
	}
	return Set(values, key, func(old Value) Value {
		old.ValueGte = textPtr(start)
		old.ValueLte = textPtr(end)
		return old
	}), nil
}

// isoDateTime converts YYYY-MM-DD to an ISO date-time at the start or the
// end of that day. "" stays "".
func (b *Builder) isoDateTime(date string, endOfDay bool) (string, error) {
	if date == "" {
		return "", nil
	}
	t, err := time.ParseInLocation("2006-01-02", date, b.loc)
	if err != nil {
		return "", fmt.Errorf("date %q: %w", date, err)
	}
	if endOfDay {
		y, m, d := t.Date()
		t = time.Date(y, m, d, 23, 59, 59, int(999*time.Millisecond), b.loc)
	}
	return t.UTC().Format(isoLayout), nil
}

func (b *Builder) calendarDate(iso *string) string {
	if iso == nil || *iso == "" {
		return ""
	}
	t, err := time.Parse(time.RFC3339, *iso)
	if err != nil {
		return ""
	}
	return t.In(b.loc).Format("2006-01-02")
}

func isClock(s string) bool {
	for _, layout := range []string{"15:04", "15:04:05"} {
		if _, err := time.Parse(layout, s); err == nil {
			return true
		}
	}
	return false
}
