package filter

import (
	"sort"

	"github.com/dlovans/tagform/pkg/widget"
)

// Filter is the filterable view of one framework widget.
type Filter struct {
	Key        string      `json:"key"`
	ClientID   string      `json:"clientId"`
	Title      string      `json:"title"`
	WidgetType widget.Type `json:"widgetType"`
	Order      int         `json:"order"`
	Properties Properties  `json:"properties"`
}

// Properties carries the options a filter offers.
type Properties struct {
	Type    widget.Type     `json:"type"`
	Options []widget.Option `json:"options"`
}

// SlotKey is the key the filter's value is stored under: the widget key, or
// its client id when the key is missing.
func (f Filter) SlotKey() string {
	if f.Key != "" {
		return f.Key
	}
	return f.ClientID
}

// FromWidgets derives filters from widgets, sorted by order. CONDITIONAL
// widgets take their target type and are skipped without a usable one.
// Missing or malformed options yield an empty option list.
func FromWidgets(widgets []widget.Widget) []Filter {
	out := make([]Filter, 0, len(widgets))
	for _, w := range widgets {
		t := w.Type
		if t == widget.TypeConditional {
			if w.Properties == nil {
				continue
			}
			t = w.Properties.TargetType
		}
		if !t.Conditionable() {
			continue
		}

		key := w.Key
		if key == "" {
			key = w.ClientID
		}
		if key == "" {
			key = w.ID
		}

		out = append(out, Filter{
			Key:        key,
			ClientID:   w.ClientID,
			Title:      w.Title,
			WidgetType: t,
			Order:      w.Order,
			Properties: Properties{
				Type:    t,
				Options: w.Properties.OptionList(t),
			},
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Order < out[j].Order
	})
	return out
}

// Kind is the input a filter is rendered with.
type Kind string

const (
	KindDate           Kind = "date"
	KindDateRange      Kind = "dateRange"
	KindTime           Kind = "time"
	KindTimeRange      Kind = "timeRange"
	KindNumber         Kind = "number"
	KindText           Kind = "text"
	KindSelect         Kind = "select"
	KindMultiSelect    Kind = "multiSelect"
	KindGeoMultiSelect Kind = "geoMultiSelect"
)

// KindOf maps a widget type to its input kind. The second result is false
// for types that are not rendered directly.
func KindOf(t widget.Type) (Kind, bool) {
	switch t {
	case widget.TypeDate:
		return KindDate, true
	case widget.TypeDateRange:
		return KindDateRange, true
	case widget.TypeTime:
		return KindTime, true
	case widget.TypeTimeRange:
		return KindTimeRange, true
	case widget.TypeNumber:
		return KindNumber, true
	case widget.TypeText:
		return KindText, true
	case widget.TypeSelect:
		return KindSelect, true
	case widget.TypeGeo:
		return KindGeoMultiSelect, true
	case widget.TypeScale, widget.TypeMultiSelect, widget.TypeOrganigram, widget.TypeMatrix1D, widget.TypeMatrix2D:
		return KindMultiSelect, true
	default:
		return "", false
	}
}

// usesList reports whether values of kind k live in ValueList.
func (k Kind) usesList() bool {
	switch k {
	case KindSelect, KindMultiSelect, KindGeoMultiSelect:
		return true
	}
	return false
}

// usesBounds reports whether values of kind k live in ValueGte/ValueLte.
func (k Kind) usesBounds() bool {
	switch k {
	case KindDate, KindDateRange, KindTime, KindTimeRange, KindNumber:
		return true
	}
	return false
}
