package filter

import (
	"strings"

	"github.com/dlovans/tagform/pkg/helpers"
)

// Chip is one applied filter, ready to show and dismiss.
type Chip struct {
	Key   string `json:"key"`
	Field string `json:"field"`
	Label string `json:"label"`
	Value string `json:"value"`
}

// Describe lists the applied framework filters in filter order. Option keys
// are shown by label when the filter knows them.
func (b *Builder) Describe(filters []Filter, values []Value) []Chip {
	var chips []Chip
	for _, f := range filters {
		v, ok := Get(values, f.SlotKey())
		if !ok || !v.HasData() {
			continue
		}
		kind, ok := KindOf(f.WidgetType)
		if !ok {
			continue
		}
		key := f.SlotKey()

		switch {
		case kind.usesList():
			chips = append(chips, Chip{Key: key, Field: FieldValueList, Label: f.Title, Value: labels(f, v.ValueList)})
		case kind == KindNumber:
			if v.ValueGte != nil {
				chips = append(chips, Chip{Key: key, Field: FieldValueGte, Label: f.Title + " (Greater than or equal)", Value: *v.ValueGte})
			}
			if v.ValueLte != nil {
				chips = append(chips, Chip{Key: key, Field: FieldValueLte, Label: f.Title + " (Less than or equal)", Value: *v.ValueLte})
			}
		case kind == KindDate || kind == KindDateRange:
			start, end := b.DateRange(v)
			chips = append(chips, Chip{Key: key, Field: FieldValueGte, Label: f.Title, Value: span(start, end)})
		case kind.usesBounds():
			chips = append(chips, Chip{Key: key, Field: FieldValueGte, Label: f.Title,
				Value: span(helpers.Value(v.ValueGte), helpers.Value(v.ValueLte))})
		default:
			if v.Value != nil {
				chips = append(chips, Chip{Key: key, Field: FieldValue, Label: f.Title, Value: *v.Value})
			}
		}
	}
	return chips
}

func labels(f Filter, keys []string) string {
	out := make([]string, 0, len(keys))
	for _, key := range keys {
		label := key
		for _, o := range f.Properties.Options {
			if o.Key == key && o.Label != "" {
				label = o.Label
				break
			}
		}
		out = append(out, label)
	}
	return strings.Join(out, ", ")
}

func span(start, end string) string {
	switch {
	case start == "":
		return "until " + end
	case end == "":
		return "from " + start
	default:
		return start + " - " + end
	}
}
