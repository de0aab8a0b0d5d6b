// Package filter turns a framework's widgets into entry filter inputs and
// folds the filter values users enter into query variables.
package filter

import (
	"github.com/dlovans/tagform/pkg/helpers"
)

// Value is the filter entered for one widget, addressed by FilterKey.
// Range and text widgets use Value/ValueGte/ValueLte; option widgets use
// ValueList and its modifiers.
type Value struct {
	FilterKey         string   `json:"filterKey"`
	Value             *string  `json:"value,omitempty"`
	ValueGte          *string  `json:"valueGte,omitempty"`
	ValueLte          *string  `json:"valueLte,omitempty"`
	ValueList         []string `json:"valueList,omitempty"`
	UseAndOperator    bool     `json:"useAndOperator,omitempty"`
	UseExclude        bool     `json:"useExclude,omitempty"`
	IncludeSubRegions bool     `json:"includeSubRegions,omitempty"`
}

// HasData reports whether the value filters anything. Modifiers alone do
// not count.
func (v Value) HasData() bool {
	return !helpers.Blank(v.Value) ||
		!helpers.Blank(v.ValueGte) ||
		!helpers.Blank(v.ValueLte) ||
		len(v.ValueList) > 0
}

// Get returns the slot for key.
func Get(values []Value, key string) (Value, bool) {
	for _, v := range values {
		if v.FilterKey == key {
			return v, true
		}
	}
	return Value{}, false
}

// Set applies update to the slot for key and returns the new list. The
// update receives the current slot, or an empty one carrying key. A slot
// left without data is dropped. Other slots are copied unchanged and keep
// their position; new slots are appended.
func Set(values []Value, key string, update func(old Value) Value) []Value {
	out := make([]Value, 0, len(values)+1)
	found := false
	for _, v := range values {
		if v.FilterKey != key {
			out = append(out, v)
			continue
		}
		found = true
		next := update(v)
		next.FilterKey = key
		if next.HasData() {
			out = append(out, next)
		}
	}
	if !found {
		next := update(Value{FilterKey: key})
		next.FilterKey = key
		if next.HasData() {
			out = append(out, next)
		}
	}
	return out
}

// Clear removes the slot for key.
func Clear(values []Value, key string) []Value {
	return Set(values, key, func(Value) Value { return Value{} })
}

// SetText sets the free text filter of a TEXT widget.
func SetText(values []Value, key, text string) []Value {
	return Set(values, key, func(old Value) Value {
		old.Value = textPtr(text)
		return old
	})
}

// SetBounds sets the lower and upper bound of a NUMBER widget. Empty
// strings clear a bound.
func SetBounds(values []Value, key, gte, lte string) []Value {
	return Set(values, key, func(old Value) Value {
		old.ValueGte = textPtr(gte)
		old.ValueLte = textPtr(lte)
		return old
	})
}

// SetList sets the selected keys of an option widget. Modifiers are kept.
func SetList(values []Value, key string, list []string) []Value {
	return Set(values, key, func(old Value) Value {
		if len(list) == 0 {
			old.ValueList = nil
		} else {
			old.ValueList = append([]string(nil), list...)
		}
		return old
	})
}

// Modifiers toggles how an option widget's list matches.
type Modifiers struct {
	UseAndOperator    bool
	UseExclude        bool
	IncludeSubRegions bool
}

// SetModifiers updates the list modifiers of a slot that already holds
// data; modifiers alone never create a slot.
func SetModifiers(values []Value, key string, m Modifiers) []Value {
	return Set(values, key, func(old Value) Value {
		old.UseAndOperator = m.UseAndOperator
		old.UseExclude = m.UseExclude
		old.IncludeSubRegions = m.IncludeSubRegions
		return old
	})
}

func textPtr(s string) *string {
	if s == "" {
		return nil
	}
	return helpers.Ptr(s)
}
