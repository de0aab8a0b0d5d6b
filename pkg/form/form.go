package form

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// Form is a controlled value container: it owns one value of type T, tracks
// whether it changed since it was seeded, and validates it on demand.
// It is not safe for concurrent use; each editor owns its own Form.
type Form[T any] struct {
	schema   *ObjectSchema
	value    T
	err      *Error
	pristine bool
}

// FormResult is the typed outcome of Form.Validate.
type FormResult[T any] struct {
	Errored bool
	Error   *Error
	Value   T
}

// New seeds a pristine form.
func New[T any](schema *ObjectSchema, initial T) *Form[T] {
	return &Form[T]{
		schema:   schema,
		value:    initial,
		pristine: true,
	}
}

// Value returns the current value.
func (f *Form[T]) Value() T {
	return f.value
}

// Error returns the errors recorded by the last SetError or failed Validate.
func (f *Form[T]) Error() *Error {
	return f.err
}

// Pristine reports whether the value is untouched since it was seeded or
// last marked pristine.
func (f *Form[T]) Pristine() bool {
	return f.pristine
}

// SetPristine overrides the pristine flag.
func (f *Form[T]) SetPristine(pristine bool) {
	f.pristine = pristine
}

// SetError replaces the recorded errors.
func (f *Form[T]) SetError(err *Error) {
	f.err = err
}

// SetValue replaces the whole value with update(old). The update function
// must return a fresh value rather than mutate shared slices of old.
func (f *Form[T]) SetValue(update func(old T) T) {
	f.value = update(f.value)
	f.pristine = false
}

// SetFieldValue sets one member addressed by a dotted path of JSON names and
// slice indices, e.g. "conditions" or "conditions.2.operator". The error
// recorded for that path is cleared.
func (f *Form[T]) SetFieldValue(path string, value any) error {
	if path == "" {
		return fmt.Errorf("set field: empty path")
	}
	parts := strings.Split(path, ".")

	before := f.errorPath(parts)
	target := reflect.ValueOf(&f.value).Elem()
	if err := setPath(target, parts, value); err != nil {
		return fmt.Errorf("set field %q: %w", path, err)
	}
	f.pristine = false
	clearError(f.err, before)
	clearError(f.err, f.errorPath(parts))
	f.err = f.err.compact()
	return nil
}

// Validate checks the current value. The returned error tree is also
// recorded on the form.
func (f *Form[T]) Validate() FormResult[T] {
	res := Validate(f.schema, f.value)
	f.err = res.Error
	return FormResult[T]{
		Errored: res.Errored,
		Error:   res.Error,
		Value:   f.value,
	}
}

// errorPath maps a value path to the error tree path: array indices become
// the member key the schema's KeySelector reports for that item.
func (f *Form[T]) errorPath(parts []string) []string {
	if f.err == nil {
		return nil
	}
	shaped, err := Shape(f.value)
	if err != nil {
		return parts
	}

	out := make([]string, 0, len(parts))
	cur, obj := shaped, f.schema
	var arr *ArraySchema
	for _, part := range parts {
		switch {
		case arr != nil:
			items, _ := cur.([]any)
			var item map[string]any
			if idx, err := strconv.Atoi(part); err == nil && idx >= 0 && idx < len(items) {
				item, _ = items[idx].(map[string]any)
			}
			key := part
			if arr.KeySelector != nil && item != nil {
				if k := arr.KeySelector(item); k != "" {
					key = k
				}
			}
			out = append(out, key)
			obj = nil
			if arr.Member != nil {
				obj = arr.Member(item)
			}
			cur, arr = item, nil

		case obj != nil:
			m, _ := cur.(map[string]any)
			var field Field
			if obj.Fields != nil {
				field = obj.Fields(m)[part]
			}
			out = append(out, part)
			cur, obj, arr = m[part], field.Object, field.Array

		default:
			out = append(out, part)
			cur = nil
		}
	}
	return out
}

// clearError removes the error at path and prunes parents left without
// messages.
func clearError(e *Error, path []string) {
	if e == nil || e.Fields == nil || len(path) == 0 {
		return
	}
	if len(path) == 1 {
		delete(e.Fields, path[0])
		return
	}
	child := e.Fields[path[0]]
	clearError(child, path[1:])
	if child != nil && !child.Errored() {
		delete(e.Fields, path[0])
	}
}

func setPath(target reflect.Value, parts []string, value any) error {
	for target.Kind() == reflect.Pointer {
		if target.IsNil() {
			target.Set(reflect.New(target.Type().Elem()))
		}
		target = target.Elem()
	}

	if len(parts) == 0 {
		return assign(target, value)
	}

	switch target.Kind() {
	case reflect.Struct:
		field, ok := fieldByJSONName(target, parts[0])
		if !ok {
			return fmt.Errorf("no field %q on %s", parts[0], target.Type())
		}
		return setPath(field, parts[1:], value)

	case reflect.Slice:
		idx, err := strconv.Atoi(parts[0])
		if err != nil || idx < 0 || idx >= target.Len() {
			return fmt.Errorf("index %q out of range", parts[0])
		}
		// copy so slices shared with earlier values stay intact
		cp := reflect.MakeSlice(target.Type(), target.Len(), target.Len())
		reflect.Copy(cp, target)
		if err := setPath(cp.Index(idx), parts[1:], value); err != nil {
			return err
		}
		target.Set(cp)
		return nil

	case reflect.Map:
		if target.Type().Key().Kind() != reflect.String {
			return fmt.Errorf("map key of %s is not a string", target.Type())
		}
		if len(parts) > 1 {
			return fmt.Errorf("nested map paths are not supported")
		}
		if target.IsNil() {
			target.Set(reflect.MakeMap(target.Type()))
		}
		elem := reflect.New(target.Type().Elem()).Elem()
		if err := assign(elem, value); err != nil {
			return err
		}
		target.SetMapIndex(reflect.ValueOf(parts[0]).Convert(target.Type().Key()), elem)
		return nil

	default:
		return fmt.Errorf("cannot descend into %s", target.Type())
	}
}

func fieldByJSONName(v reflect.Value, name string) (reflect.Value, bool) {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		tag := strings.Split(sf.Tag.Get("json"), ",")[0]
		if tag == name || (tag == "" && strings.EqualFold(sf.Name, name)) {
			return v.Field(i), true
		}
	}
	return reflect.Value{}, false
}

func assign(target reflect.Value, value any) error {
	if value == nil {
		target.Set(reflect.Zero(target.Type()))
		return nil
	}
	v := reflect.ValueOf(value)
	switch {
	case v.Type().AssignableTo(target.Type()):
		target.Set(v)
	case convertible(v.Kind(), target.Kind()) && v.Type().ConvertibleTo(target.Type()):
		target.Set(v.Convert(target.Type()))
	default:
		return fmt.Errorf("cannot assign %s to %s", v.Type(), target.Type())
	}
	return nil
}

// convertible limits conversions to same-kind named types and numbers, so
// an int never silently turns into a one-rune string.
func convertible(from, to reflect.Kind) bool {
	if from == to {
		return from != reflect.Slice && from != reflect.Map
	}
	return isNumber(from) && isNumber(to)
}

func isNumber(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}
