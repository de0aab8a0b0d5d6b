// Package form is a small nested-object validation shell.
//
// Schemas describe JSON-shaped values (map[string]any, []any and scalars).
// Object schemas list per-field validators or nested schemas; array schemas
// pick a stable key per item so errors survive reordering. Validation never
// stops at the first failure: every field is checked and the errors are
// collected into a tree that mirrors the value.
package form

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Validator checks one field. It receives the field value and the object
// that holds it, and returns a message, or "" when the value is fine.
type Validator func(value any, parent map[string]any) string

// Field is the schema of one object member: either a validator list, a
// nested object or an array.
type Field struct {
	Validators []Validator
	Object     *ObjectSchema
	Array      *ArraySchema
}

// Rules builds a field from plain validators.
func Rules(validators ...Validator) Field {
	return Field{Validators: validators}
}

// Object builds a field holding a nested object.
func Object(schema *ObjectSchema) Field {
	return Field{Object: schema}
}

// Array builds a field holding a list of objects.
func Array(schema *ArraySchema) Field {
	return Field{Array: schema}
}

// ObjectSchema describes an object. Fields is called with the current value
// so the set of validators may depend on sibling fields.
type ObjectSchema struct {
	Fields     func(value map[string]any) map[string]Field
	Validation func(value map[string]any) string
}

// ArraySchema describes a list of objects.
type ArraySchema struct {
	KeySelector func(item map[string]any) string
	Member      func(item map[string]any) *ObjectSchema
	Validation  func(items []any) string
}

// Result is the outcome of a validation pass.
type Result struct {
	Errored bool
	Error   *Error
	Value   any
}

// Validate checks value against schema. value may be any JSON-shaped value
// or a Go value that marshals to a JSON object.
func Validate(schema *ObjectSchema, value any) Result {
	shaped, err := Shape(value)
	if err != nil {
		return Result{
			Errored: true,
			Error:   &Error{NonField: err.Error()},
			Value:   value,
		}
	}

	obj, _ := shaped.(map[string]any)
	e := validateObject(schema, obj)
	return Result{
		Errored: e.Errored(),
		Error:   e.compact(),
		Value:   value,
	}
}

// Shape converts v to its JSON form. Values that already are JSON-shaped
// pass through unchanged.
func Shape(v any) (any, error) {
	switch v.(type) {
	case nil, map[string]any, []any, string, float64, bool:
		return v, nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("shape: %w", err)
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("shape: %w", err)
	}
	return out, nil
}

func validateObject(schema *ObjectSchema, value map[string]any) *Error {
	e := &Error{}
	if schema == nil {
		return e
	}

	if schema.Fields != nil {
		for name, field := range schema.Fields(value) {
			var fieldValue any
			if value != nil {
				fieldValue = value[name]
			}
			if fe := validateField(field, fieldValue, value); fe.Errored() {
				e.set(name, fe)
			}
		}
	}

	if schema.Validation != nil {
		e.NonField = schema.Validation(value)
	}
	return e
}

func validateField(field Field, value any, parent map[string]any) *Error {
	switch {
	case field.Object != nil:
		obj, _ := value.(map[string]any)
		return validateObject(field.Object, obj)

	case field.Array != nil:
		items, _ := value.([]any)
		return validateArray(field.Array, items)

	default:
		for _, validate := range field.Validators {
			if msg := validate(value, parent); msg != "" {
				return &Error{Message: msg}
			}
		}
		return &Error{}
	}
}

func validateArray(schema *ArraySchema, items []any) *Error {
	e := &Error{}
	for i, item := range items {
		obj, _ := item.(map[string]any)

		key := strconv.Itoa(i)
		if schema.KeySelector != nil && obj != nil {
			if k := schema.KeySelector(obj); k != "" {
				key = k
			}
		}

		var member *ObjectSchema
		if schema.Member != nil {
			member = schema.Member(obj)
		}
		if ie := validateObject(member, obj); ie.Errored() {
			e.set(key, ie)
		}
	}

	if schema.Validation != nil {
		e.NonField = schema.Validation(items)
	}
	return e
}
