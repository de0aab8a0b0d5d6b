package form

import (
	"fmt"
	"sort"
	"strings"
)

// Error mirrors the shape of the validated value. Leaf fields carry a
// Message; objects and arrays carry per-member errors in Fields (arrays are
// keyed by item key) plus an optional NonField error of their own.
type Error struct {
	Message  string            `json:"message,omitempty"`
	NonField string            `json:"nonFieldError,omitempty"`
	Fields   map[string]*Error `json:"fields,omitempty"`
}

// Errored reports whether e or anything beneath it holds a message.
// A nil error is not errored.
func (e *Error) Errored() bool {
	if e == nil {
		return false
	}
	if e.Message != "" || e.NonField != "" {
		return true
	}
	for _, child := range e.Fields {
		if child.Errored() {
			return true
		}
	}
	return false
}

// Field returns the error of a member, or nil. Safe on nil receivers so
// lookups can be chained: err.Field("conditions").Field(key).
func (e *Error) Field(name string) *Error {
	if e == nil || e.Fields == nil {
		return nil
	}
	return e.Fields[name]
}

// Messages flattens the tree into sorted "path: message" lines.
func (e *Error) Messages() []string {
	var out []string
	e.collect("", &out)
	sort.Strings(out)
	return out
}

// Error implements the error interface.
func (e *Error) Error() string {
	msgs := e.Messages()
	if len(msgs) == 0 {
		return "no errors"
	}
	return strings.Join(msgs, "; ")
}

func (e *Error) collect(path string, out *[]string) {
	if e == nil {
		return
	}
	label := path
	if label == "" {
		label = "$"
	}
	if e.Message != "" {
		*out = append(*out, fmt.Sprintf("%s: %s", label, e.Message))
	}
	if e.NonField != "" {
		*out = append(*out, fmt.Sprintf("%s: %s", label, e.NonField))
	}
	for name, child := range e.Fields {
		childPath := name
		if path != "" {
			childPath = path + "." + name
		}
		child.collect(childPath, out)
	}
}

func (e *Error) set(name string, child *Error) {
	if e.Fields == nil {
		e.Fields = make(map[string]*Error)
	}
	e.Fields[name] = child
}

// compact returns nil for an error tree without messages.
func (e *Error) compact() *Error {
	if !e.Errored() {
		return nil
	}
	return e
}
