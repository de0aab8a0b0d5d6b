//go:build js && wasm

// Package main provides WASM bindings for tagform.
// This allows conditional visibility and filter queries to run in browsers.
package main

import (
	"encoding/json"
	"strings"
	"syscall/js"

	"github.com/dlovans/tagform/pkg/condition"
	"github.com/dlovans/tagform/pkg/filter"
	"github.com/dlovans/tagform/pkg/lint"
	"github.com/dlovans/tagform/pkg/widget"
)

func main() {
	js.Global().Set("TagformEvaluate", js.FuncOf(tagformEvaluate))
	js.Global().Set("TagformQuery", js.FuncOf(tagformQuery))
	js.Global().Set("TagformLint", js.FuncOf(tagformLint))

	// Keep the Go runtime alive
	select {}
}

// tagformEvaluate is the JS-callable wrapper for condition.Run()
// Usage: TagformEvaluate(documentJSON) -> { result: object, error?: string }
func tagformEvaluate(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return makeError("TagformEvaluate requires 1 argument: documentJSON")
	}

	result, err := condition.Run(args[0].String())
	if err != nil {
		return makeError(err.Error())
	}
	return makeResult(result)
}

// tagformQuery builds query variables from widgets and a query form.
// widgetsJSON is a widget array or a {"widgets"|"records": [...]} document.
// Usage: TagformQuery(projectId, widgetsJSON, queryJSON) -> { result: object, error?: string }
func tagformQuery(this js.Value, args []js.Value) any {
	if len(args) < 3 {
		return makeError("TagformQuery requires 3 arguments: projectId, widgetsJSON, queryJSON")
	}

	widgets, err := decodeWidgets(args[1].String())
	if err != nil {
		return makeError("invalid widgets: " + err.Error())
	}
	var q filter.Query
	if err := json.Unmarshal([]byte(args[2].String()), &q); err != nil {
		return makeError("invalid query: " + err.Error())
	}

	filters := filter.FromWidgets(widgets)
	if q.EntriesFilterData != nil {
		if res := filter.Validate(filters, q.EntriesFilterData.FilterableData); res.Errored {
			return makeError(res.Error.Error())
		}
	}

	out, err := json.Marshal(filter.NewBuilder().QueryVariables(args[0].String(), q, filters))
	if err != nil {
		return makeError(err.Error())
	}
	return makeResult(string(out))
}

func decodeWidgets(text string) ([]widget.Widget, error) {
	var f widget.Framework
	if trimmed := strings.TrimSpace(text); strings.HasPrefix(trimmed, "[") {
		if err := json.Unmarshal([]byte(trimmed), &f.Widgets); err != nil {
			return nil, err
		}
	} else if err := json.Unmarshal([]byte(trimmed), &f); err != nil {
		return nil, err
	}
	return f.Resolve()
}

// tagformLint is the JS-callable wrapper for lint.Run()
// Usage: TagformLint(frameworkJSON) -> { result: object, error?: string }
func tagformLint(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return makeError("TagformLint requires 1 argument: frameworkJSON")
	}

	result, err := lint.Run(args[0].String())
	if err != nil {
		return makeError(err.Error())
	}
	out, err := json.Marshal(result)
	if err != nil {
		return makeError(err.Error())
	}
	return makeResult(string(out))
}

// makeError creates a JS-friendly error response
func makeError(msg string) map[string]any {
	return map[string]any{
		"error": msg,
	}
}

// makeResult creates a JS-friendly success response
func makeResult(jsonStr string) map[string]any {
	var result any
	if err := json.Unmarshal([]byte(jsonStr), &result); err != nil {
		return map[string]any{
			"result": jsonStr,
		}
	}

	return map[string]any{
		"result": result,
	}
}
