package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// readInput reads path, or stdin when path is empty, and decodes it into v.
// YAML files are converted to JSON first so v's json tags apply.
func readInput(in io.Reader, path string, v any) error {
	var (
		data []byte
		err  error
	)
	if path != "" {
		data, err = os.ReadFile(path)
	} else {
		data, err = io.ReadAll(in)
	}
	if err != nil {
		return fmt.Errorf("error reading input: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = yamlToJSON(data)
		if err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
	}

	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parse input: %w", err)
	}
	return nil
}

func yamlToJSON(data []byte) ([]byte, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return json.Marshal(stringKeys(doc))
}

// stringKeys rewrites maps with non-string keys, such as widget ids written
// as bare numbers, into JSON objects.
func stringKeys(v any) any {
	switch x := v.(type) {
	case map[string]any:
		for k, member := range x {
			x[k] = stringKeys(member)
		}
		return x
	case map[any]any:
		out := make(map[string]any, len(x))
		for k, member := range x {
			out[fmt.Sprint(k)] = stringKeys(member)
		}
		return out
	case []any:
		for i, member := range x {
			x[i] = stringKeys(member)
		}
		return x
	default:
		return v
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
