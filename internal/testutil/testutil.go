// Package testutil builds slice document fixtures for tests.
package testutil

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

// Object describes one object usage entry of a fixture document.
type Object struct {
	Name   string
	Type   string
	Calls  []string
	ArgTos []string
}

// SliceDoc renders a slice document holding the given scopes.
func SliceDoc(t *testing.T, scopes map[string][]Object) string {
	t.Helper()

	objectSlices := make(map[string][]map[string]any, len(scopes))
	for scope, objs := range scopes {
		entries := make([]map[string]any, 0, len(objs))
		for _, o := range objs {
			invoked := make([]map[string]any, 0, len(o.Calls))
			for _, c := range o.Calls {
				invoked = append(invoked, map[string]any{"callName": c, "paramTypes": []any{}, "returnType": "ANY"})
			}
			argTos := make([]any, 0, len(o.ArgTos))
			for i, c := range o.ArgTos {
				argTos = append(argTos, []any{map[string]any{"callName": c, "paramTypes": []any{}, "returnType": "ANY"}, i + 1})
			}
			entries = append(entries, map[string]any{
				"targetObj":    map[string]any{"name": o.Name, "typeFullName": o.Type, "literal": false},
				"definedBy":    map[string]any{"name": o.Name},
				"invokedCalls": invoked,
				"argToCalls":   argTos,
			})
		}
		objectSlices[scope] = entries
	}

	data, err := json.Marshal(map[string]any{
		"objectSlices":     objectSlices,
		"userDefinedTypes": []any{},
	})
	if err != nil {
		t.Fatalf("marshal slice document: %v", err)
	}
	return string(data)
}

// WriteFile writes content to path, creating parent directories.
func WriteFile(t *testing.T, path, content string) {
	t.Helper()
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("MkdirAll(%s) error: %v", dir, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile(%s) error: %v", path, err)
	}
}

// WriteSliceDoc writes a rendered slice document to path.
func WriteSliceDoc(t *testing.T, path string, scopes map[string][]Object) {
	t.Helper()
	WriteFile(t, path, SliceDoc(t, scopes))
}

// CreateFileTree creates multiple files from a map of path -> content.
func CreateFileTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		WriteFile(t, filepath.Join(root, name), content)
	}
}
