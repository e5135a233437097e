package tools

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// AddTool registers a tool after checking its input and output types.
// It panics at registration time on problems the SDK would otherwise only
// report when the tool is first called.
func AddTool[In, Out any](srv *sdkmcp.Server, t *sdkmcp.Tool, h sdkmcp.ToolHandlerFor[In, Out]) {
	CheckInputSchema[In](t.Name)
	CheckOutputSchema[Out](t.Name)
	sdkmcp.AddTool(srv, t, h)
}

// CheckInputSchema panics when no JSON schema can be inferred for T, naming
// the tool. Struct tags the schema generator rejects are the usual cause.
func CheckInputSchema[T any](toolName string) {
	rt := derefType(reflect.TypeFor[T]())
	if rt == reflect.TypeFor[any]() {
		return
	}
	if _, err := jsonschema.ForType(rt, &jsonschema.ForOptions{}); err != nil {
		panic(fmt.Sprintf("AddTool %q: cannot infer input schema for %s: %v", toolName, rt, err))
	}
}

// CheckOutputSchema panics when the zero value of T does not satisfy the
// JSON schema the SDK infers for T.
//
// The usual offender is a slice field without omitzero: json.Marshal writes a
// nil slice as null while the schema says "array". A json.RawMessage field is
// rejected too, since the schema generator sees []byte (an array of integers)
// but the field marshals as arbitrary JSON.
func CheckOutputSchema[T any](toolName string) {
	rt := derefType(reflect.TypeFor[T]())
	if rt == reflect.TypeFor[any]() {
		return
	}

	if paths := findRawMessageFields(rt, nil, make(map[reflect.Type]bool)); len(paths) > 0 {
		panic(fmt.Sprintf(
			"AddTool %q: output type %s has json.RawMessage at %s\n"+
				"  Fix: declare the field as any and fill it with ToAny(value)",
			toolName, rt, strings.Join(paths, ", "),
		))
	}

	if err := validateZero(rt); err != nil {
		panic(fmt.Sprintf(
			"AddTool %q: zero value of output type %s fails schema validation: %v\n"+
				"  Fix: add `omitzero` to slice fields that may be nil, or initialize them",
			toolName, rt, err,
		))
	}
}

// validateZero checks the JSON encoding of rt's zero value against rt's
// inferred schema. Schema inference failures are left for the SDK to report.
func validateZero(rt reflect.Type) error {
	schema, err := jsonschema.ForType(rt, &jsonschema.ForOptions{})
	if err != nil {
		return nil
	}
	resolved, err := schema.Resolve(&jsonschema.ResolveOptions{})
	if err != nil {
		return nil
	}

	data, err := json.Marshal(reflect.Zero(rt).Interface())
	if err != nil {
		return nil
	}
	var v map[string]any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil
	}
	if err := resolved.Validate(&v); err != nil {
		return fmt.Errorf("%w (JSON: %s)", err, data)
	}
	return nil
}

func derefType(t reflect.Type) reflect.Type {
	if t.Kind() == reflect.Pointer {
		return t.Elem()
	}
	return t
}

var rawMessageType = reflect.TypeFor[json.RawMessage]()

// findRawMessageFields returns the paths of json.RawMessage fields reachable
// from t.
func findRawMessageFields(t reflect.Type, path []string, visited map[reflect.Type]bool) []string {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == rawMessageType {
		return []string{strings.Join(path, ".")}
	}
	if visited[t] {
		return nil
	}
	visited[t] = true
	defer delete(visited, t)

	var found []string
	switch t.Kind() {
	case reflect.Struct:
		for i := range t.NumField() {
			f := t.Field(i)
			if !f.IsExported() {
				continue
			}
			found = append(found, findRawMessageFields(f.Type, append(path, f.Name), visited)...)
		}
	case reflect.Slice, reflect.Array:
		found = append(found, findRawMessageFields(t.Elem(), append(path, "[]"), visited)...)
	case reflect.Map:
		found = append(found, findRawMessageFields(t.Elem(), append(path, "[value]"), visited)...)
	}
	return found
}
