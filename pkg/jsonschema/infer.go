// Package jsonschema infers JSON Schemas (Draft 2020-12) from switch REST
// responses.
//
// ArubaOS-CX returns collections as objects keyed by instance name
// ({"1/1/1": {...}, "1/1/2": {...}}) rather than arrays. Inference detects
// such collections and describes them with additionalProperties, so the
// schema of /system/interfaces does not list every port as a property.
package jsonschema

import (
	"encoding/json"
	"math"
	"sort"
	"strings"

	"github.com/invopop/jsonschema"
)

// InferredSchema contains a JSON Schema inferred from sample data along with metadata.
type InferredSchema struct {
	Schema      *jsonschema.Schema `json:"schema"`       // JSON Schema (Draft 2020-12)
	SampleCount int                `json:"sample_count"` // Number of samples used
	Skipped     int                `json:"skipped"`      // Samples that were not valid JSON
	AllMatch    bool               `json:"all_match"`    // True if all samples had identical schema
}

// InferOptions controls schema inference behavior.
type InferOptions struct {
	// StrictRequired marks an object property required when it is present
	// and non-null in every sample.
	StrictRequired bool
	// CollapseCollections describes name-keyed collections with
	// additionalProperties instead of one property per instance.
	CollapseCollections bool
	// MinCollectionKeys is the smallest object treated as a collection.
	MinCollectionKeys int
}

// DefaultInferOptions returns the default inference options.
func DefaultInferOptions() *InferOptions {
	return &InferOptions{
		StrictRequired:      true,
		CollapseCollections: true,
		MinCollectionKeys:   2,
	}
}

// Infer generates a JSON Schema from one or more JSON byte samples.
// Returns a merged schema if multiple samples are provided, or nil when no
// sample parses.
func Infer(samples ...[]byte) (*InferredSchema, error) {
	return InferWithOptions(DefaultInferOptions(), samples...)
}

// InferWithOptions generates a JSON Schema with custom options.
func InferWithOptions(opts *InferOptions, samples ...[]byte) (*InferredSchema, error) {
	if opts == nil {
		opts = DefaultInferOptions()
	}

	parsed := make([]any, 0, len(samples))
	skipped := 0
	for _, data := range samples {
		var v any
		if err := json.Unmarshal(data, &v); err != nil {
			skipped++
			continue
		}
		parsed = append(parsed, v)
	}
	if len(parsed) == 0 {
		return nil, nil
	}

	inf := &inferer{opts: opts}
	schemas := make([]*jsonschema.Schema, 0, len(parsed))
	for _, v := range parsed {
		schemas = append(schemas, inf.fromValue(v))
	}

	allMatch := true
	first, _ := json.Marshal(schemas[0])
	for _, s := range schemas[1:] {
		other, _ := json.Marshal(s)
		if string(first) != string(other) {
			allMatch = false
			break
		}
	}

	merged := mergeSchemas(schemas)
	if opts.StrictRequired {
		markRequired(merged, parsed)
	}

	return &InferredSchema{
		Schema:      merged,
		SampleCount: len(parsed),
		Skipped:     skipped,
		AllMatch:    allMatch,
	}, nil
}

type inferer struct {
	opts *InferOptions
}

func (inf *inferer) fromValue(v any) *jsonschema.Schema {
	switch val := v.(type) {
	case nil:
		return &jsonschema.Schema{Type: "null"}
	case bool:
		return &jsonschema.Schema{Type: "boolean"}
	case float64:
		// encoding/json decodes every number as float64
		if math.Trunc(val) == val && !math.IsInf(val, 0) {
			return &jsonschema.Schema{Type: "integer"}
		}
		return &jsonschema.Schema{Type: "number"}
	case string:
		return &jsonschema.Schema{Type: "string"}
	case []any:
		schema := &jsonschema.Schema{Type: "array"}
		if len(val) > 0 {
			items := make([]*jsonschema.Schema, 0, len(val))
			for _, item := range val {
				items = append(items, inf.fromValue(item))
			}
			schema.Items = mergeSchemas(items)
		}
		return schema
	case map[string]any:
		return inf.object(val)
	default:
		return &jsonschema.Schema{}
	}
}

func (inf *inferer) object(obj map[string]any) *jsonschema.Schema {
	if inf.opts.CollapseCollections && inf.isCollection(obj) {
		values := make([]*jsonschema.Schema, 0, len(obj))
		for _, k := range sortedKeys(obj) {
			values = append(values, inf.fromValue(obj[k]))
		}
		return &jsonschema.Schema{
			Type:                 "object",
			AdditionalProperties: mergeSchemas(values),
		}
	}

	schema := &jsonschema.Schema{
		Type:       "object",
		Properties: jsonschema.NewProperties(),
	}
	for _, k := range sortedKeys(obj) {
		schema.Properties.Set(k, inf.fromValue(obj[k]))
	}
	return schema
}

// isCollection reports whether obj looks like a name-keyed collection:
// every value is a REST URI (depth 1) or every value is an object with the
// same key set (depth 2 and deeper).
func (inf *inferer) isCollection(obj map[string]any) bool {
	if len(obj) < inf.opts.MinCollectionKeys {
		return false
	}

	allURIs, allObjects := true, true
	var shape string
	seenShape := false
	for _, v := range obj {
		switch val := v.(type) {
		case string:
			allObjects = false
			if !strings.HasPrefix(val, "/rest/") {
				allURIs = false
			}
		case map[string]any:
			allURIs = false
			keys := strings.Join(sortedKeys(val), ",")
			if !seenShape {
				shape, seenShape = keys, true
			} else if keys != shape {
				allObjects = false
			}
		default:
			return false
		}
		if !allURIs && !allObjects {
			return false
		}
	}
	return allURIs || (allObjects && shape != "")
}

func mergeSchemas(schemas []*jsonschema.Schema) *jsonschema.Schema {
	switch len(schemas) {
	case 0:
		return &jsonschema.Schema{}
	case 1:
		return schemas[0]
	}

	byType := make(map[string][]*jsonschema.Schema)
	for _, s := range schemas {
		if s.Type == "" {
			continue
		}
		byType[s.Type] = append(byType[s.Type], s)
	}
	// integer widens to number
	if len(byType["integer"]) > 0 && len(byType["number"]) > 0 {
		byType["number"] = append(byType["number"], byType["integer"]...)
		delete(byType, "integer")
	}

	types := make([]string, 0, len(byType))
	for t := range byType {
		types = append(types, t)
	}
	sort.Strings(types)

	variants := make([]*jsonschema.Schema, 0, len(types))
	for _, t := range types {
		switch t {
		case "object":
			variants = append(variants, mergeObjects(byType[t]))
		case "array":
			variants = append(variants, mergeArrays(byType[t]))
		default:
			variants = append(variants, &jsonschema.Schema{Type: t})
		}
	}

	if len(variants) == 0 {
		return &jsonschema.Schema{}
	}
	if len(variants) == 1 {
		return variants[0]
	}
	return &jsonschema.Schema{AnyOf: variants}
}

func mergeObjects(schemas []*jsonschema.Schema) *jsonschema.Schema {
	if len(schemas) == 1 {
		return schemas[0]
	}

	props := make(map[string][]*jsonschema.Schema)
	var extra []*jsonschema.Schema
	for _, s := range schemas {
		if s.AdditionalProperties != nil {
			extra = append(extra, s.AdditionalProperties)
		}
		if s.Properties == nil {
			continue
		}
		for pair := s.Properties.Oldest(); pair != nil; pair = pair.Next() {
			props[pair.Key] = append(props[pair.Key], pair.Value)
		}
	}

	merged := &jsonschema.Schema{Type: "object"}
	if len(props) > 0 {
		merged.Properties = jsonschema.NewProperties()
		keys := make([]string, 0, len(props))
		for k := range props {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			merged.Properties.Set(k, mergeSchemas(props[k]))
		}
	}
	if len(extra) > 0 {
		merged.AdditionalProperties = mergeSchemas(extra)
	}
	return merged
}

func mergeArrays(schemas []*jsonschema.Schema) *jsonschema.Schema {
	if len(schemas) == 1 {
		return schemas[0]
	}
	items := make([]*jsonschema.Schema, 0, len(schemas))
	for _, s := range schemas {
		if s.Items != nil {
			items = append(items, s.Items)
		}
	}
	merged := &jsonschema.Schema{Type: "array"}
	if len(items) > 0 {
		merged.Items = mergeSchemas(items)
	}
	return merged
}

// markRequired marks properties present and non-null in every sample as
// required, recursing into nested objects, array items and collection values.
func markRequired(schema *jsonschema.Schema, samples []any) {
	if schema == nil || len(samples) == 0 {
		return
	}

	switch schema.Type {
	case "object":
		objs := make([]map[string]any, 0, len(samples))
		for _, s := range samples {
			if obj, ok := s.(map[string]any); ok {
				objs = append(objs, obj)
			}
		}
		if len(objs) == 0 {
			return
		}

		if schema.AdditionalProperties != nil {
			var values []any
			for _, obj := range objs {
				for _, v := range obj {
					values = append(values, v)
				}
			}
			markRequired(schema.AdditionalProperties, values)
		}

		if schema.Properties == nil {
			return
		}
		var required []string
		for pair := schema.Properties.Oldest(); pair != nil; pair = pair.Next() {
			present := 0
			var nested []any
			for _, obj := range objs {
				if v, ok := obj[pair.Key]; ok && v != nil {
					present++
					nested = append(nested, v)
				}
			}
			if present == len(objs) {
				required = append(required, pair.Key)
			}
			markRequired(pair.Value, nested)
		}
		sort.Strings(required)
		if len(required) > 0 {
			schema.Required = required
		}

	case "array":
		var items []any
		for _, s := range samples {
			if arr, ok := s.([]any); ok {
				items = append(items, arr...)
			}
		}
		markRequired(schema.Items, items)
	}
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
