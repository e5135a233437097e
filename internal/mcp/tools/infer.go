package tools

import (
	"context"
	"fmt"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/usestring/aoscx-mcp/pkg/jsonschema"
)

// InferSchemaInput is the input for aoscx_infer_schema.
type InferSchemaInput struct {
	Hosts              []string `json:"hosts,omitempty" jsonschema:"Switches to sample (default: ARUBAOS_CX_HOST). Several hosts give a schema that fits the whole fleet."`
	Path               string   `json:"path" jsonschema:"required,Resource path relative to /rest/{version}"`
	Depth              int      `json:"depth,omitempty" jsonschema:"Expansion depth for nested resources (1-4, default: 1)"`
	Selector           string   `json:"selector,omitempty" jsonschema:"Attribute category: configuration, status, statistics or writable"`
	KeepCollectionKeys bool     `json:"keep_collection_keys,omitempty" jsonschema:"List every instance of name-keyed collections as a property instead of collapsing them (default: false)"`
}

// InferSchemaOutput is the output for aoscx_infer_schema.
type InferSchemaOutput struct {
	Path        string      `json:"path"`
	Schema      any         `json:"schema"`
	SampleCount int         `json:"sample_count"`
	Skipped     int         `json:"skipped,omitempty"`
	AllMatch    bool        `json:"all_match"`
	Errors      []HostError `json:"errors,omitempty"`
	Hint        string      `json:"hint,omitempty"`
}

// HostError is a per-host failure in a multi-host tool.
type HostError struct {
	Host  string `json:"host"`
	Code  string `json:"code"`
	Error string `json:"error"`
}

// ToolInferSchema infers a JSON Schema for a resource from one or more switches.
func ToolInferSchema(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input InferSchemaInput) (*sdkmcp.CallToolResult, InferSchemaOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input InferSchemaInput) (*sdkmcp.CallToolResult, InferSchemaOutput, error) {
		hosts := input.Hosts
		if len(hosts) == 0 {
			host, err := d.ResolveHost("")
			if err != nil {
				return nil, InferSchemaOutput{}, err
			}
			hosts = []string{host}
		}
		path, err := normalizePath(input.Path)
		if err != nil {
			return nil, InferSchemaOutput{}, err
		}

		results, err := d.fetchFleet(ctx, hosts, path, GetParams{Depth: input.Depth, Selector: input.Selector}, false)
		if err != nil {
			return nil, InferSchemaOutput{}, err
		}

		var samples [][]byte
		var hostErrors []HostError
		for _, r := range results {
			if r.Err != nil {
				hostErrors = append(hostErrors, HostError{Host: r.Host, Code: ErrorCode(r.Err), Error: r.Err.Error()})
				continue
			}
			samples = append(samples, r.Value.resp.Body)
		}
		if len(samples) == 0 {
			if len(results) == 1 {
				return nil, InferSchemaOutput{}, WrapSwitchError(results[0].Err)
			}
			return nil, InferSchemaOutput{}, &CodedError{
				Code:    ErrCodeSwitchError,
				Message: fmt.Sprintf("no host returned %s", path),
				Cause:   results[0].Err,
			}
		}

		opts := jsonschema.DefaultInferOptions()
		opts.CollapseCollections = !input.KeepCollectionKeys
		inferred, err := jsonschema.InferWithOptions(opts, samples...)
		if err != nil {
			return nil, InferSchemaOutput{}, fmt.Errorf("schema inference failed: %w", err)
		}
		if inferred == nil {
			return nil, InferSchemaOutput{}, ErrInvalidInput(fmt.Sprintf("%s did not return JSON", path))
		}

		schema, err := ToAny(inferred.Schema)
		if err != nil {
			return nil, InferSchemaOutput{}, fmt.Errorf("serializing schema: %w", err)
		}

		return nil, InferSchemaOutput{
			Path:        path,
			Schema:      schema,
			SampleCount: inferred.SampleCount,
			Skipped:     inferred.Skipped,
			AllMatch:    inferred.AllMatch,
			Errors:      hostErrors,
			Hint:        fmt.Sprintf("Pass this schema to aoscx_validate(path=%q, schema=...) to check other switches against it.", path),
		}, nil
	}
}
