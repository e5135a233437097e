package tools

import (
	"context"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// GetInput is the input for aoscx_get.
type GetInput struct {
	Host       string            `json:"host,omitempty" jsonschema:"Switch hostname or IP (default: ARUBAOS_CX_HOST)"`
	Path       string            `json:"path" jsonschema:"required,Resource path relative to /rest/{version}, e.g. /system/interfaces"`
	Depth      int               `json:"depth,omitempty" jsonschema:"Expansion depth for nested resources (1-4, default: 1)"`
	Attributes []string          `json:"attributes,omitempty" jsonschema:"Only return these attributes"`
	Selector   string            `json:"selector,omitempty" jsonschema:"Attribute category: configuration, status, statistics or writable"`
	Query      map[string]string `json:"query,omitempty" jsonschema:"Additional query parameters"`
	Expression string            `json:"expression,omitempty" jsonschema:"Optional JQ expression, e.g. 'to_entries | map({name: .key, admin: .value.admin_state})'"`
	NoCache    bool              `json:"no_cache,omitempty" jsonschema:"Bypass the response cache (default: false)"`
	MaxBytes   int               `json:"max_bytes,omitempty" jsonschema:"Max response body bytes to return (default: TOOL_MAX_BYTES_DEFAULT)"`
	MaxResults int               `json:"max_results,omitempty" jsonschema:"Max JQ results to return (default: 1000)"`
}

// GetOutput is the output for aoscx_get.
type GetOutput struct {
	Host        string   `json:"host"`
	Path        string   `json:"path"`
	StatusCode  int      `json:"status_code"`
	Cached      bool     `json:"cached"`
	FetchedAt   string   `json:"fetched_at"`
	Body        any      `json:"body,omitempty"`
	BodyBytes   int      `json:"body_bytes"`
	Truncated   bool     `json:"truncated,omitempty"`
	Values      []any    `json:"values,omitzero"`
	QueryErrors []string `json:"query_errors,omitempty"`
	Hint        string   `json:"hint,omitempty"`
}

func (in GetInput) params() GetParams {
	return GetParams{Depth: in.Depth, Attributes: in.Attributes, Selector: in.Selector, Query: in.Query}
}

// ToolGet reads a resource with a single-shot session, caching successful
// responses briefly so repeated reads do not log in again.
func ToolGet(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input GetInput) (*sdkmcp.CallToolResult, GetOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input GetInput) (*sdkmcp.CallToolResult, GetOutput, error) {
		host, err := d.ResolveHost(input.Host)
		if err != nil {
			return nil, GetOutput{}, err
		}
		path, err := normalizePath(input.Path)
		if err != nil {
			return nil, GetOutput{}, err
		}
		params, err := input.params().Values()
		if err != nil {
			return nil, GetOutput{}, err
		}
		if input.Expression != "" {
			if err := d.Query.ValidateExpression(input.Expression); err != nil {
				return nil, GetOutput{}, ErrInvalidInput(err.Error())
			}
		}

		resp, cached, err := d.Fetch(ctx, host, path, params, input.NoCache)
		if err != nil {
			return nil, GetOutput{}, WrapSwitchError(err)
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, GetOutput{}, WrapSwitchError(statusError(resp.StatusCode, resp.Body))
		}

		output := GetOutput{
			Host:       host,
			Path:       path,
			StatusCode: resp.StatusCode,
			Cached:     cached,
			FetchedAt:  resp.FetchedAt.UTC().Format(time.RFC3339),
			BodyBytes:  len(resp.Body),
		}

		if input.Expression != "" {
			output.Values, output.QueryErrors = d.runQuery(resp.Body, input.Expression, input.MaxResults)
			return nil, output, nil
		}

		output.Body, output.Truncated = decodeBody(resp.Body, d.maxBytes(input.MaxBytes))
		if output.Truncated {
			output.Hint = "Body truncated. Lower depth, select attributes, or pass an expression to extract fields."
		}
		return nil, output, nil
	}
}
