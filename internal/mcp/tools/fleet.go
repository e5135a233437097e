package tools

import (
	"context"
	"fmt"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/usestring/aoscx-mcp/internal/cache"
	"github.com/usestring/aoscx-mcp/internal/fleet"
	"github.com/usestring/aoscx-mcp/internal/query"
)

// FleetGetInput is the input for aoscx_fleet_get.
type FleetGetInput struct {
	Hosts       []string          `json:"hosts,omitempty" jsonschema:"Switches to query (default: ARUBAOS_CX_HOSTS)"`
	Path        string            `json:"path" jsonschema:"required,Resource path relative to /rest/{version}"`
	Depth       int               `json:"depth,omitempty" jsonschema:"Expansion depth for nested resources (1-4, default: 1)"`
	Attributes  []string          `json:"attributes,omitempty" jsonschema:"Only return these attributes"`
	Selector    string            `json:"selector,omitempty" jsonschema:"Attribute category: configuration, status, statistics or writable"`
	Query       map[string]string `json:"query,omitempty" jsonschema:"Additional query parameters"`
	Expression  string            `json:"expression,omitempty" jsonschema:"Optional JQ expression run on every host's response"`
	Deduplicate bool              `json:"deduplicate,omitempty" jsonschema:"Drop duplicate JQ values across hosts (default: false)"`
	NoCache     bool              `json:"no_cache,omitempty" jsonschema:"Bypass the response cache (default: false)"`
	MaxBytes    int               `json:"max_bytes,omitempty" jsonschema:"Max body bytes per host (default: TOOL_MAX_BYTES_DEFAULT divided across hosts)"`
	MaxResults  int               `json:"max_results,omitempty" jsonschema:"Max combined JQ results (default: 1000)"`
}

// FleetGetOutput is the output for aoscx_fleet_get.
type FleetGetOutput struct {
	Path        string            `json:"path"`
	Succeeded   int               `json:"succeeded"`
	Failed      int               `json:"failed"`
	Hosts       []FleetHostResult `json:"hosts,omitzero"`
	Values      []any             `json:"values,omitzero"`
	HostCounts  map[string]int    `json:"host_counts,omitempty"`
	QueryErrors []string          `json:"query_errors,omitempty"`
	Truncated   bool              `json:"truncated,omitempty"`
}

// FleetHostResult is one switch's part of a fleet read.
type FleetHostResult struct {
	Host       string `json:"host"`
	StatusCode int    `json:"status_code,omitempty"`
	Cached     bool   `json:"cached,omitempty"`
	Body       any    `json:"body,omitempty"`
	Truncated  bool   `json:"truncated,omitempty"`
	Error      string `json:"error,omitempty"`
	ErrorCode  string `json:"error_code,omitempty"`
	DurationMs int64  `json:"duration_ms"`
}

type fetched struct {
	resp   *cache.Response
	cached bool
}

// fetchFleet reads path on every host concurrently. Hosts answering non-2xx
// are reported as failures.
func (d *Deps) fetchFleet(ctx context.Context, hosts []string, path string, params GetParams, noCache bool) ([]fleet.Result[fetched], error) {
	values, err := params.Values()
	if err != nil {
		return nil, err
	}
	return fleet.Run(ctx, hosts, d.Config.FleetWorkers, func(ctx context.Context, host string) (fetched, error) {
		resp, cached, err := d.Fetch(ctx, host, path, values, noCache)
		if err != nil {
			return fetched{}, err
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return fetched{}, statusError(resp.StatusCode, resp.Body)
		}
		return fetched{resp: resp, cached: cached}, nil
	}), nil
}

// ToolFleetGet reads the same resource from many switches at once.
func ToolFleetGet(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input FleetGetInput) (*sdkmcp.CallToolResult, FleetGetOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input FleetGetInput) (*sdkmcp.CallToolResult, FleetGetOutput, error) {
		hosts, err := d.ResolveHosts(input.Hosts)
		if err != nil {
			return nil, FleetGetOutput{}, err
		}
		path, err := normalizePath(input.Path)
		if err != nil {
			return nil, FleetGetOutput{}, err
		}
		if input.Expression != "" {
			if err := d.Query.ValidateExpression(input.Expression); err != nil {
				return nil, FleetGetOutput{}, ErrInvalidInput(err.Error())
			}
		}

		params := GetParams{Depth: input.Depth, Attributes: input.Attributes, Selector: input.Selector, Query: input.Query}
		results, err := d.fetchFleet(ctx, hosts, path, params, input.NoCache)
		if err != nil {
			return nil, FleetGetOutput{}, err
		}

		maxBytes := input.MaxBytes
		if maxBytes <= 0 {
			maxBytes = d.Config.ToolMaxBytesDefault / len(hosts)
		}

		output := FleetGetOutput{
			Path:  path,
			Hosts: make([]FleetHostResult, 0, len(results)),
		}
		var inputs []query.Input
		for _, r := range results {
			hr := FleetHostResult{Host: r.Host, DurationMs: r.DurationMs}
			if r.Err != nil {
				hr.Error = r.Err.Error()
				hr.ErrorCode = ErrorCode(r.Err)
				output.Failed++
				output.Hosts = append(output.Hosts, hr)
				continue
			}

			output.Succeeded++
			hr.StatusCode = r.Value.resp.StatusCode
			hr.Cached = r.Value.cached
			if input.Expression != "" {
				inputs = append(inputs, query.Input{Label: r.Host, Data: r.Value.resp.Body})
			} else {
				hr.Body, hr.Truncated = decodeBody(r.Value.resp.Body, maxBytes)
			}
			output.Hosts = append(output.Hosts, hr)
		}

		if input.Expression != "" && len(inputs) > 0 {
			res, err := d.Query.QueryInputs(inputs, input.Expression, input.Deduplicate, d.maxResults(input.MaxResults))
			if err != nil {
				return nil, FleetGetOutput{}, ErrInvalidInput(fmt.Sprintf("invalid expression: %v", err))
			}
			output.Values = res.Values
			output.HostCounts = res.LabelCounts
			output.QueryErrors = res.Errors
			output.Truncated = res.Truncated
		}

		return nil, output, nil
	}
}
