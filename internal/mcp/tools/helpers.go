// Package tools contains MCP tool implementations for ArubaOS-CX switches.
package tools

import (
	"encoding/json"
	"net/url"
	"strconv"
	"strings"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// MIME type constant.
const MimeJSON = "application/json"

// MakeJSONToolResult creates a CallToolResult with JSON text content.
func MakeJSONToolResult(v any) (*sdkmcp.CallToolResult, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}

	return &sdkmcp.CallToolResult{
		Content: []sdkmcp.Content{
			&sdkmcp.TextContent{Text: string(b)},
		},
	}, nil
}

// ToAny round-trips v through JSON so typed values (schemas, SDK structs)
// can be placed in `any` output fields.
func ToAny(v any) (any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// normalizePath validates a REST path relative to /rest/{version}.
func normalizePath(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", ErrInvalidInput("path is required")
	}
	if strings.Contains(path, "://") {
		return "", ErrInvalidInput("path must be relative to /rest/{version}, not a full URL")
	}
	if strings.HasPrefix(path, "/rest/") {
		return "", ErrInvalidInput("path must not include the /rest/{version} prefix")
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return path, nil
}

// GetParams are the ArubaOS-CX GET query parameters shared by read tools.
type GetParams struct {
	Depth      int
	Attributes []string
	Selector   string
	Query      map[string]string
}

// Values encodes the parameters as a URL query.
func (p GetParams) Values() (url.Values, error) {
	v := url.Values{}
	for k, val := range p.Query {
		v.Set(k, val)
	}
	if p.Depth < 0 || p.Depth > 4 {
		return nil, ErrInvalidInput("depth must be between 1 and 4")
	}
	if p.Depth > 0 {
		v.Set("depth", strconv.Itoa(p.Depth))
	}
	if len(p.Attributes) > 0 {
		v.Set("attributes", strings.Join(p.Attributes, ","))
	}
	switch p.Selector {
	case "":
	case "configuration", "status", "statistics", "writable":
		v.Set("selector", p.Selector)
	default:
		return nil, ErrInvalidInput("selector must be configuration, status, statistics or writable")
	}
	if len(v) == 0 {
		return nil, nil
	}
	return v, nil
}

// decodeBody renders a response body for tool output: parsed JSON when
// it is valid and within maxBytes, otherwise text cut at maxBytes.
func decodeBody(data []byte, maxBytes int) (body any, truncated bool) {
	if len(data) == 0 {
		return nil, false
	}
	if maxBytes > 0 && len(data) > maxBytes {
		return string(data[:maxBytes]), true
	}
	var v any
	if err := json.Unmarshal(data, &v); err == nil {
		return v, false
	}
	return string(data), false
}

func truncateString(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

func (d *Deps) maxBytes(requested int) int {
	if requested > 0 {
		return requested
	}
	return d.Config.ToolMaxBytesDefault
}

func (d *Deps) maxResults(requested int) int {
	if requested > 0 {
		return requested
	}
	return d.Config.DefaultQueryLimit
}
