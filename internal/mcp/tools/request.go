package tools

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/usestring/aoscx-mcp/internal/query"
	"github.com/usestring/aoscx-mcp/pkg/client"
)

// RequestInput is the input for aoscx_request.
type RequestInput struct {
	Host       string            `json:"host,omitempty" jsonschema:"Switch hostname or IP (default: ARUBAOS_CX_HOST)"`
	Method     string            `json:"method,omitempty" jsonschema:"HTTP method: GET, POST, PUT, PATCH or DELETE (default: GET)"`
	Path       string            `json:"path" jsonschema:"required,Resource path relative to /rest/{version}, e.g. /system/vlans"`
	Query      map[string]string `json:"query,omitempty" jsonschema:"Query parameters"`
	Body       string            `json:"body,omitempty" jsonschema:"JSON request body for POST, PUT or PATCH"`
	Expression string            `json:"expression,omitempty" jsonschema:"Optional JQ expression applied to a JSON response"`
	MaxBytes   int               `json:"max_bytes,omitempty" jsonschema:"Max response body bytes to return (default: TOOL_MAX_BYTES_DEFAULT)"`
	MaxResults int               `json:"max_results,omitempty" jsonschema:"Max JQ results to return (default: 1000)"`
}

// RequestOutput is the output for aoscx_request and aoscx_session_request.
type RequestOutput struct {
	Host        string   `json:"host"`
	Method      string   `json:"method"`
	Path        string   `json:"path"`
	StatusCode  int      `json:"status_code"`
	ContentType string   `json:"content_type,omitempty"`
	Body        any      `json:"body,omitempty"`
	BodyBytes   int      `json:"body_bytes"`
	Truncated   bool     `json:"truncated,omitempty"`
	Values      []any    `json:"values,omitzero"`
	QueryErrors []string `json:"query_errors,omitempty"`
	LogoutError string   `json:"logout_error,omitempty"`
	DurationMs  int64    `json:"duration_ms"`
	Hint        string   `json:"hint,omitempty"`
}

var allowedMethods = map[string]bool{
	http.MethodGet:    true,
	http.MethodPost:   true,
	http.MethodPut:    true,
	http.MethodPatch:  true,
	http.MethodDelete: true,
}

// ToolRequest sends one request inside its own login/logout pair.
func ToolRequest(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input RequestInput) (*sdkmcp.CallToolResult, RequestOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input RequestInput) (*sdkmcp.CallToolResult, RequestOutput, error) {
		host, err := d.ResolveHost(input.Host)
		if err != nil {
			return nil, RequestOutput{}, err
		}
		path, opts, err := d.buildRequest(input)
		if err != nil {
			return nil, RequestOutput{}, err
		}

		start := time.Now()
		resp, err := d.NewClient(host).RequestOnce(ctx, path, opts)
		if resp == nil {
			return nil, RequestOutput{}, WrapSwitchError(err)
		}

		output, readErr := d.renderResponse(resp, input)
		if readErr != nil {
			return nil, RequestOutput{}, readErr
		}
		output.Host = host
		output.Path = path
		output.Method = opts.Method
		output.DurationMs = time.Since(start).Milliseconds()
		if err != nil {
			output.LogoutError = err.Error()
		}
		return nil, output, nil
	}
}

// buildRequest validates the shared request input and converts it to SDK
// request options.
func (d *Deps) buildRequest(input RequestInput) (string, *client.RequestOptions, error) {
	path, err := normalizePath(input.Path)
	if err != nil {
		return "", nil, err
	}

	method := strings.ToUpper(input.Method)
	if method == "" {
		method = http.MethodGet
	}
	if !allowedMethods[method] {
		return "", nil, ErrInvalidInput(fmt.Sprintf("unsupported method %q", input.Method))
	}

	if input.Expression != "" {
		if err := d.Query.ValidateExpression(input.Expression); err != nil {
			return "", nil, ErrInvalidInput(err.Error())
		}
	}

	opts := &client.RequestOptions{Method: method}
	if len(input.Query) > 0 {
		opts.Query = url.Values{}
		for k, v := range input.Query {
			opts.Query.Set(k, v)
		}
	}
	if input.Body != "" {
		if method == http.MethodGet || method == http.MethodDelete {
			return "", nil, ErrInvalidInput(fmt.Sprintf("%s does not take a body", method))
		}
		opts.Body = strings.NewReader(input.Body)
		opts.Header = http.Header{"Content-Type": []string{MimeJSON}}
	}
	return path, opts, nil
}

// renderResponse reads and closes resp and fills the body and query fields.
func (d *Deps) renderResponse(resp *http.Response, input RequestInput) (RequestOutput, error) {
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return RequestOutput{}, WrapSwitchError(fmt.Errorf("reading response body: %w", err))
	}

	output := RequestOutput{
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		BodyBytes:   len(data),
	}
	output.Body, output.Truncated = decodeBody(data, d.maxBytes(input.MaxBytes))

	if input.Expression != "" && len(data) > 0 {
		output.Values, output.QueryErrors = d.runQuery(data, input.Expression, input.MaxResults)
		output.Body = nil
		output.Truncated = false
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		output.Hint = "The switch rejected the session. Check ARUBAOS_CX_USERNAME and ARUBAOS_CX_PASSWORD, or log in first with aoscx_session_login."
	case output.Truncated:
		output.Hint = "Body truncated. Narrow the request with depth/attributes query parameters or pass an expression to extract fields."
	}
	return output, nil
}

func (d *Deps) runQuery(data []byte, expression string, maxResults int) ([]any, []string) {
	res, err := d.Query.QueryInputs([]query.Input{{Label: "response", Data: data}}, expression, false, d.maxResults(maxResults))
	if err != nil {
		return nil, []string{err.Error()}
	}
	return res.Values, res.Errors
}
