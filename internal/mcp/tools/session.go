package tools

import (
	"context"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// SessionStatusInput is the input for aoscx_session_status.
type SessionStatusInput struct{}

// SessionStatusOutput describes the persistent session.
type SessionStatusOutput struct {
	Host          string `json:"host"`
	BaseURL       string `json:"base_url"`
	Username      string `json:"username"`
	Authenticated bool   `json:"authenticated"`
	Message       string `json:"message,omitempty"`
}

// SessionRequestInput is the input for aoscx_session_request.
type SessionRequestInput struct {
	Method     string            `json:"method,omitempty" jsonschema:"HTTP method: GET, POST, PUT, PATCH or DELETE (default: GET)"`
	Path       string            `json:"path" jsonschema:"required,Resource path relative to /rest/{version}"`
	Query      map[string]string `json:"query,omitempty" jsonschema:"Query parameters"`
	Body       string            `json:"body,omitempty" jsonschema:"JSON request body for POST, PUT or PATCH"`
	Expression string            `json:"expression,omitempty" jsonschema:"Optional JQ expression applied to a JSON response"`
	MaxBytes   int               `json:"max_bytes,omitempty" jsonschema:"Max response body bytes to return (default: TOOL_MAX_BYTES_DEFAULT)"`
	MaxResults int               `json:"max_results,omitempty" jsonschema:"Max JQ results to return (default: 1000)"`
}

func (d *Deps) sessionStatus(message string) SessionStatusOutput {
	return SessionStatusOutput{
		Host:          d.Config.Host,
		BaseURL:       d.Session.BaseURL(),
		Username:      d.Session.Username(),
		Authenticated: d.Session.Authenticated(),
		Message:       message,
	}
}

func (d *Deps) requireSession() error {
	if d.Session == nil {
		return ErrInvalidInput("persistent sessions need a default switch: set ARUBAOS_CX_HOST")
	}
	return nil
}

// ToolSessionLogin opens the persistent session on the default switch.
// An open session is kept rather than replaced.
func ToolSessionLogin(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input SessionStatusInput) (*sdkmcp.CallToolResult, SessionStatusOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input SessionStatusInput) (*sdkmcp.CallToolResult, SessionStatusOutput, error) {
		if err := d.requireSession(); err != nil {
			return nil, SessionStatusOutput{}, err
		}
		d.sessionMu.Lock()
		defer d.sessionMu.Unlock()
		if d.Session.Authenticated() {
			return nil, d.sessionStatus("already authenticated; call aoscx_session_logout first to start a new session"), nil
		}
		if err := d.Session.Login(ctx); err != nil {
			return nil, SessionStatusOutput{}, WrapSwitchError(err)
		}
		return nil, d.sessionStatus("logged in"), nil
	}
}

// ToolSessionLogout ends the persistent session. The session is forgotten
// locally even when the switch rejects the logout.
func ToolSessionLogout(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input SessionStatusInput) (*sdkmcp.CallToolResult, SessionStatusOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input SessionStatusInput) (*sdkmcp.CallToolResult, SessionStatusOutput, error) {
		if err := d.requireSession(); err != nil {
			return nil, SessionStatusOutput{}, err
		}
		d.sessionMu.Lock()
		defer d.sessionMu.Unlock()
		if !d.Session.Authenticated() {
			return nil, SessionStatusOutput{}, ErrInvalidInput("no active session")
		}
		if err := d.Session.Logout(ctx); err != nil {
			return nil, SessionStatusOutput{}, WrapSwitchError(err)
		}
		return nil, d.sessionStatus("logged out"), nil
	}
}

// CloseSession logs out of the persistent session if one is open.
func (d *Deps) CloseSession(ctx context.Context) error {
	if d.Session == nil {
		return nil
	}
	d.sessionMu.Lock()
	defer d.sessionMu.Unlock()
	if !d.Session.Authenticated() {
		return nil
	}
	return d.Session.Logout(ctx)
}

// ToolSessionStatus reports whether the persistent session is open.
func ToolSessionStatus(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input SessionStatusInput) (*sdkmcp.CallToolResult, SessionStatusOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input SessionStatusInput) (*sdkmcp.CallToolResult, SessionStatusOutput, error) {
		if err := d.requireSession(); err != nil {
			return nil, SessionStatusOutput{}, err
		}
		return nil, d.sessionStatus(""), nil
	}
}

// ToolSessionRequest sends a request on the persistent session. Without a
// session the request goes out unauthenticated and the switch decides.
func ToolSessionRequest(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input SessionRequestInput) (*sdkmcp.CallToolResult, RequestOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input SessionRequestInput) (*sdkmcp.CallToolResult, RequestOutput, error) {
		if err := d.requireSession(); err != nil {
			return nil, RequestOutput{}, err
		}

		in := RequestInput{
			Host:       d.Config.Host,
			Method:     input.Method,
			Path:       input.Path,
			Query:      input.Query,
			Body:       input.Body,
			Expression: input.Expression,
			MaxBytes:   input.MaxBytes,
			MaxResults: input.MaxResults,
		}
		path, opts, err := d.buildRequest(in)
		if err != nil {
			return nil, RequestOutput{}, err
		}

		start := time.Now()
		resp, err := d.Session.Do(ctx, path, opts)
		if err != nil {
			return nil, RequestOutput{}, WrapSwitchError(err)
		}

		output, err := d.renderResponse(resp, in)
		if err != nil {
			return nil, RequestOutput{}, err
		}
		output.Host = d.Config.Host
		output.Path = path
		output.Method = opts.Method
		output.DurationMs = time.Since(start).Milliseconds()
		if !d.Session.Authenticated() && output.Hint == "" {
			output.Hint = "Sent without a session cookie. Call aoscx_session_login first for authenticated requests."
		}
		return nil, output, nil
	}
}
