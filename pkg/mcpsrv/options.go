package mcpsrv

import (
	"context"

	mcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/usestring/aoscx-mcp/internal/config"
	"github.com/usestring/aoscx-mcp/internal/mcp/tools"
	"github.com/usestring/aoscx-mcp/pkg/client"
)

// serverConfig holds configuration built from options.
type serverConfig struct {
	config     *config.Config
	httpClient client.Doer

	// Logging overrides
	logLevel string
	logFile  string

	disableBuiltinTools bool

	// Custom tools, prompts and resources
	registrations []func(*mcp.Server)

	// Deferred tool registrations that need access to Deps
	deferredToolRegistrations []func(*mcp.Server, *Deps)
}

// Option configures the server.
type Option func(*serverConfig)

// WithConfig replaces the environment-derived configuration.
func WithConfig(cfg *config.Config) Option {
	return func(sc *serverConfig) {
		sc.config = cfg
	}
}

// WithLogLevel sets the log level (debug, info, warn, error).
func WithLogLevel(level string) Option {
	return func(cfg *serverConfig) {
		cfg.logLevel = level
	}
}

// WithLogFile sets the log file path.
// If empty, logs are written to stderr only.
func WithLogFile(path string) Option {
	return func(cfg *serverConfig) {
		cfg.logFile = path
	}
}

// WithHTTPClient sets the transport used to reach switches. By default
// client.DefaultHTTPClient is built from HTTP_CLIENT_TIMEOUT_MS and
// ARUBAOS_CX_INSECURE.
func WithHTTPClient(c client.Doer) Option {
	return func(cfg *serverConfig) {
		cfg.httpClient = c
	}
}

// WithoutBuiltinTools disables all builtin aoscx tools and resources.
// Use this if you want to register only your own tools.
func WithoutBuiltinTools() Option {
	return func(cfg *serverConfig) {
		cfg.disableBuiltinTools = true
	}
}

// AddTool registers a tool with the server after checking that the zero value
// of Out passes the JSON schema the SDK infers for it. It panics otherwise,
// naming the field to fix. Use this instead of [mcp.AddTool].
func AddTool[In, Out any](srv *mcp.Server, t *mcp.Tool, h mcp.ToolHandlerFor[In, Out]) {
	tools.AddTool(srv, t, h)
}

// WithTool registers a custom tool with the server.
//
// The handler signature must match the MCP SDK pattern:
//
//	func(ctx context.Context, req *mcp.CallToolRequest, input T) (*mcp.CallToolResult, Out, error)
//
// Example:
//
//	type UptimeInput struct {
//	    Host string `json:"host"`
//	}
//
//	type UptimeOutput struct {
//	    Seconds int64 `json:"seconds"`
//	}
//
//	mcpsrv.WithTool(&mcp.Tool{Name: "uptime", Description: "Switch uptime"}, uptimeHandler)
func WithTool[In, Out any](tool *mcp.Tool, handler func(context.Context, *mcp.CallToolRequest, In) (*mcp.CallToolResult, Out, error)) Option {
	return func(cfg *serverConfig) {
		cfg.registrations = append(cfg.registrations, func(srv *mcp.Server) {
			AddTool(srv, tool, handler)
		})
	}
}

// WithDepsTool registers a custom tool that has access to Deps.
// Use this when your tool needs the switch credentials, cache or session.
//
// Example:
//
//	mcpsrv.WithDepsTool(
//	    &mcp.Tool{Name: "vlan_names", Description: "VLAN names of a switch"},
//	    func(d *mcpsrv.Deps) func(ctx context.Context, req *mcp.CallToolRequest, input HostInput) (*mcp.CallToolResult, NamesOutput, error) {
//	        return func(ctx context.Context, req *mcp.CallToolRequest, input HostInput) (*mcp.CallToolResult, NamesOutput, error) {
//	            resp, err := d.Get(ctx, input.Host, "/system/vlans", url.Values{"depth": {"2"}})
//	            ...
//	        }
//	    },
//	)
func WithDepsTool[In, Out any](tool *mcp.Tool, builder func(*Deps) func(context.Context, *mcp.CallToolRequest, In) (*mcp.CallToolResult, Out, error)) Option {
	return func(cfg *serverConfig) {
		cfg.deferredToolRegistrations = append(cfg.deferredToolRegistrations, func(srv *mcp.Server, deps *Deps) {
			AddTool(srv, tool, builder(deps))
		})
	}
}

// WithPrompt registers a custom prompt with the server.
func WithPrompt(prompt *mcp.Prompt, handler func(context.Context, *mcp.GetPromptRequest) (*mcp.GetPromptResult, error)) Option {
	return func(cfg *serverConfig) {
		cfg.registrations = append(cfg.registrations, func(srv *mcp.Server) {
			srv.AddPrompt(prompt, handler)
		})
	}
}

// WithResourceTemplate registers a custom resource template with the server.
func WithResourceTemplate(template *mcp.ResourceTemplate, handler func(context.Context, *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error)) Option {
	return func(cfg *serverConfig) {
		cfg.registrations = append(cfg.registrations, func(srv *mcp.Server) {
			srv.AddResourceTemplate(template, handler)
		})
	}
}
