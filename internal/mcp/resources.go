package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/usestring/aoscx-mcp/internal/mcp/tools"
)

// Resource URI scheme: aoscx://
// Supported URIs:
//   aoscx://{host}/system
//   aoscx://{host}/session

const uriScheme = "aoscx://"

func (s *Server) registerResources() {
	s.mcpServer.AddResourceTemplate(&sdkmcp.ResourceTemplate{
		URITemplate: "aoscx://{host}/system",
		Name:        "Switch System",
		Description: "Hostname, platform, software version, uptime and firmware of a switch. Same data as the aoscx_system tool; each read logs in and out once.",
		MIMEType:    tools.MimeJSON,
		Annotations: &sdkmcp.Annotations{
			Audience: []sdkmcp.Role{"assistant"},
			Priority: 0.6,
		},
	}, s.handleResourceSystem)

	s.mcpServer.AddResourceTemplate(&sdkmcp.ResourceTemplate{
		URITemplate: "aoscx://{host}/session",
		Name:        "Persistent Session",
		Description: "State of the persistent session on the default switch. No network I/O.",
		MIMEType:    tools.MimeJSON,
		Annotations: &sdkmcp.Annotations{
			Audience: []sdkmcp.Role{"assistant"},
			Priority: 0.3,
		},
	}, s.handleResourceSession)
}

func (s *Server) handleResourceSystem(ctx context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
	host, kind, err := parseResourceURI(req.Params.URI)
	if err != nil {
		return nil, err
	}
	if kind != "system" {
		return nil, sdkmcp.ResourceNotFoundError(req.Params.URI)
	}

	summary, err := s.deps.ReadSystem(ctx, host)
	if err != nil {
		return nil, tools.WrapSwitchError(err)
	}
	return toResourceResult(req.Params.URI, summary)
}

func (s *Server) handleResourceSession(ctx context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
	host, kind, err := parseResourceURI(req.Params.URI)
	if err != nil {
		return nil, err
	}
	if kind != "session" || s.deps.Session == nil || host != s.deps.Config.Host {
		return nil, sdkmcp.ResourceNotFoundError(req.Params.URI)
	}

	return toResourceResult(req.Params.URI, map[string]any{
		"host":          host,
		"base_url":      s.deps.Session.BaseURL(),
		"username":      s.deps.Session.Username(),
		"authenticated": s.deps.Session.Authenticated(),
	})
}

// closeSession logs out of the persistent session if one is open.
func (s *Server) closeSession() {
	if err := s.deps.CloseSession(context.Background()); err != nil {
		slog.Warn("closing persistent session", slog.String("error", err.Error()))
	}
}

// parseResourceURI splits aoscx://{host}/{kind}.
func parseResourceURI(uri string) (host, kind string, err error) {
	if !strings.HasPrefix(uri, uriScheme) {
		return "", "", tools.ErrInvalidInput("invalid URI scheme: expected " + uriScheme)
	}

	host, kind, ok := strings.Cut(strings.TrimPrefix(uri, uriScheme), "/")
	if !ok || host == "" || kind == "" {
		return "", "", tools.ErrInvalidInput(fmt.Sprintf("resource URI must be %s{host}/{resource}", uriScheme))
	}
	return host, kind, nil
}

// toResourceResult serializes content to a ReadResourceResult.
func toResourceResult(uri string, content any) (*sdkmcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(content, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("serializing resource: %w", err)
	}

	return &sdkmcp.ReadResourceResult{
		Contents: []*sdkmcp.ResourceContents{
			{
				URI:      uri,
				MIMEType: tools.MimeJSON,
				Text:     string(data),
			},
		},
	}, nil
}
