package mcpsrv

import (
	"context"
	"net/url"

	"github.com/usestring/aoscx-mcp/internal/cache"
	"github.com/usestring/aoscx-mcp/internal/config"
	"github.com/usestring/aoscx-mcp/internal/mcp/tools"
	"github.com/usestring/aoscx-mcp/internal/query"
	"github.com/usestring/aoscx-mcp/pkg/client"
)

// Deps contains all dependencies available to custom tools.
// This gives custom tools access to the same infrastructure as builtin tools.
type Deps struct {
	Config     *config.Config
	HTTPClient client.Doer
	Cache      *cache.ResponseCache
	Query      *query.Engine

	// Session is the persistent session on the default switch, shared with
	// the aoscx_session_* tools. Nil when ARUBAOS_CX_HOST is unset.
	Session *client.Client

	tools *tools.Deps
}

// NewClient creates an unauthenticated client for host with the server's
// credentials and HTTP client.
func (d *Deps) NewClient(host string) *client.Client {
	return d.tools.NewClient(host)
}

// Get performs a cached single-shot GET, like the aoscx_get tool. Non-2xx
// responses are returned as-is.
func (d *Deps) Get(ctx context.Context, host, path string, query url.Values) (*cache.Response, error) {
	resp, _, err := d.tools.Fetch(ctx, host, path, query, false)
	return resp, err
}

// WithSession logs in to host, runs fn and logs out again.
func (d *Deps) WithSession(ctx context.Context, host string, fn func(ctx context.Context, c *client.Client) error) error {
	return d.tools.WithSession(ctx, host, fn)
}
