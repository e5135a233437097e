package tools

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/usestring/aoscx-mcp/internal/cache"
	"github.com/usestring/aoscx-mcp/internal/config"
	"github.com/usestring/aoscx-mcp/internal/query"
	"github.com/usestring/aoscx-mcp/pkg/client"
)

// Deps contains all dependencies needed by tool handlers.
type Deps struct {
	Config     *config.Config
	HTTPClient client.Doer
	Cache      *cache.ResponseCache
	Query      *query.Engine

	// Session is the persistent session on Config.Host. Nil when no default
	// host is configured.
	Session *client.Client

	// sessionMu serialises Session login and logout.
	sessionMu sync.Mutex
}

// NewDeps builds tool dependencies from configuration. A nil httpClient is
// replaced by client.DefaultHTTPClient using the configured timeout and TLS
// verification setting.
func NewDeps(cfg *config.Config, httpClient client.Doer) *Deps {
	if httpClient == nil {
		httpClient = client.DefaultHTTPClient(cfg.HTTPClientTimeout, cfg.Insecure)
	}

	d := &Deps{
		Config:     cfg,
		HTTPClient: httpClient,
		Cache:      cache.NewResponseCache(cfg.ResponseCacheMaxItems, cfg.ResponseCacheTTL),
		Query:      query.NewEngine(),
	}
	if cfg.Host != "" {
		d.Session = d.NewClient(cfg.Host)
	}
	return d
}

// NewClient creates an unauthenticated client for host using the configured
// credentials and the shared HTTP client.
func (d *Deps) NewClient(host string) *client.Client {
	return client.New(host, d.Config.ClientOptions(d.HTTPClient)...)
}

// ResolveHost returns host, or the configured default host when empty.
func (d *Deps) ResolveHost(host string) (string, error) {
	if host != "" {
		return host, nil
	}
	if d.Config.Host == "" {
		return "", ErrInvalidInput("host is required (no ARUBAOS_CX_HOST configured)")
	}
	return d.Config.Host, nil
}

// ResolveHosts returns hosts, or the configured fleet when empty.
func (d *Deps) ResolveHosts(hosts []string) ([]string, error) {
	if len(hosts) > 0 {
		return hosts, nil
	}
	if len(d.Config.Hosts) == 0 {
		return nil, ErrInvalidInput("hosts is required (no ARUBAOS_CX_HOSTS configured)")
	}
	return d.Config.Hosts, nil
}

// Fetch performs a single-shot GET of path on host, served from the response
// cache while fresh. The second result reports a cache hit. Non-2xx responses
// are returned, not turned into errors, and are never cached.
func (d *Deps) Fetch(ctx context.Context, host, path string, params url.Values, noCache bool) (*cache.Response, bool, error) {
	fetch := func(ctx context.Context) (*cache.Response, error) {
		return d.fetchOnce(ctx, host, path, params)
	}
	if noCache {
		resp, err := fetch(ctx)
		if err == nil {
			d.Cache.Put(cacheKey(host, path, params), resp)
		}
		return resp, false, err
	}
	return d.Cache.GetOrFetch(ctx, cacheKey(host, path, params), fetch)
}

func (d *Deps) fetchOnce(ctx context.Context, host, path string, params url.Values) (*cache.Response, error) {
	resp, err := d.NewClient(host).RequestOnce(ctx, path, &client.RequestOptions{
		Method: http.MethodGet,
		Query:  params,
	})
	if resp == nil {
		return nil, err
	}
	if err != nil {
		// The request itself succeeded; only the logout was rejected.
		slog.Warn("logout failed after GET",
			slog.String("host", host),
			slog.String("path", path),
			slog.String("error", err.Error()),
		)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}
	return &cache.Response{
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
		FetchedAt:   time.Now(),
	}, nil
}

func cacheKey(host, path string, params url.Values) string {
	if len(params) == 0 {
		return cache.Key(host, path)
	}
	return cache.Key(host, path+"?"+params.Encode())
}
