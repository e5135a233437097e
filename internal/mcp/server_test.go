package mcp

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/usestring/aoscx-mcp/internal/config"
	"github.com/usestring/aoscx-mcp/internal/mcp/tools"
	"github.com/usestring/aoscx-mcp/pkg/client"
)

// switchHandler serves login, logout, /system and /firmware.
func switchHandler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /rest/v1/login", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Add("Set-Cookie", "id=abc; Path=/")
	})
	mux.HandleFunc("POST /rest/v1/logout", func(w http.ResponseWriter, r *http.Request) {})
	mux.HandleFunc("GET /rest/v1/system", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "id=abc", r.Header.Get("Cookie"))
		io.WriteString(w, `{"hostname":"edge-sw2","platform_name":"6300","software_version":"FL.10.10.1010"}`) //nolint:errcheck
	})
	mux.HandleFunc("GET /rest/v1/firmware", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"current_version":"FL.10.10.1010","booted_image":"secondary"}`) //nolint:errcheck
	})
	return mux
}

func newTestServer(t *testing.T, host string) *Server {
	t.Helper()
	cfg := &config.Config{
		Host:                  host,
		Version:               client.VersionV1,
		Username:              "admin",
		HTTPClientTimeout:     5 * time.Second,
		ResponseCacheMaxItems: 8,
		ResponseCacheTTL:      time.Second,
		FleetWorkers:          2,
		ToolMaxBytesDefault:   config.DefaultToolMaxBytesValue,
		DefaultQueryLimit:     config.DefaultQueryLimitValue,
	}
	deps := tools.NewDeps(cfg, client.DefaultHTTPClient(cfg.HTTPClientTimeout, true))
	s, err := NewServer(deps, WithBuiltinTools())
	require.NoError(t, err)
	return s
}

func readRequest(uri string) *sdkmcp.ReadResourceRequest {
	return &sdkmcp.ReadResourceRequest{Params: &sdkmcp.ReadResourceParams{URI: uri}}
}

func TestNewServer_RequiresDeps(t *testing.T) {
	_, err := NewServer(nil)
	assert.Error(t, err)
}

func TestNewServer_CustomRegistration(t *testing.T) {
	called := false
	cfg := &config.Config{ResponseCacheMaxItems: 1, ResponseCacheTTL: time.Second}
	_, err := NewServer(tools.NewDeps(cfg, http.DefaultClient), WithCustomRegistration(func(*sdkmcp.Server) {
		called = true
	}))
	require.NoError(t, err)
	assert.True(t, called)
}

func TestParseResourceURI(t *testing.T) {
	host, kind, err := parseResourceURI("aoscx://10.1.1.1:8443/system")
	require.NoError(t, err)
	assert.Equal(t, "10.1.1.1:8443", host)
	assert.Equal(t, "system", kind)

	for _, bad := range []string{"https://x/system", "aoscx://", "aoscx://host", "aoscx:///system"} {
		_, _, err := parseResourceURI(bad)
		assert.Error(t, err, bad)
	}
}

func TestResourceSystem(t *testing.T) {
	srv := httptest.NewTLSServer(switchHandler(t))
	defer srv.Close()
	host := strings.TrimPrefix(srv.URL, "https://")

	s := newTestServer(t, "")
	uri := "aoscx://" + host + "/system"
	res, err := s.handleResourceSystem(context.Background(), readRequest(uri))
	require.NoError(t, err)
	require.Len(t, res.Contents, 1)
	assert.Equal(t, uri, res.Contents[0].URI)

	var out tools.SystemOutput
	require.NoError(t, json.Unmarshal([]byte(res.Contents[0].Text), &out))
	assert.Equal(t, "edge-sw2", out.Hostname)
	assert.Equal(t, "secondary", out.Firmware.BootedImage)
}

func TestResourceSession(t *testing.T) {
	s := newTestServer(t, "sw.example")

	res, err := s.handleResourceSession(context.Background(), readRequest("aoscx://sw.example/session"))
	require.NoError(t, err)
	assert.Contains(t, res.Contents[0].Text, `"authenticated": false`)
	assert.Contains(t, res.Contents[0].Text, `"base_url": "https://sw.example/rest/v1"`)

	_, err = s.handleResourceSession(context.Background(), readRequest("aoscx://other.example/session"))
	assert.Error(t, err)
}

func TestCloseSession_LogsOut(t *testing.T) {
	var logouts atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("POST /rest/v1/login", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Add("Set-Cookie", "id=abc; Path=/")
	})
	mux.HandleFunc("POST /rest/v1/logout", func(w http.ResponseWriter, r *http.Request) {
		logouts.Add(1)
	})
	srv := httptest.NewTLSServer(mux)
	defer srv.Close()

	s := newTestServer(t, strings.TrimPrefix(srv.URL, "https://"))
	s.closeSession()
	assert.Zero(t, logouts.Load())

	require.NoError(t, s.deps.Session.Login(context.Background()))
	s.closeSession()
	assert.Equal(t, int32(1), logouts.Load())
	assert.False(t, s.deps.Session.Authenticated())
}
