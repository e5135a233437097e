package tools

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/usestring/aoscx-mcp/internal/config"
	"github.com/usestring/aoscx-mcp/pkg/client"
)

const (
	testUser     = "operator"
	testPassword = "s3cret"
	testCookie   = "id=abc"
)

// fakeSwitch is a minimal ArubaOS-CX REST API.
type fakeSwitch struct {
	hostname string
	password string

	mu       sync.Mutex
	calls    []string
	bodies   []string
	sessions int
}

func (f *fakeSwitch) record(r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, r.Method+" "+r.URL.Path)
	f.bodies = append(f.bodies, string(body))
}

func (f *fakeSwitch) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeSwitch) Bodies() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.bodies...)
}

// Sessions is the number of sessions opened and not yet closed.
func (f *fakeSwitch) Sessions() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sessions
}

func (f *fakeSwitch) Logins() int {
	n := 0
	for _, c := range f.Calls() {
		if c == "POST /rest/v1/login" {
			n++
		}
	}
	return n
}

func (f *fakeSwitch) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == "/rest/v1/login" {
		r.ParseForm() //nolint:errcheck
	}
	f.record(r)

	switch r.URL.Path {
	case "/rest/v1/login":
		password := f.password
		if password == "" {
			password = testPassword
		}
		if r.PostForm.Get("username") != testUser || r.PostForm.Get("password") != password {
			w.WriteHeader(http.StatusUnauthorized)
			io.WriteString(w, "bad credentials") //nolint:errcheck
			return
		}
		f.mu.Lock()
		f.sessions++
		f.mu.Unlock()
		w.Header().Add("Set-Cookie", testCookie+"; Path=/; HttpOnly")
		w.WriteHeader(http.StatusOK)
		return

	case "/rest/v1/logout":
		f.mu.Lock()
		f.sessions--
		f.mu.Unlock()
		w.WriteHeader(http.StatusOK)
		return
	}

	if r.Header.Get("Cookie") != testCookie {
		w.WriteHeader(http.StatusUnauthorized)
		io.WriteString(w, "login required") //nolint:errcheck
		return
	}

	switch {
	case r.URL.Path == "/rest/v1/system":
		writeJSON(w, map[string]any{
			"hostname":         f.hostname,
			"platform_name":    "8325",
			"software_version": "GL.10.10.1010",
			"boot_time":        time.Now().Add(-time.Hour).Unix(),
			"mgmt_intf":        map[string]string{"ip": "10.0.0.1", "mode": "static"},
		})
	case r.URL.Path == "/rest/v1/firmware":
		writeJSON(w, client.Firmware{
			CurrentVersion: "GL.10.10.1010",
			PrimaryVersion: "GL.10.10.1010",
			BootedImage:    "primary",
		})
	case r.URL.Path == "/rest/v1/system/vlans" && r.Method == http.MethodGet:
		if r.URL.Query().Get("depth") == "2" {
			writeJSON(w, map[string]any{
				"1":  map[string]any{"id": 1, "name": "DEFAULT_VLAN_1", "admin": "up"},
				"10": map[string]any{"id": 10, "name": "users-" + f.hostname, "admin": "up"},
			})
			return
		}
		writeJSON(w, map[string]any{
			"1":  "/rest/v1/system/vlans/1",
			"10": "/rest/v1/system/vlans/10",
		})
	case r.URL.Path == "/rest/v1/system/vlans" && r.Method == http.MethodPost:
		w.WriteHeader(http.StatusCreated)
	default:
		w.WriteHeader(http.StatusNotFound)
		io.WriteString(w, "resource not found") //nolint:errcheck
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", MimeJSON)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

// startSwitch starts a fake switch and returns it with its host:port.
func startSwitch(t *testing.T, f *fakeSwitch) string {
	t.Helper()
	srv := httptest.NewTLSServer(f)
	t.Cleanup(srv.Close)
	return strings.TrimPrefix(srv.URL, "https://")
}

// newTestDeps builds Deps whose default host is host. Every fake switch has
// its own certificate, so verification is skipped.
func newTestDeps(host string, fleet ...string) *Deps {
	cfg := &config.Config{
		Host:                  host,
		Hosts:                 fleet,
		Version:               client.VersionV1,
		Username:              testUser,
		Password:              testPassword,
		HTTPClientTimeout:     5 * time.Second,
		ResponseCacheMaxItems: 16,
		ResponseCacheTTL:      time.Minute,
		FleetWorkers:          4,
		ToolMaxBytesDefault:   config.DefaultToolMaxBytesValue,
		DefaultQueryLimit:     config.DefaultQueryLimitValue,
	}
	return NewDeps(cfg, client.DefaultHTTPClient(cfg.HTTPClientTimeout, true))
}
