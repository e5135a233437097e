package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testUser     = "operator"
	testPassword = "s3cret"
)

// fakeSwitch is a minimal stand-in for the ArubaOS-CX REST API.
type fakeSwitch struct {
	mu    sync.Mutex
	calls []string

	loginStatus  int
	loginBody    string
	logoutStatus int
	logoutBody   string
	noCookies    bool
}

func (f *fakeSwitch) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeSwitch) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeSwitch) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.record(r.Method + " " + r.URL.Path)

	switch r.URL.Path {
	case "/rest/v1/login":
		if f.loginStatus != 0 {
			w.WriteHeader(f.loginStatus)
			io.WriteString(w, f.loginBody) //nolint:errcheck
			return
		}
		if r.Method != http.MethodPost || r.FormValue("username") != testUser || r.FormValue("password") != testPassword {
			w.WriteHeader(http.StatusUnauthorized)
			io.WriteString(w, "bad credentials") //nolint:errcheck
			return
		}
		if !f.noCookies {
			w.Header().Add("Set-Cookie", "id=abc; Path=/; HttpOnly")
			w.Header().Add("Set-Cookie", "sess=xyz; Secure")
		}
		w.WriteHeader(http.StatusOK)

	case "/rest/v1/logout":
		if f.logoutStatus != 0 {
			w.WriteHeader(f.logoutStatus)
			io.WriteString(w, f.logoutBody) //nolint:errcheck
			return
		}
		w.WriteHeader(http.StatusOK)

	case "/rest/v1/system":
		if r.Header.Get("Cookie") != "id=abc; sess=xyz" {
			w.WriteHeader(http.StatusUnauthorized)
			io.WriteString(w, "login required") //nolint:errcheck
			return
		}
		json.NewEncoder(w).Encode(map[string]any{ //nolint:errcheck
			"hostname":         "core-sw1",
			"platform_name":    "8325",
			"software_version": "GL.10.10.1010",
		})

	case "/rest/v1/firmware":
		json.NewEncoder(w).Encode(Firmware{ //nolint:errcheck
			CurrentVersion: "GL.10.10.1010",
			BootedImage:    "primary",
		})

	default:
		http.NotFound(w, r)
	}
}

func newTestClient(t *testing.T, f *fakeSwitch) *Client {
	t.Helper()
	srv := httptest.NewTLSServer(f)
	t.Cleanup(srv.Close)

	host := strings.TrimPrefix(srv.URL, "https://")
	return New(host,
		WithHTTPClient(srv.Client()),
		WithUsername(testUser),
		WithPassword(testPassword),
		WithLookup(emptyLookup),
	)
}

func emptyLookup(string) (string, bool) { return "", false }

func mapLookup(m map[string]string) LookupFunc {
	return func(key string) (string, bool) {
		v, ok := m[key]
		return v, ok
	}
}

func TestNew_Defaults(t *testing.T) {
	c := New("10.20.30.40", WithLookup(emptyLookup))

	assert.Equal(t, "https://10.20.30.40/rest/v1", c.BaseURL())
	assert.Equal(t, "admin", c.Username())
	assert.Equal(t, "", c.password)
	assert.False(t, c.Authenticated())
}

func TestNew_ResolvesFromLookup(t *testing.T) {
	c := New("sw1", WithLookup(mapLookup(map[string]string{
		EnvVersion:  "latest",
		EnvUsername: "netops",
		EnvPassword: "pw",
	})))

	assert.Equal(t, "https://sw1/rest/latest", c.BaseURL())
	assert.Equal(t, "netops", c.Username())
	assert.Equal(t, "pw", c.password)
}

func TestNew_ResolvesEachSettingIndependently(t *testing.T) {
	c := New("sw1",
		WithVersion(VersionV10_08),
		WithLookup(mapLookup(map[string]string{EnvUsername: "netops"})),
	)

	assert.Equal(t, "https://sw1/rest/v10.08", c.BaseURL())
	assert.Equal(t, "netops", c.Username())
	assert.Equal(t, "", c.password)
}

func TestNew_ExplicitOptionsWinOverLookup(t *testing.T) {
	c := New("sw1",
		WithUsername("explicit"),
		WithPassword(""),
		WithScheme("http"),
		WithLookup(mapLookup(map[string]string{
			EnvUsername: "netops",
			EnvPassword: "pw",
		})),
	)

	assert.Equal(t, "http://sw1/rest/v1", c.BaseURL())
	assert.Equal(t, "explicit", c.Username())
	assert.Equal(t, "", c.password)
}

func TestNew_EmptyLookupValueFallsThrough(t *testing.T) {
	c := New("sw1", WithLookup(mapLookup(map[string]string{EnvVersion: ""})))
	assert.Equal(t, "https://sw1/rest/v1", c.BaseURL())
}

func TestNewRequest_NoCookieBeforeLogin(t *testing.T) {
	c := New("sw1", WithLookup(emptyLookup))

	header := http.Header{}
	header.Set("Cookie", "stale=1")
	req, err := c.NewRequest(context.Background(), "/system", &RequestOptions{Header: header})
	require.NoError(t, err)

	assert.Equal(t, "https://sw1/rest/v1/system", req.URL.String())
	assert.Equal(t, http.MethodGet, req.Method)
	assert.Empty(t, req.Header.Values("Cookie"))
}

func TestNewRequest_CarriesOptions(t *testing.T) {
	c := New("sw1", WithLookup(emptyLookup))
	c.setCookie("id=abc")

	header := http.Header{}
	header.Set("Accept", "application/json")
	req, err := c.NewRequest(context.Background(), "/system/vlans", &RequestOptions{
		Method: http.MethodPut,
		Query:  map[string][]string{"depth": {"2"}},
		Header: header,
		Body:   strings.NewReader(`{"name":"v10"}`),
	})
	require.NoError(t, err)

	assert.Equal(t, http.MethodPut, req.Method)
	assert.Equal(t, "https://sw1/rest/v1/system/vlans?depth=2", req.URL.String())
	assert.Equal(t, "application/json", req.Header.Get("Accept"))
	assert.Equal(t, "id=abc", req.Header.Get("Cookie"))
	body, err := io.ReadAll(req.Body)
	require.NoError(t, err)
	assert.Equal(t, `{"name":"v10"}`, string(body))
}

func TestLogin_StoresExtractedCookie(t *testing.T) {
	c := newTestClient(t, &fakeSwitch{})

	require.NoError(t, c.Login(context.Background()))
	assert.True(t, c.Authenticated())
	assert.Equal(t, "id=abc; sess=xyz", c.Cookie())

	req, err := c.NewRequest(context.Background(), "/system", nil)
	require.NoError(t, err)
	assert.Equal(t, "id=abc; sess=xyz", req.Header.Get("Cookie"))
}

func TestLogin_Rejected(t *testing.T) {
	f := &fakeSwitch{loginStatus: http.StatusUnauthorized, loginBody: "bad credentials"}
	c := newTestClient(t, f)

	err := c.Login(context.Background())
	require.Error(t, err)

	var authErr *AuthError
	require.True(t, errors.As(err, &authErr))
	assert.Equal(t, "bad credentials", authErr.Message)
	assert.Equal(t, http.StatusUnauthorized, authErr.StatusCode)
	assert.ErrorIs(t, err, ErrAuthenticationFailed)
	assert.NotErrorIs(t, err, ErrDeauthenticationFailed)
	assert.True(t, IsStatus(err, http.StatusUnauthorized))
	assert.False(t, c.Authenticated())
}

func TestLogin_WrongCredentials(t *testing.T) {
	f := &fakeSwitch{}
	srv := httptest.NewTLSServer(f)
	defer srv.Close()

	c := New(strings.TrimPrefix(srv.URL, "https://"),
		WithHTTPClient(srv.Client()),
		WithLookup(emptyLookup),
	)
	err := c.Login(context.Background())
	assert.ErrorIs(t, err, ErrAuthenticationFailed)
	assert.EqualError(t, err, "authentication failed: bad credentials")
	assert.Empty(t, c.Cookie())
}

func TestLogin_NoSetCookieIsFailure(t *testing.T) {
	c := newTestClient(t, &fakeSwitch{noCookies: true})

	err := c.Login(context.Background())
	assert.ErrorIs(t, err, ErrAuthenticationFailed)
	assert.False(t, c.Authenticated())
}

func TestLogin_CancelledLeavesTokenUnset(t *testing.T) {
	c := newTestClient(t, &fakeSwitch{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := c.Login(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, c.Authenticated())
}

func TestLogin_TransportErrorPropagates(t *testing.T) {
	c := New("sw1", WithHTTPClient(failingDoer{}), WithLookup(emptyLookup))

	err := c.Login(context.Background())
	assert.ErrorIs(t, err, errTransport)
	var authErr *AuthError
	assert.False(t, errors.As(err, &authErr))
}

func TestLogout_ClearsCookie(t *testing.T) {
	f := &fakeSwitch{}
	c := newTestClient(t, f)
	require.NoError(t, c.Login(context.Background()))

	require.NoError(t, c.Logout(context.Background()))
	assert.False(t, c.Authenticated())

	req, err := c.NewRequest(context.Background(), "/system", nil)
	require.NoError(t, err)
	assert.Empty(t, req.Header.Values("Cookie"))
	assert.Equal(t, []string{"POST /rest/v1/login", "POST /rest/v1/logout"}, f.Calls())
}

func TestLogout_RejectedStillClearsCookie(t *testing.T) {
	f := &fakeSwitch{logoutStatus: http.StatusInternalServerError, logoutBody: "session not found"}
	c := newTestClient(t, f)
	require.NoError(t, c.Login(context.Background()))

	err := c.Logout(context.Background())
	assert.ErrorIs(t, err, ErrDeauthenticationFailed)
	assert.EqualError(t, err, "deauthentication failed: session not found")
	assert.False(t, c.Authenticated())
}

func TestLogout_TransportErrorStillClearsCookie(t *testing.T) {
	c := New("sw1", WithHTTPClient(failingDoer{}), WithLookup(emptyLookup))
	c.setCookie("id=abc")

	err := c.Logout(context.Background())
	assert.ErrorIs(t, err, errTransport)
	assert.False(t, c.Authenticated())
}

func TestDo_DoesNotCheckStatus(t *testing.T) {
	c := newTestClient(t, &fakeSwitch{})

	resp, err := c.Do(context.Background(), "/system", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.False(t, c.Authenticated())
}

func TestGetSystem(t *testing.T) {
	c := newTestClient(t, &fakeSwitch{})
	require.NoError(t, c.Login(context.Background()))

	sys, err := c.GetSystem(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "core-sw1", sys.Hostname)
	assert.Equal(t, "8325", sys.PlatformName)
	assert.Equal(t, "GL.10.10.1010", sys.SoftwareVersion)
}

func TestGetSystem_Unauthenticated(t *testing.T) {
	c := newTestClient(t, &fakeSwitch{})

	_, err := c.GetSystem(context.Background())
	require.Error(t, err)
	assert.True(t, IsStatus(err, http.StatusUnauthorized))

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "login required", apiErr.Message)
}

func TestGetFirmware(t *testing.T) {
	c := newTestClient(t, &fakeSwitch{})
	require.NoError(t, c.Login(context.Background()))

	fw, err := c.GetFirmware(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "GL.10.10.1010", fw.CurrentVersion)
	assert.Equal(t, "primary", fw.BootedImage)
}

func TestConcurrentRequestsDuringSession(t *testing.T) {
	c := newTestClient(t, &fakeSwitch{})
	require.NoError(t, c.Login(context.Background()))

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp, err := c.Do(context.Background(), "/system", nil)
			if assert.NoError(t, err) {
				resp.Body.Close()
				assert.Equal(t, http.StatusOK, resp.StatusCode)
			}
		}()
	}
	wg.Wait()
	require.NoError(t, c.Logout(context.Background()))
}

func TestVersionKnown(t *testing.T) {
	assert.True(t, VersionLatest.Known())
	assert.True(t, VersionV10_04.Known())
	assert.False(t, Version("v9").Known())
}

var errTransport = errors.New("connection refused")

type failingDoer struct{}

func (failingDoer) Do(*http.Request) (*http.Response, error) {
	return nil, errTransport
}
