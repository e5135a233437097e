package client

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"
)

// Environment keys consulted when an option is not given explicitly.
const (
	EnvVersion  = "ARUBAOS_CX_VERSION"
	EnvUsername = "ARUBAOS_CX_USERNAME"
	EnvPassword = "ARUBAOS_CX_PASSWORD"
)

// Defaults used when neither an option nor the lookup supplies a value.
const (
	DefaultScheme   = "https"
	DefaultUsername = "admin"
	DefaultPassword = ""
)

// Paths of the session endpoints, relative to the base URL.
const (
	LoginPath  = "/login"
	LogoutPath = "/logout"
)

// Doer sends an HTTP request and returns its response. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// LookupFunc resolves a configuration key. It has the signature of os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// Client is an ArubaOS-CX REST API client bound to one switch.
//
// A Client holds at most one session. Login stores the session cookie and
// every later request carries it until Logout.
type Client struct {
	baseURL    string
	username   string
	password   string
	httpClient Doer

	mu     sync.RWMutex
	cookie string
}

// settings collects option values before the client is resolved.
type settings struct {
	scheme     string
	version    *Version
	username   *string
	password   *string
	httpClient Doer
	lookup     LookupFunc
}

// Option is a functional option for configuring the Client.
type Option func(*settings)

// WithVersion selects the REST API version path segment.
func WithVersion(v Version) Option {
	return func(s *settings) {
		s.version = &v
	}
}

// WithUsername sets the login username.
func WithUsername(username string) Option {
	return func(s *settings) {
		s.username = &username
	}
}

// WithPassword sets the login password. An explicit empty password is honored.
func WithPassword(password string) Option {
	return func(s *settings) {
		s.password = &password
	}
}

// WithScheme overrides the URL scheme (default "https").
func WithScheme(scheme string) Option {
	return func(s *settings) {
		s.scheme = strings.TrimSuffix(scheme, "://")
	}
}

// WithHTTPClient sets the transport used to send requests.
func WithHTTPClient(httpClient Doer) Option {
	return func(s *settings) {
		s.httpClient = httpClient
	}
}

// WithLookup replaces the configuration lookup (default os.LookupEnv).
func WithLookup(lookup LookupFunc) Option {
	return func(s *settings) {
		s.lookup = lookup
	}
}

// New creates a client for the switch at host. It performs no network I/O.
//
// Version, username and password are each resolved independently: explicit
// option first, then the lookup (ARUBAOS_CX_*), then the built-in default.
func New(host string, opts ...Option) *Client {
	s := &settings{
		scheme:     DefaultScheme,
		httpClient: http.DefaultClient,
		lookup:     os.LookupEnv,
	}
	for _, opt := range opts {
		opt(s)
	}

	version := DefaultVersion
	if s.version != nil {
		version = *s.version
	} else if v, ok := lookupNonEmpty(s.lookup, EnvVersion); ok {
		version = Version(v)
	}

	username := DefaultUsername
	if s.username != nil {
		username = *s.username
	} else if v, ok := lookupNonEmpty(s.lookup, EnvUsername); ok {
		username = v
	}

	password := DefaultPassword
	if s.password != nil {
		password = *s.password
	} else if v, ok := lookupNonEmpty(s.lookup, EnvPassword); ok {
		password = v
	}

	return &Client{
		baseURL:    s.scheme + "://" + host + "/rest/" + string(version),
		username:   username,
		password:   password,
		httpClient: s.httpClient,
	}
}

func lookupNonEmpty(lookup LookupFunc, key string) (string, bool) {
	if lookup == nil {
		return "", false
	}
	v, ok := lookup(key)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

// DefaultHTTPClient returns an HTTP client suitable for talking to a switch.
// Set insecure for switches that still present their factory self-signed
// certificate.
func DefaultHTTPClient(timeout time.Duration, insecure bool) *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if insecure {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
}

// BaseURL returns the scheme://host/rest/version prefix of every request.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Username returns the resolved login username.
func (c *Client) Username() string {
	return c.username
}

// Cookie returns the current session cookie, or "" when logged out.
func (c *Client) Cookie() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.cookie
}

// Authenticated reports whether the client currently holds a session cookie.
func (c *Client) Authenticated() bool {
	return c.Cookie() != ""
}

func (c *Client) setCookie(cookie string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cookie = cookie
}

// RequestOptions carries the caller-supplied parts of a request.
// A nil *RequestOptions means a GET with no body.
type RequestOptions struct {
	Method string
	Query  url.Values
	Header http.Header
	Body   io.Reader
}

// NewRequest composes a request for baseURL+path. The Cookie header is set to
// the session cookie when one is held and removed otherwise. It performs no I/O.
func (c *Client) NewRequest(ctx context.Context, path string, opts *RequestOptions) (*http.Request, error) {
	if opts == nil {
		opts = &RequestOptions{}
	}
	method := opts.Method
	if method == "" {
		method = http.MethodGet
	}

	u, err := url.Parse(c.baseURL + path)
	if err != nil {
		return nil, fmt.Errorf("parsing URL: %w", err)
	}
	if len(opts.Query) > 0 {
		q := u.Query()
		for k, vs := range opts.Query {
			for _, v := range vs {
				q.Add(k, v)
			}
		}
		u.RawQuery = q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), opts.Body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	for k, vs := range opts.Header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	if cookie := c.Cookie(); cookie != "" {
		req.Header.Set("Cookie", cookie)
	} else {
		req.Header.Del("Cookie")
	}
	return req, nil
}

// Do sends an authenticated request and returns the response as is. It does
// not inspect the status code; that is left to the caller. The caller must
// close the response body.
func (c *Client) Do(ctx context.Context, path string, opts *RequestOptions) (*http.Response, error) {
	req, err := c.NewRequest(ctx, path, opts)
	if err != nil {
		return nil, err
	}
	return c.send(req, path)
}

func (c *Client) send(req *http.Request, path string) (*http.Response, error) {
	start := time.Now()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		slog.Debug("HTTP request failed",
			slog.String("method", req.Method),
			slog.String("path", path),
			slog.String("error", err.Error()),
			slog.Int64("duration_ms", time.Since(start).Milliseconds()),
		)
		return nil, fmt.Errorf("executing request: %w", err)
	}

	slog.Debug("HTTP request completed",
		slog.String("method", req.Method),
		slog.String("path", path),
		slog.Int("status", resp.StatusCode),
		slog.Int64("duration_ms", time.Since(start).Milliseconds()),
	)
	return resp, nil
}

// Login opens a session with the configured credentials and stores the
// session cookie. A non-2xx response yields an *AuthError carrying the
// response body, and the client stays logged out.
func (c *Client) Login(ctx context.Context) error {
	form := url.Values{}
	form.Set("username", c.username)
	form.Set("password", c.password)

	header := http.Header{}
	header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.Do(ctx, LoginPath, &RequestOptions{
		Method: http.MethodPost,
		Header: header,
		Body:   strings.NewReader(form.Encode()),
	})
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("login: reading response: %w", err)
	}

	if !isSuccess(resp.StatusCode) {
		slog.Debug("login rejected",
			slog.String("username", c.username),
			slog.Int("status", resp.StatusCode),
		)
		return &AuthError{Op: OpLogin, StatusCode: resp.StatusCode, Message: string(body)}
	}

	cookie := SessionCookie(resp.Header)
	if cookie == "" {
		return &AuthError{Op: OpLogin, StatusCode: resp.StatusCode, Message: "no session cookie in login response"}
	}

	c.setCookie(cookie)
	slog.Debug("session opened", slog.String("base_url", c.baseURL), slog.String("username", c.username))
	return nil
}

// Logout closes the session. The stored cookie is dropped whatever the
// outcome, since the server may or may not still honor it. A non-2xx
// response yields an *AuthError carrying the response body.
func (c *Client) Logout(ctx context.Context) error {
	defer c.setCookie("")

	resp, err := c.Do(ctx, LogoutPath, &RequestOptions{Method: http.MethodPost})
	if err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("logout: reading response: %w", err)
	}

	if !isSuccess(resp.StatusCode) {
		slog.Debug("logout rejected", slog.Int("status", resp.StatusCode))
		return &AuthError{Op: OpLogout, StatusCode: resp.StatusCode, Message: string(body)}
	}

	slog.Debug("session closed", slog.String("base_url", c.baseURL))
	return nil
}

// GetJSON performs an authenticated GET and decodes the JSON response into
// result. Non-2xx responses are returned as *APIError.
func (c *Client) GetJSON(ctx context.Context, path string, query url.Values, result any) error {
	resp, err := c.Do(ctx, path, &RequestOptions{Query: query})
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if !isSuccess(resp.StatusCode) {
		return parseError(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

// parseError extracts an APIError from an error response.
func parseError(resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)
	return &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(body))}
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}
