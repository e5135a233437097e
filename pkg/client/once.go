package client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// RequestOnce logs in, sends one request and logs out again, returning the
// response of the request in the middle.
//
// Once login succeeded, logout runs on every exit path. The response body is
// read into memory before logging out, so it stays readable afterwards and
// the caller may close it at leisure. If the request fails, the returned
// error joins the request error with any logout error. If only the logout
// fails, the response is returned together with the logout error. Logout
// ignores cancellation of ctx so an aborted call still ends its session.
func (c *Client) RequestOnce(ctx context.Context, path string, opts *RequestOptions) (resp *http.Response, err error) {
	if err := c.Login(ctx); err != nil {
		return nil, err
	}
	defer func() {
		if logoutErr := c.Logout(context.WithoutCancel(ctx)); logoutErr != nil {
			err = errors.Join(err, logoutErr)
		}
	}()

	resp, err = c.Do(ctx, path, opts)
	if err != nil {
		return nil, err
	}
	if err := bufferBody(resp); err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	return resp, nil
}

// RequestOnce creates a client for host and runs a single-shot request with it.
func RequestOnce(ctx context.Context, host, path string, opts *RequestOptions, clientOpts ...Option) (*http.Response, error) {
	return New(host, clientOpts...).RequestOnce(ctx, path, opts)
}

// bufferBody replaces resp.Body with an in-memory copy and closes the original.
func bufferBody(resp *http.Response) error {
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	resp.Body = io.NopCloser(bytes.NewReader(data))
	return nil
}
