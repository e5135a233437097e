package client

import (
	"errors"
	"fmt"
)

// Session operations reported by AuthError.
const (
	OpLogin  = "login"
	OpLogout = "logout"
)

// Sentinel kinds matched with errors.Is against an *AuthError.
var (
	ErrAuthenticationFailed   = errors.New("authentication failed")
	ErrDeauthenticationFailed = errors.New("deauthentication failed")
)

// AuthError reports a login or logout rejected by the switch.
// Message holds the switch's diagnostic (the response body) verbatim, e.g.
// "bad credentials"; Error prefixes it with the failure kind.
type AuthError struct {
	Op         string
	StatusCode int
	Message    string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("%s: %s", e.kind(), e.Message)
}

// Is matches ErrAuthenticationFailed for login and ErrDeauthenticationFailed
// for logout.
func (e *AuthError) Is(target error) bool {
	return target == e.kind()
}

func (e *AuthError) kind() error {
	if e.Op == OpLogout {
		return ErrDeauthenticationFailed
	}
	return ErrAuthenticationFailed
}

// APIError represents a non-2xx response from a typed helper such as GetJSON.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("ArubaOS-CX API error %d: %s", e.StatusCode, e.Message)
}

// IsStatus reports whether err wraps an APIError or AuthError with the given status code.
func IsStatus(err error, code int) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == code
	}
	var authErr *AuthError
	if errors.As(err, &authErr) {
		return authErr.StatusCode == code
	}
	return false
}
