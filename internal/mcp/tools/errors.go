package tools

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"

	"github.com/usestring/aoscx-mcp/pkg/client"
)

// Error codes for MCP tool responses.
const (
	ErrCodeAuthFailed   = "AUTH_FAILED"
	ErrCodeDeauthFailed = "DEAUTH_FAILED"
	ErrCodeNotFound     = "NOT_FOUND"
	ErrCodeSwitchError  = "SWITCH_ERROR"
	ErrCodeInvalidInput = "INVALID_INPUT"
	ErrCodeTimeout      = "TIMEOUT"
)

// CodedError is an error with an associated error code.
type CodedError struct {
	Code    string
	Message string
	Cause   error
}

func (e *CodedError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *CodedError) Unwrap() error {
	return e.Cause
}

// WrapSwitchError converts an SDK or transport error to a coded error.
func WrapSwitchError(err error) error {
	if err == nil {
		return nil
	}
	var coded *CodedError
	if errors.As(err, &coded) {
		return coded
	}

	coded = &CodedError{Code: ErrorCode(err), Cause: err}

	var authErr *client.AuthError
	var apiErr *client.APIError
	switch {
	case errors.As(err, &authErr):
		coded.Message = authErr.Message
	case errors.As(err, &apiErr):
		coded.Message = apiErr.Message
	case coded.Code == ErrCodeTimeout:
		coded.Message = "request timed out"
	default:
		coded.Message = "switch request failed"
	}

	slog.Warn("switch error",
		slog.String("code", coded.Code),
		slog.String("message", coded.Message),
	)

	return coded
}

// ErrorCode classifies err without wrapping it. Used where an error is
// reported per host instead of failing the whole tool call.
func ErrorCode(err error) string {
	var coded *CodedError
	if errors.As(err, &coded) {
		return coded.Code
	}
	if errors.Is(err, client.ErrAuthenticationFailed) {
		return ErrCodeAuthFailed
	}
	if errors.Is(err, client.ErrDeauthenticationFailed) {
		return ErrCodeDeauthFailed
	}
	if client.IsStatus(err, http.StatusNotFound) {
		return ErrCodeNotFound
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrCodeTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ErrCodeTimeout
	}
	return ErrCodeSwitchError
}

// statusError converts a non-2xx switch response into an APIError.
func statusError(statusCode int, body []byte) error {
	return &client.APIError{StatusCode: statusCode, Message: truncateString(string(body), 512)}
}

// ErrNotFound creates a not found error.
func ErrNotFound(resource, id string) error {
	return &CodedError{
		Code:    ErrCodeNotFound,
		Message: fmt.Sprintf("%s not found: %s", resource, id),
	}
}

// ErrInvalidInput creates an invalid input error.
func ErrInvalidInput(message string) error {
	return &CodedError{
		Code:    ErrCodeInvalidInput,
		Message: message,
	}
}
