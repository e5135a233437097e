package logging

import (
	"log/slog"
	"strings"
)

// sensitiveKeys are attribute keys whose values never reach the log.
var sensitiveKeys = []string{
	"password",
	"cookie",
	"set-cookie",
	"authorization",
}

// redactedValue replaces sensitive attribute values.
const redactedValue = "***REDACTED***"

// redactAttr is a slog ReplaceAttr hook masking credentials and session cookies.
// Handlers call it for the leaves of groups too, so groups need no handling here.
func redactAttr(_ []string, a slog.Attr) slog.Attr {
	key := strings.ToLower(a.Key)
	for _, s := range sensitiveKeys {
		if key == s && a.Value.String() != "" {
			return slog.String(a.Key, redactedValue)
		}
	}
	return a
}
