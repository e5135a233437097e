// Package config provides configuration loading from environment variables.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/usestring/aoscx-mcp/pkg/client"
)

// Tool output limit defaults
const (
	DefaultToolMaxBytesValue = 2_000_000
	DefaultQueryLimitValue   = 1000
)

// Config holds all configuration for the MCP server.
type Config struct {
	Host     string         // ARUBAOS_CX_HOST, default "" (tools then require a host argument)
	Hosts    []string       // ARUBAOS_CX_HOSTS, comma separated, default [Host]
	Version  client.Version // ARUBAOS_CX_VERSION, default "v1"
	Username string         // ARUBAOS_CX_USERNAME, default "admin"
	Password string         // ARUBAOS_CX_PASSWORD, default ""
	Insecure bool           // ARUBAOS_CX_INSECURE, default false

	HTTPClientTimeout time.Duration // HTTP_CLIENT_TIMEOUT_MS, default 10000ms (10s)

	ResponseCacheMaxItems int           // RESPONSE_CACHE_MAX_ITEMS, default 256
	ResponseCacheTTL      time.Duration // RESPONSE_CACHE_TTL_MS, default 5000ms

	FleetWorkers int // FLEET_WORKERS, default 8

	// Tool output limits
	ToolMaxBytesDefault int // TOOL_MAX_BYTES_DEFAULT, default 2_000_000
	DefaultQueryLimit   int // DEFAULT_QUERY_LIMIT, default 1000

	// Logging configuration
	LogLevel      string // LOG_LEVEL, default "info"
	LogFormat     string // LOG_FORMAT, text or json, default "text"
	LogFile       string // LOG_FILE, default "" (stderr only)
	LogMaxSizeMB  int    // LOG_MAX_SIZE_MB, default 10
	LogMaxBackups int    // LOG_MAX_BACKUPS, default 5
	LogMaxAgeDays int    // LOG_MAX_AGE_DAYS, default 28
	LogCompress   bool   // LOG_COMPRESS, default true
}

// Load reads configuration from environment variables with sensible defaults.
func Load() *Config {
	host := getEnvString("ARUBAOS_CX_HOST", "")

	return &Config{
		Host:     host,
		Hosts:    getEnvList("ARUBAOS_CX_HOSTS", nonEmpty(host)),
		Version:  client.Version(getEnvString(client.EnvVersion, string(client.DefaultVersion))),
		Username: getEnvString(client.EnvUsername, client.DefaultUsername),
		Password: getEnvString(client.EnvPassword, client.DefaultPassword),
		Insecure: getEnvBool("ARUBAOS_CX_INSECURE", false),

		HTTPClientTimeout: getEnvDurationMs("HTTP_CLIENT_TIMEOUT_MS", 10000),

		ResponseCacheMaxItems: getEnvInt("RESPONSE_CACHE_MAX_ITEMS", 256),
		ResponseCacheTTL:      getEnvDurationMs("RESPONSE_CACHE_TTL_MS", 5000),

		FleetWorkers: getEnvInt("FLEET_WORKERS", 8),

		ToolMaxBytesDefault: getEnvInt("TOOL_MAX_BYTES_DEFAULT", DefaultToolMaxBytesValue),
		DefaultQueryLimit:   getEnvInt("DEFAULT_QUERY_LIMIT", DefaultQueryLimitValue),

		LogLevel:      getEnvString("LOG_LEVEL", "info"),
		LogFormat:     getEnvString("LOG_FORMAT", "text"),
		LogFile:       getEnvString("LOG_FILE", ""),
		LogMaxSizeMB:  getEnvInt("LOG_MAX_SIZE_MB", 10),
		LogMaxBackups: getEnvInt("LOG_MAX_BACKUPS", 5),
		LogMaxAgeDays: getEnvInt("LOG_MAX_AGE_DAYS", 28),
		LogCompress:   getEnvBool("LOG_COMPRESS", true),
	}
}

// ClientOptions returns the client options for the configured switch
// credentials. The HTTP client is passed separately so callers can share one.
func (c *Config) ClientOptions(httpClient client.Doer) []client.Option {
	opts := []client.Option{
		client.WithVersion(c.Version),
		client.WithUsername(c.Username),
		client.WithPassword(c.Password),
	}
	if httpClient != nil {
		opts = append(opts, client.WithHTTPClient(httpClient))
	}
	return opts
}

func getEnvBool(key string, defaultVal bool) bool {
	if v := os.Getenv(key); v != "" {
		switch v {
		case "1", "true", "yes", "on":
			return true
		case "0", "false", "no", "off":
			return false
		}
	}
	return defaultVal
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvDurationMs(key string, defaultMs int) time.Duration {
	ms := getEnvInt(key, defaultMs)
	return time.Duration(ms) * time.Millisecond
}

func getEnvList(key string, defaultVal []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func nonEmpty(s string) []string {
	if s == "" {
		return nil
	}
	return []string{s}
}
