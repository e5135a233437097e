package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/usestring/aoscx-mcp/pkg/mcpsrv"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Configuration is loaded from environment variables:
	// - ARUBAOS_CX_HOST: default switch (enables aoscx_session_* tools)
	// - ARUBAOS_CX_HOSTS: comma separated fleet for aoscx_fleet_get
	// - ARUBAOS_CX_VERSION, ARUBAOS_CX_USERNAME, ARUBAOS_CX_PASSWORD
	// - ARUBAOS_CX_INSECURE: skip TLS verification for self-signed switches
	// - LOG_LEVEL, LOG_FILE, etc. (see internal/config for all options)
	server, err := mcpsrv.NewServer()
	if err != nil {
		slog.Error("failed to create MCP server", "error", err)
		os.Exit(1)
	}
	defer server.Close()

	slog.Info("starting aoscx MCP server on stdio")
	if err := server.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped")
}
