// Package mcpsrv provides an extensible MCP server for ArubaOS-CX switches.
//
// The builtin tools send REST requests (single-shot or on a persistent
// session), read resources across a fleet, and infer and validate response
// schemas. Users can add their own tools, prompts and resources with
// functional options.
//
// # Basic Usage
//
// Configuration is read from the environment (ARUBAOS_CX_HOST,
// ARUBAOS_CX_USERNAME, ARUBAOS_CX_PASSWORD, ...):
//
//	server, err := mcpsrv.NewServer()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer server.Close()
//	server.Run(ctx)
//
// # Extension
//
// Custom tools get the same infrastructure as the builtin ones through Deps:
//
//	server, err := mcpsrv.NewServer(
//	    mcpsrv.WithDepsTool(&mcp.Tool{Name: "uptime"}, func(d *mcpsrv.Deps) func(...) {
//	        return func(ctx context.Context, req *mcp.CallToolRequest, in HostInput) (*mcp.CallToolResult, UptimeOutput, error) {
//	            var sys *client.System
//	            err := d.WithSession(ctx, in.Host, func(ctx context.Context, c *client.Client) error {
//	                var err error
//	                sys, err = c.GetSystem(ctx)
//	                return err
//	            })
//	            ...
//	        }
//	    }),
//	)
//
// # Configuration
//
//	server, err := mcpsrv.NewServer(
//	    mcpsrv.WithLogLevel("debug"),
//	    mcpsrv.WithLogFile("/var/log/aoscx-mcp.log"),
//	    mcpsrv.WithHTTPClient(client.DefaultHTTPClient(5*time.Second, true)),
//	)
package mcpsrv
