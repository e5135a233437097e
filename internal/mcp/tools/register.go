package tools

import (
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// Register registers all tools with the MCP server.
func Register(srv *sdkmcp.Server, d *Deps) {
	// Tool 1: aoscx_request
	AddTool(srv, &sdkmcp.Tool{
		Name:        "aoscx_request",
		Description: "Send one REST request to an ArubaOS-CX switch inside its own login/logout pair. Returns {status_code, body, values, logout_error}. Non-2xx responses are returned, not raised. Use for writes (POST/PUT/PATCH/DELETE) or one-off reads; use aoscx_get for cached reads.",
	}, ToolRequest(d))

	// Tool 2: aoscx_get
	AddTool(srv, &sdkmcp.Tool{
		Name:        "aoscx_get",
		Description: "Read a REST resource (e.g. /system, /system/vlans, /system/interfaces) with depth, attributes and selector support. Successful reads are cached briefly. Pass expression (JQ) to extract fields instead of returning the whole body.",
	}, ToolGet(d))

	// Tool 3: aoscx_session_login
	AddTool(srv, &sdkmcp.Tool{
		Name:        "aoscx_session_login",
		Description: "Open the persistent session on the default switch (ARUBAOS_CX_HOST). Keeps an already open session. Follow with aoscx_session_request and close with aoscx_session_logout.",
	}, ToolSessionLogin(d))

	// Tool 4: aoscx_session_request
	AddTool(srv, &sdkmcp.Tool{
		Name:        "aoscx_session_request",
		Description: "Send a REST request on the persistent session of the default switch. Use this for several requests in a row to avoid logging in for each one.",
	}, ToolSessionRequest(d))

	// Tool 5: aoscx_session_logout
	AddTool(srv, &sdkmcp.Tool{
		Name:        "aoscx_session_logout",
		Description: "Close the persistent session on the default switch. The session is dropped locally even if the switch rejects the logout.",
	}, ToolSessionLogout(d))

	// Tool 6: aoscx_session_status
	AddTool(srv, &sdkmcp.Tool{
		Name:        "aoscx_session_status",
		Description: "Report the default switch, its REST base URL, the configured user and whether the persistent session is open.",
	}, ToolSessionStatus(d))

	// Tool 7: aoscx_fleet_get
	AddTool(srv, &sdkmcp.Tool{
		Name:        "aoscx_fleet_get",
		Description: "Read the same REST resource from many switches concurrently (default: ARUBAOS_CX_HOSTS). Returns per-host results; one failing switch does not fail the call. With expression, JQ runs on every host and values are combined with host_counts.",
	}, ToolFleetGet(d))

	// Tool 8: aoscx_infer_schema
	AddTool(srv, &sdkmcp.Tool{
		Name:        "aoscx_infer_schema",
		Description: "Infer a JSON Schema for a REST resource from one or more switches. Name-keyed collections (interfaces, VLANs) are described with additionalProperties. Feed the result to aoscx_validate.",
	}, ToolInferSchema(d))

	// Tool 9: aoscx_validate
	AddTool(srv, &sdkmcp.Tool{
		Name:        "aoscx_validate",
		Description: "Validate a REST resource on one or more switches against a JSON Schema. Returns per-host errors and errors common to several hosts.",
	}, ToolValidate(d))

	// Tool 10: aoscx_system
	AddTool(srv, &sdkmcp.Tool{
		Name:        "aoscx_system",
		Description: "Summarize a switch: hostname, platform, software version, uptime, management IP and firmware images.",
	}, ToolSystem(d))
}
