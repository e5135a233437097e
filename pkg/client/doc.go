// Package client provides a Go SDK for the ArubaOS-CX switch REST API.
//
// The switch authenticates REST callers with a session cookie: a POST to
// /rest/{version}/login returns Set-Cookie headers, later requests replay
// them in a Cookie header, and a POST to /rest/{version}/logout ends the
// session. A Client manages that lifecycle for one switch.
//
// # Quick Start
//
// Open a session, issue requests, close it:
//
//	c := client.New("10.20.30.40",
//	    client.WithUsername("admin"),
//	    client.WithPassword("secret"),
//	)
//	if err := c.Login(ctx); err != nil {
//	    return err
//	}
//	defer c.Logout(ctx)
//
//	sys, err := c.GetSystem(ctx)
//
// For a single call, let the client log in and out around it:
//
//	resp, err := client.RequestOnce(ctx, "10.20.30.40", "/system", nil)
//
// # Configuration
//
// Options not given to New are read from ARUBAOS_CX_VERSION,
// ARUBAOS_CX_USERNAME and ARUBAOS_CX_PASSWORD, falling back to "v1",
// "admin" and an empty password. WithLookup replaces the environment with
// any other source.
//
// Switches ship with self-signed certificates; DefaultHTTPClient builds a
// transport that can skip verification:
//
//	c := client.New(host, client.WithHTTPClient(client.DefaultHTTPClient(10*time.Second, true)))
//
// # Errors
//
// A rejected login or logout returns an *AuthError whose Message is the
// response body. Use errors.Is with ErrAuthenticationFailed or
// ErrDeauthenticationFailed to tell them apart. Transport errors are
// returned wrapped but otherwise untouched. Do never checks the status code.
//
// A Client is safe for concurrent use. Login and Logout should not race with
// requests that expect to be authenticated.
package client
