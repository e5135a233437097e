package tools

import (
	"context"
	"errors"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"golang.org/x/sync/errgroup"

	"github.com/usestring/aoscx-mcp/pkg/client"
)

// SystemInput is the input for aoscx_system.
type SystemInput struct {
	Host string `json:"host,omitempty" jsonschema:"Switch hostname or IP (default: ARUBAOS_CX_HOST)"`
}

// SystemOutput summarizes a switch's identity and firmware.
type SystemOutput struct {
	Host            string `json:"host"`
	Hostname        string `json:"hostname"`
	PlatformName    string `json:"platform_name"`
	SoftwareVersion string `json:"software_version"`
	BootTime        string `json:"boot_time,omitempty"`
	UptimeSeconds   int64  `json:"uptime_seconds,omitempty"`
	MgmtIP          string `json:"mgmt_ip,omitempty"`

	Firmware client.Firmware `json:"firmware"`
}

// WithSession logs in to host, runs fn and logs out, the way RequestOnce
// does for a single request. Logout runs whenever login succeeded.
func (d *Deps) WithSession(ctx context.Context, host string, fn func(ctx context.Context, c *client.Client) error) (err error) {
	c := d.NewClient(host)
	if err := c.Login(ctx); err != nil {
		return err
	}
	defer func() {
		if logoutErr := c.Logout(context.WithoutCancel(ctx)); logoutErr != nil {
			err = errors.Join(err, logoutErr)
		}
	}()
	return fn(ctx, c)
}

// ToolSystem reads /system and /firmware within one session.
func ToolSystem(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input SystemInput) (*sdkmcp.CallToolResult, SystemOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input SystemInput) (*sdkmcp.CallToolResult, SystemOutput, error) {
		host, err := d.ResolveHost(input.Host)
		if err != nil {
			return nil, SystemOutput{}, err
		}

		output, err := d.ReadSystem(ctx, host)
		if err != nil {
			return nil, SystemOutput{}, WrapSwitchError(err)
		}
		return nil, output, nil
	}
}

// ReadSystem fetches the system summary of host.
func (d *Deps) ReadSystem(ctx context.Context, host string) (SystemOutput, error) {
	var sys *client.System
	var fw *client.Firmware

	err := d.WithSession(ctx, host, func(ctx context.Context, c *client.Client) error {
		g, ctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			var err error
			sys, err = c.GetSystem(ctx)
			return err
		})
		g.Go(func() error {
			var err error
			fw, err = c.GetFirmware(ctx)
			return err
		})
		return g.Wait()
	})
	if err != nil {
		return SystemOutput{}, err
	}

	output := SystemOutput{
		Host:            host,
		Hostname:        sys.Hostname,
		PlatformName:    sys.PlatformName,
		SoftwareVersion: sys.SoftwareVersion,
		MgmtIP:          sys.MgmtIntf["ip"],
		Firmware:        *fw,
	}
	if sys.BootTime > 0 {
		boot := time.Unix(sys.BootTime, 0).UTC()
		output.BootTime = boot.Format(time.RFC3339)
		output.UptimeSeconds = int64(time.Since(boot).Seconds())
	}
	return output, nil
}
