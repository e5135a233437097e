package client

import (
	"context"
	"fmt"
	"net/url"
)

// System is the subset of the /system resource most callers look at.
type System struct {
	Hostname        string            `json:"hostname"`
	PlatformName    string            `json:"platform_name"`
	SoftwareVersion string            `json:"software_version"`
	BootTime        int64             `json:"boot_time"`
	MgmtIntf        map[string]string `json:"mgmt_intf,omitempty"`
	OtherConfig     map[string]string `json:"other_config,omitempty"`
}

// Firmware describes the images reported by /firmware.
type Firmware struct {
	CurrentVersion   string `json:"current_version"`
	PrimaryVersion   string `json:"primary_version"`
	SecondaryVersion string `json:"secondary_version"`
	DefaultImage     string `json:"default_image"`
	BootedImage      string `json:"booted_image"`
}

// systemAttributes restricts the /system payload to the fields of System.
var systemAttributes = "hostname,platform_name,software_version,boot_time,mgmt_intf,other_config"

// GetSystem fetches the switch's /system resource. The client must be logged in.
func (c *Client) GetSystem(ctx context.Context) (*System, error) {
	query := url.Values{}
	query.Set("attributes", systemAttributes)

	var sys System
	if err := c.GetJSON(ctx, "/system", query, &sys); err != nil {
		return nil, fmt.Errorf("getting system: %w", err)
	}
	return &sys, nil
}

// GetFirmware fetches the switch's /firmware resource. The client must be logged in.
func (c *Client) GetFirmware(ctx context.Context) (*Firmware, error) {
	var fw Firmware
	if err := c.GetJSON(ctx, "/firmware", nil, &fw); err != nil {
		return nil, fmt.Errorf("getting firmware: %w", err)
	}
	return &fw, nil
}
