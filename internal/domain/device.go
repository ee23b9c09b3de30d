package domain

import (
	"net"
	"strconv"
)

// DefaultSSHPort is used when a device does not name a port
const DefaultSSHPort = 22

// Device identifies a managed network device, how to reach it, and the
// template that renders its intended configuration
type Device struct {
	Name          string         `json:"name" yaml:"name"`
	Address       string         `json:"address,omitempty" yaml:"address,omitempty"`
	Port          int            `json:"port,omitempty" yaml:"port,omitempty"`
	Site          string         `json:"site,omitempty" yaml:"site,omitempty"`
	Platform      string         `json:"platform,omitempty" yaml:"platform,omitempty"`
	Role          string         `json:"role,omitempty" yaml:"role,omitempty"`
	Template      string         `json:"template,omitempty" yaml:"template,omitempty"`
	CommandPrefix string         `json:"command_prefix,omitempty" yaml:"command_prefix,omitempty"`
	Vars          map[string]any `json:"vars,omitempty" yaml:"vars,omitempty"`
}

// HasTemplate reports whether a config template is associated with the device
func (d Device) HasTemplate() bool {
	return d.Template != ""
}

// Target returns the host:port to dial, falling back to the device name when
// no address is set
func (d Device) Target() string {
	host := d.Address
	if host == "" {
		host = d.Name
	}
	port := d.Port
	if port == 0 {
		port = DefaultSSHPort
	}
	return net.JoinHostPort(host, strconv.Itoa(port))
}
