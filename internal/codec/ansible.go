package codec

import (
	"fmt"
	"io"
	"sort"

	"netintent/internal/domain"

	"gopkg.in/yaml.v3"
)

// Host variables with a dedicated Device field
const (
	varAnsibleHost   = "ansible_host"
	varAnsiblePort   = "ansible_port"
	varNetworkOS     = "ansible_network_os"
	varPlatform      = "platform"
	varRole          = "role"
	varSite          = "site"
	varTemplate      = "netintent_template"
	varCommandPrefix = "netintent_command_prefix"
)

// AnsibleCodec reads devices from an Ansible YAML inventory
type AnsibleCodec struct{}

// NewAnsibleCodec creates a new Ansible codec
func NewAnsibleCodec() *AnsibleCodec {
	return &AnsibleCodec{}
}

// Format returns the codec format identifier
func (c *AnsibleCodec) Format() string {
	return "ansible-inventory"
}

// ansibleInventory represents the Ansible inventory structure
type ansibleInventory struct {
	All ansibleGroup `yaml:"all"`
}

type ansibleGroup struct {
	Children map[string]ansibleGroupDef `yaml:"children,omitempty"`
	Hosts    map[string]map[string]any  `yaml:"hosts,omitempty"`
	Vars     map[string]any             `yaml:"vars,omitempty"`
}

type ansibleGroupDef struct {
	Hosts map[string]map[string]any `yaml:"hosts,omitempty"`
	Vars  map[string]any            `yaml:"vars,omitempty"`
}

// ParseDevices imports devices from an Ansible inventory. Variables merge
// from all.vars, then group vars, then host vars. A host listed in several
// groups takes the first group in name order. Devices are sorted by name.
func (c *AnsibleCodec) ParseDevices(r io.Reader) ([]domain.Device, error) {
	var inv ansibleInventory
	decoder := yaml.NewDecoder(r)
	if err := decoder.Decode(&inv); err != nil {
		return nil, fmt.Errorf("failed to parse Ansible inventory: %w", err)
	}

	devices := make(map[string]domain.Device)

	groupNames := make([]string, 0, len(inv.All.Children))
	for name := range inv.All.Children {
		groupNames = append(groupNames, name)
	}
	sort.Strings(groupNames)

	for _, groupName := range groupNames {
		group := inv.All.Children[groupName]
		for hostID, hostVars := range group.Hosts {
			if _, exists := devices[hostID]; exists {
				continue
			}
			vars := mergeVars(inv.All.Vars, group.Vars, hostVars)
			devices[hostID] = c.hostToDevice(hostID, groupName, vars)
		}
	}

	for hostID, hostVars := range inv.All.Hosts {
		if _, exists := devices[hostID]; exists {
			continue
		}
		devices[hostID] = c.hostToDevice(hostID, "", mergeVars(inv.All.Vars, hostVars))
	}

	out := make([]domain.Device, 0, len(devices))
	for _, d := range devices {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// hostToDevice converts merged Ansible host variables to a domain.Device
func (c *AnsibleCodec) hostToDevice(hostID, groupName string, vars map[string]any) domain.Device {
	device := domain.Device{
		Name:          hostID,
		Address:       stringVar(vars, varAnsibleHost),
		Site:          stringVar(vars, varSite),
		Platform:      stringVar(vars, varPlatform),
		Role:          stringVar(vars, varRole),
		Template:      stringVar(vars, varTemplate),
		CommandPrefix: stringVar(vars, varCommandPrefix),
	}

	if port, ok := domain.ToInt(vars[varAnsiblePort]); ok {
		device.Port = port
	}
	if device.Platform == "" {
		device.Platform = stringVar(vars, varNetworkOS)
	}
	// Fall back to the group as role
	if device.Role == "" {
		device.Role = groupName
	}

	for key, value := range vars {
		switch key {
		case varAnsibleHost, varAnsiblePort, varNetworkOS, varPlatform, varRole, varSite, varTemplate, varCommandPrefix:
			continue
		}
		if device.Vars == nil {
			device.Vars = make(map[string]any)
		}
		device.Vars[key] = value
	}

	return device
}

func mergeVars(layers ...map[string]any) map[string]any {
	merged := make(map[string]any)
	for _, layer := range layers {
		for k, v := range layer {
			merged[k] = v
		}
	}
	return merged
}

func stringVar(vars map[string]any, key string) string {
	v, ok := vars[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}
