package domain

import "fmt"

// Inventory is an ordered set of devices indexed by name
type Inventory struct {
	devices []Device
	index   map[string]int
}

// NewInventory builds an inventory, rejecting empty or duplicate names
func NewInventory(devices []Device) (*Inventory, error) {
	inv := &Inventory{
		devices: make([]Device, 0, len(devices)),
		index:   make(map[string]int, len(devices)),
	}
	for _, d := range devices {
		if d.Name == "" {
			return nil, fmt.Errorf("device without a name")
		}
		if _, dup := inv.index[d.Name]; dup {
			return nil, fmt.Errorf("duplicate device %q", d.Name)
		}
		inv.index[d.Name] = len(inv.devices)
		inv.devices = append(inv.devices, d)
	}
	return inv, nil
}

// Lookup returns the named device
func (inv *Inventory) Lookup(name string) (Device, bool) {
	if inv == nil {
		return Device{}, false
	}
	i, ok := inv.index[name]
	if !ok {
		return Device{}, false
	}
	return inv.devices[i], true
}

// Resolve returns the named device, or a bare device addressed by its name
// when the inventory does not list it
func (inv *Inventory) Resolve(name string) Device {
	if d, ok := inv.Lookup(name); ok {
		return d
	}
	return Device{Name: name}
}

// Devices returns all devices in declaration order
func (inv *Inventory) Devices() []Device {
	if inv == nil {
		return nil
	}
	out := make([]Device, len(inv.devices))
	copy(out, inv.devices)
	return out
}

// Select returns the named devices in the order given
func (inv *Inventory) Select(names []string) ([]Device, error) {
	out := make([]Device, 0, len(names))
	for _, name := range names {
		d, ok := inv.Lookup(name)
		if !ok {
			return nil, fmt.Errorf("device %q not in inventory", name)
		}
		out = append(out, d)
	}
	return out, nil
}

// Len returns the number of devices
func (inv *Inventory) Len() int {
	if inv == nil {
		return 0
	}
	return len(inv.devices)
}
