package domain

import (
	"sort"
	"strings"
)

// Default values applied when a neighbor entry omits a field
const (
	DefaultNeighborPriority        = 1
	DefaultNeighborRetransmitQueue = 0
	DefaultNeighborDeadTimer       = 0
)

// CommandOutput is the raw result of one command executed on a host.
// Output is either text or an already-decoded nested mapping.
type CommandOutput struct {
	Command string `json:"command" yaml:"command"`
	Output  any    `json:"output,omitempty" yaml:"output,omitempty"`
	Err     error  `json:"-" yaml:"-"`
}

// Text returns the textual rendering of the output, or the error text when
// the command failed
func (c CommandOutput) Text() string {
	if c.Err != nil {
		return c.Err.Error()
	}
	switch v := c.Output.(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	default:
		return formatAny(v)
	}
}

// RawCommandResult holds the ordered outputs of one command batch on a host
type RawCommandResult struct {
	Host    string          `json:"host" yaml:"host"`
	Results []CommandOutput `json:"results" yaml:"results"`
}

// Record is a normalized fact extracted from command output
type Record interface {
	RecordKey() string
}

// RecordSet maps a natural key to its record. Later writes replace earlier
// ones for the same key.
type RecordSet map[string]Record

// Keys returns the record keys in sorted order
func (s RecordSet) Keys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// NeighborRecord is one OSPF adjacency as seen from the polled host
type NeighborRecord struct {
	RouterID        string `json:"router_id" yaml:"router_id"`
	Interface       string `json:"interface" yaml:"interface"`
	State           string `json:"state" yaml:"state"`
	Priority        int    `json:"priority" yaml:"priority"`
	RetransmitQueue int    `json:"retransmit_queue" yaml:"retransmit_queue"`
	DeadTimer       int    `json:"dead_timer" yaml:"dead_timer"`
	IsFull          bool   `json:"is_full" yaml:"is_full"`
}

// NewNeighborRecord builds a neighbor record, deriving IsFull from state
func NewNeighborRecord(routerID, iface, state string, priority, retransmitQueue, deadTimer int) NeighborRecord {
	return NeighborRecord{
		RouterID:        routerID,
		Interface:       iface,
		State:           state,
		Priority:        priority,
		RetransmitQueue: retransmitQueue,
		DeadTimer:       deadTimer,
		IsFull:          strings.ToLower(state) == "full",
	}
}

// RecordKey implements Record
func (n NeighborRecord) RecordKey() string {
	return n.RouterID
}

// PingRecord is the outcome of one ping toward a destination
type PingRecord struct {
	Destination        string `json:"destination" yaml:"destination"`
	Output             string `json:"output" yaml:"output"`
	Success            bool   `json:"success" yaml:"success"`
	PacketsTransmitted int    `json:"packets_transmitted" yaml:"packets_transmitted"`
	PacketsReceived    int    `json:"packets_received" yaml:"packets_received"`
	PacketLoss         int    `json:"packet_loss" yaml:"packet_loss"`
}

// NewPingRecord builds a ping record from packet counts. Zero transmitted
// packets is always a failure with no loss, whatever the received count.
func NewPingRecord(destination, output string, transmitted, received int) PingRecord {
	rec := PingRecord{
		Destination:        destination,
		Output:             output,
		PacketsTransmitted: transmitted,
		PacketsReceived:    received,
	}
	if transmitted > 0 {
		rec.Success = received > 0
		rec.PacketLoss = transmitted - received
	}
	return rec
}

// RecordKey implements Record
func (p PingRecord) RecordKey() string {
	return p.Destination
}
