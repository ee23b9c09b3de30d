package extractor

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/sirupsen/logrus"

	"netintent/internal/domain"
)

// Ping command defaults
const (
	DefaultPingDestination = "127.0.0.1"
	DefaultPingCount       = 4
	DefaultPingTimeout     = 5
	DefaultPingVRF         = "default"
)

var pingStatsPattern = regexp.MustCompile(`(?i)(\d+)\s+packets transmitted,\s+(\d+)\s+received`)

// PingTarget describes one ping to issue
type PingTarget struct {
	Destination string
	Count       int
	Timeout     int
	VRF         string
}

// PingTargetFromParams reads a ping target from a parameter set, applying
// defaults for anything missing
func PingTargetFromParams(p domain.Params) PingTarget {
	return PingTarget{
		Destination: p.String("destination", DefaultPingDestination),
		Count:       p.Int("count", DefaultPingCount),
		Timeout:     p.Int("timeout", DefaultPingTimeout),
		VRF:         p.String("vrf", DefaultPingVRF),
	}
}

// Command returns the SR Linux ping command for the target
func (t PingTarget) Command() string {
	return fmt.Sprintf("ping -c %d -W %d network-instance %s %s", t.Count, t.Timeout, t.VRF, t.Destination)
}

// PingExtractor parses ping statistics for an ordered list of destinations
type PingExtractor struct {
	targets []PingTarget
}

// NewPingExtractor creates an extractor for the given targets. Result i is
// attributed to target i.
func NewPingExtractor(targets []PingTarget) *PingExtractor {
	copied := make([]PingTarget, len(targets))
	copy(copied, targets)
	return &PingExtractor{targets: copied}
}

// Name returns the extractor key
func (e *PingExtractor) Name() string {
	return KindPing
}

// Commands returns one ping command per target, in target order
func (e *PingExtractor) Commands() []string {
	cmds := make([]string, 0, len(e.targets))
	for _, t := range e.targets {
		cmds = append(cmds, t.Command())
	}
	return cmds
}

// Transform implements Extractor
func (e *PingExtractor) Transform(raw domain.RawCommandResult) domain.RecordSet {
	set := make(domain.RecordSet)
	for dst, rec := range e.Pings(raw) {
		set[dst] = rec
	}
	return set
}

// Pings aligns results to targets by position. Targets beyond the returned
// results produce no record; results beyond the targets are ignored.
func (e *PingExtractor) Pings(raw domain.RawCommandResult) map[string]domain.PingRecord {
	records := make(map[string]domain.PingRecord)

	for i, res := range raw.Results {
		if i >= len(e.targets) {
			break
		}
		dst := e.targets[i].Destination
		output := res.Text()
		transmitted, received := ParsePingStats(output)
		if res.Err != nil {
			log.WithError(res.Err).WithFields(logrus.Fields{"host": raw.Host, "destination": dst}).Debug("ping command failed")
		}
		records[dst] = domain.NewPingRecord(dst, output, transmitted, received)
	}

	return records
}

// ParsePingStats extracts transmitted and received packet counts, returning
// zeros when the summary line is absent
func ParsePingStats(output string) (transmitted, received int) {
	match := pingStatsPattern.FindStringSubmatch(output)
	if match == nil {
		return 0, 0
	}
	transmitted, err := strconv.Atoi(match[1])
	if err != nil {
		return 0, 0
	}
	received, err = strconv.Atoi(match[2])
	if err != nil {
		return 0, 0
	}
	return transmitted, received
}
