package extractor

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"netintent/internal/domain"
)

// DefaultOSPFInstance is the OSPF instance queried when none is given
const DefaultOSPFInstance = "main"

// Field names in the SR Linux "show ... ospf ... neighbor" structure
const (
	ospfInstancesKey      = "instances"
	ospfNeighborsBriefKey = "neighbors_brief"
	ospfRouterIDKey       = "Rtr Id"
	ospfInterfaceKey      = "Interface-Name"
	ospfStateKey          = "State"
	ospfPriorityKey       = "Pri"
	ospfRetxQueueKey      = "RetxQ"
	ospfDeadTimerKey      = "Time Before Dead"
)

// OSPFNeighborExtractor normalizes OSPF neighbor tables keyed by router id
type OSPFNeighborExtractor struct {
	instance string
}

// NewOSPFNeighborExtractor creates an extractor querying the given instance
func NewOSPFNeighborExtractor(instance string) *OSPFNeighborExtractor {
	if instance == "" {
		instance = DefaultOSPFInstance
	}
	return &OSPFNeighborExtractor{instance: instance}
}

// Name returns the extractor key
func (e *OSPFNeighborExtractor) Name() string {
	return KindOSPFNeighbor
}

// Instance returns the OSPF instance the command targets
func (e *OSPFNeighborExtractor) Instance() string {
	return e.instance
}

// Commands returns the neighbor command for the configured instance
func (e *OSPFNeighborExtractor) Commands() []string {
	return []string{
		fmt.Sprintf("show network-instance default protocols ospf instance %s neighbor", e.instance),
	}
}

// Transform implements Extractor
func (e *OSPFNeighborExtractor) Transform(raw domain.RawCommandResult) domain.RecordSet {
	set := make(domain.RecordSet)
	for id, rec := range e.Neighbors(raw) {
		set[id] = rec
	}
	return set
}

// Neighbors walks every command result for instances and their brief
// neighbor lists. A router id seen twice keeps the last entry.
func (e *OSPFNeighborExtractor) Neighbors(raw domain.RawCommandResult) map[string]domain.NeighborRecord {
	entry := log.WithFields(logrus.Fields{"extractor": KindOSPFNeighbor, "host": raw.Host})
	neighbors := make(map[string]domain.NeighborRecord)

	for _, res := range raw.Results {
		if res.Err != nil {
			entry.WithError(res.Err).WithField("command", res.Command).Debug("skipping failed command")
			continue
		}

		data, err := decodeStructured(res.Output)
		if err != nil {
			entry.WithError(err).WithField("command", res.Command).Debug("skipping unstructured output")
			continue
		}

		for _, result := range commandResults(data) {
			instances, ok := asList(result[ospfInstancesKey])
			if !ok {
				continue
			}
			for _, inst := range instances {
				instMap, ok := asMap(inst)
				if !ok {
					continue
				}
				brief, ok := asList(instMap[ospfNeighborsBriefKey])
				if !ok {
					continue
				}
				for _, item := range brief {
					rec, ok := parseNeighbor(item, entry)
					if !ok {
						continue
					}
					neighbors[rec.RouterID] = rec
				}
			}
		}
	}

	return neighbors
}

// commandResults returns the per-command result mappings. The usual shape is
// {command: result}; a result passed without the command wrapper is accepted
// as-is.
func commandResults(data map[string]any) []map[string]any {
	if _, ok := data[ospfInstancesKey]; ok {
		return []map[string]any{data}
	}

	var results []map[string]any
	for _, v := range sortedValues(data) {
		if m, ok := asMap(v); ok {
			results = append(results, m)
		}
	}
	return results
}

func parseNeighbor(item any, entry *logrus.Entry) (domain.NeighborRecord, bool) {
	m, ok := asMap(item)
	if !ok {
		entry.WithField("entry", item).Debug("skipping malformed neighbor entry")
		return domain.NeighborRecord{}, false
	}

	routerID, ok := getStringField(m, ospfRouterIDKey)
	if !ok || routerID == "" {
		entry.WithField("entry", m).Debug("skipping neighbor entry without router id")
		return domain.NeighborRecord{}, false
	}

	fieldLog := entry.WithField("router_id", routerID)
	iface, _ := getStringField(m, ospfInterfaceKey)
	state, ok := getStringField(m, ospfStateKey)
	if !ok {
		fieldLog.WithField("field", ospfStateKey).Debug("default applied")
	}

	return domain.NewNeighborRecord(
		routerID,
		iface,
		state,
		getIntField(m, ospfPriorityKey, domain.DefaultNeighborPriority, fieldLog),
		getIntField(m, ospfRetxQueueKey, domain.DefaultNeighborRetransmitQueue, fieldLog),
		getIntField(m, ospfDeadTimerKey, domain.DefaultNeighborDeadTimer, fieldLog),
	), true
}
