package extractor

import (
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"

	"netintent/internal/domain"
)

// Extractor keys
const (
	KindOSPFNeighbor = "ospf_neighbor"
	KindPing         = "ping"
)

var log = logrus.WithField("component", "extractor")

// Extractor maps one host's raw command output to a normalized record set
type Extractor interface {
	// Name returns the key the extractor is registered under
	Name() string

	// Commands returns the commands to execute, in order
	Commands() []string

	// Transform normalizes the outputs of Commands for one host
	Transform(raw domain.RawCommandResult) domain.RecordSet
}

// Factory builds an extractor from the parameter sets of one host
type Factory func(params []domain.Params) Extractor

var factories = map[string]Factory{
	KindOSPFNeighbor: func(params []domain.Params) Extractor {
		instance := DefaultOSPFInstance
		if len(params) > 0 {
			instance = params[0].String("instance", DefaultOSPFInstance)
		}
		return NewOSPFNeighborExtractor(instance)
	},
	KindPing: func(params []domain.Params) Extractor {
		targets := make([]PingTarget, 0, len(params))
		for _, p := range params {
			targets = append(targets, PingTargetFromParams(p))
		}
		return NewPingExtractor(targets)
	},
}

// New returns the extractor registered under kind, configured from params
func New(kind string, params []domain.Params) (Extractor, error) {
	factory, ok := factories[kind]
	if !ok {
		return nil, fmt.Errorf("unknown extractor %q", kind)
	}
	return factory(params), nil
}

// Kinds lists the registered extractor keys
func Kinds() []string {
	kinds := make([]string, 0, len(factories))
	for k := range factories {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}

// Known reports whether an extractor is registered under kind
func Known(kind string) bool {
	_, ok := factories[kind]
	return ok
}
