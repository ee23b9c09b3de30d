package assertion

import (
	"fmt"
	"sort"

	"netintent/internal/domain"
	"netintent/internal/extractor"
)

// Catalog parameter names
const (
	ParamHost              = "host"
	ParamChecks            = "checks"
	ParamNeighborID        = "neighbor_id"
	ParamExpectedInterface = "expected_interface"
	ParamDestination       = "destination"
	ParamMaxDrop           = "max_drop"
)

// Check is a named predicate together with the parameters it reads
type Check struct {
	Name     string
	Requires []string
	Eval     func(set domain.RecordSet, p domain.Params) *Failure
}

// Applies reports whether every required parameter is present
func (c Check) Applies(p domain.Params) bool {
	for _, req := range c.Requires {
		if !p.Has(req) {
			return false
		}
	}
	return true
}

// Class groups the checks run against one extractor's records. KeyParam
// names the parameter that selects the record under test.
type Class struct {
	Name      string
	Extractor string
	KeyParam  string
	Checks    []Check
}

var classes = map[string]Class{
	extractor.KindOSPFNeighbor: {
		Name:      extractor.KindOSPFNeighbor,
		Extractor: extractor.KindOSPFNeighbor,
		KeyParam:  ParamNeighborID,
		Checks: []Check{
			{
				Name:     "neighbor_exists",
				Requires: []string{ParamNeighborID},
				Eval: func(set domain.RecordSet, p domain.Params) *Failure {
					return Exists(set, p.String(ParamNeighborID, ""))
				},
			},
			{
				Name:     "neighbor_state_full",
				Requires: []string{ParamNeighborID},
				Eval: func(set domain.RecordSet, p domain.Params) *Failure {
					return NeighborFull(set, p.String(ParamNeighborID, ""))
				},
			},
			{
				Name:     "neighbor_interface",
				Requires: []string{ParamNeighborID, ParamExpectedInterface},
				Eval: func(set domain.RecordSet, p domain.Params) *Failure {
					return NeighborInterface(set, p.String(ParamNeighborID, ""), p.String(ParamExpectedInterface, ""))
				},
			},
		},
	},
	extractor.KindPing: {
		Name:      extractor.KindPing,
		Extractor: extractor.KindPing,
		KeyParam:  ParamDestination,
		Checks: []Check{
			{
				Name:     "ping_success",
				Requires: []string{ParamDestination},
				Eval: func(set domain.RecordSet, p domain.Params) *Failure {
					return PingSuccess(set, p.String(ParamDestination, ""))
				},
			},
			{
				Name:     "ping_no_loss",
				Requires: []string{ParamDestination},
				Eval: func(set domain.RecordSet, p domain.Params) *Failure {
					return PingNoLoss(set, p.String(ParamDestination, ""))
				},
			},
			{
				Name:     "ping_max_drop",
				Requires: []string{ParamDestination, ParamMaxDrop},
				Eval: func(set domain.RecordSet, p domain.Params) *Failure {
					limit, ok := domain.ToInt(p[ParamMaxDrop])
					if !ok {
						return failf(p.String(ParamDestination, ""), "max_drop %v is not an integer", p[ParamMaxDrop])
					}
					return PingMaxLoss(set, p.String(ParamDestination, ""), limit)
				},
			},
		},
	},
}

// LookupClass returns the class registered under name
func LookupClass(name string) (Class, bool) {
	c, ok := classes[name]
	return c, ok
}

// ClassNames lists the registered classes
func ClassNames() []string {
	names := make([]string, 0, len(classes))
	for name := range classes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Check returns the named check of the class
func (c Class) Check(name string) (Check, bool) {
	for _, chk := range c.Checks {
		if chk.Name == name {
			return chk, true
		}
	}
	return Check{}, false
}

// Select returns the checks to run for one parameter set. An explicit checks
// list is honored as given; otherwise every check whose parameters are
// present runs.
func (c Class) Select(p domain.Params) ([]Check, error) {
	names := p.Strings(ParamChecks)
	if len(names) == 0 {
		var selected []Check
		for _, chk := range c.Checks {
			if chk.Applies(p) {
				selected = append(selected, chk)
			}
		}
		return selected, nil
	}

	selected := make([]Check, 0, len(names))
	for _, name := range names {
		chk, ok := c.Check(name)
		if !ok {
			return nil, fmt.Errorf("unknown check %q for class %s", name, c.Name)
		}
		if !chk.Applies(p) {
			return nil, fmt.Errorf("check %s requires %v", name, chk.Requires)
		}
		selected = append(selected, chk)
	}
	return selected, nil
}

// Evaluate runs the selected checks of one parameter set against a host's
// records
func (c Class) Evaluate(label string, set domain.RecordSet, p domain.Params) []domain.CheckResult {
	base := domain.CheckResult{
		Class: c.Name,
		Label: label,
		Host:  p.Host(),
		Key:   p.String(c.KeyParam, ""),
	}

	checks, err := c.Select(p)
	if err != nil {
		res := base
		res.Check = "select"
		res.Message = err.Error()
		return []domain.CheckResult{res}
	}

	results := make([]domain.CheckResult, 0, len(checks))
	for _, chk := range checks {
		res := base
		res.Check = chk.Name
		res.Passed = true
		if f := chk.Eval(set, p); f != nil {
			res.Passed = false
			res.Message = f.Message
		}
		results = append(results, res)
	}
	return results
}

// FailAll reports every selected check of a parameter set as failed with the
// same message, used when the host could not be polled
func (c Class) FailAll(label string, p domain.Params, message string) []domain.CheckResult {
	checks, err := c.Select(p)
	if err != nil {
		return c.Evaluate(label, nil, p)
	}

	results := make([]domain.CheckResult, 0, len(checks))
	for _, chk := range checks {
		results = append(results, domain.CheckResult{
			Class:   c.Name,
			Label:   label,
			Host:    p.Host(),
			Key:     p.String(c.KeyParam, ""),
			Check:   chk.Name,
			Message: message,
		})
	}
	return results
}
