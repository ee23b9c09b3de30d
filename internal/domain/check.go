package domain

import "time"

// CheckResult is the verdict of one check for one key on one host
type CheckResult struct {
	Class   string `json:"class" yaml:"class"`
	Label   string `json:"label,omitempty" yaml:"label,omitempty"`
	Host    string `json:"host" yaml:"host"`
	Key     string `json:"key" yaml:"key"`
	Check   string `json:"check" yaml:"check"`
	Passed  bool   `json:"passed" yaml:"passed"`
	Message string `json:"message,omitempty" yaml:"message,omitempty"`
}

// CheckReport collects the results of a catalog run
type CheckReport struct {
	StartedAt  time.Time     `json:"started_at" yaml:"started_at"`
	FinishedAt time.Time     `json:"finished_at" yaml:"finished_at"`
	Results    []CheckResult `json:"results" yaml:"results"`
	Passed     int           `json:"passed" yaml:"passed"`
	Failed     int           `json:"failed" yaml:"failed"`
}

// Add appends a result and updates the counters
func (r *CheckReport) Add(result CheckResult) {
	r.Results = append(r.Results, result)
	if result.Passed {
		r.Passed++
	} else {
		r.Failed++
	}
}

// OK reports whether every check passed
func (r *CheckReport) OK() bool {
	return r.Failed == 0
}
