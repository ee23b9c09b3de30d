package codec

import (
	"fmt"
	"io"
	"time"

	"netintent/internal/domain"

	"gopkg.in/yaml.v3"
)

// YAMLCodec exports reports and outcomes as YAML and reads plain device
// lists
type YAMLCodec struct{}

// NewYAMLCodec creates a new YAML codec
func NewYAMLCodec() *YAMLCodec {
	return &YAMLCodec{}
}

// Format returns the codec format identifier
func (c *YAMLCodec) Format() string {
	return "yaml"
}

// yamlOutcome flattens the outcome error for readability
type yamlOutcome struct {
	ID         string    `yaml:"id"`
	Device     string    `yaml:"device"`
	Path       string    `yaml:"path,omitempty"`
	Decision   string    `yaml:"decision,omitempty"`
	Stage      string    `yaml:"stage"`
	Success    bool      `yaml:"success"`
	DryRun     bool      `yaml:"dry_run,omitempty"`
	CommitRef  string    `yaml:"commit_ref,omitempty"`
	Message    string    `yaml:"message,omitempty"`
	LineCount  int       `yaml:"line_count,omitempty"`
	Diff       string    `yaml:"diff,omitempty"`
	Error      string    `yaml:"error,omitempty"`
	ErrorKind  string    `yaml:"error_kind,omitempty"`
	StartedAt  time.Time `yaml:"started_at"`
	FinishedAt time.Time `yaml:"finished_at"`
}

// yamlInventory is a plain device list
type yamlInventory struct {
	Devices []domain.Device `yaml:"devices"`
}

// ExportReport writes a check report
func (c *YAMLCodec) ExportReport(report *domain.CheckReport, w io.Writer) error {
	return c.encode(report, w)
}

// ExportOutcomes writes sync outcomes
func (c *YAMLCodec) ExportOutcomes(outcomes []domain.SyncOutcome, w io.Writer) error {
	out := make([]yamlOutcome, 0, len(outcomes))
	for _, o := range outcomes {
		yo := yamlOutcome{
			ID:         o.ID,
			Device:     o.Device,
			Path:       o.Path,
			Decision:   string(o.Decision.Kind),
			Stage:      string(o.Stage),
			Success:    o.Success,
			DryRun:     o.DryRun,
			CommitRef:  o.CommitRef,
			Message:    o.Message,
			LineCount:  o.LineCount,
			Diff:       o.Diff,
			StartedAt:  o.StartedAt,
			FinishedAt: o.FinishedAt,
		}
		if o.Err != nil {
			yo.Error = o.Err.Error()
			yo.ErrorKind = string(o.Err.Kind)
		}
		out = append(out, yo)
	}
	return c.encode(out, w)
}

// ParseDevices reads a `devices:` list
func (c *YAMLCodec) ParseDevices(r io.Reader) ([]domain.Device, error) {
	var inv yamlInventory
	decoder := yaml.NewDecoder(r)
	if err := decoder.Decode(&inv); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	return inv.Devices, nil
}

func (c *YAMLCodec) encode(v any, w io.Writer) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	defer encoder.Close()

	if err := encoder.Encode(v); err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}

	return nil
}
