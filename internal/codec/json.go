package codec

import (
	"encoding/json"
	"fmt"
	"io"

	"netintent/internal/domain"
)

// JSONCodec exports reports and outcomes as indented JSON
type JSONCodec struct{}

// NewJSONCodec creates a new JSON codec
func NewJSONCodec() *JSONCodec {
	return &JSONCodec{}
}

// Format returns the codec format identifier
func (c *JSONCodec) Format() string {
	return "json"
}

// ExportReport writes a check report
func (c *JSONCodec) ExportReport(report *domain.CheckReport, w io.Writer) error {
	return c.encode(report, w)
}

// ExportOutcomes writes sync outcomes
func (c *JSONCodec) ExportOutcomes(outcomes []domain.SyncOutcome, w io.Writer) error {
	if outcomes == nil {
		outcomes = []domain.SyncOutcome{}
	}
	return c.encode(outcomes, w)
}

func (c *JSONCodec) encode(v any, w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")

	if err := encoder.Encode(v); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}

	return nil
}
