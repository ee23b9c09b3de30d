package codec

import (
	"fmt"
	"io"
	"sort"

	"netintent/internal/domain"
)

// Exporter writes check reports and sync outcomes in one format
type Exporter interface {
	ExportReport(report *domain.CheckReport, w io.Writer) error
	ExportOutcomes(outcomes []domain.SyncOutcome, w io.Writer) error
	Format() string
}

// InventoryImporter reads devices from an external inventory format
type InventoryImporter interface {
	ParseDevices(r io.Reader) ([]domain.Device, error)
	Format() string
}

var exporters = map[string]Exporter{
	"json": NewJSONCodec(),
	"yaml": NewYAMLCodec(),
}

// ExporterFor returns the exporter for a format name
func ExporterFor(format string) (Exporter, error) {
	e, ok := exporters[format]
	if !ok {
		return nil, fmt.Errorf("unknown output format %q (supported: %v)", format, Formats())
	}
	return e, nil
}

// Formats lists the supported output formats
func Formats() []string {
	names := make([]string, 0, len(exporters))
	for name := range exporters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
