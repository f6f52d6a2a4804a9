// Package codec writes dataset rows in the export formats offered by the
// dashboard.
package codec

import (
	"io"
	"sort"
	"strings"

	"irisdash/internal/domain"
)

// Exporter writes rows in one format
type Exporter interface {
	Export(rows []domain.Sample, w io.Writer) error
	Format() string
	ContentType() string
}

// Exporters indexes exporters by format name
type Exporters map[string]Exporter

// DefaultExporters returns the csv, json and yaml exporters
func DefaultExporters() Exporters {
	return NewExporters(NewCSVCodec(), NewJSONCodec(), NewYAMLCodec())
}

// NewExporters indexes the given exporters
func NewExporters(list ...Exporter) Exporters {
	out := make(Exporters, len(list))
	for _, e := range list {
		out[e.Format()] = e
	}
	return out
}

// Get looks up an exporter, ignoring case. "yml" is accepted for yaml.
func (e Exporters) Get(format string) (Exporter, bool) {
	format = strings.ToLower(format)
	if format == "yml" {
		format = "yaml"
	}
	ex, ok := e[format]
	return ex, ok
}

// Formats returns the registered format names, sorted
func (e Exporters) Formats() []string {
	out := make([]string, 0, len(e))
	for f := range e {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}
