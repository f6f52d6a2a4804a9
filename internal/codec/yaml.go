package codec

import (
	"fmt"
	"io"

	"irisdash/internal/domain"

	"gopkg.in/yaml.v3"
)

// YAMLCodec handles YAML export
type YAMLCodec struct{}

// NewYAMLCodec creates a new YAML codec
func NewYAMLCodec() *YAMLCodec {
	return &YAMLCodec{}
}

// Format returns the codec format identifier
func (c *YAMLCodec) Format() string {
	return "yaml"
}

// ContentType returns the MIME type of the output
func (c *YAMLCodec) ContentType() string {
	return "application/yaml"
}

// yamlExport is the document written by Export
type yamlExport struct {
	Count int             `yaml:"count"`
	Rows  []domain.Sample `yaml:"rows"`
}

// Export writes the rows as a YAML document with a row count
func (c *YAMLCodec) Export(rows []domain.Sample, w io.Writer) error {
	if rows == nil {
		rows = []domain.Sample{}
	}

	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)

	if err := encoder.Encode(yamlExport{Count: len(rows), Rows: rows}); err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}

	return encoder.Close()
}
