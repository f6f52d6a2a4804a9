package codec

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"irisdash/internal/domain"
)

// CSVCodec writes rows with the same header the dataset is loaded from
type CSVCodec struct{}

// NewCSVCodec creates a new CSV codec
func NewCSVCodec() *CSVCodec {
	return &CSVCodec{}
}

func (c *CSVCodec) Format() string      { return "csv" }
func (c *CSVCodec) ContentType() string { return "text/csv; charset=utf-8" }

// Export writes a header followed by one record per row
func (c *CSVCodec) Export(rows []domain.Sample, w io.Writer) error {
	cw := csv.NewWriter(w)

	header := make([]string, 0, 5)
	for _, col := range domain.NumericColumns() {
		header = append(header, string(col))
	}
	header = append(header, string(domain.ColumnSpecies))
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	record := make([]string, len(header))
	for _, row := range rows {
		for i, col := range domain.NumericColumns() {
			v, _ := row.Value(col)
			record[i] = strconv.FormatFloat(v, 'f', -1, 64)
		}
		record[len(record)-1] = row.Species
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV: %w", err)
	}
	return nil
}
