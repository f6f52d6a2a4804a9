package domain

import (
	"fmt"
	"strings"
)

// Column names a column of the iris table
type Column string

const (
	ColumnSepalLength Column = "sepal_length"
	ColumnSepalWidth  Column = "sepal_width"
	ColumnPetalLength Column = "petal_length"
	ColumnPetalWidth  Column = "petal_width"
	ColumnSpecies     Column = "species"
)

var numericColumns = []Column{
	ColumnSepalLength,
	ColumnSepalWidth,
	ColumnPetalLength,
	ColumnPetalWidth,
}

// NumericColumns returns the four measurement columns in table order
func NumericColumns() []Column {
	out := make([]Column, len(numericColumns))
	copy(out, numericColumns)
	return out
}

// ParseColumn resolves a column name. Dots and spaces are accepted in place of
// underscores so "Sepal.Length" and "sepal length" both resolve.
func ParseColumn(s string) (Column, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.NewReplacer(".", "_", " ", "_", "-", "_").Replace(norm)
	switch Column(norm) {
	case ColumnSepalLength, ColumnSepalWidth, ColumnPetalLength, ColumnPetalWidth, ColumnSpecies:
		return Column(norm), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownColumn, s)
}

// IsNumeric reports whether the column holds measurements
func (c Column) IsNumeric() bool {
	for _, n := range numericColumns {
		if n == c {
			return true
		}
	}
	return false
}

// Title returns a human readable axis title, e.g. "Sepal Length"
func (c Column) Title() string {
	parts := strings.Split(string(c), "_")
	for i, p := range parts {
		if p == "" {
			continue
		}
		parts[i] = strings.ToUpper(p[:1]) + p[1:]
	}
	return strings.Join(parts, " ")
}
