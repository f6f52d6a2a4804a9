package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"irisdash/internal/domain"
)

// ============================================================================
// Null Type Conversion Helpers
// ============================================================================

// nullToString safely converts sql.NullString to string
func nullToString(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}

// stringToNull safely converts string to sql.NullString
func stringToNull(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// boolToInt stores a bool in an INTEGER column
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// ============================================================================
// JSON Marshaling Helpers
// ============================================================================

// unmarshalJSONField safely unmarshals JSON from nullable string into target
func unmarshalJSONField(ns sql.NullString, target interface{}) error {
	if !ns.Valid || ns.String == "" {
		return nil
	}
	return json.Unmarshal([]byte(ns.String), target)
}

// fitToNull marshals a fit to nullable JSON; no fit is NULL
func fitToNull(fit *domain.Regression) (sql.NullString, error) {
	if fit == nil {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(fit)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

// ============================================================================
// Interaction Row Scanner
// ============================================================================
//
// Column order must match between interactionColumns, scanArgs() and
// interactionInsertArgs(). New columns are appended and added to existing
// databases in migrate() with addColumnIfNotExists().

var interactionInsertFields = []string{
	"stage", "species", "x_column", "y_column", "x_min", "x_max", "y_min", "y_max",
	"regression", "points", "fit", "duration_ns", "created_at", "fit_error",
}

var (
	interactionInsertColumns      = strings.Join(interactionInsertFields, ", ")
	interactionInsertPlaceholders = placeholders(len(interactionInsertFields))
	interactionColumns            = "id, " + interactionInsertColumns
)

// placeholders returns n comma separated bind markers
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

// interactionRow holds all columns from an interaction query for scanning
type interactionRow struct {
	ID          int64
	Stage       string
	SpeciesJSON sql.NullString
	XColumn     string
	YColumn     string
	XMin, XMax  float64
	YMin, YMax  float64
	Regression  int
	Points      int
	FitJSON     sql.NullString
	DurationNS  int64
	CreatedAtNS int64
	FitError    sql.NullString
}

// scanArgs returns pointers to all fields for sql.Scan()
func (r *interactionRow) scanArgs() []interface{} {
	return []interface{}{
		&r.ID,
		&r.Stage,
		&r.SpeciesJSON,
		&r.XColumn,
		&r.YColumn,
		&r.XMin,
		&r.XMax,
		&r.YMin,
		&r.YMax,
		&r.Regression,
		&r.Points,
		&r.FitJSON,
		&r.DurationNS,
		&r.CreatedAtNS,
		&r.FitError,
	}
}

// toDomain converts the scanned row to a domain.Interaction
func (r *interactionRow) toDomain() (domain.Interaction, error) {
	in := domain.Interaction{
		ID:         r.ID,
		Stage:      r.Stage,
		Species:    []string{},
		XColumn:    domain.Column(r.XColumn),
		YColumn:    domain.Column(r.YColumn),
		XRange:     domain.Range{Min: r.XMin, Max: r.XMax},
		YRange:     domain.Range{Min: r.YMin, Max: r.YMax},
		Regression: r.Regression != 0,
		Points:     r.Points,
		Duration:   time.Duration(r.DurationNS),
		CreatedAt:  time.Unix(0, r.CreatedAtNS).UTC(),
		FitError:   nullToString(r.FitError),
	}

	if err := unmarshalJSONField(r.SpeciesJSON, &in.Species); err != nil {
		return domain.Interaction{}, fmt.Errorf("failed to unmarshal species for interaction %d: %w", r.ID, err)
	}
	if r.FitJSON.Valid {
		in.Fit = &domain.Regression{}
		if err := unmarshalJSONField(r.FitJSON, in.Fit); err != nil {
			return domain.Interaction{}, fmt.Errorf("failed to unmarshal fit for interaction %d: %w", r.ID, err)
		}
	}

	return in, nil
}

// interactionInsertArgs returns values in interactionInsertColumns order
func interactionInsertArgs(in *domain.Interaction) ([]interface{}, error) {
	species := in.Species
	if species == nil {
		species = []string{}
	}
	speciesJSON, err := json.Marshal(species)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal species: %w", err)
	}

	fit, err := fitToNull(in.Fit)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal fit: %w", err)
	}

	return []interface{}{
		in.Stage,
		string(speciesJSON),
		string(in.XColumn),
		string(in.YColumn),
		in.XRange.Min,
		in.XRange.Max,
		in.YRange.Min,
		in.YRange.Max,
		boolToInt(in.Regression),
		in.Points,
		fit,
		int64(in.Duration),
		in.CreatedAt.UnixNano(),
		stringToNull(in.FitError),
	}, nil
}
