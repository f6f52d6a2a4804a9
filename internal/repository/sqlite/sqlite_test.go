package sqlite

import (
	"context"
	"database/sql"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"irisdash/internal/domain"
)

// ============================================================================
// Test Helpers
// ============================================================================

// newTestRepo creates an in-memory SQLite repository for testing
func newTestRepo(t *testing.T) *Repository {
	t.Helper()
	repo, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test repository: %v", err)
	}

	t.Cleanup(func() {
		repo.Close()
	})
	return repo
}

// assertNoError fails the test if err is not nil
func assertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// assertEqual fails the test if expected != actual
func assertEqual(t *testing.T, expected, actual interface{}) {
	t.Helper()
	if !reflect.DeepEqual(expected, actual) {
		t.Fatalf("expected %v, got %v", expected, actual)
	}
}

func newInteraction(points int) *domain.Interaction {
	return &domain.Interaction{
		Stage:      "regression",
		Species:    []string{"setosa", "virginica"},
		XColumn:    domain.ColumnSepalLength,
		YColumn:    domain.ColumnPetalLength,
		XRange:     domain.Range{Min: 4.3, Max: 7.9},
		YRange:     domain.Range{Min: 1, Max: 6.9},
		Regression: false,
		Points:     points,
		Duration:   1500 * time.Microsecond,
	}
}

// ============================================================================
// Helper Function Tests
// ============================================================================

func TestNullToString(t *testing.T) {
	tests := []struct {
		name     string
		input    sql.NullString
		expected string
	}{
		{"valid string", sql.NullString{String: "hello", Valid: true}, "hello"},
		{"valid empty string", sql.NullString{String: "", Valid: true}, ""},
		{"null string", sql.NullString{Valid: false}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := nullToString(tt.input); result != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, result)
			}
		})
	}
}

func TestStringToNull(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected sql.NullString
	}{
		{"non-empty string", "hello", sql.NullString{String: "hello", Valid: true}},
		{"empty string", "", sql.NullString{Valid: false}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := stringToNull(tt.input); result != tt.expected {
				t.Errorf("expected %v, got %v", tt.expected, result)
			}
		})
	}
}

func TestFitToNull(t *testing.T) {
	ns, err := fitToNull(nil)
	assertNoError(t, err)
	if ns.Valid {
		t.Error("nil fit should be NULL")
	}

	ns, err = fitToNull(&domain.Regression{Slope: 2, Intercept: 1, Points: 3})
	assertNoError(t, err)
	if !ns.Valid {
		t.Fatal("fit should be stored")
	}

	var back domain.Regression
	assertNoError(t, unmarshalJSONField(ns, &back))
	assertEqual(t, 2.0, back.Slope)
	assertEqual(t, 3, back.Points)
}

func TestInteractionRowToDomain(t *testing.T) {
	row := interactionRow{
		ID:          7,
		Stage:       "filter",
		SpeciesJSON: sql.NullString{String: `["versicolor"]`, Valid: true},
		XColumn:     "sepal_length",
		YColumn:     "petal_length",
		XMin:        5,
		XMax:        6,
		YMin:        3,
		YMax:        5,
		Regression:  1,
		Points:      28,
		FitJSON:     sql.NullString{String: `{"slope":1.5,"intercept":-2,"r_squared":0.4,"points":28}`, Valid: true},
		DurationNS:  int64(time.Millisecond),
		CreatedAtNS: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC).UnixNano(),
	}

	in, err := row.toDomain()
	assertNoError(t, err)
	assertEqual(t, int64(7), in.ID)
	assertEqual(t, []string{"versicolor"}, in.Species)
	assertEqual(t, domain.Range{Min: 5, Max: 6}, in.XRange)
	assertEqual(t, true, in.Regression)
	assertEqual(t, time.Millisecond, in.Duration)
	if in.Fit == nil || in.Fit.Slope != 1.5 {
		t.Errorf("unexpected fit: %+v", in.Fit)
	}
	if !in.CreatedAt.Equal(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected created_at: %v", in.CreatedAt)
	}

	row.SpeciesJSON = sql.NullString{String: "not json", Valid: true}
	if _, err := row.toDomain(); err == nil {
		t.Error("expected error for corrupt species column")
	}
}

func TestInteractionStatementShape(t *testing.T) {
	args, err := interactionInsertArgs(newInteraction(3))
	assertNoError(t, err)

	columns := strings.Split(interactionInsertColumns, ",")
	assertEqual(t, len(interactionInsertFields), len(columns))
	assertEqual(t, len(columns), strings.Count(interactionInsertPlaceholders, "?"))
	assertEqual(t, len(columns), len(args))

	var row interactionRow
	assertEqual(t, len(strings.Split(interactionColumns, ",")), len(row.scanArgs()))
}

func TestPlaceholders(t *testing.T) {
	tests := []struct {
		n    int
		want string
	}{
		{0, ""},
		{1, "?"},
		{3, "?, ?, ?"},
	}

	for _, tt := range tests {
		assertEqual(t, tt.want, placeholders(tt.n))
	}
}

// ============================================================================
// Interaction Tests
// ============================================================================

func TestRecordInteraction(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	in := newInteraction(100)
	in.Regression = true
	in.Fit = &domain.Regression{Slope: 1.86, Intercept: -7.1, RSquared: 0.76, Points: 100}
	assertNoError(t, repo.RecordInteraction(ctx, in))

	if in.ID == 0 {
		t.Error("expected ID to be assigned")
	}
	if in.CreatedAt.IsZero() {
		t.Error("expected CreatedAt to be set")
	}

	list, err := repo.ListInteractions(ctx, 10)
	assertNoError(t, err)
	if len(list) != 1 {
		t.Fatalf("expected 1 interaction, got %d", len(list))
	}

	got := list[0]
	assertEqual(t, in.ID, got.ID)
	assertEqual(t, in.Species, got.Species)
	assertEqual(t, in.XRange, got.XRange)
	assertEqual(t, in.YRange, got.YRange)
	assertEqual(t, in.Duration, got.Duration)
	assertEqual(t, *in.Fit, *got.Fit)
	if !got.CreatedAt.Equal(in.CreatedAt) {
		t.Errorf("created_at %v, want %v", got.CreatedAt, in.CreatedAt)
	}
}

func TestRecordInteractionFitError(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	in := newInteraction(1)
	in.Regression = true
	in.FitError = domain.ErrInsufficientData.Error()
	assertNoError(t, repo.RecordInteraction(ctx, in))

	count, err := repo.CountInteractions(ctx)
	assertNoError(t, err)
	assertEqual(t, int64(1), count)

	list, err := repo.ListInteractions(ctx, 0)
	assertNoError(t, err)
	assertEqual(t, 1, len(list))
	assertEqual(t, in.FitError, list[0].FitError)
	if list[0].Fit != nil {
		t.Errorf("expected no fit, got %+v", list[0].Fit)
	}
}

func TestRecordInteractionEmptySelection(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	in := newInteraction(0)
	in.Species = nil
	in.Regression = true
	in.FitError = "insufficient data for regression: need at least 2 points, have 0"
	assertNoError(t, repo.RecordInteraction(ctx, in))

	list, err := repo.ListInteractions(ctx, 0)
	assertNoError(t, err)
	if len(list) != 1 {
		t.Fatalf("expected 1 interaction, got %d", len(list))
	}
	assertEqual(t, []string{}, list[0].Species)
	assertEqual(t, in.FitError, list[0].FitError)
	if list[0].Fit != nil {
		t.Errorf("expected no fit, got %+v", list[0].Fit)
	}
}

func TestListInteractionsOrderAndLimit(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	for i := 1; i <= 5; i++ {
		assertNoError(t, repo.RecordInteraction(ctx, newInteraction(i*10)))
	}

	list, err := repo.ListInteractions(ctx, 3)
	assertNoError(t, err)
	if len(list) != 3 {
		t.Fatalf("expected 3 interactions, got %d", len(list))
	}
	assertEqual(t, 50, list[0].Points)
	assertEqual(t, 30, list[2].Points)

	all, err := repo.ListInteractions(ctx, -1)
	assertNoError(t, err)
	assertEqual(t, 5, len(all))
}

func TestListInteractionsEmpty(t *testing.T) {
	repo := newTestRepo(t)

	list, err := repo.ListInteractions(context.Background(), 10)
	assertNoError(t, err)
	if list == nil || len(list) != 0 {
		t.Errorf("expected empty non-nil list, got %v", list)
	}
}

func TestCountAndPruneInteractions(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	for i := 0; i < 8; i++ {
		assertNoError(t, repo.RecordInteraction(ctx, newInteraction(i)))
	}

	n, err := repo.CountInteractions(ctx)
	assertNoError(t, err)
	assertEqual(t, int64(8), n)

	removed, err := repo.PruneInteractions(ctx, 3)
	assertNoError(t, err)
	assertEqual(t, int64(5), removed)

	n, err = repo.CountInteractions(ctx)
	assertNoError(t, err)
	assertEqual(t, int64(3), n)

	list, err := repo.ListInteractions(ctx, 0)
	assertNoError(t, err)
	assertEqual(t, 7, list[0].Points)
	assertEqual(t, 5, list[2].Points)

	removed, err = repo.PruneInteractions(ctx, 10)
	assertNoError(t, err)
	assertEqual(t, int64(0), removed)
}

// ============================================================================
// Dataset Metadata Tests
// ============================================================================

func TestDatasetInfo(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	info, err := repo.GetDatasetInfo(ctx)
	assertNoError(t, err)
	if info != nil {
		t.Fatalf("expected nil before save, got %+v", info)
	}

	want := domain.DatasetInfo{
		Source:      "https://example.com/iris.csv",
		Fingerprint: "abc123",
		Rows:        150,
		Species:     []string{"setosa", "versicolor", "virginica"},
		LoadedAt:    time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
	assertNoError(t, repo.SaveDatasetInfo(ctx, want))

	got, err := repo.GetDatasetInfo(ctx)
	assertNoError(t, err)
	if got == nil {
		t.Fatal("expected dataset info")
	}
	assertEqual(t, want.Source, got.Source)
	assertEqual(t, want.Species, got.Species)
	assertEqual(t, want.Rows, got.Rows)
	if !got.LoadedAt.Equal(want.LoadedAt) {
		t.Errorf("loaded_at %v, want %v", got.LoadedAt, want.LoadedAt)
	}

	// Saving again replaces the previous record
	want.Fallback = true
	want.Source = "embedded:iris.csv"
	assertNoError(t, repo.SaveDatasetInfo(ctx, want))
	got, err = repo.GetDatasetInfo(ctx)
	assertNoError(t, err)
	assertEqual(t, true, got.Fallback)
	assertEqual(t, "embedded:iris.csv", got.Source)
}

// ============================================================================
// Migration Tests
// ============================================================================

func TestMigrateIsIdempotent(t *testing.T) {
	repo := newTestRepo(t)
	assertNoError(t, repo.migrate())
	assertNoError(t, repo.migrate())

	assertNoError(t, repo.RecordInteraction(context.Background(), newInteraction(1)))
}

func TestReopenFileDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "irisdash.db")
	ctx := context.Background()

	repo, err := New(path)
	assertNoError(t, err)
	assertNoError(t, repo.RecordInteraction(ctx, newInteraction(42)))
	assertNoError(t, repo.Close())

	repo, err = New(path)
	assertNoError(t, err)
	defer repo.Close()

	list, err := repo.ListInteractions(ctx, 0)
	assertNoError(t, err)
	if len(list) != 1 || list[0].Points != 42 {
		t.Errorf("expected the stored interaction after reopen, got %+v", list)
	}
}
