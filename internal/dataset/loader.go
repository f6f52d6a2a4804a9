// Package dataset loads the iris table from a remote URL, a local file, or the
// copy embedded in the binary.
package dataset

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/csv"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/blake2b"

	"irisdash/internal/domain"
)

// EmbeddedSource is the source name reported for the bundled copy
const EmbeddedSource = "embedded:iris.csv"

// maxBodyBytes caps how much of a remote response is read
const maxBodyBytes = 8 << 20

// ErrBodyTooLarge is returned when a remote dataset exceeds the size limit
var ErrBodyTooLarge = errors.New("dataset body too large")

//go:embed iris.csv
var embeddedCSV []byte

// Loader fetches and parses the dataset once at startup
type Loader struct {
	client   *http.Client
	timeout  time.Duration
	fallback bool
	maxBytes int64
}

// Option configures a Loader
type Option func(*Loader)

// WithHTTPClient sets the client used for http(s) sources
func WithHTTPClient(c *http.Client) Option {
	return func(l *Loader) { l.client = c }
}

// WithTimeout bounds a remote fetch
func WithTimeout(d time.Duration) Option {
	return func(l *Loader) { l.timeout = d }
}

// WithMaxBytes caps the size of a remote response
func WithMaxBytes(n int64) Option {
	return func(l *Loader) { l.maxBytes = n }
}

// WithEmbeddedFallback makes Load fall back to the embedded copy when the
// source cannot be fetched
func WithEmbeddedFallback(enabled bool) Option {
	return func(l *Loader) { l.fallback = enabled }
}

// NewLoader creates a loader
func NewLoader(opts ...Option) *Loader {
	l := &Loader{
		client:   http.DefaultClient,
		timeout:  15 * time.Second,
		maxBytes: maxBodyBytes,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load reads the dataset from source. An empty source or "embedded" loads the
// bundled copy.
func (l *Loader) Load(ctx context.Context, source string) (*domain.Dataset, error) {
	if source == "" || source == "embedded" || source == EmbeddedSource {
		return Embedded()
	}

	raw, err := l.fetch(ctx, source)
	if err != nil {
		if !l.fallback {
			return nil, err
		}
		log.Warn().Err(err).Str("source", source).Msg("dataset fetch failed, using embedded copy")
		ds, embErr := Embedded()
		if embErr != nil {
			return nil, errors.Join(err, embErr)
		}
		return ds, nil
	}

	return Parse(bytes.NewReader(raw), domain.DatasetInfo{
		Source:      source,
		Fingerprint: Fingerprint(raw),
	})
}

func (l *Loader) fetch(ctx context.Context, source string) ([]byte, error) {
	if !strings.HasPrefix(source, "http://") && !strings.HasPrefix(source, "https://") {
		data, err := os.ReadFile(source)
		if err != nil {
			return nil, fmt.Errorf("read dataset file: %w", err)
		}
		return data, nil
	}

	if l.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return nil, fmt.Errorf("build dataset request: %w", err)
	}

	start := time.Now()
	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch dataset: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch dataset: unexpected status %s", resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, l.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read dataset body: %w", err)
	}
	if int64(len(data)) > l.maxBytes {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrBodyTooLarge, l.maxBytes)
	}

	log.Debug().
		Str("source", source).
		Int("bytes", len(data)).
		Dur("took", time.Since(start)).
		Msg("dataset fetched")
	return data, nil
}

// Embedded parses the copy bundled with the binary
func Embedded() (*domain.Dataset, error) {
	return Parse(bytes.NewReader(embeddedCSV), domain.DatasetInfo{
		Source:      EmbeddedSource,
		Fingerprint: Fingerprint(embeddedCSV),
		Fallback:    true,
	})
}

// Fingerprint returns the hex BLAKE2b-256 digest of raw
func Fingerprint(raw []byte) string {
	sum := blake2b.Sum256(raw)
	return hex.EncodeToString(sum[:])
}

// Parse reads CSV with a header row. Column order comes from the header; the
// four measurement columns and species must all be present.
func Parse(r io.Reader, info domain.DatasetInfo) (*domain.Dataset, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("parse dataset: empty input")
	}
	if err != nil {
		return nil, fmt.Errorf("parse dataset header: %w", err)
	}

	index := make(map[domain.Column]int)
	for i, name := range header {
		col, err := domain.ParseColumn(strings.TrimPrefix(name, "\ufeff"))
		if err != nil {
			// Extra columns such as a row id are ignored
			continue
		}
		index[col] = i
	}

	required := append(domain.NumericColumns(), domain.ColumnSpecies)
	for _, col := range required {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("parse dataset header: missing column %s", col)
		}
	}

	var rows []domain.Sample
	for {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// csv.ParseError carries the line number
			return nil, fmt.Errorf("parse dataset: %w", err)
		}
		if isBlank(rec) {
			continue
		}

		sample, err := parseRecord(rec, index)
		if err != nil {
			line, _ := reader.FieldPos(0)
			return nil, fmt.Errorf("parse dataset line %d: %w", line, err)
		}
		rows = append(rows, sample)
	}

	return domain.NewDataset(rows, info)
}

func parseRecord(rec []string, index map[domain.Column]int) (domain.Sample, error) {
	num := func(col domain.Column) (float64, error) {
		raw := strings.TrimSpace(rec[index[col]])
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return 0, fmt.Errorf("%s: invalid number %q", col, raw)
		}
		return v, nil
	}

	var s domain.Sample
	var err error
	if s.SepalLength, err = num(domain.ColumnSepalLength); err != nil {
		return s, err
	}
	if s.SepalWidth, err = num(domain.ColumnSepalWidth); err != nil {
		return s, err
	}
	if s.PetalLength, err = num(domain.ColumnPetalLength); err != nil {
		return s, err
	}
	if s.PetalWidth, err = num(domain.ColumnPetalWidth); err != nil {
		return s, err
	}
	s.Species = NormalizeSpecies(rec[index[domain.ColumnSpecies]])
	if s.Species == "" {
		return s, fmt.Errorf("species: empty label")
	}
	return s, nil
}

// NormalizeSpecies lower-cases a label and strips the "Iris-" prefix used by
// the UCI copy of the data
func NormalizeSpecies(label string) string {
	s := strings.ToLower(strings.TrimSpace(label))
	s = strings.TrimPrefix(s, "iris-")
	s = strings.TrimPrefix(s, "iris ")
	return s
}

func isBlank(rec []string) bool {
	for _, f := range rec {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
