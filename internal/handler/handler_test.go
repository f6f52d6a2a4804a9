package handler

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	. "github.com/onsi/gomega" //nolint:revive

	"irisdash/internal/codec"
	"irisdash/internal/config"
	"irisdash/internal/dataset"
	"irisdash/internal/render"
	"irisdash/internal/repository/sqlite"
	"irisdash/internal/service"
)

func newTestServer(t *testing.T, stage config.Stage) http.Handler {
	t.Helper()
	ds, err := dataset.Embedded()
	if err != nil {
		t.Fatalf("Embedded() error: %v", err)
	}
	repo, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("sqlite.New() error: %v", err)
	}
	t.Cleanup(func() { repo.Close() })

	cfg := config.DefaultConfig()
	cfg.Stage = stage
	svc := service.NewDashboardService(ds, repo, service.NewEventBus(), cfg)

	mux := http.NewServeMux()
	NewDashboardHandler(svc, codec.DefaultExporters(), render.DefaultRegistry()).Register(mux)
	return Chain(mux, Recover, CORS, Logger, Metrics)
}

func do(h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("invalid JSON body %q: %v", rec.Body.String(), err)
	}
	return v
}

type updateBody struct {
	Figure struct {
		Data []struct {
			Name string    `json:"name"`
			Mode string    `json:"mode"`
			X    []float64 `json:"x"`
		} `json:"data"`
	} `json:"figure"`
	Points     int `json:"points"`
	Regression *struct {
		Slope  float64 `json:"slope"`
		Points int     `json:"points"`
	} `json:"regression"`
	RegressionError string `json:"regression_error"`
}

func TestUpdateEndpoint(t *testing.T) {
	h := newTestServer(t, config.StageRegression)

	tests := []struct {
		name       string
		body       string
		points     int
		traces     int
		regression bool
	}{
		{"empty body", "", 150, 3, false},
		{"empty object", "{}", 150, 3, false},
		{"single species string", `{"species":"virginica"}`, 50, 1, false},
		{"species list", `{"species":["setosa","versicolor"]}`, 100, 2, false},
		{"null species", `{"species":null}`, 0, 0, false},
		{"ranges", `{"x_range":[5,6],"y_range":[3,5]}`, 32, 3, false},
		{"regression", `{"regression":true}`, 150, 4, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewWithT(t)
			rec := do(h, http.MethodPost, "/api/update", tt.body)
			g.Expect(rec.Code).To(Equal(http.StatusOK), rec.Body.String())

			body := decode[updateBody](t, rec)
			g.Expect(body.Points).To(Equal(tt.points))
			g.Expect(body.Figure.Data).To(HaveLen(tt.traces))
			if tt.regression {
				g.Expect(body.Regression).NotTo(BeNil())
				g.Expect(body.Regression.Points).To(Equal(150))
			} else {
				g.Expect(body.Regression).To(BeNil())
			}
		})
	}
}

func TestUpdateEndpointErrors(t *testing.T) {
	tests := []struct {
		name   string
		stage  config.Stage
		body   string
		status int
	}{
		{"malformed JSON", config.StageRegression, `{"species":`, http.StatusBadRequest},
		{"bad species type", config.StageRegression, `{"species":42}`, http.StatusBadRequest},
		{"bad range arity", config.StageRegression, `{"x_range":[1,2,3]}`, http.StatusBadRequest},
		{"unknown column", config.StageRegression, `{"x_column":"stem"}`, http.StatusBadRequest},
		{"hello stage", config.StageHello, `{}`, http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewWithT(t)
			rec := do(newTestServer(t, tt.stage), http.MethodPost, "/api/update", tt.body)
			g.Expect(rec.Code).To(Equal(tt.status), rec.Body.String())

			body := decode[ErrorResponse](t, rec)
			g.Expect(body.Error).NotTo(BeEmpty())
		})
	}
}

func TestUpdateRecordsInteractions(t *testing.T) {
	g := NewWithT(t)
	h := newTestServer(t, config.StageRegression)

	do(h, http.MethodPost, "/api/update", `{"species":"setosa"}`)
	do(h, http.MethodPost, "/api/update", `{"species":"setosa","regression":true}`)

	rec := do(h, http.MethodGet, "/api/interactions?limit=1", "")
	g.Expect(rec.Code).To(Equal(http.StatusOK))

	var body struct {
		Total        int64 `json:"total"`
		Interactions []struct {
			Points     int  `json:"points"`
			Regression bool `json:"regression"`
		} `json:"interactions"`
	}
	g.Expect(json.Unmarshal(rec.Body.Bytes(), &body)).To(Succeed())
	g.Expect(body.Total).To(Equal(int64(2)))
	g.Expect(body.Interactions).To(HaveLen(1))
	g.Expect(body.Interactions[0].Regression).To(BeTrue())
	g.Expect(body.Interactions[0].Points).To(Equal(50))

	rec = do(h, http.MethodGet, "/api/interactions?limit=abc", "")
	g.Expect(rec.Code).To(Equal(http.StatusBadRequest))
}

func TestLayoutEndpoint(t *testing.T) {
	tests := []struct {
		stage       config.Stage
		interactive bool
		hasFigure   bool
	}{
		{config.StageHello, false, false},
		{config.StageScatter, false, true},
		{config.StageFilter, true, true},
		{config.StageRegression, true, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.stage), func(t *testing.T) {
			g := NewWithT(t)
			rec := do(newTestServer(t, tt.stage), http.MethodGet, "/api/layout", "")
			g.Expect(rec.Code).To(Equal(http.StatusOK))

			body := decode[map[string]any](t, rec)
			g.Expect(body["stage"]).To(Equal(string(tt.stage)))
			g.Expect(body["interactive"]).To(Equal(tt.interactive))
			if tt.hasFigure {
				g.Expect(body).To(HaveKey("figure"))
			} else {
				g.Expect(body).NotTo(HaveKey("figure"))
			}
		})
	}
}

func TestFigureEndpoint(t *testing.T) {
	g := NewWithT(t)

	rec := do(newTestServer(t, config.StageScatter), http.MethodGet, "/api/figure", "")
	g.Expect(rec.Code).To(Equal(http.StatusOK))
	g.Expect(rec.Body.String()).To(ContainSubstring(`"setosa"`))

	rec = do(newTestServer(t, config.StageHello), http.MethodGet, "/api/figure", "")
	g.Expect(rec.Code).To(Equal(http.StatusConflict))
}

func TestDatasetEndpoint(t *testing.T) {
	g := NewWithT(t)
	h := newTestServer(t, config.StageRegression)

	rec := do(h, http.MethodGet, "/api/dataset", "")
	g.Expect(rec.Code).To(Equal(http.StatusOK))
	etag := rec.Header().Get("ETag")
	g.Expect(etag).To(HavePrefix(`"`))
	g.Expect(len(etag)).To(Equal(66))

	var body struct {
		Columns []string         `json:"columns"`
		Rows    []map[string]any `json:"rows"`
	}
	g.Expect(json.Unmarshal(rec.Body.Bytes(), &body)).To(Succeed())
	g.Expect(body.Rows).To(HaveLen(150))
	g.Expect(body.Columns).To(HaveLen(5))

	req := httptest.NewRequest(http.MethodGet, "/api/dataset", nil)
	req.Header.Set("If-None-Match", etag)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	g.Expect(rec.Code).To(Equal(http.StatusNotModified))
	g.Expect(rec.Body.Len()).To(Equal(0))
}

func TestSummaryEndpoint(t *testing.T) {
	g := NewWithT(t)
	rec := do(newTestServer(t, config.StageRegression), http.MethodGet, "/api/summary", "")
	g.Expect(rec.Code).To(Equal(http.StatusOK))

	body := decode[[]map[string]any](t, rec)
	g.Expect(body).To(HaveLen(4))
	g.Expect(body[3]["species"]).To(Equal("all"))
	g.Expect(body[3]["count"]).To(BeNumerically("==", 150))
}

func TestExportEndpoint(t *testing.T) {
	h := newTestServer(t, config.StageRegression)

	t.Run("csv with filters", func(t *testing.T) {
		g := NewWithT(t)
		rec := do(h, http.MethodGet, "/api/export/csv?species=versicolor&x_min=5&x_max=6&y_min=3&y_max=5", "")
		g.Expect(rec.Code).To(Equal(http.StatusOK), rec.Body.String())
		g.Expect(rec.Header().Get("Content-Type")).To(HavePrefix("text/csv"))
		g.Expect(rec.Header().Get("Content-Disposition")).To(ContainSubstring("iris.csv"))

		records, err := csv.NewReader(bytes.NewReader(rec.Body.Bytes())).ReadAll()
		g.Expect(err).NotTo(HaveOccurred())
		g.Expect(records).To(HaveLen(29))
	})

	t.Run("json with comma separated species", func(t *testing.T) {
		g := NewWithT(t)
		rec := do(h, http.MethodGet, "/api/export/json?species=setosa,virginica", "")
		g.Expect(rec.Code).To(Equal(http.StatusOK))
		g.Expect(decode[[]map[string]any](t, rec)).To(HaveLen(100))
	})

	t.Run("empty species selects nothing", func(t *testing.T) {
		g := NewWithT(t)
		rec := do(h, http.MethodGet, "/api/export/json?species=", "")
		g.Expect(rec.Code).To(Equal(http.StatusOK))
		g.Expect(decode[[]map[string]any](t, rec)).To(BeEmpty())
	})

	t.Run("yaml", func(t *testing.T) {
		g := NewWithT(t)
		rec := do(h, http.MethodGet, "/api/export/yaml", "")
		g.Expect(rec.Code).To(Equal(http.StatusOK))
		g.Expect(rec.Body.String()).To(HavePrefix("count: 150"))
	})

	t.Run("unknown format", func(t *testing.T) {
		g := NewWithT(t)
		rec := do(h, http.MethodGet, "/api/export/xlsx", "")
		g.Expect(rec.Code).To(Equal(http.StatusNotFound))
	})

	t.Run("half a range", func(t *testing.T) {
		g := NewWithT(t)
		rec := do(h, http.MethodGet, "/api/export/csv?x_min=5", "")
		g.Expect(rec.Code).To(Equal(http.StatusBadRequest))
	})

	t.Run("bad regression flag", func(t *testing.T) {
		g := NewWithT(t)
		rec := do(h, http.MethodGet, "/api/export/csv?regression=maybe", "")
		g.Expect(rec.Code).To(Equal(http.StatusBadRequest))
	})
}

func TestChartEndpoint(t *testing.T) {
	h := newTestServer(t, config.StageRegression)

	t.Run("png", func(t *testing.T) {
		g := NewWithT(t)
		rec := do(h, http.MethodGet, "/api/chart.png?regression=true", "")
		g.Expect(rec.Code).To(Equal(http.StatusOK), rec.Body.String())
		g.Expect(rec.Header().Get("Content-Type")).To(Equal("image/png"))
		g.Expect(rec.Body.Bytes()).To(HavePrefix("\x89PNG"))
	})

	t.Run("svg", func(t *testing.T) {
		g := NewWithT(t)
		rec := do(h, http.MethodGet, "/api/chart.svg?species=setosa", "")
		g.Expect(rec.Code).To(Equal(http.StatusOK), rec.Body.String())
		g.Expect(rec.Body.String()).To(ContainSubstring("<svg"))
	})

	t.Run("nothing to draw", func(t *testing.T) {
		g := NewWithT(t)
		rec := do(h, http.MethodGet, "/api/chart.png?species=", "")
		g.Expect(rec.Code).To(Equal(http.StatusUnprocessableEntity))
	})

	t.Run("unsupported format", func(t *testing.T) {
		g := NewWithT(t)
		rec := do(h, http.MethodGet, "/api/chart.gif", "")
		g.Expect(rec.Code).To(Equal(http.StatusNotFound))
	})
}

func TestHealthEndpoint(t *testing.T) {
	g := NewWithT(t)
	rec := do(newTestServer(t, config.StageFilter), http.MethodGet, "/healthz", "")
	g.Expect(rec.Code).To(Equal(http.StatusOK))

	body := decode[map[string]any](t, rec)
	g.Expect(body["status"]).To(Equal("ok"))
	g.Expect(body["stage"]).To(Equal("filter"))
	g.Expect(body["rows"]).To(BeNumerically("==", 150))
}
