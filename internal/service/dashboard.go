package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"irisdash/internal/analysis"
	"irisdash/internal/config"
	"irisdash/internal/domain"
	"irisdash/internal/observability"
	"irisdash/internal/repository"
)

// UpdateRequest is the callback input sent by the page. Fields left out of
// the request fall back to the initial state: every species, the configured
// axes, and the full extent of each axis. An explicit null species selection
// is an empty list.
type UpdateRequest struct {
	Species    domain.Selection `json:"species"`
	XColumn    string           `json:"x_column,omitempty"`
	YColumn    string           `json:"y_column,omitempty"`
	XRange     *domain.Range    `json:"x_range,omitempty"`
	YRange     *domain.Range    `json:"y_range,omitempty"`
	Regression bool             `json:"regression"`
}

// UpdateResponse is the callback output
type UpdateResponse struct {
	Figure          *domain.Figure     `json:"figure"`
	Points          int                `json:"points"`
	Regression      *domain.Regression `json:"regression"`
	RegressionError string             `json:"regression_error,omitempty"`
	State           domain.FilterState `json:"state"`
}

// DashboardService runs the dashboard callback over a dataset loaded once at
// startup
type DashboardService struct {
	ds       *domain.Dataset
	repo     repository.Repository
	eventBus *EventBus
	cfg      *config.Config
	now      func() time.Time
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(ds *domain.Dataset, repo repository.Repository, eventBus *EventBus, cfg *config.Config) *DashboardService {
	return &DashboardService{
		ds:       ds,
		repo:     repo,
		eventBus: eventBus,
		cfg:      cfg,
		now:      time.Now,
	}
}

// Stage returns the configured dashboard stage
func (s *DashboardService) Stage() config.Stage {
	return s.cfg.Stage
}

// DatasetInfo describes the loaded dataset
func (s *DashboardService) DatasetInfo() domain.DatasetInfo {
	return s.ds.Info()
}

// Dataset returns the loaded dataset
func (s *DashboardService) Dataset() *domain.Dataset {
	return s.ds
}

// Summary returns per-species statistics of the whole dataset
func (s *DashboardService) Summary() []analysis.GroupSummary {
	return analysis.Summarize(s.ds)
}

// InitialFigure returns the unfiltered scatter plot
func (s *DashboardService) InitialFigure() (*domain.Figure, error) {
	if !s.cfg.Stage.Allows(config.StageScatter) {
		return nil, fmt.Errorf("%w: figure needs stage %s", domain.ErrStageDisabled, config.StageScatter)
	}
	return s.figure(s.defaultState())
}

// Update is the dashboard callback. It coerces the selection to a list,
// filters the rows, fits a line when asked to and returns the figure. The
// interaction is recorded and published; a failure to record it is logged and
// does not fail the callback.
func (s *DashboardService) Update(ctx context.Context, req UpdateRequest) (*UpdateResponse, error) {
	start := s.now()

	state, err := s.Resolve(req)
	if err != nil {
		return nil, err
	}

	res, err := analysis.Run(s.ds, state, s.figureOptions())
	if err != nil {
		return nil, err
	}

	resp := &UpdateResponse{
		Figure:     res.Figure,
		Points:     len(res.Indices),
		Regression: res.Fit,
		State:      state,
	}
	if res.FitErr != nil {
		resp.RegressionError = res.FitErr.Error()
	}

	observability.RecordCallback(resp.Points)
	if state.Regression {
		outcome := "ok"
		if res.FitErr != nil {
			outcome = "insufficient"
		}
		observability.RecordRegression(outcome)
	}

	in := &domain.Interaction{
		Stage:      string(s.cfg.Stage),
		Species:    state.Species.List(),
		XColumn:    state.XColumn,
		YColumn:    state.YColumn,
		XRange:     state.XRange,
		YRange:     state.YRange,
		Regression: state.Regression,
		Points:     resp.Points,
		Fit:        res.Fit,
		FitError:   resp.RegressionError,
		Duration:   s.now().Sub(start),
		CreatedAt:  start.UTC(),
	}
	s.record(ctx, in)

	return resp, nil
}

// Chart runs the callback pipeline without recording anything, for server
// side rendering and export
func (s *DashboardService) Chart(req UpdateRequest) (*domain.Figure, error) {
	state, err := s.Resolve(req)
	if err != nil {
		return nil, err
	}
	res, err := analysis.Run(s.ds, state, s.figureOptions())
	if err != nil {
		return nil, err
	}
	return res.Figure, nil
}

// Rows returns the rows the request's filter keeps, in dataset order
func (s *DashboardService) Rows(req UpdateRequest) ([]domain.Sample, error) {
	state, err := s.Resolve(req)
	if err != nil {
		return nil, err
	}
	indices, err := analysis.Filter(s.ds, state)
	if err != nil {
		return nil, err
	}
	return s.ds.Rows(indices), nil
}

// History returns the most recent interactions, newest first
func (s *DashboardService) History(ctx context.Context, limit int) ([]domain.Interaction, error) {
	return s.repo.ListInteractions(ctx, limit)
}

// InteractionCount returns the number of recorded interactions
func (s *DashboardService) InteractionCount(ctx context.Context) (int64, error) {
	return s.repo.CountInteractions(ctx)
}

// Resolve turns a request into a complete filter state for the configured
// stage. Stages without filter controls ignore the filter inputs, and only the
// regression stage honours the toggle.
func (s *DashboardService) Resolve(req UpdateRequest) (domain.FilterState, error) {
	stage := s.cfg.Stage
	if !stage.Allows(config.StageScatter) {
		return domain.FilterState{}, fmt.Errorf("%w: callback needs stage %s", domain.ErrStageDisabled, config.StageScatter)
	}

	state := s.defaultState()
	if !stage.Allows(config.StageFilter) {
		return state, nil
	}

	if req.XColumn != "" {
		col, err := parseAxis(req.XColumn)
		if err != nil {
			return domain.FilterState{}, fmt.Errorf("x_column: %w", err)
		}
		if col != state.XColumn {
			state.XColumn = col
			state.XRange, _ = s.ds.Extent(col)
		}
	}
	if req.YColumn != "" {
		col, err := parseAxis(req.YColumn)
		if err != nil {
			return domain.FilterState{}, fmt.Errorf("y_column: %w", err)
		}
		if col != state.YColumn {
			state.YColumn = col
			state.YRange, _ = s.ds.Extent(col)
		}
	}

	if req.Species.IsSet() {
		state.Species = domain.NewSelection(req.Species.List()...)
	}
	if req.XRange != nil {
		state.XRange = req.XRange.Normalize()
	}
	if req.YRange != nil {
		state.YRange = req.YRange.Normalize()
	}
	state.Regression = req.Regression && stage.Allows(config.StageRegression)

	return state, nil
}

func parseAxis(raw string) (domain.Column, error) {
	col, err := domain.ParseColumn(raw)
	if err != nil {
		return "", err
	}
	if !col.IsNumeric() {
		return "", fmt.Errorf("%w: %q is not a measurement", domain.ErrUnknownColumn, raw)
	}
	return col, nil
}

func (s *DashboardService) defaultState() domain.FilterState {
	state, err := analysis.DefaultState(s.ds, s.cfg.XColumn(), s.cfg.YColumn())
	if err != nil {
		// config validation guarantees numeric axes
		panic(fmt.Sprintf("default state: %v", err))
	}
	return state
}

func (s *DashboardService) figure(state domain.FilterState) (*domain.Figure, error) {
	res, err := analysis.Run(s.ds, state, s.figureOptions())
	if err != nil {
		return nil, err
	}
	return res.Figure, nil
}

func (s *DashboardService) figureOptions() analysis.FigureOptions {
	return analysis.FigureOptions{Title: s.cfg.Plot.Title, Height: s.cfg.Plot.Height}
}

func (s *DashboardService) record(ctx context.Context, in *domain.Interaction) {
	if s.repo == nil {
		return
	}

	if err := s.repo.RecordInteraction(ctx, in); err != nil {
		log.Warn().Err(err).Int("points", in.Points).Msg("failed to record interaction")
		return
	}

	total, err := s.repo.CountInteractions(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("failed to count interactions")
	}

	if limit := s.cfg.Database.HistoryLimit; limit > 0 && total > int64(limit) {
		if n, err := s.repo.PruneInteractions(ctx, limit); err != nil {
			log.Warn().Err(err).Msg("failed to prune interaction history")
		} else {
			total -= n
			log.Debug().Int64("removed", n).Msg("pruned interaction history")
		}
	}

	if s.eventBus != nil {
		s.eventBus.Publish(Event{
			Type: EventInteractionRecorded,
			Payload: InteractionPayload{
				ID:         in.ID,
				Stage:      in.Stage,
				Points:     in.Points,
				Regression: in.Regression,
				Total:      total,
			},
		})
	}
}

// IsInputError reports whether err was caused by a bad request rather than
// the server
func IsInputError(err error) bool {
	return errors.Is(err, domain.ErrUnknownColumn)
}
