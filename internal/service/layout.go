package service

import (
	"irisdash/internal/config"
	"irisdash/internal/domain"
)

// Component IDs the page script binds to
const (
	IDGraph            = "iris-graph"
	IDSpeciesDropdown  = "species-dropdown"
	IDXRangeSlider     = "x-range-slider"
	IDYRangeSlider     = "y-range-slider"
	IDRegressionToggle = "regression-toggle"
)

const sliderStep = 0.1

// Layout returns the page description for a stage
func (s *DashboardService) Layout(stage config.Stage) domain.Layout {
	layout := domain.Layout{
		Stage:       string(stage),
		Title:       s.cfg.Plot.Title,
		Stylesheets: append([]string{}, s.cfg.Stylesheets...),
		Interactive: stage.Allows(config.StageFilter),
	}

	if !stage.Allows(config.StageScatter) {
		layout.Root = domain.Component{
			Type: domain.ComponentDiv,
			ID:   "app",
			Children: []domain.Component{
				{Type: domain.ComponentDiv, Text: "Hello, World!"},
			},
		}
		return layout
	}

	state := s.defaultState()
	fig, err := s.figure(state)
	if err == nil {
		layout.Figure = fig
	}

	children := []domain.Component{
		{Type: domain.ComponentHeading, Text: s.cfg.Plot.Title},
	}
	if stage.Allows(config.StageFilter) {
		children = append(children, s.controls(stage, state))
	}
	children = append(children, domain.Component{
		Type:  domain.ComponentGraph,
		ID:    IDGraph,
		Props: map[string]any{"figure": fig},
	})

	layout.Root = domain.Component{
		Type:     domain.ComponentDiv,
		ID:       "app",
		Children: children,
	}
	return layout
}

func (s *DashboardService) controls(stage config.Stage, state domain.FilterState) domain.Component {
	options := make([]domain.Option, 0, len(s.ds.Species()))
	for _, sp := range s.ds.Species() {
		options = append(options, domain.Option{Label: sp, Value: sp})
	}

	controls := []domain.Component{
		{
			Type: domain.ComponentDropdown,
			ID:   IDSpeciesDropdown,
			Props: map[string]any{
				"label":   "Species",
				"options": options,
				"value":   state.Species.List(),
				"multi":   true,
			},
		},
		rangeSlider(IDXRangeSlider, state.XColumn, state.XRange),
		rangeSlider(IDYRangeSlider, state.YColumn, state.YRange),
	}

	if stage.Allows(config.StageRegression) {
		controls = append(controls, domain.Component{
			Type: domain.ComponentToggle,
			ID:   IDRegressionToggle,
			Props: map[string]any{
				"label": "Show regression",
				"value": false,
			},
		})
	}

	return domain.Component{
		Type:     domain.ComponentDiv,
		ID:       "controls",
		Children: controls,
	}
}

func rangeSlider(id string, col domain.Column, r domain.Range) domain.Component {
	return domain.Component{
		Type: domain.ComponentRangeSlider,
		ID:   id,
		Props: map[string]any{
			"label":  col.Title(),
			"column": string(col),
			"min":    r.Min,
			"max":    r.Max,
			"step":   sliderStep,
			"value":  []float64{r.Min, r.Max},
		},
	}
}
