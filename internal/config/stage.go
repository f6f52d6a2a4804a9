package config

import (
	"fmt"
	"strings"
)

// Stage selects which snapshot of the dashboard is served
type Stage string

const (
	StageHello      Stage = "hello"      // static greeting only
	StageScatter    Stage = "scatter"    // + static scatter plot
	StageFilter     Stage = "filter"     // + species dropdown and range sliders
	StageRegression Stage = "regression" // + regression overlay toggle
)

// Stages lists every stage in ascending order
func Stages() []Stage {
	return []Stage{StageHello, StageScatter, StageFilter, StageRegression}
}

// ParseStage converts a stage name to Stage, ignoring case and surrounding
// space. An unknown name is returned normalized together with an error.
func ParseStage(s string) (Stage, error) {
	stage := Stage(strings.ToLower(strings.TrimSpace(s)))
	if !stage.Valid() {
		return stage, fmt.Errorf("unknown stage %q (want one of hello, scatter, filter, regression)", s)
	}
	return stage, nil
}

// Valid reports whether s names a known stage
func (s Stage) Valid() bool {
	switch s {
	case StageHello, StageScatter, StageFilter, StageRegression:
		return true
	}
	return false
}

// Level returns numeric level for comparison (higher = more features)
func (s Stage) Level() int {
	switch s {
	case StageHello:
		return 0
	case StageScatter:
		return 1
	case StageFilter:
		return 2
	case StageRegression:
		return 3
	default:
		return 3
	}
}

// Allows returns true if this stage includes the features of the required stage
func (s Stage) Allows(required Stage) bool {
	return s.Level() >= required.Level()
}
