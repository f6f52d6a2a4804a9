package domain

import "errors"

var (
	// ErrUnknownColumn is returned when a column name is not part of the table
	ErrUnknownColumn = errors.New("unknown column")
	// ErrInsufficientData is returned when a regression cannot be fitted
	ErrInsufficientData = errors.New("insufficient data for regression")
	// ErrEmptyFigure is returned when a figure has no points to draw
	ErrEmptyFigure = errors.New("figure has no points")
	// ErrStageDisabled is returned when the configured stage does not offer a feature
	ErrStageDisabled = errors.New("feature not available at this stage")
)
