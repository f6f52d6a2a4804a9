package domain

import "time"

// Interaction records one callback served by the dashboard
type Interaction struct {
	ID         int64         `json:"id"`
	Stage      string        `json:"stage"`
	Species    []string      `json:"species"`
	XColumn    Column        `json:"x_column"`
	YColumn    Column        `json:"y_column"`
	XRange     Range         `json:"x_range"`
	YRange     Range         `json:"y_range"`
	Regression bool          `json:"regression"`
	Points     int           `json:"points"`
	Fit        *Regression   `json:"fit,omitempty"`
	FitError   string        `json:"fit_error,omitempty"`
	Duration   time.Duration `json:"duration_ns"`
	CreatedAt  time.Time     `json:"created_at"`
}
