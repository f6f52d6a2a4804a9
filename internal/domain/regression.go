package domain

// Regression is an ordinary least squares fit y = Intercept + Slope*x
type Regression struct {
	Slope     float64 `json:"slope"`
	Intercept float64 `json:"intercept"`
	RSquared  float64 `json:"r_squared"`
	Points    int     `json:"points"`
	XColumn   Column  `json:"x_column"`
	YColumn   Column  `json:"y_column"`
}

// Predict evaluates the fitted line at x
func (r Regression) Predict(x float64) float64 {
	return r.Intercept + r.Slope*x
}
