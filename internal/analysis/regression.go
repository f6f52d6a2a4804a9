package analysis

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"irisdash/internal/domain"
)

// Fit computes the ordinary least squares line y = a + b*x. It is re-run from
// scratch on every call; nothing is cached between interactions.
func Fit(xs, ys []float64) (domain.Regression, error) {
	if len(xs) != len(ys) {
		return domain.Regression{}, fmt.Errorf("fit: %d x values but %d y values", len(xs), len(ys))
	}
	if len(xs) < 2 {
		return domain.Regression{}, fmt.Errorf("%w: need at least 2 points, have %d", domain.ErrInsufficientData, len(xs))
	}
	if stat.Variance(xs, nil) == 0 {
		return domain.Regression{}, fmt.Errorf("%w: all x values are equal", domain.ErrInsufficientData)
	}

	alpha, beta := stat.LinearRegression(xs, ys, nil, false)
	r2 := stat.RSquared(xs, ys, nil, alpha, beta)
	if math.IsNaN(r2) || math.IsInf(r2, 0) {
		// constant y: nothing to explain
		r2 = 0
	}

	return domain.Regression{
		Slope:     beta,
		Intercept: alpha,
		RSquared:  r2,
		Points:    len(xs),
	}, nil
}
