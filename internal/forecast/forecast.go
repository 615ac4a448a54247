// Package forecast projects financial series forward: ordinary least
// squares for the canonical two-period input, a quadratic regressor when
// more history is available.
package forecast

import (
	"errors"
	"math"

	"finsight/pkg/contracts/domain"
)

// ErrInsufficientData marks a series with fewer than two observations.
var ErrInsufficientData = errors.New("forecast requires at least 2 observations")

// Forecast methods reported on the result.
const (
	MethodLinear    = "linear"
	MethodQuadratic = "quadratic"
)

// LinearModel is an ordinary-least-squares line y = Intercept + Slope*x.
type LinearModel struct {
	Slope     float64
	Intercept float64
}

// FitLinear fits OLS over x = 0..n-1. With the canonical two observations
// this reduces to slope = y1 - y0, intercept = y0.
func FitLinear(series []float64) (LinearModel, error) {
	n := float64(len(series))
	if n < 2 {
		return LinearModel{}, ErrInsufficientData
	}
	var sumX, sumY, sumXY, sumXX float64
	for i, y := range series {
		x := float64(i)
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}
	denom := n*sumXX - sumX*sumX
	slope := (n*sumXY - sumX*sumY) / denom
	return LinearModel{
		Slope:     slope,
		Intercept: (sumY - slope*sumX) / n,
	}, nil
}

// Predict evaluates the line at x.
func (m LinearModel) Predict(x float64) float64 {
	return m.Intercept + m.Slope*x
}

// quadraticModel is a least-squares parabola y = a + b*x + c*x².
type quadraticModel struct {
	a, b, c float64
}

// fitQuadratic solves the degree-2 normal equations by Gaussian
// elimination. Requires at least 3 points.
func fitQuadratic(series []float64) (quadraticModel, error) {
	n := len(series)
	if n < 3 {
		return quadraticModel{}, ErrInsufficientData
	}

	// Power sums S_k = Σ x^k and moment sums T_k = Σ y·x^k over x = 0..n-1.
	var s [5]float64
	var t [3]float64
	for i, y := range series {
		x := float64(i)
		xp := 1.0
		for k := 0; k <= 4; k++ {
			s[k] += xp
			if k <= 2 {
				t[k] += y * xp
			}
			xp *= x
		}
	}

	m := [3][4]float64{
		{s[0], s[1], s[2], t[0]},
		{s[1], s[2], s[3], t[1]},
		{s[2], s[3], s[4], t[2]},
	}
	for col := 0; col < 3; col++ {
		pivot := col
		for r := col + 1; r < 3; r++ {
			if math.Abs(m[r][col]) > math.Abs(m[pivot][col]) {
				pivot = r
			}
		}
		m[col], m[pivot] = m[pivot], m[col]
		if m[col][col] == 0 {
			return quadraticModel{}, ErrInsufficientData
		}
		for r := 0; r < 3; r++ {
			if r == col {
				continue
			}
			factor := m[r][col] / m[col][col]
			for k := col; k < 4; k++ {
				m[r][k] -= factor * m[col][k]
			}
		}
	}
	return quadraticModel{
		a: m[0][3] / m[0][0],
		b: m[1][3] / m[1][1],
		c: m[2][3] / m[2][2],
	}, nil
}

func (m quadraticModel) predict(x float64) float64 {
	return m.a + m.b*x + m.c*x*x
}

// Project extrapolates the series horizon steps past its last observation.
// Two observed points fit a line; three or more fit the quadratic
// regressor. Returns the predictions and the method used.
func Project(series []float64, horizon int) ([]float64, string, error) {
	if len(series) < 2 {
		return nil, "", ErrInsufficientData
	}

	preds := make([]float64, horizon)
	if len(series) <= 2 {
		model, err := FitLinear(series)
		if err != nil {
			return nil, "", err
		}
		for i := range preds {
			preds[i] = model.Predict(float64(len(series) + i))
		}
		return preds, MethodLinear, nil
	}

	model, err := fitQuadratic(series)
	if err != nil {
		return nil, "", err
	}
	for i := range preds {
		preds[i] = model.predict(float64(len(series) + i))
	}
	return preds, MethodQuadratic, nil
}

// Forecast projects the revenue and cost series over the horizon and
// reports the implied geometric average annual revenue growth. Growth is
// absent when the last observed revenue is zero or the growth ratio is not
// positive.
func Forecast(revenue, costs []float64, horizon int) (*domain.Forecast, error) {
	if horizon < 1 {
		horizon = 1
	}

	revPred, method, err := Project(revenue, horizon)
	if err != nil {
		return nil, err
	}
	costPred, _, err := Project(costs, horizon)
	if err != nil {
		return nil, err
	}

	result := &domain.Forecast{
		Method:      method,
		Horizon:     horizon,
		Revenue:     revPred,
		Costs:       costPred,
		LastRevenue: revenue[len(revenue)-1],
		LastCosts:   costs[len(costs)-1],
	}

	if last := result.LastRevenue; last != 0 {
		ratio := revPred[len(revPred)-1] / last
		if ratio > 0 {
			growth := (math.Pow(ratio, 1/float64(horizon)) - 1) * 100
			result.AvgAnnualGrowthPct = &growth
		}
	}
	return result, nil
}
