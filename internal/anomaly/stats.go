package anomaly

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// quantile returns the p-quantile of x using linear interpolation between
// the order statistics at floor and ceil of (n-1)p. x is not modified.
func quantile(x []float64, p float64) float64 {
	if len(x) == 0 {
		return math.NaN()
	}
	sorted := make([]float64, len(x))
	copy(sorted, x)
	sort.Float64s(sorted)
	return sortedQuantile(sorted, p)
}

func sortedQuantile(sorted []float64, p float64) float64 {
	pos := float64(len(sorted)-1) * p
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}

// absZScores returns |x - mean| / std with the population standard
// deviation. A zero deviation yields NaN for every element, which compares
// false against any threshold.
func absZScores(x []float64) []float64 {
	mean, std := stat.PopMeanStdDev(x, nil)
	z := make([]float64, len(x))
	for i, v := range x {
		z[i] = math.Abs((v - mean) / std)
	}
	return z
}

// StandardScaler centres each column on zero and scales it to unit
// population variance. Columns with zero variance are only centred.
type StandardScaler struct {
	Mean  []float64
	Scale []float64
}

// Fit computes column means and scales from rows of equal width
func (s *StandardScaler) Fit(rows [][]float64) {
	if len(rows) == 0 {
		s.Mean, s.Scale = nil, nil
		return
	}
	width := len(rows[0])
	s.Mean = make([]float64, width)
	s.Scale = make([]float64, width)

	column := make([]float64, len(rows))
	for j := 0; j < width; j++ {
		for i, row := range rows {
			column[i] = row[j]
		}
		mean, std := stat.PopMeanStdDev(column, nil)
		s.Mean[j] = mean
		if std == 0 || math.IsNaN(std) {
			std = 1
		}
		s.Scale[j] = std
	}
}

// Transform returns standardised copies of rows
func (s *StandardScaler) Transform(rows [][]float64) [][]float64 {
	out := make([][]float64, len(rows))
	for i, row := range rows {
		scaled := make([]float64, len(row))
		copy(scaled, row)
		floats.Sub(scaled, s.Mean)
		floats.Div(scaled, s.Scale)
		out[i] = scaled
	}
	return out
}

// FitTransform fits the scaler and transforms rows in one step
func (s *StandardScaler) FitTransform(rows [][]float64) [][]float64 {
	s.Fit(rows)
	return s.Transform(rows)
}

// allFinite reports whether every value in rows is a finite number
func allFinite(rows [][]float64) bool {
	for _, row := range rows {
		for _, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return false
			}
		}
	}
	return true
}
