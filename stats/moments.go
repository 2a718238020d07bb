package stats

import (
	"math"

	"github.com/sartorproj/goeval/timeseries"
)

// Moments holds the central moments of a sample, normalised by n.
type Moments struct {
	N    int
	Mean float64
	M2   float64
	M3   float64
	M4   float64
}

// CentralMoments computes the mean and second to fourth central moments.
func CentralMoments(values []float64) Moments {
	m := Moments{N: len(values)}
	if m.N == 0 {
		return m
	}
	for _, v := range values {
		m.Mean += v
	}
	m.Mean /= float64(m.N)

	for _, v := range values {
		d := v - m.Mean
		d2 := d * d
		m.M2 += d2
		m.M3 += d2 * d
		m.M4 += d2 * d2
	}
	n := float64(m.N)
	m.M2 /= n
	m.M3 /= n
	m.M4 /= n
	return m
}

// Skewness returns the sample skewness m3 / m2^1.5, NaN for zero variance.
func (m Moments) Skewness() float64 {
	if m.M2 == 0 {
		return math.NaN()
	}
	return m.M3 / math.Pow(m.M2, 1.5)
}

// Kurtosis returns the (non-excess) sample kurtosis m4 / m2^2, NaN for zero variance.
func (m Moments) Kurtosis() float64 {
	if m.M2 == 0 {
		return math.NaN()
	}
	return m.M4 / (m.M2 * m.M2)
}

// Bias returns the absolute mean residual of a series.
func Bias(series *timeseries.Series) float64 {
	return math.Abs(series.Mean())
}
