// Package timeseries provides core time series data structures and operations.
package timeseries

import (
	"math"
	"sort"
	"time"
)

// Epoch is the base timestamp for series built from plain value slices and for
// integer step indices read from CSV files.
var Epoch = time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC)

// Series represents a single time series with timestamps and values.
// ID and Split identify where the series came from inside a panel.
type Series struct {
	ID         SeriesID
	Split      string
	Timestamps []time.Time
	Values     []float64
}

// New creates a new time series from values, stepping one day per point from Epoch.
func New(values []float64) *Series {
	timestamps := make([]time.Time, len(values))
	for i := range timestamps {
		timestamps[i] = Step(i)
	}
	return &Series{
		Timestamps: timestamps,
		Values:     values,
	}
}

// Step returns the timestamp of the i-th step after Epoch.
func Step(i int) time.Time {
	return Epoch.AddDate(0, 0, i)
}

// Len returns the length of the series.
func (s *Series) Len() int {
	return len(s.Values)
}

// Mean calculates the arithmetic mean of the series.
func (s *Series) Mean() float64 {
	if len(s.Values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range s.Values {
		sum += v
	}
	return sum / float64(len(s.Values))
}

// Variance calculates the sample variance of the series.
func (s *Series) Variance() float64 {
	if len(s.Values) < 2 {
		return 0
	}
	mean := s.Mean()
	sumSq := 0.0
	for _, v := range s.Values {
		diff := v - mean
		sumSq += diff * diff
	}
	return sumSq / float64(len(s.Values)-1)
}

// Std calculates the sample standard deviation of the series.
func (s *Series) Std() float64 {
	return math.Sqrt(s.Variance())
}

// CV returns the coefficient of variation, Std / Mean.
// ok is false when the mean is exactly zero.
func (s *Series) CV() (cv float64, ok bool) {
	mean := s.Mean()
	if mean == 0 {
		return 0, false
	}
	return s.Std() / mean, true
}

// Min returns the minimum value in the series.
func (s *Series) Min() float64 {
	if len(s.Values) == 0 {
		return math.NaN()
	}
	min := s.Values[0]
	for _, v := range s.Values[1:] {
		if v < min {
			min = v
		}
	}
	return min
}

// Max returns the maximum value in the series.
func (s *Series) Max() float64 {
	if len(s.Values) == 0 {
		return math.NaN()
	}
	max := s.Values[0]
	for _, v := range s.Values[1:] {
		if v > max {
			max = v
		}
	}
	return max
}

// Median returns the median value of the series.
func (s *Series) Median() float64 {
	if len(s.Values) == 0 {
		return math.NaN()
	}
	sorted := make([]float64, len(s.Values))
	copy(sorted, s.Values)
	sort.Float64s(sorted)

	n := len(sorted)
	if n%2 == 0 {
		return (sorted[n/2-1] + sorted[n/2]) / 2
	}
	return sorted[n/2]
}

// Concat joins several series into one pooled series, keeping the first ID.
// Splits are dropped since the result spans all of them.
func Concat(series ...*Series) *Series {
	out := &Series{}
	for i, s := range series {
		if i == 0 {
			out.ID = s.ID
		}
		out.Timestamps = append(out.Timestamps, s.Timestamps...)
		out.Values = append(out.Values, s.Values...)
	}
	return out
}
