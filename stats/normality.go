package stats

import (
	"github.com/sartorproj/goeval/timeseries"
)

// JarqueBeraResult represents the result of a Jarque-Bera normality test.
type JarqueBeraResult struct {
	Statistic float64
	PValue    float64
	Skewness  float64
	Kurtosis  float64 // Non-excess; 3 for a normal distribution
	N         int
}

// JarqueBera tests the null hypothesis that the series is normally distributed.
//
//	JB = n/6 * (S^2 + (K-3)^2/4)
//
// where S and K are the sample skewness and kurtosis. Under the null JB is
// asymptotically chi-squared with 2 degrees of freedom; larger values are
// stronger evidence against normality. Returns nil for fewer than 2 points or
// a constant series.
func JarqueBera(series *timeseries.Series) *JarqueBeraResult {
	n := series.Len()
	if n < 2 {
		return nil
	}

	m := CentralMoments(series.Values)
	if m.M2 == 0 {
		return nil
	}

	s := m.Skewness()
	k := m.Kurtosis()
	excess := k - 3
	jb := float64(n) / 6 * (s*s + excess*excess/4)

	return &JarqueBeraResult{
		Statistic: jb,
		PValue:    ChiSquaredSF(jb, 2),
		Skewness:  s,
		Kurtosis:  k,
		N:         n,
	}
}
