// Package stats provides the statistical kernels behind residual diagnostics.
//
// # Moments and Normality
//
// Jarque-Bera tests whether residuals look normally distributed, using sample
// skewness and kurtosis:
//
//	// H0: residuals are normal; larger statistic = stronger evidence against
//	jb := stats.JarqueBera(residuals)
//	fmt.Printf("JB=%.4f p=%.4f skew=%.3f kurt=%.3f\n",
//	    jb.Statistic, jb.PValue, jb.Skewness, jb.Kurtosis)
//
//	m := stats.CentralMoments(residuals.Values)
//	bias := stats.Bias(residuals) // |mean residual|
//
// # Autocorrelation
//
// Test residuals for autocorrelation:
//
//	// Autocorrelation Function
//	acf := stats.ACF(residuals, 20)
//
//	// Ljung-Box test for autocorrelation
//	lb := stats.LjungBox(residuals, 10, 0)
//	if lb.PValue > 0.05 {
//	    // Residuals are white noise (good)
//	}
//
//	// Durbin-Watson test
//	dw := stats.DurbinWatson(residuals.Values)
//
// Functions return nil when the input is too short or constant for the
// statistic to be defined.
package stats
