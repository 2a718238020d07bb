package diagnostics

import (
	"math"

	"github.com/sartorproj/goeval/internal/parallel"
	"github.com/sartorproj/goeval/stats"
	"github.com/sartorproj/goeval/timeseries"
)

// Report is the full residual summary of one series, pooled over splits.
// Statistics that are undefined for the sample are nil.
type Report struct {
	ID           timeseries.SeriesID `json:"unique_id"`
	N            int                 `json:"n"`
	Mean         float64             `json:"mean"`
	AbsBias      float64             `json:"abs_bias"`
	Min          float64             `json:"min"`
	Max          float64             `json:"max"`
	Median       float64             `json:"median"`
	Skewness     *float64            `json:"skewness,omitempty"`
	Kurtosis     *float64            `json:"kurtosis,omitempty"`
	JarqueBera   *float64            `json:"jarque_bera,omitempty"`
	JBPValue     *float64            `json:"jb_pvalue,omitempty"`
	LjungBox     *float64            `json:"ljung_box,omitempty"`
	LBPValue     *float64            `json:"lb_pvalue,omitempty"`
	DurbinWatson *float64            `json:"durbin_watson,omitempty"`
}

// Describe builds a Report per series. Normality and autocorrelation tests are
// only run when the series meets the minimum sample size.
func Describe(residuals []*timeseries.Series, opts *Options) ([]Report, error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	return parallel.Map(bySeries(residuals), opts.Workers, func(splits []*timeseries.Series) (Report, error) {
		s := timeseries.Concat(splits...)
		m := stats.CentralMoments(s.Values)
		r := Report{
			ID:      s.ID,
			N:       s.Len(),
			Mean:    m.Mean,
			AbsBias: math.Abs(m.Mean),
			Min:     s.Min(),
			Max:     s.Max(),
			Median:  s.Median(),
		}
		if m.M2 > 0 {
			r.Skewness = ptr(m.Skewness())
			r.Kurtosis = ptr(m.Kurtosis())
		}
		if dw := stats.DurbinWatson(s.Values); dw != nil {
			r.DurbinWatson = ptr(dw.Statistic)
		}
		if s.Len() < opts.minSamples() {
			return r, nil
		}
		if jb := stats.JarqueBera(s); jb != nil {
			r.JarqueBera = ptr(jb.Statistic)
			r.JBPValue = ptr(jb.PValue)
		}
		if lb := stats.LjungBox(s, opts.lags(), 0); lb != nil {
			r.LjungBox = ptr(lb.Statistic)
			r.LBPValue = ptr(lb.PValue)
		}
		return r, nil
	})
}

func ptr(v float64) *float64 {
	return &v
}
