// Package diagnostics scores forecast residuals per series: systematic bias,
// departure from normality and leftover autocorrelation.
package diagnostics

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/sartorproj/goeval/align"
	"github.com/sartorproj/goeval/internal/parallel"
	"github.com/sartorproj/goeval/metrics"
	"github.com/sartorproj/goeval/stats"
	"github.com/sartorproj/goeval/timeseries"
)

// ErrUnknownKey is returned for a sort key diagnostics cannot compute.
var ErrUnknownKey = errors.New("unknown diagnostic key")

// DefaultMinSamples is the shortest residual sequence tested for normality or
// autocorrelation.
const DefaultMinSamples = 8

// Options configures residual diagnostics.
type Options struct {
	MinSamples   int                 // Floor for normality/autocorrelation (default: 8)
	LjungBoxLags int                 // Lags for the Ljung-Box test (default: 10)
	Aggregation  metrics.Aggregation // Split handling (default: Pooled)
	Workers      int                 // Parallel workers (default: GOMAXPROCS)
	Logger       zerolog.Logger      // Receives exclusion warnings (default: no-op)
}

// DefaultOptions returns the default diagnostic options.
func DefaultOptions() *Options {
	return &Options{
		MinSamples:   DefaultMinSamples,
		LjungBoxLags: 10,
		Aggregation:  metrics.Pooled,
		Logger:       zerolog.Nop(),
	}
}

func (o *Options) minSamples() int {
	if o.MinSamples <= 0 {
		return DefaultMinSamples
	}
	return o.MinSamples
}

func (o *Options) lags() int {
	if o.LjungBoxLags <= 0 {
		return 10
	}
	return o.LjungBoxLags
}

// Residuals returns one actual-minus-predicted series per aligned
// (series, split), keyed by the aligned timestamps.
func Residuals(a *align.Alignment) []*timeseries.Series {
	out := make([]*timeseries.Series, len(a.Groups))
	for i := range a.Groups {
		out[i] = a.Groups[i].Residuals()
	}
	return out
}

// Keys lists the supported sort keys.
func Keys() []metrics.Kind {
	return []metrics.Kind{metrics.AbsBias, metrics.Normality, metrics.Autocorrelation}
}

type scorer func(s *timeseries.Series, opts *Options) (float64, timeseries.Reason, bool)

func scorerFor(key metrics.Kind) (scorer, error) {
	switch key {
	case metrics.AbsBias:
		return scoreBias, nil
	case metrics.Normality:
		return scoreNormality, nil
	case metrics.Autocorrelation:
		return scoreAutocorrelation, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownKey, key)
}

func scoreBias(s *timeseries.Series, _ *Options) (float64, timeseries.Reason, bool) {
	if s.Len() == 0 {
		return 0, timeseries.InsufficientSamples, false
	}
	return stats.Bias(s), "", true
}

func scoreNormality(s *timeseries.Series, opts *Options) (float64, timeseries.Reason, bool) {
	if s.Len() < opts.minSamples() {
		return 0, timeseries.InsufficientSamples, false
	}
	jb := stats.JarqueBera(s)
	if jb == nil {
		return 0, timeseries.ZeroVariance, false
	}
	return jb.Statistic, "", true
}

func scoreAutocorrelation(s *timeseries.Series, opts *Options) (float64, timeseries.Reason, bool) {
	if s.Len() < opts.minSamples() {
		return 0, timeseries.InsufficientSamples, false
	}
	lb := stats.LjungBox(s, opts.lags(), 0)
	if lb == nil {
		return 0, timeseries.ZeroVariance, false
	}
	return lb.Statistic, "", true
}

// bySeries groups residual sequences per series in first-appearance order.
func bySeries(residuals []*timeseries.Series) [][]*timeseries.Series {
	index := make(map[timeseries.SeriesID]int)
	var out [][]*timeseries.Series
	for _, r := range residuals {
		i, ok := index[r.ID]
		if !ok {
			i = len(out)
			index[r.ID] = i
			out = append(out, nil)
		}
		out[i] = append(out[i], r)
	}
	return out
}

type outcome struct {
	value      float64
	ok         bool
	exclusions []timeseries.Exclusion
}

// Compute scores every series' residuals by key. Series that are too short or
// degenerate for the statistic are excluded with a warning while the rest of
// the batch is still evaluated.
func Compute(residuals []*timeseries.Series, key metrics.Kind, opts *Options) (*metrics.Table, error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	score, err := scorerFor(key)
	if err != nil {
		return nil, err
	}

	groups := bySeries(residuals)
	results, err := parallel.Map(groups, opts.Workers, func(splits []*timeseries.Series) (outcome, error) {
		if opts.Aggregation == metrics.PerSplit {
			return perSplit(score, splits, opts), nil
		}
		pooled := timeseries.Concat(splits...)
		v, reason, ok := score(pooled, opts)
		if !ok {
			return outcome{exclusions: []timeseries.Exclusion{{ID: pooled.ID, Reason: reason}}}, nil
		}
		return outcome{value: v, ok: true}, nil
	})
	if err != nil {
		return nil, err
	}

	table := &metrics.Table{Metric: key}
	var excluded []timeseries.Exclusion
	for i, splits := range groups {
		excluded = append(excluded, results[i].exclusions...)
		if results[i].ok {
			table.Records = append(table.Records, metrics.Record{ID: splits[0].ID, Metric: key, Value: results[i].value})
		}
	}
	table.Exclusions = excluded

	timeseries.LogExclusions(opts.Logger, string(key), excluded)
	opts.Logger.Debug().
		Str("key", string(key)).
		Int("series", len(table.Records)).
		Int("excluded", len(excluded)).
		Msg("residual diagnostics computed")

	return table, nil
}

// perSplit averages the statistic over the splits where it is defined and
// reports each failing split.
func perSplit(score scorer, splits []*timeseries.Series, opts *Options) outcome {
	var out outcome
	sum, n := 0.0, 0
	for _, s := range splits {
		v, reason, ok := score(s, opts)
		if !ok {
			out.exclusions = append(out.exclusions, timeseries.Exclusion{ID: s.ID, Split: s.Split, Reason: reason})
			continue
		}
		sum += v
		n++
	}
	if n > 0 {
		out.value = sum / float64(n)
		out.ok = true
	}
	return out
}

// FromAlignment computes residual diagnostics straight from an alignment,
// carrying its exclusions into the table.
func FromAlignment(a *align.Alignment, key metrics.Kind, opts *Options) (*metrics.Table, error) {
	if a == nil {
		return nil, fmt.Errorf("%w: nil alignment", align.ErrEmptyAlignment)
	}
	table, err := Compute(Residuals(a), key, opts)
	if err != nil {
		return nil, err
	}
	table.Exclusions = append(append([]timeseries.Exclusion{}, a.Exclusions...), table.Exclusions...)
	return table, nil
}
