// Package compare derives comparative diagnostics between forecasts: the
// forecast value add of a candidate over a benchmark, and comet coordinates
// relating series volatility to out-of-sample accuracy.
package compare

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/sartorproj/goeval/align"
	"github.com/sartorproj/goeval/metrics"
	"github.com/sartorproj/goeval/timeseries"
)

// ErrNoCommonSeries is returned when no series can be scored on both sides of
// a comparison.
var ErrNoCommonSeries = errors.New("no common series")

// Options configures comparative analysis.
type Options struct {
	Metric      metrics.Kind        // Accuracy metric (default: SMAPE)
	Aggregation metrics.Aggregation // Split handling (default: Pooled)
	Workers     int                 // Parallel workers (default: GOMAXPROCS)
	Logger      zerolog.Logger      // Receives exclusion warnings (default: no-op)
}

// DefaultOptions returns the default comparison options.
func DefaultOptions() *Options {
	return &Options{
		Metric:      metrics.SMAPE,
		Aggregation: metrics.Pooled,
		Logger:      zerolog.Nop(),
	}
}

func (o *Options) metric() metrics.Kind {
	if o.Metric == "" {
		return metrics.SMAPE
	}
	return o.Metric
}

func (o *Options) alignOptions() *align.Options {
	return &align.Options{Workers: o.Workers, Logger: o.Logger}
}

func (o *Options) metricOptions() *metrics.Options {
	return &metrics.Options{Aggregation: o.Aggregation, Workers: o.Workers, Logger: o.Logger}
}

// score aligns predicted against actual and computes the configured metric.
func score(actual, predicted *timeseries.Panel, opts *Options) (*metrics.Table, error) {
	a, err := align.Align(actual, predicted, opts.alignOptions())
	if err != nil {
		return nil, err
	}
	return metrics.Compute(a, opts.metric(), opts.metricOptions())
}

// mentioned collects the series already dropped as a whole. Split-level
// exclusions do not count: the series may still have been scored from its
// other splits.
func mentioned(excl []timeseries.Exclusion) map[timeseries.SeriesID]bool {
	out := make(map[timeseries.SeriesID]bool, len(excl))
	for _, e := range excl {
		if e.Split == "" {
			out[e.ID] = true
		}
	}
	return out
}

func wrap(side string, err error) error {
	return fmt.Errorf("%s: %w", side, err)
}
