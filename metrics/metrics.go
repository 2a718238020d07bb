// Package metrics computes per-series accuracy and bias metrics from aligned
// actual/predicted pairs.
package metrics

import (
	"errors"
	"fmt"
	"math"

	"github.com/rs/zerolog"

	"github.com/sartorproj/goeval/align"
	"github.com/sartorproj/goeval/internal/parallel"
	"github.com/sartorproj/goeval/timeseries"
)

// ErrUnknownMetric is returned for a metric kind the computer does not support.
var ErrUnknownMetric = errors.New("unknown metric")

// Kind names a per-series metric.
type Kind string

const (
	SMAPE   Kind = "smape"    // Symmetric mean absolute percentage error, 0-200
	AbsBias Kind = "abs_bias" // |mean(actual - predicted)|
	MAE     Kind = "mae"
	RMSE    Kind = "rmse"
	MAPE    Kind = "mape" // Skips points whose actual is zero

	// Residual diagnostics, produced by package diagnostics.
	Normality       Kind = "normality"       // Jarque-Bera statistic
	Autocorrelation Kind = "autocorrelation" // Ljung-Box Q statistic

	// ValueAdd is the forecast value add of a candidate over a benchmark.
	ValueAdd Kind = "value_add"
)

// Aggregation controls how backtest splits of one series are combined.
type Aggregation string

const (
	// Pooled averages over every aligned point of every split.
	Pooled Aggregation = "pooled"
	// PerSplit computes the metric per split and averages the split values.
	PerSplit Aggregation = "per_split"
)

// Record is one metric value for one series.
type Record struct {
	ID     timeseries.SeriesID `json:"unique_id"`
	Metric Kind                `json:"metric"`
	Value  float64             `json:"value"`
}

// Table holds one record per series that has a defined metric value, in
// first-appearance order, plus the series that were left out.
type Table struct {
	Metric     Kind                   `json:"metric"`
	Records    []Record               `json:"records"`
	Exclusions []timeseries.Exclusion `json:"exclusions,omitempty"`
}

// Get returns the record for id.
func (t *Table) Get(id timeseries.SeriesID) (Record, bool) {
	for _, r := range t.Records {
		if r.ID == id {
			return r, true
		}
	}
	return Record{}, false
}

// Options configures metric computation.
type Options struct {
	Aggregation Aggregation    // Split handling (default: Pooled)
	Workers     int            // Parallel workers (default: GOMAXPROCS)
	Logger      zerolog.Logger // Receives exclusion warnings (default: no-op)
}

// DefaultOptions returns the default metric options.
func DefaultOptions() *Options {
	return &Options{Aggregation: Pooled, Logger: zerolog.Nop()}
}

type scorer func(pairs []align.Pair) (float64, bool)

var scorers = map[Kind]scorer{
	SMAPE:   smape,
	AbsBias: absBias,
	MAE:     mae,
	RMSE:    rmse,
	MAPE:    mape,
}

// Supported reports whether kind can be computed from aligned pairs.
func Supported(kind Kind) bool {
	_, ok := scorers[kind]
	return ok
}

// Score computes kind over a single sequence of pairs. ok is false when the
// metric is undefined for these pairs.
func Score(kind Kind, pairs []align.Pair) (value float64, ok bool, err error) {
	fn, found := scorers[kind]
	if !found {
		return 0, false, fmt.Errorf("%w: %q", ErrUnknownMetric, kind)
	}
	value, ok = fn(pairs)
	return value, ok, nil
}

// Compute evaluates kind for every aligned series. Series whose metric is
// undefined are excluded with a warning; the alignment's own exclusions are
// carried into the table.
func Compute(a *align.Alignment, kind Kind, opts *Options) (*Table, error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	fn, found := scorers[kind]
	if !found {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMetric, kind)
	}
	if a == nil {
		return nil, fmt.Errorf("%w: nil alignment", align.ErrEmptyAlignment)
	}

	type outcome struct {
		value  float64
		ok     bool
		failed []string
	}

	series := a.BySeries()
	results, err := parallel.Map(series, opts.Workers, func(s align.SeriesGroups) (outcome, error) {
		v, ok, failed := aggregate(fn, s.Groups, opts.Aggregation)
		return outcome{value: v, ok: ok, failed: failed}, nil
	})
	if err != nil {
		return nil, err
	}

	table := &Table{Metric: kind}
	table.Exclusions = append(table.Exclusions, a.Exclusions...)

	var excluded []timeseries.Exclusion
	for i, s := range series {
		for _, split := range results[i].failed {
			excluded = append(excluded, timeseries.Exclusion{ID: s.ID, Split: split, Reason: timeseries.UndefinedMetric})
		}
		if !results[i].ok {
			excluded = append(excluded, timeseries.Exclusion{ID: s.ID, Reason: timeseries.UndefinedMetric})
			continue
		}
		table.Records = append(table.Records, Record{ID: s.ID, Metric: kind, Value: results[i].value})
	}
	table.Exclusions = append(table.Exclusions, excluded...)

	timeseries.LogExclusions(opts.Logger, string(kind), excluded)
	opts.Logger.Debug().
		Str("metric", string(kind)).
		Int("series", len(table.Records)).
		Int("excluded", len(excluded)).
		Msg("metric computed")

	return table, nil
}

// aggregate combines the groups of one series. In per-split mode it also
// returns the splits whose metric is undefined; they do not count toward the
// average.
func aggregate(fn scorer, groups []align.Group, mode Aggregation) (float64, bool, []string) {
	if mode == PerSplit {
		var failed []string
		sum, n := 0.0, 0
		for _, g := range groups {
			v, ok := fn(g.Pairs)
			if !ok {
				if g.Split != "" {
					failed = append(failed, g.Split)
				}
				continue
			}
			sum += v
			n++
		}
		if n == 0 {
			return 0, false, failed
		}
		return sum / float64(n), true, failed
	}

	var pooled []align.Pair
	for _, g := range groups {
		pooled = append(pooled, g.Pairs...)
	}
	v, ok := fn(pooled)
	return v, ok, nil
}

func finite(v float64) (float64, bool) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// smape averages |a-p| / ((|a|+|p|)/2) and scales to percent. A point where
// both values are zero is a perfect forecast and contributes zero error.
func smape(pairs []align.Pair) (float64, bool) {
	if len(pairs) == 0 {
		return 0, false
	}
	sum := 0.0
	for _, p := range pairs {
		denom := (math.Abs(p.Actual) + math.Abs(p.Predicted)) / 2
		if denom == 0 {
			continue
		}
		sum += math.Abs(p.Actual-p.Predicted) / denom
	}
	return finite(100 * sum / float64(len(pairs)))
}

// absBias strips the sign after averaging, so offsetting errors cancel.
func absBias(pairs []align.Pair) (float64, bool) {
	if len(pairs) == 0 {
		return 0, false
	}
	sum := 0.0
	for _, p := range pairs {
		sum += p.Residual()
	}
	return finite(math.Abs(sum / float64(len(pairs))))
}

func mae(pairs []align.Pair) (float64, bool) {
	if len(pairs) == 0 {
		return 0, false
	}
	sum := 0.0
	for _, p := range pairs {
		sum += math.Abs(p.Residual())
	}
	return finite(sum / float64(len(pairs)))
}

func rmse(pairs []align.Pair) (float64, bool) {
	if len(pairs) == 0 {
		return 0, false
	}
	sum := 0.0
	for _, p := range pairs {
		d := p.Residual()
		sum += d * d
	}
	return finite(math.Sqrt(sum / float64(len(pairs))))
}

func mape(pairs []align.Pair) (float64, bool) {
	sum, n := 0.0, 0
	for _, p := range pairs {
		if p.Actual == 0 {
			continue
		}
		sum += math.Abs(p.Residual()) / math.Abs(p.Actual)
		n++
	}
	if n == 0 {
		return 0, false
	}
	return finite(100 * sum / float64(n))
}
