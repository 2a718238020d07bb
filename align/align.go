// Package align joins actual and predicted panels on (series, timestamp).
package align

import (
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/sartorproj/goeval/internal/parallel"
	"github.com/sartorproj/goeval/timeseries"
)

// ErrEmptyAlignment is returned when no predicted series shares a single
// timestamp with the actual panel.
var ErrEmptyAlignment = errors.New("empty alignment")

// Options configures alignment.
type Options struct {
	Workers int            // Parallel workers (default: GOMAXPROCS)
	Logger  zerolog.Logger // Receives exclusion warnings (default: no-op)
}

// DefaultOptions returns the default alignment options.
func DefaultOptions() *Options {
	return &Options{Logger: zerolog.Nop()}
}

// Pair is one timestamp present in both panels.
type Pair struct {
	Timestamp time.Time
	Actual    float64
	Predicted float64
}

// Residual returns actual minus predicted.
func (p Pair) Residual() float64 {
	return p.Actual - p.Predicted
}

// Group holds the aligned pairs of one series within one split, sorted by timestamp.
type Group struct {
	ID    timeseries.SeriesID
	Split string
	Pairs []Pair
}

// Len returns the number of aligned points.
func (g *Group) Len() int {
	return len(g.Pairs)
}

// Residuals returns the group's residual sequence as a series.
func (g *Group) Residuals() *timeseries.Series {
	s := &timeseries.Series{
		ID:         g.ID,
		Split:      g.Split,
		Timestamps: make([]time.Time, len(g.Pairs)),
		Values:     make([]float64, len(g.Pairs)),
	}
	for i, p := range g.Pairs {
		s.Timestamps[i] = p.Timestamp
		s.Values[i] = p.Residual()
	}
	return s
}

// Alignment is the result of aligning one actual panel against predictions.
// Groups appear in first-appearance order of the predicted panel.
type Alignment struct {
	Groups     []Group
	Exclusions []timeseries.Exclusion
}

// SeriesGroups collects every split of one series.
type SeriesGroups struct {
	ID     timeseries.SeriesID
	Groups []Group
}

// Len returns the number of aligned points over all splits.
func (s SeriesGroups) Len() int {
	n := 0
	for _, g := range s.Groups {
		n += g.Len()
	}
	return n
}

// BySeries merges groups per series, keeping first-appearance order.
func (a *Alignment) BySeries() []SeriesGroups {
	index := make(map[timeseries.SeriesID]int)
	var out []SeriesGroups
	for _, g := range a.Groups {
		i, ok := index[g.ID]
		if !ok {
			i = len(out)
			index[g.ID] = i
			out = append(out, SeriesGroups{ID: g.ID})
		}
		out[i].Groups = append(out[i].Groups, g)
	}
	return out
}

// SeriesIDs returns the aligned series identifiers in first-appearance order.
func (a *Alignment) SeriesIDs() []timeseries.SeriesID {
	bs := a.BySeries()
	ids := make([]timeseries.SeriesID, len(bs))
	for i, s := range bs {
		ids[i] = s.ID
	}
	return ids
}

// Align intersects every (series, split) of predicted with the actual panel.
// Groups with no shared timestamp are dropped and reported as exclusions; if
// every group is dropped the call fails with ErrEmptyAlignment.
func Align(actual, predicted *timeseries.Panel, opts *Options) (*Alignment, error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	if err := actual.Validate(); err != nil {
		return nil, fmt.Errorf("actual panel: %w", err)
	}
	if err := predicted.Validate(); err != nil {
		return nil, fmt.Errorf("predicted panel: %w", err)
	}
	if actual.HasSplits() {
		return nil, fmt.Errorf("actual panel: %w: split identifiers are only valid on predictions",
			timeseries.ErrSchemaMismatch)
	}

	index := make(map[timeseries.SeriesID]map[int64]float64)
	for _, o := range actual.Observations {
		m, ok := index[o.ID]
		if !ok {
			m = make(map[int64]float64)
			index[o.ID] = m
		}
		m[o.Timestamp.UnixNano()] = o.Value
	}

	groups, err := parallel.Map(predicted.Groups(), opts.Workers, func(s *timeseries.Series) (Group, error) {
		g := Group{ID: s.ID, Split: s.Split}
		values := index[s.ID]
		for i, ts := range s.Timestamps {
			if a, ok := values[ts.UnixNano()]; ok {
				g.Pairs = append(g.Pairs, Pair{Timestamp: ts, Actual: a, Predicted: s.Values[i]})
			}
		}
		return g, nil
	})
	if err != nil {
		return nil, err
	}

	result := &Alignment{}
	for _, g := range groups {
		if g.Len() == 0 {
			result.Exclusions = append(result.Exclusions, timeseries.Exclusion{
				ID: g.ID, Split: g.Split, Reason: timeseries.NoOverlap,
			})
			continue
		}
		result.Groups = append(result.Groups, g)
	}

	if len(result.Groups) == 0 {
		return nil, fmt.Errorf("%w: none of %d predicted series overlap the actual panel",
			ErrEmptyAlignment, len(groups))
	}

	timeseries.LogExclusions(opts.Logger, "align", result.Exclusions)
	opts.Logger.Debug().
		Int("groups", len(result.Groups)).
		Int("excluded", len(result.Exclusions)).
		Msg("panels aligned")

	return result, nil
}

// AlignSplits aligns one prediction panel per backtest split. Panels without
// split identifiers are tagged "split-<index>" so their series stay separate
// samples downstream.
func AlignSplits(actual *timeseries.Panel, predicted []*timeseries.Panel, opts *Options) (*Alignment, error) {
	merged := &timeseries.Panel{Kind: timeseries.Predicted}
	for i, p := range predicted {
		if p == nil {
			return nil, fmt.Errorf("predicted panel %d: %w: nil panel", i, timeseries.ErrSchemaMismatch)
		}
		if !p.HasSplits() {
			p = p.WithSplit(fmt.Sprintf("split-%d", i))
		}
		merged.Observations = append(merged.Observations, p.Observations...)
	}
	return Align(actual, merged, opts)
}
