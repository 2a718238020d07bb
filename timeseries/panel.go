package timeseries

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"
	"time"
)

var (
	// ErrSchemaMismatch is returned when a panel or CSV source lacks a required
	// field or violates the (series, timestamp, split) uniqueness rule.
	ErrSchemaMismatch = errors.New("schema mismatch")
	// ErrNoData is returned when a source contains no usable observations.
	ErrNoData = errors.New("no valid data found")
)

// SeriesID identifies one series inside a panel.
type SeriesID string

// CompositeID builds a SeriesID from several key fields.
func CompositeID(parts ...string) SeriesID {
	return SeriesID(strings.Join(parts, "|"))
}

// Kind tells whether a panel holds observed or forecast values.
type Kind string

const (
	Actual    Kind = "actual"
	Predicted Kind = "predicted"
)

// Observation is a single (series, timestamp, value) row. Split is empty unless
// the row came out of a backtest window.
type Observation struct {
	ID        SeriesID
	Timestamp time.Time
	Value     float64
	Split     string
}

// Panel is a set of observations for many series sharing one schema.
// Observation order is not significant.
type Panel struct {
	Kind         Kind
	Observations []Observation
}

// NewPanel copies obs into a new panel of the given kind.
func NewPanel(kind Kind, obs ...Observation) *Panel {
	return &Panel{Kind: kind, Observations: slices.Clone(obs)}
}

// FromSeries builds a panel from whole series, one observation per point.
func FromSeries(kind Kind, series ...*Series) *Panel {
	p := &Panel{Kind: kind}
	for _, s := range series {
		for i, v := range s.Values {
			p.Observations = append(p.Observations, Observation{
				ID:        s.ID,
				Timestamp: s.Timestamps[i],
				Value:     v,
				Split:     s.Split,
			})
		}
	}
	return p
}

// Len returns the number of observations.
func (p *Panel) Len() int {
	return len(p.Observations)
}

// HasSplits reports whether any observation carries a split identifier.
func (p *Panel) HasSplits() bool {
	for _, o := range p.Observations {
		if o.Split != "" {
			return true
		}
	}
	return false
}

type groupKey struct {
	id    SeriesID
	split string
}

type pointKey struct {
	id    SeriesID
	split string
	ts    int64
}

// Validate checks the panel schema: every observation needs a series identifier,
// a timestamp and a finite value, and (series, timestamp, split) must be unique.
func (p *Panel) Validate() error {
	if p == nil {
		return fmt.Errorf("%w: nil panel", ErrSchemaMismatch)
	}
	seen := make(map[pointKey]struct{}, len(p.Observations))
	for i, o := range p.Observations {
		switch {
		case o.ID == "":
			return fmt.Errorf("%w: %s row %d has no series identifier", ErrSchemaMismatch, p.Kind, i)
		case o.Timestamp.IsZero():
			return fmt.Errorf("%w: %s row %d (%s) has no timestamp", ErrSchemaMismatch, p.Kind, i, o.ID)
		case math.IsNaN(o.Value) || math.IsInf(o.Value, 0):
			return fmt.Errorf("%w: %s row %d (%s) has non-finite value", ErrSchemaMismatch, p.Kind, i, o.ID)
		}
		k := pointKey{id: o.ID, split: o.Split, ts: o.Timestamp.UnixNano()}
		if _, dup := seen[k]; dup {
			return fmt.Errorf("%w: %s has duplicate row for series %q at %s",
				ErrSchemaMismatch, p.Kind, o.ID, o.Timestamp.Format(time.RFC3339))
		}
		seen[k] = struct{}{}
	}
	return nil
}

// Groups splits the panel into one Series per (series, split), in order of first
// appearance, with points sorted by timestamp.
func (p *Panel) Groups() []*Series {
	index := make(map[groupKey]int)
	var groups []*Series
	for _, o := range p.Observations {
		k := groupKey{id: o.ID, split: o.Split}
		i, ok := index[k]
		if !ok {
			i = len(groups)
			index[k] = i
			groups = append(groups, &Series{ID: o.ID, Split: o.Split})
		}
		g := groups[i]
		g.Timestamps = append(g.Timestamps, o.Timestamp)
		g.Values = append(g.Values, o.Value)
	}
	for _, g := range groups {
		sortByTime(g)
	}
	return groups
}

// SeriesIDs returns the distinct series identifiers in order of first appearance.
func (p *Panel) SeriesIDs() []SeriesID {
	seen := make(map[SeriesID]struct{})
	var ids []SeriesID
	for _, o := range p.Observations {
		if _, ok := seen[o.ID]; ok {
			continue
		}
		seen[o.ID] = struct{}{}
		ids = append(ids, o.ID)
	}
	return ids
}

// Filter returns a new panel holding only the observations of the given series.
func (p *Panel) Filter(ids ...SeriesID) *Panel {
	keep := make(map[SeriesID]struct{}, len(ids))
	for _, id := range ids {
		keep[id] = struct{}{}
	}
	out := &Panel{Kind: p.Kind}
	for _, o := range p.Observations {
		if _, ok := keep[o.ID]; ok {
			out.Observations = append(out.Observations, o)
		}
	}
	return out
}

// WithSplit returns a copy of the panel with every observation tagged with split.
func (p *Panel) WithSplit(split string) *Panel {
	out := &Panel{Kind: p.Kind, Observations: make([]Observation, len(p.Observations))}
	for i, o := range p.Observations {
		o.Split = split
		out.Observations[i] = o
	}
	return out
}

func sortByTime(s *Series) {
	order := make([]int, len(s.Values))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		return s.Timestamps[a].Compare(s.Timestamps[b])
	})
	ts := make([]time.Time, len(order))
	vs := make([]float64, len(order))
	for i, j := range order {
		ts[i] = s.Timestamps[j]
		vs[i] = s.Values[j]
	}
	s.Timestamps, s.Values = ts, vs
}
