// Package rank orders per-series metric tables.
package rank

import (
	"cmp"
	"math"
	"slices"

	"github.com/sartorproj/goeval/metrics"
	"github.com/sartorproj/goeval/timeseries"
)

// Record is a metric record with its 1-based position.
type Record struct {
	Rank int `json:"rank"`
	metrics.Record
}

// Ranking is a metric table in rank order.
type Ranking struct {
	Metric     metrics.Kind           `json:"metric"`
	Descending bool                   `json:"descending"`
	Records    []Record               `json:"records"`
	Exclusions []timeseries.Exclusion `json:"exclusions,omitempty"`
}

// Default returns the direction that puts the best series first for kind.
// Error and bias metrics rank ascending; test statistics rank descending so the
// most suspicious residuals come first, and value add ranks descending so the
// largest improvement comes first.
func Default(kind metrics.Kind) (descending bool) {
	switch kind {
	case metrics.Normality, metrics.Autocorrelation, metrics.ValueAdd:
		return true
	}
	return false
}

// Rank orders a metric table, keeping its exclusions.
func Rank(t *metrics.Table, descending bool) *Ranking {
	r := Records(t.Records, descending)
	r.Metric = t.Metric
	r.Exclusions = append(slices.Clone(t.Exclusions), r.Exclusions...)
	return r
}

// Records orders records by value. The sort is stable, so equal values keep
// their input order in either direction. Non-finite values are not ranked and
// are reported as exclusions instead.
func Records(records []metrics.Record, descending bool) *Ranking {
	r := &Ranking{Descending: descending}
	if len(records) > 0 {
		r.Metric = records[0].Metric
	}

	ranked := make([]metrics.Record, 0, len(records))
	for _, rec := range records {
		if math.IsNaN(rec.Value) || math.IsInf(rec.Value, 0) {
			r.Exclusions = append(r.Exclusions, timeseries.Exclusion{ID: rec.ID, Reason: timeseries.UndefinedMetric})
			continue
		}
		ranked = append(ranked, rec)
	}

	slices.SortStableFunc(ranked, func(a, b metrics.Record) int {
		if descending {
			return cmp.Compare(b.Value, a.Value)
		}
		return cmp.Compare(a.Value, b.Value)
	})

	r.Records = make([]Record, len(ranked))
	for i, rec := range ranked {
		r.Records[i] = Record{Rank: i + 1, Record: rec}
	}
	return r
}

// Len returns the number of ranked series.
func (r *Ranking) Len() int {
	return len(r.Records)
}

// Top returns the first k records. k is clamped to [0, Len].
func (r *Ranking) Top(k int) []Record {
	k = clamp(k, len(r.Records))
	return r.Records[:k:k]
}

// Bottom returns the last k records in rank order.
func (r *Ranking) Bottom(k int) []Record {
	n := len(r.Records)
	k = clamp(k, n)
	return r.Records[n-k : n : n]
}

// IDs returns the series identifiers in rank order.
func (r *Ranking) IDs() []timeseries.SeriesID {
	ids := make([]timeseries.SeriesID, len(r.Records))
	for i, rec := range r.Records {
		ids[i] = rec.ID
	}
	return ids
}

// Metrics returns the underlying metric records in rank order.
func (r *Ranking) Metrics() []metrics.Record {
	out := make([]metrics.Record, len(r.Records))
	for i, rec := range r.Records {
		out[i] = rec.Record
	}
	return out
}

func clamp(k, n int) int {
	if k < 0 {
		return 0
	}
	if k > n {
		return n
	}
	return k
}
