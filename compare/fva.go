package compare

import (
	"fmt"

	"github.com/sartorproj/goeval/metrics"
	"github.com/sartorproj/goeval/timeseries"
)

// FVARecord is the forecast value add of one series. Delta is
// Benchmark - Candidate: positive when the candidate beats the benchmark.
type FVARecord struct {
	ID        timeseries.SeriesID `json:"unique_id"`
	Candidate float64             `json:"candidate"`
	Benchmark float64             `json:"benchmark"`
	Delta     float64             `json:"delta"`
}

// FVATable holds the forecast value add per series in candidate order.
type FVATable struct {
	Metric     metrics.Kind           `json:"metric"`
	Records    []FVARecord            `json:"records"`
	Exclusions []timeseries.Exclusion `json:"exclusions,omitempty"`
}

// Metrics projects the deltas onto metric records so they can be ranked.
func (t *FVATable) Metrics() []metrics.Record {
	out := make([]metrics.Record, len(t.Records))
	for i, r := range t.Records {
		out[i] = metrics.Record{ID: r.ID, Metric: metrics.ValueAdd, Value: r.Delta}
	}
	return out
}

// ForecastValueAdd scores candidate and benchmark against actual
// independently and reports benchmark - candidate per series. A series that
// cannot be scored on both sides is excluded, never treated as zero.
func ForecastValueAdd(actual, candidate, benchmark *timeseries.Panel, opts *Options) (*FVATable, error) {
	if opts == nil {
		opts = DefaultOptions()
	}

	cand, err := score(actual, candidate, opts)
	if err != nil {
		return nil, wrap("candidate", err)
	}
	bench, err := score(actual, benchmark, opts)
	if err != nil {
		return nil, wrap("benchmark", err)
	}

	table := &FVATable{Metric: opts.metric()}
	table.Exclusions = append(table.Exclusions, cand.Exclusions...)
	table.Exclusions = append(table.Exclusions, bench.Exclusions...)
	known := mentioned(table.Exclusions)

	benchByID := make(map[timeseries.SeriesID]float64, len(bench.Records))
	for _, r := range bench.Records {
		benchByID[r.ID] = r.Value
	}
	candIDs := make(map[timeseries.SeriesID]bool, len(cand.Records))

	var missing []timeseries.Exclusion
	for _, r := range cand.Records {
		candIDs[r.ID] = true
		b, ok := benchByID[r.ID]
		if !ok {
			if !known[r.ID] {
				missing = append(missing, timeseries.Exclusion{ID: r.ID, Reason: timeseries.MissingPrediction})
			}
			continue
		}
		table.Records = append(table.Records, FVARecord{
			ID:        r.ID,
			Candidate: r.Value,
			Benchmark: b,
			Delta:     b - r.Value,
		})
	}
	for _, r := range bench.Records {
		if !candIDs[r.ID] && !known[r.ID] {
			missing = append(missing, timeseries.Exclusion{ID: r.ID, Reason: timeseries.MissingPrediction})
		}
	}
	table.Exclusions = append(table.Exclusions, missing...)

	if len(table.Records) == 0 {
		return nil, fmt.Errorf("%w: candidate and benchmark share no scored series", ErrNoCommonSeries)
	}

	timeseries.LogExclusions(opts.Logger, "fva", missing)
	opts.Logger.Debug().
		Str("metric", string(table.Metric)).
		Int("series", len(table.Records)).
		Msg("forecast value add computed")

	return table, nil
}
