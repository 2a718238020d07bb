package rank

import (
	"math"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sartorproj/goeval/metrics"
	"github.com/sartorproj/goeval/timeseries"
)

func records(kind metrics.Kind, pairs ...any) []metrics.Record {
	var out []metrics.Record
	for i := 0; i < len(pairs); i += 2 {
		out = append(out, metrics.Record{
			ID:     timeseries.SeriesID(pairs[i].(string)),
			Metric: kind,
			Value:  pairs[i+1].(float64),
		})
	}
	return out
}

func TestRankAscending(t *testing.T) {
	r := Records(records(metrics.SMAPE, "Y", 133.3, "X", 0.0), false)

	assert.Equal(t, []timeseries.SeriesID{"X", "Y"}, r.IDs())
	assert.Equal(t, 1, r.Records[0].Rank)
	assert.Equal(t, 2, r.Records[1].Rank)
	assert.Equal(t, metrics.SMAPE, r.Metric)
}

func TestRankDirectionsAreReverses(t *testing.T) {
	in := records(metrics.MAE, "a", 3.0, "b", 1.0, "c", 4.0, "d", 1.5, "e", 9.0)

	asc := Records(in, false).IDs()
	desc := Records(in, true).IDs()

	slices.Reverse(desc)
	assert.Equal(t, asc, desc)
}

func TestRankTiesKeepInputOrder(t *testing.T) {
	in := records(metrics.MAE, "a", 1.0, "b", 2.0, "c", 1.0, "d", 2.0, "e", 1.0)

	assert.Equal(t, []timeseries.SeriesID{"a", "c", "e", "b", "d"}, Records(in, false).IDs())
	assert.Equal(t, []timeseries.SeriesID{"b", "d", "a", "c", "e"}, Records(in, true).IDs())
}

func TestRankIsIdempotent(t *testing.T) {
	in := records(metrics.SMAPE, "a", 5.0, "b", 1.0, "c", 5.0, "d", 0.5, "e", 1.0)

	for _, desc := range []bool{false, true} {
		first := Records(in, desc)
		second := Records(first.Metrics(), desc)
		assert.Equal(t, first.Records, second.Records)
	}
}

func TestRankDropsUndefinedValues(t *testing.T) {
	in := records(metrics.SMAPE, "a", 1.0, "b", math.NaN(), "c", math.Inf(1), "d", 0.0)

	r := Records(in, false)
	assert.Equal(t, 2, r.Len())
	assert.Equal(t, []timeseries.SeriesID{"d", "a"}, r.IDs())
	assert.Equal(t, []timeseries.Exclusion{
		{ID: "b", Reason: timeseries.UndefinedMetric},
		{ID: "c", Reason: timeseries.UndefinedMetric},
	}, r.Exclusions)
}

func TestRankTableKeepsExclusions(t *testing.T) {
	table := &metrics.Table{
		Metric:     metrics.Normality,
		Records:    records(metrics.Normality, "a", 0.2, "b", 7.5),
		Exclusions: []timeseries.Exclusion{{ID: "c", Reason: timeseries.InsufficientSamples}},
	}

	r := Rank(table, Default(metrics.Normality))
	assert.True(t, r.Descending)
	assert.Equal(t, []timeseries.SeriesID{"b", "a"}, r.IDs())
	assert.Equal(t, table.Exclusions, r.Exclusions)

	// Ranking does not touch the input table.
	assert.Equal(t, timeseries.SeriesID("a"), table.Records[0].ID)
}

func TestTopAndBottom(t *testing.T) {
	r := Records(records(metrics.MAE, "a", 1.0, "b", 2.0, "c", 3.0, "d", 4.0), false)

	assert.Equal(t, []timeseries.SeriesID{"a", "b"}, ids(r.Top(2)))
	assert.Equal(t, []timeseries.SeriesID{"c", "d"}, ids(r.Bottom(2)))
	assert.Len(t, r.Top(10), 4)
	assert.Empty(t, r.Top(-1))
	assert.Empty(t, r.Bottom(0))

	// Top is a view of the ranking, not a re-sort.
	top := r.Top(2)
	require.Equal(t, 1, top[0].Rank)
	assert.Same(t, &r.Records[0], &top[0])
}

func TestTopAndBottomDoNotShareSpareCapacity(t *testing.T) {
	r := Records(records(metrics.MAE, "a", 1.0, "b", 2.0, "c", 3.0, "d", 4.0), false)
	r.Records = r.Records[:3]
	spare := r.Records[:4][3]

	bottom := append(r.Bottom(1), Record{Rank: 99})
	top := append(r.Top(1), Record{Rank: 98})

	assert.Equal(t, 99, bottom[1].Rank)
	assert.Equal(t, 98, top[1].Rank)
	assert.Equal(t, spare, r.Records[:4][3])
	assert.Equal(t, []timeseries.SeriesID{"a", "b", "c"}, r.IDs())
}

func TestDefault(t *testing.T) {
	assert.False(t, Default(metrics.SMAPE))
	assert.False(t, Default(metrics.AbsBias))
	assert.True(t, Default(metrics.Normality))
	assert.True(t, Default(metrics.Autocorrelation))
	assert.True(t, Default(metrics.ValueAdd))
}

func TestRankEmpty(t *testing.T) {
	r := Records(nil, false)
	assert.Equal(t, 0, r.Len())
	assert.Empty(t, r.Top(3))
}

func ids(recs []Record) []timeseries.SeriesID {
	out := make([]timeseries.SeriesID, len(recs))
	for i, r := range recs {
		out[i] = r.ID
	}
	return out
}
