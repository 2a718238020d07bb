package align

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sartorproj/goeval/timeseries"
)

func panel(kind timeseries.Kind, id timeseries.SeriesID, from, to int, value func(int) float64) *timeseries.Panel {
	p := &timeseries.Panel{Kind: kind}
	for i := from; i <= to; i++ {
		p.Observations = append(p.Observations, timeseries.Observation{
			ID: id, Timestamp: timeseries.Step(i), Value: value(i),
		})
	}
	return p
}

func merge(ps ...*timeseries.Panel) *timeseries.Panel {
	out := &timeseries.Panel{Kind: ps[0].Kind}
	for _, p := range ps {
		out.Observations = append(out.Observations, p.Observations...)
	}
	return out
}

func linear(i int) float64 { return float64(i) }

func TestAlignRestrictsToIntersection(t *testing.T) {
	actual := panel(timeseries.Actual, "A", 1, 12, linear)
	predicted := panel(timeseries.Predicted, "A", 1, 6, func(i int) float64 { return float64(i) + 0.5 })

	a, err := Align(actual, predicted, nil)
	require.NoError(t, err)
	require.Len(t, a.Groups, 1)

	g := a.Groups[0]
	require.Equal(t, 6, g.Len())
	for i, p := range g.Pairs {
		assert.True(t, p.Timestamp.Equal(timeseries.Step(i+1)))
		assert.Equal(t, float64(i+1), p.Actual)
		assert.Equal(t, -0.5, p.Residual())
	}
	assert.Empty(t, a.Exclusions)
}

func TestAlignDropsSeriesWithoutOverlap(t *testing.T) {
	actual := merge(
		panel(timeseries.Actual, "A", 1, 5, linear),
		panel(timeseries.Actual, "B", 1, 5, linear),
	)
	predicted := merge(
		panel(timeseries.Predicted, "A", 4, 8, linear),
		panel(timeseries.Predicted, "B", 6, 8, linear),
		panel(timeseries.Predicted, "C", 1, 3, linear),
	)

	a, err := Align(actual, predicted, nil)
	require.NoError(t, err)
	assert.Equal(t, []timeseries.SeriesID{"A"}, a.SeriesIDs())
	assert.Equal(t, 2, a.Groups[0].Len())
	assert.Equal(t, []timeseries.Exclusion{
		{ID: "B", Reason: timeseries.NoOverlap},
		{ID: "C", Reason: timeseries.NoOverlap},
	}, a.Exclusions)
}

func TestAlignFailsWhenNothingOverlaps(t *testing.T) {
	actual := panel(timeseries.Actual, "A", 1, 5, linear)

	_, err := Align(actual, panel(timeseries.Predicted, "A", 6, 8, linear), nil)
	assert.ErrorIs(t, err, ErrEmptyAlignment)

	_, err = Align(actual, &timeseries.Panel{Kind: timeseries.Predicted}, nil)
	assert.ErrorIs(t, err, ErrEmptyAlignment)
}

func TestAlignSchemaMismatch(t *testing.T) {
	actual := panel(timeseries.Actual, "A", 1, 5, linear)
	bad := panel(timeseries.Predicted, "", 1, 2, linear)

	_, err := Align(actual, bad, nil)
	assert.ErrorIs(t, err, timeseries.ErrSchemaMismatch)

	_, err = Align(nil, actual, nil)
	assert.ErrorIs(t, err, timeseries.ErrSchemaMismatch)

	_, err = Align(actual.WithSplit("0"), panel(timeseries.Predicted, "A", 1, 2, linear), nil)
	assert.ErrorIs(t, err, timeseries.ErrSchemaMismatch)
}

func TestAlignSplits(t *testing.T) {
	actual := panel(timeseries.Actual, "A", 1, 10, linear)
	first := panel(timeseries.Predicted, "A", 5, 6, linear)
	second := panel(timeseries.Predicted, "A", 7, 8, linear)
	stale := panel(timeseries.Predicted, "A", 20, 21, linear)

	a, err := AlignSplits(actual, []*timeseries.Panel{first, second, stale}, &Options{Workers: 2})
	require.NoError(t, err)
	require.Len(t, a.Groups, 2)
	assert.Equal(t, "split-0", a.Groups[0].Split)
	assert.Equal(t, "split-1", a.Groups[1].Split)
	assert.Equal(t, []timeseries.Exclusion{
		{ID: "A", Split: "split-2", Reason: timeseries.NoOverlap},
	}, a.Exclusions)

	bs := a.BySeries()
	require.Len(t, bs, 1)
	assert.Equal(t, 4, bs[0].Len())
}

func TestAlignKeepsExistingSplitColumn(t *testing.T) {
	actual := panel(timeseries.Actual, "A", 1, 10, linear)
	predicted := merge(
		panel(timeseries.Predicted, "A", 3, 4, linear).WithSplit("2020-01-02"),
		panel(timeseries.Predicted, "A", 4, 5, linear).WithSplit("2020-01-03"),
	)

	a, err := Align(actual, predicted, nil)
	require.NoError(t, err)
	require.Len(t, a.Groups, 2)
	assert.Equal(t, "2020-01-02", a.Groups[0].Split)
	assert.Equal(t, "2020-01-03", a.Groups[1].Split)
}

func TestAlignDoesNotAliasInput(t *testing.T) {
	actual := panel(timeseries.Actual, "A", 1, 3, linear)
	predicted := panel(timeseries.Predicted, "A", 1, 3, linear)

	a, err := Align(actual, predicted, nil)
	require.NoError(t, err)

	predicted.Observations[0].Value = 100
	assert.Equal(t, 1.0, a.Groups[0].Pairs[0].Predicted)
}
