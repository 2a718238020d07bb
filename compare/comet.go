package compare

import (
	"fmt"

	"github.com/sartorproj/goeval/internal/parallel"
	"github.com/sartorproj/goeval/metrics"
	"github.com/sartorproj/goeval/timeseries"
)

// CometPoint places one series by historical volatility and forecast accuracy.
type CometPoint struct {
	ID       timeseries.SeriesID `json:"unique_id"`
	CV       float64             `json:"cv"`
	Accuracy float64             `json:"accuracy"`
}

// CometTable holds comet coordinates in test-prediction order.
type CometTable struct {
	Metric     metrics.Kind           `json:"metric"`
	Points     []CometPoint           `json:"points"`
	Exclusions []timeseries.Exclusion `json:"exclusions,omitempty"`
}

// CometCoordinates pairs each series' coefficient of variation over the
// training window with its out-of-sample accuracy. CV uses the training
// actuals only. A series whose training mean is zero has no CV and is
// excluded with a warning.
func CometCoordinates(trainActual, testActual, testPred *timeseries.Panel, opts *Options) (*CometTable, error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	if err := trainActual.Validate(); err != nil {
		return nil, wrap("train panel", err)
	}
	if trainActual.HasSplits() {
		return nil, fmt.Errorf("train panel: %w: split identifiers are only valid on predictions",
			timeseries.ErrSchemaMismatch)
	}

	accuracy, err := score(testActual, testPred, opts)
	if err != nil {
		return nil, wrap("test", err)
	}

	history := make(map[timeseries.SeriesID]*timeseries.Series)
	for _, g := range trainActual.Groups() {
		history[g.ID] = g
	}

	type outcome struct {
		point  CometPoint
		reason timeseries.Reason
	}

	results, err := parallel.Map(accuracy.Records, opts.Workers, func(r metrics.Record) (outcome, error) {
		train, ok := history[r.ID]
		if !ok {
			return outcome{reason: timeseries.MissingHistory}, nil
		}
		cv, ok := train.CV()
		if !ok {
			return outcome{reason: timeseries.ZeroMean}, nil
		}
		return outcome{point: CometPoint{ID: r.ID, CV: cv, Accuracy: r.Value}}, nil
	})
	if err != nil {
		return nil, err
	}

	table := &CometTable{Metric: accuracy.Metric}
	table.Exclusions = append(table.Exclusions, accuracy.Exclusions...)
	known := mentioned(table.Exclusions)

	var excluded []timeseries.Exclusion
	scored := make(map[timeseries.SeriesID]bool, len(results))
	for i, res := range results {
		id := accuracy.Records[i].ID
		scored[id] = true
		if res.reason != "" {
			excluded = append(excluded, timeseries.Exclusion{ID: id, Reason: res.reason})
			continue
		}
		table.Points = append(table.Points, res.point)
	}
	for _, id := range trainActual.SeriesIDs() {
		if !scored[id] && !known[id] {
			excluded = append(excluded, timeseries.Exclusion{ID: id, Reason: timeseries.MissingPrediction})
		}
	}
	table.Exclusions = append(table.Exclusions, excluded...)

	timeseries.LogExclusions(opts.Logger, "comet", excluded)
	opts.Logger.Debug().
		Str("metric", string(table.Metric)).
		Int("series", len(table.Points)).
		Msg("comet coordinates computed")

	return table, nil
}
