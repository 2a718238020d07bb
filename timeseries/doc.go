// Package timeseries provides the panel data model shared by the evaluation
// packages.
//
// A Panel is a long-format table of observations (series identifier, timestamp,
// value) that holds either actual or predicted values. Predicted panels produced
// by repeated backtesting also carry a split identifier per row.
//
// # Building a Panel
//
//	actual := timeseries.NewPanel(timeseries.Actual,
//	    timeseries.Observation{ID: "X", Timestamp: timeseries.Step(0), Value: 10},
//	    timeseries.Observation{ID: "X", Timestamp: timeseries.Step(1), Value: 20},
//	)
//	if err := actual.Validate(); err != nil {
//	    // errors.Is(err, timeseries.ErrSchemaMismatch)
//	}
//
// # Loading from CSV
//
// Panels are loaded from long-format CSV files:
//
//	opts := timeseries.DefaultCSVOptions() // unique_id, ds, y, cutoff
//	opts.ValueColumn = "naive"             // read a model column instead of y
//	pred, err := timeseries.LoadPanelCSV("forecasts.csv", timeseries.Predicted, opts)
//
// Composite identifiers are supported by listing several IDColumns; their values
// are joined with "|".
//
// # Series
//
// Panel.Groups splits a panel into one Series per (series, split), sorted by
// timestamp. A Series offers summary statistics:
//
//	mean := series.Mean()
//	std := series.Std()
//	cv, ok := series.CV()
//
// # Exclusions
//
// Evaluation stages never fail a whole batch because a single series cannot be
// scored. They return an Exclusion for it instead, with a Reason such as
// NoOverlap or InsufficientSamples.
package timeseries
