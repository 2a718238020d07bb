// Package goeval evaluates and ranks forecasts across many time series.
//
// GoEval takes a panel of observed values and a panel of predictions in long
// format, aligns them per series, and scores each series. The resulting
// per-series tables can be ranked to find the best and worst forecasts, to
// surface suspicious residuals, or to measure how much a model improves on a
// benchmark.
//
// # Features
//
//   - Alignment of actual and predicted panels, including backtest splits
//   - Accuracy metrics: SMAPE, MAE, RMSE, MAPE and absolute bias
//   - Residual diagnostics: bias, Jarque-Bera normality, Ljung-Box autocorrelation
//   - Forecast value add of a candidate over a benchmark
//   - Comet coordinates relating training volatility to test accuracy
//   - Stable ranking in either direction with top/bottom selection
//
// # Quick Start
//
// Rank series by SMAPE:
//
//	actual, _ := timeseries.LoadPanelCSV("actual.csv", timeseries.Actual, nil)
//	pred, _ := timeseries.LoadPanelCSV("forecasts.csv", timeseries.Predicted, nil)
//
//	aligned, _ := align.Align(actual, pred, nil)
//	table, _ := metrics.Compute(aligned, metrics.SMAPE, nil)
//	worst := rank.Rank(table, true).Top(10)
//
// Rank by residual normality:
//
//	table, _ := diagnostics.FromAlignment(aligned, metrics.Normality, nil)
//	ranking := rank.Rank(table, rank.Default(metrics.Normality))
//
// # Packages
//
// The library is organized into the following packages:
//
//   - timeseries: Panels, series, CSV loading and exclusions
//   - align: Pairing of predictions with actuals
//   - metrics: Per-series accuracy metrics
//   - diagnostics: Per-series residual diagnostics
//   - rank: Ordering of per-series tables
//   - compare: Forecast value add and comet coordinates
//   - stats: Moments, Jarque-Bera, Ljung-Box and related kernels
//   - config: YAML configuration
//
// The goeval command in cmd/goeval exposes the same operations on CSV files.
//
// # References
//
//   - Hyndman, R.J., & Athanasopoulos, G. (2021). Forecasting: Principles and Practice
//   - Jarque, C. M., & Bera, A. K. (1987). A test for normality of observations and regression residuals
package goeval
