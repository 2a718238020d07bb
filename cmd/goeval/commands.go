package main

import (
	"encoding/json"
	"io"
	"slices"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/sartorproj/goeval/align"
	"github.com/sartorproj/goeval/compare"
	"github.com/sartorproj/goeval/config"
	"github.com/sartorproj/goeval/diagnostics"
	"github.com/sartorproj/goeval/metrics"
	"github.com/sartorproj/goeval/rank"
	"github.com/sartorproj/goeval/timeseries"
)

// app carries the flags shared by every subcommand.
type app struct {
	configPath  string
	idColumns   []string
	dateColumn  string
	valueColumn string
	splitColumn string
	dateFormat  string
	intDates    string

	metric      string
	aggregation string
	top         int
	descending  bool
	workers     int
	logLevel    string

	cfg *config.Config
	log zerolog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "goeval",
		Short: "Evaluate and rank forecasts across many series",
		Long: `goeval aligns forecasts with observed values, scores every series,
and ranks them by accuracy, residual diagnostics or value added over a benchmark.

Inputs are long-format CSV files with one row per (series, timestamp).`,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.configPath, "config", "", "YAML configuration file")
	pf.StringSliceVar(&a.idColumns, "id-cols", []string{"unique_id"}, "columns forming the series identifier")
	pf.StringVar(&a.dateColumn, "date-col", "ds", "timestamp column")
	pf.StringVar(&a.valueColumn, "value-col", "y", "observed value column")
	pf.StringVar(&a.splitColumn, "split-col", "cutoff", "backtest split column in prediction files")
	pf.StringVar(&a.dateFormat, "date-format", "2006-01-02", "preferred timestamp layout")
	pf.StringVar(&a.intDates, "integer-dates", "step", "read integer dates as day steps (step) or years (year)")
	pf.StringVar(&a.metric, "metric", "", "accuracy metric: smape, abs_bias, mae, rmse, mape")
	pf.StringVar(&a.aggregation, "aggregation", "", "split handling: pooled or per_split")
	pf.IntVar(&a.top, "top", 0, "number of ranked series to print (0 prints all)")
	pf.BoolVar(&a.descending, "descending", false, "rank largest values first")
	pf.IntVar(&a.workers, "workers", 0, "parallel workers (0 uses every CPU)")
	pf.StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error")

	root.AddCommand(
		newRankCmd(a),
		newResidualsCmd(a),
		newFVACmd(a),
		newCometCmd(a),
	)
	return root
}

// setup loads the configuration, applies flag overrides and builds the logger.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg := config.Default()
	if a.configPath != "" {
		loaded, err := config.Load(a.configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("metric") {
		cfg.Metric = a.metric
	}
	if flags.Changed("aggregation") {
		cfg.Aggregation = a.aggregation
	}
	if flags.Changed("top") {
		cfg.TopK = a.top
	}
	if flags.Changed("descending") {
		cfg.Descending = &a.descending
	}
	if flags.Changed("workers") {
		cfg.Workers = a.workers
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = a.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	log, err := cfg.Logger(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	a.cfg, a.log = cfg, log
	return nil
}

func (a *app) csvOptions(valueColumn string) *timeseries.CSVOptions {
	opts := timeseries.DefaultCSVOptions()
	opts.IDColumns = a.idColumns
	opts.DateColumn = a.dateColumn
	opts.ValueColumn = valueColumn
	opts.SplitColumn = a.splitColumn
	opts.DateFormat = a.dateFormat
	opts.IntDates = timeseries.IntegerDates(a.intDates)
	return opts
}

func (a *app) loadActual(path string) (*timeseries.Panel, error) {
	opts := a.csvOptions(a.valueColumn)
	opts.SplitColumn = ""
	return timeseries.LoadPanelCSV(path, timeseries.Actual, opts)
}

func (a *app) loadPredicted(path, model string) (*timeseries.Panel, error) {
	return timeseries.LoadPanelCSV(path, timeseries.Predicted, a.csvOptions(model))
}

func (a *app) alignFiles(actualPath, predictedPath, model string) (*align.Alignment, error) {
	actual, err := a.loadActual(actualPath)
	if err != nil {
		return nil, err
	}
	predicted, err := a.loadPredicted(predictedPath, model)
	if err != nil {
		return nil, err
	}
	return align.Align(actual, predicted, a.cfg.AlignOptions(a.log))
}

// trim keeps the configured number of leading ranked records.
func (a *app) trim(r *rank.Ranking) *rank.Ranking {
	if a.cfg.TopK > 0 {
		r.Records = r.Top(a.cfg.TopK)
	}
	return r
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newRankCmd(a *app) *cobra.Command {
	var actualPath, predictedPath, model string
	cmd := &cobra.Command{
		Use:   "rank",
		Short: "Rank series by forecast accuracy",
		RunE: func(cmd *cobra.Command, _ []string) error {
			aligned, err := a.alignFiles(actualPath, predictedPath, model)
			if err != nil {
				return err
			}
			kind := metrics.Kind(a.cfg.Metric)
			table, err := metrics.Compute(aligned, kind, a.cfg.MetricOptions(a.log))
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), a.trim(rank.Rank(table, a.cfg.SortDescending(kind))))
		},
	}
	cmd.Flags().StringVar(&actualPath, "actual", "", "CSV of observed values")
	cmd.Flags().StringVar(&predictedPath, "predicted", "", "CSV of forecasts")
	cmd.Flags().StringVar(&model, "model", "y", "forecast value column")
	_ = cmd.MarkFlagRequired("actual")
	_ = cmd.MarkFlagRequired("predicted")
	return cmd
}

func newResidualsCmd(a *app) *cobra.Command {
	var actualPath, predictedPath, model, key string
	var describe bool
	cmd := &cobra.Command{
		Use:   "residuals",
		Short: "Rank series by residual bias, normality or autocorrelation",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("key") {
				a.cfg.ResidualKey = key
			}
			aligned, err := a.alignFiles(actualPath, predictedPath, model)
			if err != nil {
				return err
			}
			opts := a.cfg.DiagnosticOptions(a.log)
			if describe {
				reports, err := diagnostics.Describe(diagnostics.Residuals(aligned), opts)
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), reports)
			}
			kind := metrics.Kind(a.cfg.ResidualKey)
			table, err := diagnostics.FromAlignment(aligned, kind, opts)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), a.trim(rank.Rank(table, a.cfg.SortDescending(kind))))
		},
	}
	cmd.Flags().StringVar(&actualPath, "actual", "", "CSV of observed values")
	cmd.Flags().StringVar(&predictedPath, "predicted", "", "CSV of forecasts")
	cmd.Flags().StringVar(&model, "model", "y", "forecast value column")
	cmd.Flags().StringVar(&key, "key", "", "diagnostic: abs_bias, normality, autocorrelation")
	cmd.Flags().BoolVar(&describe, "describe", false, "print every residual statistic instead of a ranking")
	_ = cmd.MarkFlagRequired("actual")
	_ = cmd.MarkFlagRequired("predicted")
	return cmd
}

// fvaOutput is the ranked value add alongside the per-side scores.
type fvaOutput struct {
	Ranking *rank.Ranking       `json:"ranking"`
	Scores  []compare.FVARecord `json:"scores"`
}

func newFVACmd(a *app) *cobra.Command {
	var actualPath, candidatePath, benchmarkPath, candidateCol, benchmarkCol string
	cmd := &cobra.Command{
		Use:   "fva",
		Short: "Rank series by forecast value add over a benchmark",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if benchmarkPath == "" {
				benchmarkPath = candidatePath
			}
			actual, err := a.loadActual(actualPath)
			if err != nil {
				return err
			}
			candidate, err := a.loadPredicted(candidatePath, candidateCol)
			if err != nil {
				return err
			}
			benchmark, err := a.loadPredicted(benchmarkPath, benchmarkCol)
			if err != nil {
				return err
			}
			fva, err := compare.ForecastValueAdd(actual, candidate, benchmark, a.cfg.CompareOptions(a.log))
			if err != nil {
				return err
			}
			r := rank.Records(fva.Metrics(), a.cfg.SortDescending(metrics.ValueAdd))
			r.Metric = metrics.ValueAdd
			r.Exclusions = append(slices.Clone(fva.Exclusions), r.Exclusions...)
			return writeJSON(cmd.OutOrStdout(), fvaOutput{Ranking: a.trim(r), Scores: fva.Records})
		},
	}
	cmd.Flags().StringVar(&actualPath, "actual", "", "CSV of observed values")
	cmd.Flags().StringVar(&candidatePath, "candidate", "", "CSV of candidate forecasts")
	cmd.Flags().StringVar(&benchmarkPath, "benchmark", "", "CSV of benchmark forecasts (default: the candidate file)")
	cmd.Flags().StringVar(&candidateCol, "candidate-col", "y", "candidate forecast column")
	cmd.Flags().StringVar(&benchmarkCol, "benchmark-col", "naive", "benchmark forecast column")
	_ = cmd.MarkFlagRequired("actual")
	_ = cmd.MarkFlagRequired("candidate")
	return cmd
}

func newCometCmd(a *app) *cobra.Command {
	var trainPath, actualPath, predictedPath, model string
	cmd := &cobra.Command{
		Use:   "comet",
		Short: "Pair training volatility with out-of-sample accuracy per series",
		RunE: func(cmd *cobra.Command, _ []string) error {
			train, err := a.loadActual(trainPath)
			if err != nil {
				return err
			}
			actual, err := a.loadActual(actualPath)
			if err != nil {
				return err
			}
			predicted, err := a.loadPredicted(predictedPath, model)
			if err != nil {
				return err
			}
			comet, err := compare.CometCoordinates(train, actual, predicted, a.cfg.CompareOptions(a.log))
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), comet)
		},
	}
	cmd.Flags().StringVar(&trainPath, "train", "", "CSV of training actuals")
	cmd.Flags().StringVar(&actualPath, "actual", "", "CSV of test actuals")
	cmd.Flags().StringVar(&predictedPath, "predicted", "", "CSV of test forecasts")
	cmd.Flags().StringVar(&model, "model", "y", "forecast value column")
	for _, f := range []string{"train", "actual", "predicted"} {
		_ = cmd.MarkFlagRequired(f)
	}
	return cmd
}
