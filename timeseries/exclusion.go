package timeseries

import "github.com/rs/zerolog"

// Reason explains why a series was left out of a result table.
type Reason string

const (
	NoOverlap           Reason = "no_overlap"
	MissingPrediction   Reason = "missing_prediction"
	MissingHistory      Reason = "missing_history"
	InsufficientSamples Reason = "insufficient_samples"
	ZeroVariance        Reason = "zero_variance"
	ZeroMean            Reason = "zero_mean"
	UndefinedMetric     Reason = "undefined_metric"
)

// Exclusion records a series (or one split of it) dropped from a computation.
// Exclusions are warnings: the rest of the batch still completes.
type Exclusion struct {
	ID     SeriesID `json:"unique_id"`
	Split  string   `json:"split,omitempty"`
	Reason Reason   `json:"reason"`
}

// LogExclusions writes one warn event per exclusion.
func LogExclusions(log zerolog.Logger, stage string, excl []Exclusion) {
	for _, e := range excl {
		ev := log.Warn().
			Str("stage", stage).
			Str("series", string(e.ID)).
			Str("reason", string(e.Reason))
		if e.Split != "" {
			ev = ev.Str("split", e.Split)
		}
		ev.Msg("series excluded")
	}
}
