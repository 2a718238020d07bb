package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sartorproj/goeval/metrics"
)

func TestDefault(t *testing.T) {
	c := Default()
	assert.Equal(t, "smape", c.Metric)
	assert.Equal(t, "normality", c.ResidualKey)
	assert.Nil(t, c.Descending)
	assert.Equal(t, 10, c.TopK)
	assert.Equal(t, 8, c.MinSamples)
	assert.Equal(t, 10, c.LjungBoxLags)
	assert.Equal(t, "pooled", c.Aggregation)
	assert.Equal(t, "info", c.Log.Level)
	assert.Equal(t, "console", c.Log.Format)
	require.NoError(t, c.Validate())
}

func TestParse(t *testing.T) {
	c, err := Parse([]byte(`
metric: mae
aggregation: per_split
descending: true
min_samples: 12
log:
  format: json
`))
	require.NoError(t, err)
	assert.Equal(t, "mae", c.Metric)
	assert.Equal(t, "per_split", c.Aggregation)
	assert.Equal(t, 12, c.MinSamples)
	assert.Equal(t, 10, c.TopK)
	assert.Equal(t, "json", c.Log.Format)
	assert.Equal(t, "info", c.Log.Level)
	require.NotNil(t, c.Descending)
	assert.True(t, *c.Descending)
}

func TestParseRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"unknown metric", "metric: wape"},
		{"unknown residual key", "residual_key: bias"},
		{"floor too low", "min_samples: 2"},
		{"unknown aggregation", "aggregation: median"},
		{"negative workers", "workers: -1"},
		{"bad log level", "log:\n  level: loud"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}

	_, err := Parse([]byte("metric: [a"))
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidConfig)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "goeval.yaml")
	require.NoError(t, os.WriteFile(path, []byte("metric: rmse\ntop_k: 3\n"), 0o644))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "rmse", c.Metric)
	assert.Equal(t, 3, c.TopK)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestSortDescending(t *testing.T) {
	c := Default()
	assert.False(t, c.SortDescending(metrics.SMAPE))
	assert.True(t, c.SortDescending(metrics.Normality))

	no := false
	c.Descending = &no
	assert.False(t, c.SortDescending(metrics.Normality))
}

func TestOptionBuilders(t *testing.T) {
	c, err := Parse([]byte("metric: mape\naggregation: per_split\nworkers: 3\nmin_samples: 5\nljung_box_lags: 4\n"))
	require.NoError(t, err)
	log := zerolog.Nop()

	assert.Equal(t, 3, c.AlignOptions(log).Workers)

	m := c.MetricOptions(log)
	assert.Equal(t, metrics.PerSplit, m.Aggregation)
	assert.Equal(t, 3, m.Workers)

	d := c.DiagnosticOptions(log)
	assert.Equal(t, 5, d.MinSamples)
	assert.Equal(t, 4, d.LjungBoxLags)
	assert.Equal(t, metrics.PerSplit, d.Aggregation)

	cmp := c.CompareOptions(log)
	assert.Equal(t, metrics.MAPE, cmp.Metric)
	assert.Equal(t, metrics.PerSplit, cmp.Aggregation)
}

func TestLogger(t *testing.T) {
	c := Default()
	c.Log.Level = "debug"
	var buf bytes.Buffer
	log, err := c.Logger(&buf)
	require.NoError(t, err)
	assert.Equal(t, zerolog.DebugLevel, log.GetLevel())

	log.Debug().Msg("hello")
	assert.Contains(t, buf.String(), "hello")

	c.Log.Level = "loud"
	_, err = c.Logger(&buf)
	assert.Error(t, err)
}
