package infrastructure

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"regionstats/internal/config"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"bogus", slog.LevelInfo},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, parseLogLevel(tt.in), tt.in)
	}
}

func TestNewLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithRunID(config.LoggingConfig{Level: "info", Format: "json"}, &buf, "run-1")

	logger.Debug("hidden")
	logger.Info("input loaded", slog.Int("rows", 3))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "input loaded", entry["msg"])
	assert.Equal(t, "run-1", entry["run_id"])
	assert.EqualValues(t, 3, entry["rows"])
}

func TestNewLogger_TextWithGeneratedRunID(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(config.LoggingConfig{Level: "debug", Format: "text"}, &buf)

	logger.Debug("chart skipped")
	out := buf.String()
	assert.Contains(t, out, "level=DEBUG")
	assert.Contains(t, out, "run_id=")
	assert.Contains(t, out, `msg="chart skipped"`)
}

func TestMetrics(t *testing.T) {
	m := NewMetrics()
	m.RowsLoaded.Add(10)
	m.RowsRejected.Add(2)
	m.ChartsWritten.Inc()
	m.LatestYear.Set(2022)
	m.ObserveRun(time.Now().Add(-time.Second))

	assert.Equal(t, 10.0, testutil.ToFloat64(m.RowsLoaded))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.RowsRejected))
	assert.Equal(t, 2022.0, testutil.ToFloat64(m.LatestYear))
	assert.GreaterOrEqual(t, testutil.ToFloat64(m.RunDuration), 1.0)

	count, err := testutil.GatherAndCount(m.Registry())
	require.NoError(t, err)
	assert.Equal(t, 6, count)

	// a second instance must not clash with the first
	assert.NotPanics(t, func() { NewMetrics() })
}

func TestMetrics_WriteTextfile(t *testing.T) {
	m := NewMetrics()
	m.ChartsSkipped.Add(5)

	path := filepath.Join(t.TempDir(), "regionstats.prom")
	require.NoError(t, m.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "regionstats_charts_skipped_total 5")
	assert.Contains(t, string(data), "# TYPE regionstats_latest_year gauge")
}
