package observability

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetricsWith_RegistersAll(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetricsWith(reg)

	m.FilesLoaded.Inc()
	m.LoadFailures.WithLabelValues("not_found").Inc()
	m.LoadDuration.Observe(0.2)

	families, err := reg.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "fars_files_loaded_total")
	assert.Contains(t, names, "fars_load_failures_total")
	assert.Contains(t, names, "fars_load_duration_seconds")
}

func TestNewMetrics_RegistersWithDefaultRegisterer(t *testing.T) {
	m := NewMetrics()
	m.SummariesBuilt.Inc()

	families, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "fars_summaries_built_total")
}

func TestNewMetricsWith_RejectsDoubleRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewMetricsWith(reg)
	assert.Panics(t, func() { NewMetricsWith(reg) })
}

func TestNewMetricsForTesting_Unregistered(t *testing.T) {
	a := NewMetricsForTesting()
	b := NewMetricsForTesting()

	a.MapsRendered.Inc()
	assert.InDelta(t, 1.0, testutil.ToFloat64(a.MapsRendered), 0)
	assert.InDelta(t, 0.0, testutil.ToFloat64(b.MapsRendered), 0)
}
