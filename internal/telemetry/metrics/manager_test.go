package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewManager(t *testing.T) {
	manager, reg := NewTestManagerAndRegistry()
	require.NotNil(t, manager)

	manager.CounterNotesCreated.Inc()
	manager.CounterNotesCreated.Inc()
	manager.CounterNotesShared.Inc()
	manager.CounterRequests.WithLabelValues("GET", "200").Inc()
	manager.HistogramNotesApiDuration.WithLabelValues("list", "ok").Observe(0.02)

	assert.Equal(t, float64(2), testutil.ToFloat64(manager.CounterNotesCreated))
	assert.Equal(t, float64(1), testutil.ToFloat64(manager.CounterNotesShared))
	assert.Equal(t, float64(0), testutil.ToFloat64(manager.CounterNotesDeleted))
	assert.Equal(t, float64(1), testutil.ToFloat64(manager.CounterRequests.WithLabelValues("GET", "200")))

	count, err := testutil.GatherAndCount(reg, "notesweb_test_server_notes_api_call_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestSetupPrometheus(t *testing.T) {
	reg := SetupPrometheus()
	require.NotNil(t, reg)

	manager := NewManager("notesweb", "main", reg)
	manager.GaugeLifeSignal.Set(1)

	families, err := reg.Gather()
	require.NoError(t, err)

	names := make(map[string]bool, len(families))
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["go_goroutines"])
	assert.True(t, names["notesweb_main_life_signal"])
}
