package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_RegistersInstruments(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ClassificationsTotal.WithLabelValues("video", "full").Inc()
	m.ClassificationsTotal.WithLabelValues("video", "full").Inc()
	m.FramesSkippedTotal.Add(3)
	m.ActiveJobs.Inc()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.ClassificationsTotal.WithLabelValues("video", "full")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.FramesSkippedTotal))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ActiveJobs))

	families, err := reg.Gather()
	require.NoError(t, err)
	var names []string
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "binwatch_classifications_total")
	assert.Contains(t, names, "binwatch_active_jobs")
}

func TestNew_SeparateRegistries(t *testing.T) {
	assert.NotPanics(t, func() {
		New(prometheus.NewRegistry())
		New(prometheus.NewRegistry())
	})
}
