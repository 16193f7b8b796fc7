package jobmetrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// counter sums the samples of a gathered counter family whose labels match.
func counter(t *testing.T, reg *prometheus.Registry, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	total := 0.0
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
	metrics:
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if want, ok := labels[lp.GetName()]; ok && want != lp.GetValue() {
					continue metrics
				}
			}
			total += m.GetCounter().GetValue()
		}
	}
	return total
}

func TestTrackerRecordsOutcome(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	boom := errors.New("boom")

	assert.NoError(t, m.Track("activity:record").End(nil))
	assert.ErrorIs(t, m.Track("activity:record").End(boom), boom)

	assert.Equal(t, 1.0, counter(t, reg, "odyssey_admin_jobs_total", map[string]string{"status": "success"}))
	assert.Equal(t, 1.0, counter(t, reg, "odyssey_admin_jobs_total", map[string]string{"status": "failure"}))
	assert.Equal(t, 1.0, counter(t, reg, "odyssey_admin_jobs_failures_total", nil))
}

func TestNilMetricsAreNoops(t *testing.T) {
	var m *Metrics
	assert.NoError(t, m.Track("x").End(nil))
	m.Enqueued("x", nil)
}

func TestEnqueued(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	m.Enqueued("dashboard:warmup", nil)
	m.Enqueued("dashboard:warmup", errors.New("queue full"))
	assert.Equal(t, 1.0, counter(t, reg, "odyssey_admin_jobs_enqueued_total", map[string]string{"status": "error"}))
	assert.Equal(t, 2.0, counter(t, reg, "odyssey_admin_jobs_enqueued_total", map[string]string{"job": "dashboard:warmup"}))
}
