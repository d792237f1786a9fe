package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetricsRecording(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.RecordViolation("time.range.order")
	m.RecordViolation("time.range.order")
	m.IncrementIntakesLogged()
	m.RecordCacheResult("hit")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.ViolationsTotal.WithLabelValues("time.range.order")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.IntakesLogged))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SummaryCache.WithLabelValues("hit")))
}

func TestNilMetricsAreSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordViolation("x")
		m.IncrementProfilesCreated()
		m.RecordEvent("s", "published")
	})
}
