package observability

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestMetricsRegisterAndCount(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.ObserveStore("ok")
	m.ObserveStore("ok")
	m.ObserveSelection("best", "none")

	require.Equal(t, 2.0, testutil.ToFloat64(m.SubmissionsStored.WithLabelValues("ok")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.Selections.WithLabelValues("best", "none")))

	n, err := testutil.GatherAndCount(reg)
	require.NoError(t, err)
	require.Equal(t, 2, n)
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	require.NotPanics(t, func() {
		m.ObserveStore("ok")
		m.ObserveSelection("latest", "found")
	})
}
