package metrics_test

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/warp/naturalization-engine/eligibility"
	"github.com/warp/naturalization-engine/metrics"
)

func TestObserveEvaluation_CountsVerdictAndBlockers(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())

	m.ObserveEvaluation(eligibility.NoProfileResult(), time.Microsecond)
	m.ObserveEvaluation(eligibility.Result{Eligible: true}, time.Microsecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Evaluations.WithLabelValues("eligible")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Evaluations.WithLabelValues("not_eligible")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Blockers.WithLabelValues("no_profile")))
}

func TestNilMetrics_IsNoop(t *testing.T) {
	var m *metrics.Metrics
	assert.NotPanics(t, func() {
		m.ObserveEvaluation(eligibility.Result{}, time.Second)
		m.ObserveImport(3, 1)
	})
}
