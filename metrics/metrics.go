// Package metrics exposes Prometheus metrics for evaluations and imports.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/warp/naturalization-engine/eligibility"
)

// Metrics provides observability for the tracker. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	// Evaluations by verdict ("eligible", "not_eligible")
	Evaluations *prometheus.CounterVec

	// Blockers raised, by finding code
	Blockers *prometheus.CounterVec

	EvaluateLatency prometheus.Histogram

	// Imported and skipped CSV rows
	ImportedTrips prometheus.Counter
	SkippedRows   prometheus.Counter
}

// New creates Metrics registered on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Evaluations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "natz_evaluations_total",
			Help: "Total eligibility evaluations by verdict",
		}, []string{"verdict"}),

		Blockers: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "natz_evaluation_blockers_total",
			Help: "Blockers reported by eligibility evaluations, by code",
		}, []string{"code"}),

		EvaluateLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "natz_evaluate_duration_seconds",
			Help:    "Duration of a single eligibility evaluation",
			Buckets: []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01},
		}),

		ImportedTrips: factory.NewCounter(prometheus.CounterOpts{
			Name: "natz_csv_imported_trips_total",
			Help: "Trips imported from CSV",
		}),

		SkippedRows: factory.NewCounter(prometheus.CounterOpts{
			Name: "natz_csv_skipped_rows_total",
			Help: "CSV rows rejected during import",
		}),
	}
}

// ObserveEvaluation records one evaluation and its blockers.
func (m *Metrics) ObserveEvaluation(r eligibility.Result, d time.Duration) {
	if m == nil {
		return
	}
	verdict := "not_eligible"
	if r.Eligible {
		verdict = "eligible"
	}
	m.Evaluations.WithLabelValues(verdict).Inc()
	for _, b := range r.Blockers {
		m.Blockers.WithLabelValues(string(b.Code)).Inc()
	}
	m.EvaluateLatency.Observe(d.Seconds())
}

// ObserveImport records the outcome of a CSV import.
func (m *Metrics) ObserveImport(imported, skipped int) {
	if m == nil {
		return
	}
	m.ImportedTrips.Add(float64(imported))
	m.SkippedRows.Add(float64(skipped))
}
