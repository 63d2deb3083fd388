package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the case engine.
// Tracks creation/progress counts and critical path durations.
type Metrics struct {
	CasesCreated        prometheus.Counter
	ProgressAppended    *prometheus.CounterVec
	CreateCaseDuration  prometheus.Histogram
	ArchiveCheckOutcome *prometheus.CounterVec
}

// New creates a Metrics instance with all case-engine metrics registered
// against the given registerer. Tests pass a fresh prometheus.NewRegistry()
// to avoid duplicate registration panics.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		CasesCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "casetrack_cases_created_total",
			Help: "Total number of cases created",
		}),
		ProgressAppended: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "casetrack_progress_events_total",
			Help: "Total number of progress events appended, by perspective",
		}, []string{"perspective"}),
		CreateCaseDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "casetrack_create_case_duration_seconds",
			Help:    "Duration of case creation including numbering and insert",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
		ArchiveCheckOutcome: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "casetrack_archive_checks_total",
			Help: "Total number of archive compliance checks, by outcome",
		}, []string{"outcome"}),
	}
}

// IncrementCasesCreated records a successful case creation.
func (m *Metrics) IncrementCasesCreated() {
	m.CasesCreated.Inc()
}

// IncrementProgress records an appended progress event for one perspective
// ("enforcement" or "building").
func (m *Metrics) IncrementProgress(perspective string) {
	m.ProgressAppended.WithLabelValues(perspective).Inc()
}

// ObserveCreateCase records the duration of a CreateCase operation.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveCreateCase(start time.Time) {
	m.CreateCaseDuration.Observe(time.Since(start).Seconds())
}

// IncrementArchiveCheck records a compliance check outcome
// ("compliant" or "missing").
func (m *Metrics) IncrementArchiveCheck(outcome string) {
	m.ArchiveCheckOutcome.WithLabelValues(outcome).Inc()
}
