package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "forkfix"

// Stage labels of the candidate counter.
const (
	StageListed   = "listed"
	StageA        = "stage_a"
	StageB        = "stage_b"
	StageApproved = "approved"
)

// Outcome labels of the proposal counter.
const (
	OutcomeOpened   = "opened"
	OutcomeSkipped  = "skipped"
	OutcomeConflict = "conflict"
	OutcomeFailed   = "failed"
	OutcomeDryRun   = "dry_run"
)

// Metrics holds the counters of a process. A nil *Metrics records nothing.
type Metrics struct {
	candidates      *prometheus.CounterVec
	rejections      *prometheus.CounterVec
	proposals       *prometheus.CounterVec
	reconcileUpdate prometheus.Counter
	forksDeleted    prometheus.Counter
}

// NewMetrics creates the counters and registers them on registerer.
func NewMetrics(registerer prometheus.Registerer) *Metrics {
	metrics := &Metrics{
		candidates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "filter_candidates_total",
			Help:      "Repositories that reached each filter stage.",
		}, []string{"stage"}),
		rejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "filter_rejections_total",
			Help:      "Repositories rejected, by the rule that rejected them.",
		}, []string{"rule"}),
		proposals: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "proposals_total",
			Help:      "Remediation attempts, by kind and outcome.",
		}, []string{"kind", "outcome"}),
		reconcileUpdate: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reconcile_updates_total",
			Help:      "Ledger proposals updated from the live pull request state.",
		}),
		forksDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "forks_deleted_total",
			Help:      "Forks deleted after every proposal was rejected.",
		}),
	}

	registerer.MustRegister(
		metrics.candidates,
		metrics.rejections,
		metrics.proposals,
		metrics.reconcileUpdate,
		metrics.forksDeleted,
	)
	return metrics
}

func (m *Metrics) AddCandidates(stage string, count int) {
	if m == nil {
		return
	}
	m.candidates.WithLabelValues(stage).Add(float64(count))
}

func (m *Metrics) IncRejection(rule string) {
	if m == nil {
		return
	}
	m.rejections.WithLabelValues(rule).Inc()
}

func (m *Metrics) IncProposal(kind, outcome string) {
	if m == nil {
		return
	}
	m.proposals.WithLabelValues(kind, outcome).Inc()
}

func (m *Metrics) IncReconcileUpdate() {
	if m == nil {
		return
	}
	m.reconcileUpdate.Inc()
}

func (m *Metrics) IncForkDeleted() {
	if m == nil {
		return
	}
	m.forksDeleted.Inc()
}
