// Package metrics holds the prometheus metrics reported by the broker.
package metrics

import (
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/G-Research/genie/internal/broker/model"
	"github.com/G-Research/genie/internal/broker/resolver"
	"github.com/G-Research/genie/internal/common/genieerrors"
)

// Metrics is a prometheus.Collector; register it once with the registry the process exposes.
type Metrics struct {
	resolutions         *prometheus.CounterVec
	chosenCriteriaIndex prometheus.Histogram
	jobTransitions      *prometheus.CounterVec
	relationshipChanges *prometheus.CounterVec
	conflicts           *prometheus.CounterVec
	errors              *prometheus.CounterVec
}

func New(namespace string) *Metrics {
	return &Metrics{
		resolutions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "resolutions_total",
				Help:      "Number of cluster resolutions by outcome",
			},
			[]string{outcomeLabel},
		),
		chosenCriteriaIndex: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "resolution_criteria_position",
				Help:      "Position in the cluster criteria list of the set that matched",
				Buckets:   []float64{0, 1, 2, 3, 5, 8},
			},
		),
		jobTransitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "job_state_transitions_total",
				Help:      "Number of job status changes",
			},
			[]string{priorStateLabel, stateLabel},
		),
		relationshipChanges: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "relationship_changes_total",
				Help:      "Number of relationship operations that completed",
			},
			[]string{operationLabel},
		),
		conflicts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "conflicts_total",
				Help:      "Number of saves rejected because the resource was modified concurrently",
			},
			[]string{kindLabel},
		),
		errors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "operation_errors_total",
				Help:      "Number of failed broker operations by error category",
			},
			[]string{errorKindLabel},
		),
	}
}

func (m *Metrics) ReportResolution(result *resolver.Result) {
	m.resolutions.WithLabelValues(string(result.Outcome)).Inc()
	if result.Matched() {
		m.chosenCriteriaIndex.Observe(float64(result.ChosenIndex))
	}
}

func (m *Metrics) ReportJobTransition(from, to model.JobStatus) {
	prior := string(from)
	if prior == "" {
		prior = "none"
	}
	m.jobTransitions.WithLabelValues(prior, string(to)).Inc()
}

func (m *Metrics) ReportRelationshipChange(operation string) {
	m.relationshipChanges.WithLabelValues(operation).Inc()
}

// ReportError records a failed operation. Stale version conflicts are also counted by resource kind.
func (m *Metrics) ReportError(err error) {
	if err == nil {
		return
	}
	m.errors.WithLabelValues(genieerrors.KindFromError(err).String()).Inc()
	var conflict *genieerrors.ErrConflict
	if errors.As(err, &conflict) {
		m.conflicts.WithLabelValues(conflict.Type).Inc()
	}
}

func (m *Metrics) Describe(ch chan<- *prometheus.Desc) {
	m.resolutions.Describe(ch)
	m.chosenCriteriaIndex.Describe(ch)
	m.jobTransitions.Describe(ch)
	m.relationshipChanges.Describe(ch)
	m.conflicts.Describe(ch)
	m.errors.Describe(ch)
}

func (m *Metrics) Collect(ch chan<- prometheus.Metric) {
	m.resolutions.Collect(ch)
	m.chosenCriteriaIndex.Collect(ch)
	m.jobTransitions.Collect(ch)
	m.relationshipChanges.Collect(ch)
	m.conflicts.Collect(ch)
	m.errors.Collect(ch)
}
