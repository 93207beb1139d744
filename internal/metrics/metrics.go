// Package metrics exposes reconciliation run statistics as Prometheus metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/agentstation/rollcall/pkg/errors"
	"github.com/agentstation/rollcall/pkg/profile"
	"github.com/agentstation/rollcall/pkg/reconciler"
)

// Metrics provides observability for reconciliation runs.
type Metrics struct {
	registry *prometheus.Registry

	// Records loaded per source
	Records *prometheus.GaugeVec

	// Primary records matched and unmatched per secondary source
	Matched   *prometheus.GaugeVec
	Unmatched *prometheus.GaugeVec

	// Records skipped for an empty key, shadowed by an earlier duplicate, or
	// keyed from a bye-election constituency
	EmptyKeys    *prometheus.GaugeVec
	Shadowed     *prometheus.GaugeVec
	ByeElections *prometheus.GaugeVec

	// Fields written under a re-prefixed name
	Collisions *prometheus.GaugeVec

	// Projection degradations
	Profiles           prometheus.Counter
	UnparseableAmounts prometheus.Counter
	MalformedSections  prometheus.Counter
	TitleFallbacks     prometheus.Counter

	// Runs by outcome and their duration
	Runs        *prometheus.CounterVec
	RunDuration prometheus.Histogram
}

// New creates a Metrics instance registered on a fresh registry.
func New() *Metrics {
	return NewWithRegistry(prometheus.NewRegistry())
}

// NewWithRegistry creates a Metrics instance registered on reg.
func NewWithRegistry(reg *prometheus.Registry) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		registry: reg,

		Records: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "rollcall_source_records",
			Help: "Records loaded from a source in the last run",
		}, []string{"source"}),

		Matched: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "rollcall_matched_records",
			Help: "Primary records that found a match in a secondary source",
		}, []string{"source"}),

		Unmatched: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "rollcall_unmatched_records",
			Help: "Primary records without a match in a secondary source",
		}, []string{"source"}),

		EmptyKeys: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "rollcall_empty_key_records",
			Help: "Records skipped because their join key was empty",
		}, []string{"source"}),

		Shadowed: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "rollcall_shadowed_records",
			Help: "Secondary records hidden behind an earlier record with the same key",
		}, []string{"source"}),

		ByeElections: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "rollcall_bye_election_records",
			Help: "Records whose constituency carried a bye-election suffix",
		}, []string{"source"}),

		Collisions: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "rollcall_field_collisions",
			Help: "Secondary fields stored under a re-prefixed name",
		}, []string{"source"}),

		Profiles: factory.NewCounter(prometheus.CounterOpts{
			Name: "rollcall_profiles_total",
			Help: "Profiles projected from merged records",
		}),

		UnparseableAmounts: factory.NewCounter(prometheus.CounterOpts{
			Name: "rollcall_unparseable_amounts_total",
			Help: "Currency amounts that could not be parsed and counted as zero",
		}),

		MalformedSections: factory.NewCounter(prometheus.CounterOpts{
			Name: "rollcall_malformed_sections_total",
			Help: "Description sections replaced by an inline annotation",
		}),

		TitleFallbacks: factory.NewCounter(prometheus.CounterOpts{
			Name: "rollcall_title_fallbacks_total",
			Help: "Profiles titled from constituency and state for lack of a position",
		}),

		Runs: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "rollcall_runs_total",
			Help: "Reconciliation runs by outcome",
		}, []string{"outcome"}), // outcome: "success", "error"

		RunDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "rollcall_run_duration_seconds",
			Help:    "Duration of a reconciliation run",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30},
		}),
	}
}

// Registry returns the registry the metrics are registered on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveResult records the statistics of a reconciliation result.
func (m *Metrics) ObserveResult(r *reconciler.Result) {
	if m == nil || r == nil {
		return
	}
	primary := r.Primary.Source.String()
	m.Records.WithLabelValues(primary).Set(float64(r.Primary.Records))
	m.EmptyKeys.WithLabelValues(primary).Set(float64(r.Primary.EmptyKeys))
	m.ByeElections.WithLabelValues(primary).Set(float64(r.Primary.ByeElections))

	for _, s := range r.Secondaries {
		id := s.Source.String()
		m.Records.WithLabelValues(id).Set(float64(s.Records))
		m.Matched.WithLabelValues(id).Set(float64(s.Matched))
		m.Unmatched.WithLabelValues(id).Set(float64(s.Unmatched))
		m.EmptyKeys.WithLabelValues(id).Set(float64(s.EmptyKeys))
		m.Shadowed.WithLabelValues(id).Set(float64(s.Shadowed))
		m.ByeElections.WithLabelValues(id).Set(float64(s.ByeElections))
		m.Collisions.WithLabelValues(id).Set(float64(s.Collisions))
	}
	m.RunDuration.Observe(r.Metadata.Duration.Seconds())
}

// ObserveProfiles adds projector statistics.
func (m *Metrics) ObserveProfiles(s profile.Stats) {
	if m == nil {
		return
	}
	m.Profiles.Add(float64(s.Profiles))
	m.UnparseableAmounts.Add(float64(s.UnparseableAmounts))
	m.MalformedSections.Add(float64(s.MalformedSections))
	m.TitleFallbacks.Add(float64(s.Fallbacks))
}

// IncrementRun records the outcome of a run.
func (m *Metrics) IncrementRun(err error) {
	if m == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	m.Runs.WithLabelValues(outcome).Inc()
}

// ObserveRunDuration records the duration of a run that produced no result.
func (m *Metrics) ObserveRunDuration(d time.Duration) {
	if m != nil {
		m.RunDuration.Observe(d.Seconds())
	}
}

// WriteTextfile writes the metrics in the text exposition format, for the
// node exporter textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return errors.WrapIO("write", path, err)
	}
	return nil
}
