// Package stats exposes Prometheus collectors for the scheduling pipeline,
// the way the teacher exposes its own stats.Tracker metrics.
package stats

import "github.com/prometheus/client_golang/prometheus"

// Tracker holds the collectors a scheduling run reports against. It is a
// thin registration wrapper, not a metrics store of its own — values live
// in the collectors themselves.
type Tracker struct {
	PlacementRate     prometheus.Gauge
	ClusterEfficiency prometheus.Gauge
	DeadSpaceRatio    prometheus.Gauge
	SpaceSavingRatio  prometheus.Gauge
	AssignmentRate    prometheus.Gauge
	TotalCostKRW      prometheus.Gauge

	RescueAttempts  prometheus.Counter
	RescueSuccesses prometheus.Counter
	CooldownViolations prometheus.Counter

	RoundDuration prometheus.Histogram
}

// NewTracker registers and returns a Tracker bound to reg. Pass
// prometheus.NewRegistry() for an isolated registry in tests, or
// prometheus.DefaultRegisterer in production.
func NewTracker(reg prometheus.Registerer) *Tracker {
	t := &Tracker{
		PlacementRate: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "blockvoyage",
			Name:      "placement_rate",
			Help:      "Fraction of eligible blocks placed in the most recent plan.",
		}),
		ClusterEfficiency: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "blockvoyage",
			Name:      "cluster_efficiency",
			Help:      "Occupied area over cluster bounding-box area.",
		}),
		DeadSpaceRatio: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "blockvoyage",
			Name:      "dead_space_ratio",
			Help:      "Unoccupied area within the cluster bounding box.",
		}),
		SpaceSavingRatio: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "blockvoyage",
			Name:      "space_saving_ratio",
			Help:      "Cluster bounding-box area over total deck area.",
		}),
		AssignmentRate: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "blockvoyage",
			Name:      "assignment_rate",
			Help:      "Fraction of ingested blocks that reached a voyage assignment.",
		}),
		TotalCostKRW: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "blockvoyage",
			Name:      "total_cost_krw",
			Help:      "Sum of voyage_cost across all committed voyages in the run.",
		}),
		RescueAttempts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "blockvoyage",
			Name:      "rescue_attempts_total",
			Help:      "Number of offset-probing rescue attempts made.",
		}),
		RescueSuccesses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "blockvoyage",
			Name:      "rescue_successes_total",
			Help:      "Number of rescue attempts that placed at least one block.",
		}),
		CooldownViolations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "blockvoyage",
			Name:      "cooldown_violations_total",
			Help:      "Consecutive-voyage gaps shorter than a vessel's cycle length, found by the post-hoc audit.",
		}),
		RoundDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "blockvoyage",
			Name:      "round_duration_seconds",
			Help:      "Wall-clock duration of one scheduling round.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	reg.MustRegister(
		t.PlacementRate, t.ClusterEfficiency, t.DeadSpaceRatio, t.SpaceSavingRatio,
		t.AssignmentRate, t.TotalCostKRW, t.RescueAttempts, t.RescueSuccesses,
		t.CooldownViolations, t.RoundDuration,
	)
	return t
}

// ReportPlacement records one L1 placement outcome's area metrics.
func (t *Tracker) ReportPlacement(clusterEfficiency, deadSpaceRatio, spaceSavingRatio float64) {
	t.ClusterEfficiency.Set(clusterEfficiency)
	t.DeadSpaceRatio.Set(deadSpaceRatio)
	t.SpaceSavingRatio.Set(spaceSavingRatio)
}

// ReportRound records one L3 round's throughput and cost.
func (t *Tracker) ReportRound(placementRate, assignmentRate, totalCostKRW float64) {
	t.PlacementRate.Set(placementRate)
	t.AssignmentRate.Set(assignmentRate)
	t.TotalCostKRW.Set(totalCostKRW)
}
