package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	// OutcomeSuccess labels reports that normalized cleanly.
	OutcomeSuccess = "success"
	// OutcomeError labels reports that could not be read or normalized.
	OutcomeError = "error"
)

var (
	reportsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "gsfd_analysis",
			Name:      "reports_total",
			Help:      "Total number of run reports loaded, partitioned by outcome.",
		},
		[]string{"outcome"},
	)

	normalizeDurationSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "gsfd_analysis",
			Name:      "normalize_seconds",
			Help:      "Time to read and normalize one run report.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 12),
		},
	)

	degenerateStatisticsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "gsfd_analysis",
			Name:      "degenerate_statistics_total",
			Help:      "Statistics left undefined because their sample was empty or too small.",
		},
		[]string{"statistic"},
	)

	identityResolutionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "gsfd_analysis",
			Name:      "identity_resolutions_total",
			Help:      "Seed and repetition resolutions, partitioned by where the value was read from.",
		},
		[]string{"field", "source"},
	)

	aggregateRows = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "gsfd_analysis",
			Name:      "aggregate_rows",
			Help:      "Number of aggregate rows produced by the last aggregation of each layout.",
		},
		[]string{"layout"},
	)
)

// Register attaches gsfd-analysis collectors to the supplied Prometheus registerer.
func Register(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		reportsTotal,
		normalizeDurationSeconds,
		degenerateStatisticsTotal,
		identityResolutionsTotal,
		aggregateRows,
	}

	for _, collector := range collectors {
		if err := reg.Register(collector); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
				continue
			}
			return err
		}
	}
	return nil
}

// ObserveReport records the handling time and outcome of one report.
func ObserveReport(duration time.Duration, outcome string) {
	label := outcome
	if label != OutcomeError {
		label = OutcomeSuccess
	}
	reportsTotal.WithLabelValues(label).Inc()
	if duration < 0 {
		duration = 0
	}
	normalizeDurationSeconds.Observe(duration.Seconds())
}

// ObserveDegenerateStatistic counts a statistic left undefined for a run.
func ObserveDegenerateStatistic(statistic string) {
	degenerateStatisticsTotal.WithLabelValues(statistic).Inc()
}

// ObserveIdentityResolution counts where a seed or repetition came from.
func ObserveIdentityResolution(field, source string) {
	identityResolutionsTotal.WithLabelValues(field, source).Inc()
}

// SetAggregateRows records the size of the latest aggregate for a layout.
func SetAggregateRows(layout string, rows int) {
	aggregateRows.WithLabelValues(layout).Set(float64(rows))
}

// WriteTextfile dumps the gathered metrics in the text exposition format,
// for node_exporter's textfile collector after a batch run.
func WriteTextfile(path string, g prometheus.Gatherer) error {
	return prometheus.WriteToTextfile(path, g)
}
