package metrics

import "github.com/prometheus/client_golang/prometheus"

// Metrics exposes counters/histograms for analyses and report activity.
// A nil *Metrics is a valid no-op recorder.
type Metrics struct {
	analysisTotal    *prometheus.CounterVec
	analysisDuration *prometheus.HistogramVec
	repositoryErrors *prometheus.CounterVec
	reportActions    *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		analysisTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "scamshield",
			Subsystem: "analysis",
			Name:      "total",
			Help:      "Total analyses by input classification and verdict state",
		}, []string{"classification", "state"}),
		analysisDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "scamshield",
			Subsystem: "analysis",
			Name:      "duration_seconds",
			Help:      "Latency of a full analysis",
			Buckets:   prometheus.DefBuckets,
		}, []string{"classification"}),
		repositoryErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "scamshield",
			Subsystem: "repository",
			Name:      "errors_total",
			Help:      "Report lookups that failed and degraded to an empty result",
		}, []string{"operation"}),
		reportActions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "scamshield",
			Subsystem: "reports",
			Name:      "actions_total",
			Help:      "Report submissions, confirmations and moderations",
		}, []string{"action"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.analysisTotal, m.analysisDuration, m.repositoryErrors, m.reportActions)
	return m
}

func (m *Metrics) ObserveAnalysis(classification, state string, seconds float64) {
	if m == nil {
		return
	}
	m.analysisTotal.WithLabelValues(classification, state).Inc()
	m.analysisDuration.WithLabelValues(classification).Observe(seconds)
}

func (m *Metrics) ObserveRepositoryError(operation string) {
	if m == nil {
		return
	}
	m.repositoryErrors.WithLabelValues(operation).Inc()
}

func (m *Metrics) ObserveReportAction(action string) {
	if m == nil {
		return
	}
	m.reportActions.WithLabelValues(action).Inc()
}
