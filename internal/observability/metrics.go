package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters and histograms for the alert pipeline.
type Metrics struct {
	ReportsProcessed *prometheus.CounterVec // labels: verdict={true,false}
	PipelineDuration prometheus.Histogram

	// Audience selection metrics.
	CandidatesSelected prometheus.Counter
	CandidatesSkipped  *prometheus.CounterVec // labels: reason={no_pincode,resolve_failed,out_of_radius}

	// Dispatch metrics.
	MessagesSent   prometheus.Counter
	MessagesFailed prometheus.Counter

	// Geocoding metrics.
	GeocodeRequests *prometheus.CounterVec // labels: method={pincode,point}, outcome={success,not_found,error}
	GeocodeCache    *prometheus.CounterVec // labels: result={hit,miss,expired}
}

// NewMetrics creates and registers all pipeline metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.ReportsProcessed,
		m.PipelineDuration,
		m.CandidatesSelected,
		m.CandidatesSkipped,
		m.MessagesSent,
		m.MessagesFailed,
		m.GeocodeRequests,
		m.GeocodeCache,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics across tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		ReportsProcessed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "report_alerts",
			Name:      "reports_processed_total",
			Help:      "Reports run through the pipeline, by verification verdict.",
		}, []string{"verdict"}),
		PipelineDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "report_alerts",
			Name:      "pipeline_duration_seconds",
			Help:      "Duration of one complete orchestrator run.",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		}),
		CandidatesSelected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "report_alerts",
			Name:      "candidates_selected_total",
			Help:      "Directory users selected into the alert audience.",
		}),
		CandidatesSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "report_alerts",
			Name:      "candidates_skipped_total",
			Help:      "Directory users excluded from the audience, by reason.",
		}, []string{"reason"}),
		MessagesSent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "report_alerts",
			Name:      "messages_sent_total",
			Help:      "Alert messages accepted by the messaging provider.",
		}),
		MessagesFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "report_alerts",
			Name:      "messages_failed_total",
			Help:      "Alert message submissions that failed.",
		}),
		GeocodeRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "report_alerts",
			Name:      "geocode_requests_total",
			Help:      "Geocoding API requests by method and outcome.",
		}, []string{"method", "outcome"}),
		GeocodeCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "report_alerts",
			Name:      "geocode_cache_total",
			Help:      "Pincode resolution cache lookups by result.",
		}, []string{"result"}),
	}
}
