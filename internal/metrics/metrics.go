package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	StatusTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "taskcolab_status_transitions_total", Help: "Total entity status transitions"},
		[]string{"entity", "from", "to"},
	)
	CascadeSteps = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "taskcolab_cascade_steps_total", Help: "Total cascade steps executed"},
		[]string{"cascade", "step"},
	)
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "taskcolab_http_requests_total", Help: "Total HTTP requests"},
		[]string{"method", "route", "status"},
	)
	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "taskcolab_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
)

func Register() {
	prometheus.MustRegister(StatusTransitions, CascadeSteps, HTTPRequests, HTTPDuration)
}

// ObserveTransition counts one status change.
func ObserveTransition(entity, from, to string) {
	StatusTransitions.WithLabelValues(entity, from, to).Inc()
}

// ObserveCascadeStep counts one write performed by a cascade.
func ObserveCascadeStep(cascade, step string) {
	CascadeSteps.WithLabelValues(cascade, step).Inc()
}
