package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Prometheus metrics for monitoring the sampling and delivery pipeline
var (
	SamplesReceivedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "location_samples_received_total",
			Help: "Total number of valid location samples forwarded by the scheduler",
		},
	)

	UploadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "location_uploads_total",
			Help: "Total number of upload attempts by outcome",
		},
		[]string{"outcome"},
	)

	UploadDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "location_upload_duration_seconds",
			Help:    "Duration of location upload requests",
			Buckets: prometheus.DefBuckets,
		},
	)
)

// Register registers all pipeline metrics with the default registry.
func Register() {
	prometheus.MustRegister(
		SamplesReceivedTotal,
		UploadsTotal,
		UploadDuration,
	)
}

// Handler returns the HTTP handler serving the metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
