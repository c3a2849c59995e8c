package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "inpaint",
			Subsystem: "api",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "inpaint",
			Subsystem: "api",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5},
		},
		[]string{"method", "endpoint"},
	)

	UploadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "inpaint",
			Subsystem: "api",
			Name:      "uploads_total",
			Help:      "Image pair uploads by outcome",
		},
		[]string{"status"},
	)

	UploadBytesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "inpaint",
			Subsystem: "api",
			Name:      "upload_bytes_total",
			Help:      "Bytes written to the upload directory",
		},
		[]string{"kind", "content_type"},
	)
)

// RecordRequest records an HTTP request
func RecordRequest(method, endpoint, status string, durationSec float64) {
	RequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	RequestDuration.WithLabelValues(method, endpoint).Observe(durationSec)
}

// RecordUpload records the outcome of an image pair upload
func RecordUpload(status string) {
	UploadsTotal.WithLabelValues(status).Inc()
}

// RecordUploadBytes records bytes stored for the original or the mask
func RecordUploadBytes(kind, contentType string, bytes int) {
	UploadBytesTotal.WithLabelValues(kind, contentType).Add(float64(bytes))
}
