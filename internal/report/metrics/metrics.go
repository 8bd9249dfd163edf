package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	ReportsSubmitted    *prometheus.CounterVec
	SearchDuration      prometheus.Histogram
	AttachmentDownloads prometheus.Counter
}

func New() *Metrics {
	return &Metrics{
		ReportsSubmitted: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "olhopix_reports_submitted_total",
			Help: "Total number of fraud reports submitted, by pix key type",
		}, []string{"key_type"}),
		SearchDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "olhopix_report_group_search_duration_seconds",
			Help:    "Duration of aggregated fraud-group searches",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}),
		AttachmentDownloads: promauto.NewCounter(prometheus.CounterOpts{
			Name: "olhopix_report_attachment_downloads_total",
			Help: "Total number of evidence attachment downloads",
		}),
	}
}

// IncrementSubmitted counts one submitted report. Nil-safe so the service
// runs without metrics in tests.
func (m *Metrics) IncrementSubmitted(keyType string) {
	if m != nil {
		m.ReportsSubmitted.WithLabelValues(keyType).Inc()
	}
}

// ObserveSearch records the duration of one aggregated search.
func (m *Metrics) ObserveSearch(d time.Duration) {
	if m != nil {
		m.SearchDuration.Observe(d.Seconds())
	}
}

// IncrementAttachmentDownloads counts one evidence download.
func (m *Metrics) IncrementAttachmentDownloads() {
	if m != nil {
		m.AttachmentDownloads.Inc()
	}
}
