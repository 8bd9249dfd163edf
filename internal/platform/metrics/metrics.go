package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the service-wide Prometheus metrics. Module-specific metrics
// live next to their module (internal/report/metrics).
type Metrics struct {
	RequestLatency *prometheus.HistogramVec
	UsersCreated   prometheus.Counter
	LoginFailures  prometheus.Counter
	Lockouts       prometheus.Counter
}

// New creates and registers all service-wide Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		RequestLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "olhopix_http_request_duration_seconds",
			Help:    "HTTP request duration by method and route",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"method", "route"}),

		UsersCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "olhopix_users_created_total",
			Help: "Total number of registered users",
		}),

		LoginFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "olhopix_login_failures_total",
			Help: "Total number of failed login attempts",
		}),

		Lockouts: promauto.NewCounter(prometheus.CounterOpts{
			Name: "olhopix_login_lockouts_total",
			Help: "Total number of login lockouts triggered",
		}),
	}
}

// ObserveRequest records one handled HTTP request. Nil-safe so handlers can
// run without metrics in tests.
func (m *Metrics) ObserveRequest(method, route string, d time.Duration) {
	if m != nil {
		m.RequestLatency.WithLabelValues(method, route).Observe(d.Seconds())
	}
}

// IncrementUsersCreated increments the registered-users counter.
func (m *Metrics) IncrementUsersCreated() {
	if m != nil {
		m.UsersCreated.Inc()
	}
}

// IncrementLoginFailures increments the failed-login counter.
func (m *Metrics) IncrementLoginFailures() {
	if m != nil {
		m.LoginFailures.Inc()
	}
}

// IncrementLockouts increments the lockout counter.
func (m *Metrics) IncrementLockouts() {
	if m != nil {
		m.Lockouts.Inc()
	}
}
