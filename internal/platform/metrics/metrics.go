package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	SignupsTotal          prometheus.Counter
	LoginsTotal           prometheus.Counter
	LoginFailuresTotal    prometheus.Counter
	CredentialsIssued     *prometheus.CounterVec
	VerifierLookupsTotal  prometheus.Counter
	VerifierMissesTotal   prometheus.Counter
	WalletConnectsTotal   prometheus.Counter
	WalletConnectFailures prometheus.Counter
	RequestDuration       *prometheus.HistogramVec
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		SignupsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "bitid_signups_total",
			Help: "Total number of identities created",
		}),
		LoginsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "bitid_logins_total",
			Help: "Total number of successful wallet logins",
		}),
		LoginFailuresTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "bitid_login_failures_total",
			Help: "Total number of login attempts with an unknown wallet address",
		}),
		CredentialsIssued: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "bitid_credentials_issued_total",
			Help: "Total number of credentials issued, by credential type",
		}, []string{"type"}),
		VerifierLookupsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "bitid_verifier_lookups_total",
			Help: "Total number of verifier lookups",
		}),
		VerifierMissesTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "bitid_verifier_misses_total",
			Help: "Total number of verifier lookups that matched no profile",
		}),
		WalletConnectsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "bitid_wallet_connects_total",
			Help: "Total number of successful wallet connections",
		}),
		WalletConnectFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "bitid_wallet_connect_failures_total",
			Help: "Total number of failed or cancelled wallet connections",
		}),
		RequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "bitid_http_request_duration_seconds",
			Help:    "HTTP request latency by route and status",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "status"}),
	}
}

// ObserveRequest records one HTTP request observation.
func (m *Metrics) ObserveRequest(route, status string, d time.Duration) {
	m.RequestDuration.WithLabelValues(route, status).Observe(d.Seconds())
}
