package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "phishsoc"

var (
	TokensIssued = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "tokens_issued_total",
		Help:      "Session tokens issued.",
	})

	TokensRevoked = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "tokens_revoked_total",
		Help:      "Distinct tokens revoked.",
	})

	AuthFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_failures_total",
		Help:      "Rejected authorization attempts by reason.",
	}, []string{"reason"})

	EmailScans = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "email_scans_total",
		Help:      "Emails scored by risk level and phishing verdict.",
	}, []string{"risk_level", "phishing"})

	LogEvents = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "log_events_total",
		Help:      "Events appended to the log streams by category.",
	}, []string{"category"})

	LogWriteFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "log_write_failures_total",
		Help:      "Failed log line writes by stream.",
	}, []string{"stream"})
)

var registerOnce sync.Once

// Init registers all collectors in the default registry.
func Init() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			TokensIssued,
			TokensRevoked,
			AuthFailures,
			EmailScans,
			LogEvents,
			LogWriteFailures,
		)
	})
}

func Handler() http.Handler {
	return promhttp.Handler()
}
