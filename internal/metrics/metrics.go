package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors for the intake pipeline. A nil
// *Metrics is valid and records nothing.
type Metrics struct {
	submissions *prometheus.CounterVec
	suppressed  *prometheus.CounterVec
	deliveries  *prometheus.CounterVec
	uploads     *prometheus.CounterVec
}

// MustNewMetrics registers the collectors with reg and panics on duplicate
// registration. Tests should pass a fresh prometheus.NewRegistry().
func MustNewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "leadintake",
			Name:      "submissions_total",
			Help:      "Accepted submissions by kind and final disposition.",
		}, []string{"kind", "outcome"}),
		suppressed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "leadintake",
			Name:      "spam_suppressed_total",
			Help:      "Submissions silently dropped by spam heuristics.",
		}, []string{"kind", "reason"}),
		deliveries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "leadintake",
			Name:      "delivery_attempts_total",
			Help:      "Outbound delivery attempts per channel.",
		}, []string{"channel", "result"}),
		uploads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "leadintake",
			Name:      "upload_grants_total",
			Help:      "Resume upload authorization requests by result.",
		}, []string{"result"}),
	}
	reg.MustRegister(m.submissions, m.suppressed, m.deliveries, m.uploads)
	return m
}

func (m *Metrics) Submission(kind, outcome string) {
	if m == nil {
		return
	}
	m.submissions.WithLabelValues(kind, outcome).Inc()
}

func (m *Metrics) Suppressed(kind, reason string) {
	if m == nil {
		return
	}
	m.suppressed.WithLabelValues(kind, reason).Inc()
}

func (m *Metrics) Delivery(channel string, ok bool) {
	if m == nil {
		return
	}
	result := "ok"
	if !ok {
		result = "failed"
	}
	m.deliveries.WithLabelValues(channel, result).Inc()
}

func (m *Metrics) UploadGrant(result string) {
	if m == nil {
		return
	}
	m.uploads.WithLabelValues(result).Inc()
}
