package metrics

import "github.com/prometheus/client_golang/prometheus"

// KioskMetrics exposes counters/histograms for the check-in flow.
type KioskMetrics struct {
	verificationsTotal *prometheus.CounterVec
	verifyLatency      prometheus.Histogram
	stepTransitions    *prometheus.CounterVec
	submissionsTotal   *prometheus.CounterVec
	uploadsRejected    *prometheus.CounterVec
}

func NewKioskMetrics(reg prometheus.Registerer) *KioskMetrics {
	m := &KioskMetrics{
		verificationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "kiosk",
			Subsystem: "verification",
			Name:      "attempts_total",
			Help:      "Total verification attempts by outcome",
		}, []string{"outcome"}),
		verifyLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "kiosk",
			Subsystem: "verification",
			Name:      "latency_seconds",
			Help:      "Latency of appointment verification",
			Buckets:   prometheus.DefBuckets,
		}),
		stepTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "kiosk",
			Subsystem: "wizard",
			Name:      "step_transitions_total",
			Help:      "Total wizard transitions by step and direction",
		}, []string{"step", "direction"}),
		submissionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "kiosk",
			Subsystem: "checkin",
			Name:      "submissions_total",
			Help:      "Total check-in submissions by status",
		}, []string{"status"}),
		uploadsRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "kiosk",
			Subsystem: "documents",
			Name:      "uploads_rejected_total",
			Help:      "Total document uploads rejected before the adapter",
		}, []string{"reason"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.verificationsTotal, m.verifyLatency, m.stepTransitions, m.submissionsTotal, m.uploadsRejected)
	return m
}

func (m *KioskMetrics) ObserveVerification(outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.verificationsTotal.WithLabelValues(outcome).Inc()
	m.verifyLatency.Observe(seconds)
}

func (m *KioskMetrics) ObserveTransition(step, direction string) {
	if m == nil {
		return
	}
	m.stepTransitions.WithLabelValues(step, direction).Inc()
}

func (m *KioskMetrics) ObserveSubmission(status string) {
	if m == nil {
		return
	}
	m.submissionsTotal.WithLabelValues(status).Inc()
}

func (m *KioskMetrics) ObserveUploadRejected(reason string) {
	if m == nil {
		return
	}
	m.uploadsRejected.WithLabelValues(reason).Inc()
}
