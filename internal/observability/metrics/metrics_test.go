package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestKioskMetricsObserve(t *testing.T) {
	m := NewKioskMetrics(prometheus.NewRegistry())
	m.ObserveVerification("matched", 0.12)
	m.ObserveTransition("general", "advance")
	m.ObserveSubmission("success")
	m.ObserveUploadRejected("too_large")
}

func TestKioskMetricsDefaultRegistry(t *testing.T) {
	m := NewKioskMetrics(nil)
	m.ObserveSubmission("failed")
}

func TestKioskMetricsNilSafe(t *testing.T) {
	var m *KioskMetrics
	m.ObserveVerification("matched", 0.1)
	m.ObserveTransition("general", "back")
	m.ObserveSubmission("success")
	m.ObserveUploadRejected("unsupported_type")
}
