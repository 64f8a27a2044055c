package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestBookingMetricsObserve(t *testing.T) {
	m := NewBookingMetrics(prometheus.NewRegistry())
	m.ObserveMessage("greeting", "ok")
	m.ObserveTransition("greeting", "scheduling")
	m.ObserveConfirmation("Returning")
	m.ObserveStepFailure("calendar")
	m.ObserveTurnLatency("scheduling", 0.25)
}

func TestBookingMetricsCustomRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewBookingMetrics(reg)
	m.ObserveConfirmation("New")
}

func TestBookingMetricsNilSafe(t *testing.T) {
	var m *BookingMetrics
	m.ObserveMessage("greeting", "ok")
	m.ObserveTransition("greeting", "scheduling")
	m.ObserveConfirmation("New")
	m.ObserveStepFailure("email")
	m.ObserveTurnLatency("greeting", 0.1)
}
