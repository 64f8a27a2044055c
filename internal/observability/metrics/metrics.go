package metrics

import "github.com/prometheus/client_golang/prometheus"

// BookingMetrics exposes counters/histograms for the conversation flow.
type BookingMetrics struct {
	messagesTotal      *prometheus.CounterVec
	stageTransitions   *prometheus.CounterVec
	confirmationsTotal *prometheus.CounterVec
	stepFailures       *prometheus.CounterVec
	turnLatency        *prometheus.HistogramVec
}

func NewBookingMetrics(reg prometheus.Registerer) *BookingMetrics {
	m := &BookingMetrics{
		messagesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinic",
			Subsystem: "booking",
			Name:      "messages_total",
			Help:      "Total patient messages processed",
		}, []string{"stage", "status"}),
		stageTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinic",
			Subsystem: "booking",
			Name:      "stage_transitions_total",
			Help:      "Total stage transitions",
		}, []string{"from", "to"}),
		confirmationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinic",
			Subsystem: "booking",
			Name:      "confirmations_total",
			Help:      "Total completed bookings",
		}, []string{"patient_type"}),
		stepFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinic",
			Subsystem: "booking",
			Name:      "confirmation_step_failures_total",
			Help:      "Confirmation fan-out steps that failed",
		}, []string{"step"}),
		turnLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "clinic",
			Subsystem: "booking",
			Name:      "turn_latency_seconds",
			Help:      "Latency of one conversation turn",
			Buckets:   prometheus.DefBuckets,
		}, []string{"stage"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.messagesTotal, m.stageTransitions, m.confirmationsTotal, m.stepFailures, m.turnLatency)
	return m
}

func (m *BookingMetrics) ObserveMessage(stage, status string) {
	if m == nil {
		return
	}
	m.messagesTotal.WithLabelValues(stage, status).Inc()
}

func (m *BookingMetrics) ObserveTransition(from, to string) {
	if m == nil {
		return
	}
	m.stageTransitions.WithLabelValues(from, to).Inc()
}

func (m *BookingMetrics) ObserveConfirmation(patientType string) {
	if m == nil {
		return
	}
	m.confirmationsTotal.WithLabelValues(patientType).Inc()
}

func (m *BookingMetrics) ObserveStepFailure(step string) {
	if m == nil {
		return
	}
	m.stepFailures.WithLabelValues(step).Inc()
}

func (m *BookingMetrics) ObserveTurnLatency(stage string, seconds float64) {
	if m == nil {
		return
	}
	m.turnLatency.WithLabelValues(stage).Observe(seconds)
}
