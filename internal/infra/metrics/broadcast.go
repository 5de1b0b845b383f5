package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	broadcastSends = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "broadcast_sends_total",
			Help: "Recurring broadcast send attempts by status (ok/error).",
		},
		[]string{"status"},
	)

	broadcastPins = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "broadcast_pins_total",
			Help: "Pin attempts after a broadcast send, by status (ok/error).",
		},
		[]string{"status"},
	)

	wizardFinalized = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "wizard_sessions_finalized_total",
			Help: "Wizard sessions saved into a recurring item.",
		},
	)
)

func init() {
	enqueue(broadcastSends, broadcastPins, wizardFinalized)
}

func IncBroadcast(status string) {
	broadcastSends.WithLabelValues(status).Inc()
}

func IncPin(status string) {
	broadcastPins.WithLabelValues(status).Inc()
}

func IncWizardFinalized() {
	wizardFinalized.Inc()
}
