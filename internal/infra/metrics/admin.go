package metrics

import "github.com/prometheus/client_golang/prometheus"

var adminCommands = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "admin_commands_total",
		Help: "Configuration commands by command name and result.",
	},
	[]string{"command", "result"},
)

func init() {
	enqueue(adminCommands)
}

func IncAdminCommand(command, result string) {
	adminCommands.WithLabelValues(command, result).Inc()
}
