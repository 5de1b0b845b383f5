package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	moderationDeletions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moderation_deletions_total",
			Help: "Messages deleted by the moderation filter, by reason.",
		},
		[]string{"reason"},
	)

	moderationAutoReplies = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "moderation_auto_replies_total",
			Help: "Auto-replies sent in response to trigger matches.",
		},
	)
)

func init() {
	enqueue(moderationDeletions, moderationAutoReplies)
}

func IncDeletion(reason string) {
	moderationDeletions.WithLabelValues(reason).Inc()
}

func IncAutoReply() {
	moderationAutoReplies.Inc()
}
