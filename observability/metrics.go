package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "shop_relay"

// Bot outcomes.
const (
	BotReplied    = "replied"
	BotHandoff    = "handoff"
	BotSuppressed = "suppressed"
	BotFailed     = "failed"
	BotDropped    = "dropped"
)

// Metrics groups the prometheus collectors of the relay.
type Metrics struct {
	Connections     prometheus.Gauge
	Viewers         prometheus.Gauge
	InboundEvents   *prometheus.CounterVec
	RejectedEvents  *prometheus.CounterVec
	DroppedOutbound prometheus.Counter
	ChatMessages    *prometheus.CounterVec
	BotOutcomes     *prometheus.CounterVec
	BotLatency      prometheus.Histogram
	Likes           prometheus.Counter
	Keywords        *prometheus.CounterVec
	Languages       *prometheus.CounterVec
	BackplaneErrors prometheus.Counter
	QueueLength     *prometheus.GaugeVec
	QueueCapacity   *prometheus.GaugeVec
}

// NewMetrics creates the collectors and registers them on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Connections: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "connections",
			Help: "Live websocket connections.",
		}),
		Viewers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "livestream_viewers",
			Help: "Viewers of the current livestream.",
		}),
		InboundEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "inbound_events_total",
			Help: "Events received from clients.",
		}, []string{"event"}),
		RejectedEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "rejected_events_total",
			Help: "Inbound events answered with an error event.",
		}, []string{"event"}),
		DroppedOutbound: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "dropped_outbound_total",
			Help: "Outbound events dropped because a connection could not keep up.",
		}),
		ChatMessages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "chat_messages_total",
			Help: "Chat messages persisted, by sender kind.",
		}, []string{"sender"}),
		BotOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "bot_outcomes_total",
			Help: "Decisions of the bot per customer message.",
		}, []string{"outcome"}),
		BotLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace, Name: "bot_generation_seconds",
			Help:    "Duration of text generation calls.",
			Buckets: prometheus.ExponentialBuckets(0.25, 2, 8),
		}),
		Likes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "livestream_likes_total",
			Help: "Likes received during livestreams.",
		}),
		Keywords: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "chat_keywords_total",
			Help: "Keyword categories found in customer messages.",
		}, []string{"category"}),
		Languages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "chat_languages_total",
			Help: "Detected language of customer messages.",
		}, []string{"lang"}),
		BackplaneErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "backplane_errors_total",
			Help: "Failed publications to the backplane.",
		}),
		QueueLength: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace, Name: "queue_length",
			Help: "Items waiting in an internal queue.",
		}, []string{"queue"}),
		QueueCapacity: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace, Name: "queue_capacity",
			Help: "Capacity of an internal queue.",
		}, []string{"queue"}),
	}
	reg.MustRegister(
		m.Connections, m.Viewers, m.InboundEvents, m.RejectedEvents, m.DroppedOutbound,
		m.ChatMessages, m.BotOutcomes, m.BotLatency, m.Likes, m.Keywords, m.Languages, m.BackplaneErrors, m.QueueLength, m.QueueCapacity,
	)
	return m
}

// NewTestMetrics registers on a throwaway registry.
func NewTestMetrics() *Metrics {
	return NewMetrics(prometheus.NewRegistry())
}
