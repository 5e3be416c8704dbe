package chat

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the client's Prometheus instruments.
type Metrics struct {
	Connected     prometheus.Gauge
	Authenticated prometheus.Gauge

	Connects        prometheus.Counter
	ConnectFailures prometheus.Counter
	Evictions       prometheus.Counter
	JoinTimeouts    prometheus.Counter

	MessagesSent     prometheus.Counter
	MessagesReceived prometheus.Counter
}

// NewMetrics registers the client instruments on reg. A nil registerer gets
// a private registry, which keeps tests independent of global state.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	f := promauto.With(reg)

	return &Metrics{
		Connected: f.NewGauge(prometheus.GaugeOpts{
			Name: "jobchat_connected",
			Help: "1 when the transport connection is established.",
		}),
		Authenticated: f.NewGauge(prometheus.GaugeOpts{
			Name: "jobchat_authenticated",
			Help: "1 when the server has confirmed the credential.",
		}),
		Connects: f.NewCounter(prometheus.CounterOpts{
			Name: "jobchat_connects_total",
			Help: "Successful transport connects.",
		}),
		ConnectFailures: f.NewCounter(prometheus.CounterOpts{
			Name: "jobchat_connect_failures_total",
			Help: "Failed transport connect attempts.",
		}),
		Evictions: f.NewCounter(prometheus.CounterOpts{
			Name: "jobchat_evictions_total",
			Help: "Server-forced session evictions.",
		}),
		JoinTimeouts: f.NewCounter(prometheus.CounterOpts{
			Name: "jobchat_join_timeouts_total",
			Help: "Room joins that timed out awaiting acknowledgment.",
		}),
		MessagesSent: f.NewCounter(prometheus.CounterOpts{
			Name: "jobchat_messages_sent_total",
			Help: "Messages emitted to the server.",
		}),
		MessagesReceived: f.NewCounter(prometheus.CounterOpts{
			Name: "jobchat_messages_received_total",
			Help: "Messages received and fanned out to subscribers.",
		}),
	}
}
