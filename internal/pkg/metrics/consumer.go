// Package metrics exposes Prometheus collectors for the event consumer and
// scheduled jobs. Every recorder is nil-safe so components can run without
// a registry (tests, tooling).
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Message outcomes recorded by ConsumerMetrics.
const (
	OutcomeAcked    = "acked"
	OutcomeRequeued = "requeued"
	OutcomeDropped  = "dropped"
)

// ConsumerMetrics records how consumed messages were settled.
type ConsumerMetrics struct {
	messages *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func NewConsumerMetrics(reg prometheus.Registerer) *ConsumerMetrics {
	if reg == nil {
		return &ConsumerMetrics{}
	}
	messages := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "consumer_messages_total",
		Help: "Consumed messages by routing key and outcome.",
	}, []string{"routing_key", "outcome"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "consumer_handle_duration_seconds",
		Help:    "Time spent in message handlers.",
		Buckets: prometheus.DefBuckets,
	}, []string{"routing_key"})
	reg.MustRegister(messages, duration)
	return &ConsumerMetrics{messages: messages, duration: duration}
}

func (c *ConsumerMetrics) Observe(routingKey, outcome string, took time.Duration) {
	if c == nil || c.messages == nil {
		return
	}
	key := normalizeLabel(routingKey)
	c.messages.WithLabelValues(key, outcome).Inc()
	c.duration.WithLabelValues(key).Observe(took.Seconds())
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
