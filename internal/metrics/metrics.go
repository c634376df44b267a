// Package metrics exposes Prometheus collectors for the session lifecycle
// and the webhook dispatcher.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type Collector struct {
	sessionsCreated  prometheus.Counter
	sessionsCancel   prometheus.Counter
	callbacks        *prometheus.CounterVec
	deliveryAttempts *prometheus.CounterVec
	deliveryLatency  prometheus.Histogram
}

func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		sessionsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mockly_sessions_created_total",
			Help: "Interview sessions created.",
		}),
		sessionsCancel: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mockly_sessions_cancelled_total",
			Help: "Interview sessions cancelled.",
		}),
		callbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mockly_callbacks_total",
			Help: "Workflow callbacks received, by result.",
		}, []string{"result"}),
		deliveryAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mockly_webhook_delivery_attempts_total",
			Help: "Outgoing webhook delivery attempts, by result.",
		}, []string{"result"}),
		deliveryLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "mockly_webhook_delivery_seconds",
			Help:    "Latency of outgoing webhook calls.",
			Buckets: prometheus.DefBuckets,
		}),
	}

	reg.MustRegister(
		c.sessionsCreated,
		c.sessionsCancel,
		c.callbacks,
		c.deliveryAttempts,
		c.deliveryLatency,
	)
	return c
}

func (c *Collector) SessionCreated()   { c.sessionsCreated.Inc() }
func (c *Collector) SessionCancelled() { c.sessionsCancel.Inc() }

func (c *Collector) CallbackReceived(result string) {
	c.callbacks.WithLabelValues(result).Inc()
}

func (c *Collector) DeliveryAttempt(result string, took time.Duration) {
	c.deliveryAttempts.WithLabelValues(result).Inc()
	c.deliveryLatency.Observe(took.Seconds())
}
