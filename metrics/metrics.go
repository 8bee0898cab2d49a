package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "puppr"

// Collector exports subject and gateway metrics to Prometheus.
// It implements subject.Metrics.
type Collector struct {
	registry  *prometheus.Registry
	published *prometheus.CounterVec
	delivered *prometheus.CounterVec
	failed    *prometheus.CounterVec
	evicted   *prometheus.CounterVec
	gateways  prometheus.Gauge
}

// New creates a collector registered on its own registry.
func New() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		published: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_published_total",
			Help:      "Events published on a subject.",
		}, []string{"subject", "event"}),
		delivered: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_delivered_total",
			Help:      "Successful listener invocations.",
		}, []string{"subject", "event"}),
		failed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "listener_failures_total",
			Help:      "Listener errors that did not evict the listener.",
		}, []string{"subject", "event"}),
		evicted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "listeners_evicted_total",
			Help:      "Subscriptions removed after a transport failure.",
		}, []string{"subject"}),
		gateways: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "gateways_connected",
			Help:      "Client gateways currently connected.",
		}),
	}
	c.registry.MustRegister(c.published, c.delivered, c.failed, c.evicted, c.gateways)
	return c
}

func (c *Collector) Published(subject, name string) {
	c.published.WithLabelValues(subject, name).Inc()
}

func (c *Collector) Delivered(subject, name string) {
	c.delivered.WithLabelValues(subject, name).Inc()
}

func (c *Collector) Failed(subject, name string) {
	c.failed.WithLabelValues(subject, name).Inc()
}

func (c *Collector) Evicted(subject string) {
	c.evicted.WithLabelValues(subject).Inc()
}

// GatewayConnected tracks a new client gateway.
func (c *Collector) GatewayConnected() {
	c.gateways.Inc()
}

// GatewayDisconnected tracks a gone client gateway.
func (c *Collector) GatewayDisconnected() {
	c.gateways.Dec()
}

// Registry returns the underlying registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the metrics in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
