package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "marketplace"

type HTTP struct {
	Requests *prometheus.CounterVec
	Latency  *prometheus.HistogramVec
}

func NewHTTP(reg prometheus.Registerer) *HTTP {
	m := &HTTP{
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests.",
		}, []string{"method", "path", "status"}),
		Latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path"}),
	}
	reg.MustRegister(m.Requests, m.Latency)
	return m
}

// Domain counts order lifecycle events. Methods are no-ops on nil.
type Domain struct {
	ordersCreated   prometheus.Counter
	cancellations   *prometheus.CounterVec
	statusUpdates   *prometheus.CounterVec
	outboxPublished prometheus.Counter
}

func NewDomain(reg prometheus.Registerer) *Domain {
	m := &Domain{
		ordersCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_created_total",
			Help:      "Orders successfully placed.",
		}),
		cancellations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "order_cancellations_total",
			Help:      "Cancellation requests by outcome.",
		}, []string{"decision"}),
		statusUpdates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "order_status_updates_total",
			Help:      "Order status updates by target status.",
		}, []string{"status"}),
		outboxPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "outbox_published_total",
			Help:      "Outbox events delivered to the broker.",
		}),
	}
	reg.MustRegister(m.ordersCreated, m.cancellations, m.statusUpdates, m.outboxPublished)
	return m
}

func (m *Domain) OrderCreated() {
	if m != nil {
		m.ordersCreated.Inc()
	}
}

// Cancellation records a request ("requested") or a decision
// ("approved", "rejected").
func (m *Domain) Cancellation(decision string) {
	if m != nil {
		m.cancellations.WithLabelValues(decision).Inc()
	}
}

func (m *Domain) StatusUpdated(status string) {
	if m != nil {
		m.statusUpdates.WithLabelValues(status).Inc()
	}
}

func (m *Domain) OutboxPublished(n int) {
	if m != nil {
		m.outboxPublished.Add(float64(n))
	}
}

// NewRegistry returns a registry preloaded with the Go runtime and process
// collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
}
