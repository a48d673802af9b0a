// Package metrics holds the Prometheus collectors for order, payment and HTTP activity.
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry *prometheus.Registry

	OrdersCreated    *prometheus.CounterVec
	OrderTransitions *prometheus.CounterVec
	Payments         *prometheus.CounterVec
	Refunds          *prometheus.CounterVec
	RequestDuration  *prometheus.HistogramVec
}

// New registers every collector on a private registry so tests can build as
// many instances as they like.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		OrdersCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pos_orders_created_total",
			Help: "Orders created, by order type.",
		}, []string{"order_type"}),
		OrderTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pos_order_transitions_total",
			Help: "Order status changes, by target status.",
		}, []string{"status"}),
		Payments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pos_payments_total",
			Help: "Payments recorded or rejected, by method and outcome.",
		}, []string{"method", "status"}),
		Refunds: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pos_refunds_total",
			Help: "Refunds issued, by gateway.",
		}, []string{"gateway"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "pos_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "code"}),
	}

	m.registry.MustRegister(
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		m.OrdersCreated,
		m.OrderTransitions,
		m.Payments,
		m.Refunds,
		m.RequestDuration,
	)
	return m
}

func (m *Metrics) OrderCreated(orderType string) {
	m.OrdersCreated.WithLabelValues(orderType).Inc()
}

func (m *Metrics) OrderTransition(status string) {
	m.OrderTransitions.WithLabelValues(status).Inc()
}

func (m *Metrics) Payment(method, status string) {
	m.Payments.WithLabelValues(method, status).Inc()
}

func (m *Metrics) Refund(gateway string) {
	m.Refunds.WithLabelValues(gateway).Inc()
}

// Middleware observes request latency keyed by the matched route pattern.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.RequestDuration.
			WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() gin.HandlerFunc {
	h := promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
	return gin.WrapH(h)
}
