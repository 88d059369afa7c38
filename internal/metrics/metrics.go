package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the store-level collectors on a private registry, so
// tests can create isolated instances without global collector
// collisions.
type Metrics struct {
	registry *prometheus.Registry

	Operations          *prometheus.CounterVec
	Fallbacks           *prometheus.CounterVec
	ActiveSubscriptions *prometheus.GaugeVec
}

func New() *Metrics {
	registry := prometheus.NewRegistry()

	operations := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "store_operations_total",
			Help: "Store operations by collection, operation and serving backend",
		},
		[]string{"collection", "operation", "backend"},
	)
	fallbacks := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "store_fallbacks_total",
			Help: "Operations the cloud backend failed and the memory store served instead",
		},
		[]string{"collection", "operation"},
	)
	activeSubscriptions := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "store_active_subscriptions",
			Help: "Currently registered snapshot observers",
		},
		[]string{"collection"},
	)

	registry.MustRegister(operations, fallbacks, activeSubscriptions)

	return &Metrics{
		registry:            registry,
		Operations:          operations,
		Fallbacks:           fallbacks,
		ActiveSubscriptions: activeSubscriptions,
	}
}

// Handler serves the registry in Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
