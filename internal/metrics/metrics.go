// Package metrics exposes Prometheus collectors for the relay.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	OpenConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "codesync_open_connections",
		Help: "Number of live websocket connections.",
	})
	ActiveRooms = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "codesync_active_rooms",
		Help: "Number of rooms with at least one member.",
	})
	JoinsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "codesync_joins_total",
		Help: "Total processed join requests.",
	})
	ContentRelayedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "codesync_content_relayed_total",
		Help: "Total content change deliveries relayed to room members.",
	})
	DeliveryFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "codesync_delivery_failures_total",
		Help: "Total per-recipient deliveries dropped on send failure.",
	})
	EvictionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "codesync_liveness_evictions_total",
		Help: "Total connections force-disconnected by the liveness sweep.",
	})
)

// Handler exposes Prometheus metrics at /metrics
func Handler() http.Handler {
	return promhttp.Handler()
}
