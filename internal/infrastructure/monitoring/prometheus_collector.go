package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector exposes signaling metrics. It implements ports.SignalMetrics.
type Collector struct {
	connectionsActive prometheus.Gauge
	connectionsTotal  prometheus.Counter

	signalsRelayed  *prometheus.CounterVec
	signalsDropped  *prometheus.CounterVec
	eventsBroadcast *prometheus.CounterVec

	roomMembers *prometheus.GaugeVec

	handleDuration *prometheus.HistogramVec
}

// NewCollector registers the livecast metrics with the given registerer. Pass
// prometheus.DefaultRegisterer in production, a private registry in tests.
func NewCollector(reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)

	return &Collector{
		connectionsActive: factory.NewGauge(prometheus.GaugeOpts{
			Name: "livecast_connections_active",
			Help: "Number of currently open signaling connections",
		}),

		connectionsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "livecast_connections_total",
			Help: "Total number of signaling connections accepted",
		}),

		signalsRelayed: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "livecast_signals_relayed_total",
			Help: "Total number of signaling payloads relayed to their target",
		}, []string{"kind"}),

		signalsDropped: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "livecast_signals_dropped_total",
			Help: "Total number of signaling payloads dropped instead of relayed",
		}, []string{"kind", "reason"}),

		eventsBroadcast: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "livecast_events_broadcast_total",
			Help: "Total number of room-wide event fan-outs",
		}, []string{"kind"}),

		roomMembers: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "livecast_room_members",
			Help: "Number of connections currently in each room",
		}, []string{"room_id"}),

		handleDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "livecast_event_handle_duration_seconds",
			Help:    "Duration of inbound event handling",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
		}, []string{"event"}),
	}
}

func (c *Collector) ConnectionOpened() {
	c.connectionsActive.Inc()
	c.connectionsTotal.Inc()
}

func (c *Collector) ConnectionClosed() {
	c.connectionsActive.Dec()
}

func (c *Collector) RelayDelivered(kind string) {
	c.signalsRelayed.WithLabelValues(kind).Inc()
}

func (c *Collector) RelayDropped(kind, reason string) {
	c.signalsDropped.WithLabelValues(kind, reason).Inc()
}

func (c *Collector) EventBroadcast(kind string, receivers int) {
	c.eventsBroadcast.WithLabelValues(kind).Inc()
}

func (c *Collector) RoomMembers(roomID string, count int) {
	if count == 0 {
		c.roomMembers.DeleteLabelValues(roomID)
		return
	}
	c.roomMembers.WithLabelValues(roomID).Set(float64(count))
}

func (c *Collector) ObserveHandle(event string, d time.Duration) {
	c.handleDuration.WithLabelValues(event).Observe(d.Seconds())
}
