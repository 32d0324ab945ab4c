package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	roomsDesc = prometheus.NewDesc(
		"wishlist_realtime_rooms",
		"Number of list rooms with at least one live viewer",
		nil,
		nil,
	)
	connectionsDesc = prometheus.NewDesc(
		"wishlist_realtime_connections",
		"Number of subscribed realtime connections",
		nil,
		nil,
	)

	handshakes = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "wishlist_realtime_handshakes_total",
		Help: "Realtime handshakes by outcome",
	}, []string{"outcome"})

	evictions = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "wishlist_realtime_evictions_total",
		Help: "Room members evicted after a failed send",
	})

	reservations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "wishlist_reservations_total",
		Help: "Reservation state transitions by target status and outcome",
	}, []string{"status", "outcome"})

	contributions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "wishlist_contributions_total",
		Help: "Recorded money contributions by status",
	}, []string{"status"})

	notifications = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "wishlist_notifications_total",
		Help: "Durable notifications written by kind",
	}, []string{"kind"})
)

// RoomSource reports live room occupancy.
type RoomSource interface {
	RoomCounts() (rooms, connections int)
}

// RoomCollector reads room occupancy from the hub on each scrape.
type RoomCollector struct {
	src RoomSource
}

// Describe sends the metric descriptors to the channel.
func (c *RoomCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- roomsDesc
	ch <- connectionsDesc
}

// Collect emits the current room and connection gauges.
func (c *RoomCollector) Collect(ch chan<- prometheus.Metric) {
	rooms, conns := c.src.RoomCounts()
	ch <- prometheus.MustNewConstMetric(roomsDesc, prometheus.GaugeValue, float64(rooms))
	ch <- prometheus.MustNewConstMetric(connectionsDesc, prometheus.GaugeValue, float64(conns))
}

var initOnce sync.Once

// Init registers all collectors with the default registry.
// Must be called once at startup.
func Init(src RoomSource) {
	initOnce.Do(func() {
		prometheus.MustRegister(
			&RoomCollector{src: src},
			handshakes,
			evictions,
			reservations,
			contributions,
			notifications,
		)
	})
}

// RecordHandshake counts a finished realtime handshake.
func RecordHandshake(outcome string) {
	handshakes.WithLabelValues(outcome).Inc()
}

// RecordEvictions counts members dropped from rooms.
func RecordEvictions(n int) {
	evictions.Add(float64(n))
}

// RecordReservation counts a reservation attempt.
func RecordReservation(status, outcome string) {
	reservations.WithLabelValues(status, outcome).Inc()
}

// RecordContribution counts a new contribution.
func RecordContribution(status string) {
	contributions.WithLabelValues(status).Inc()
}

// RecordNotification counts a written notification.
func RecordNotification(kind string) {
	notifications.WithLabelValues(kind).Inc()
}
