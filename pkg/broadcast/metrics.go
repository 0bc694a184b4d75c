package broadcast

import "github.com/prometheus/client_golang/prometheus"

type Metrics struct {
	LiveViewers      prometheus.Gauge
	EventsPublished  *prometheus.CounterVec
	DeliveryFailures prometheus.Counter
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		LiveViewers: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "shopping_live_viewers",
			Help: "Number of viewers currently subscribed to a store list.",
		}),
		EventsPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "shopping_events_published_total",
			Help: "Events published to store topics, by type.",
		}, []string{"type"}),
		DeliveryFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "shopping_event_delivery_failures_total",
			Help: "Viewers dropped because their outbound queue was full.",
		}),
	}
	reg.MustRegister(m.LiveViewers, m.EventsPublished, m.DeliveryFailures)
	return m
}
