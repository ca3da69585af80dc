package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Intake
	ordersCreatedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orderflow_orders_created_total",
			Help: "Order creation attempts by outcome",
		},
		[]string{"outcome"},
	)

	// Publisher
	eventsPublishedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orderflow_events_published_total",
			Help: "Events sent to the broker by type and outcome",
		},
		[]string{"type", "outcome"},
	)

	publishDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "orderflow_publish_duration_seconds",
			Help:    "Time spent waiting for broker acknowledgement",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
		[]string{"type"},
	)

	// Consumer
	recordsConsumedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orderflow_records_consumed_total",
			Help: "Broker records seen by the consumer by outcome",
		},
		[]string{"topic", "outcome"},
	)

	consumerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "orderflow_consumer_state",
			Help: "1 for the consumer's current state, 0 otherwise",
		},
		[]string{"state"},
	)

	// Handler
	handlerDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "orderflow_handler_duration_seconds",
			Help:    "Event handling duration",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10},
		},
		[]string{"type"},
	)

	dedupHitsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "orderflow_dedup_hits_total",
			Help: "Events skipped because their fingerprint was already seen",
		},
	)

	dedupMissesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "orderflow_dedup_misses_total",
			Help: "Events processed for the first time",
		},
	)

	eventsDroppedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orderflow_events_dropped_total",
			Help: "Events acknowledged without processing",
		},
		[]string{"reason"},
	)

	// Channels
	notificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orderflow_notifications_total",
			Help: "Channel send attempts by channel, kind and status",
		},
		[]string{"channel", "kind", "status"},
	)

	channelSendDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "orderflow_channel_send_duration_seconds",
			Help:    "Channel send duration",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5},
		},
		[]string{"channel"},
	)
)

func RecordOrderCreated(outcome string) {
	ordersCreatedTotal.WithLabelValues(outcome).Inc()
}

func RecordPublish(eventType, outcome string, d time.Duration) {
	eventsPublishedTotal.WithLabelValues(eventType, outcome).Inc()
	publishDuration.WithLabelValues(eventType).Observe(d.Seconds())
}

func RecordConsumed(topic, outcome string) {
	recordsConsumedTotal.WithLabelValues(topic, outcome).Inc()
}

// SetConsumerState flips the state gauge so exactly one label reads 1.
func SetConsumerState(current string, all []string) {
	for _, s := range all {
		v := 0.0
		if s == current {
			v = 1
		}
		consumerState.WithLabelValues(s).Set(v)
	}
}

func RecordHandled(eventType string, d time.Duration) {
	handlerDuration.WithLabelValues(eventType).Observe(d.Seconds())
}

func RecordDedupHit()  { dedupHitsTotal.Inc() }
func RecordDedupMiss() { dedupMissesTotal.Inc() }

func RecordDropped(reason string) {
	eventsDroppedTotal.WithLabelValues(reason).Inc()
}

func RecordNotification(channel, kind, status string, d time.Duration) {
	notificationsTotal.WithLabelValues(channel, kind, status).Inc()
	channelSendDuration.WithLabelValues(channel).Observe(d.Seconds())
}

// Handler returns the Prometheus scrape handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
