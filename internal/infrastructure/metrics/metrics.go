package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the sticker bot
type Metrics struct {
	// Conversation metrics
	EventsTotal    *prometheus.CounterVec
	ActiveSessions prometheus.Gauge
	FaultsTotal    prometheus.Counter

	// Media intake metrics
	MediaAccepted *prometheus.CounterVec
	MediaRejected *prometheus.CounterVec

	// Transformation metrics
	Transformations *prometheus.CounterVec

	// Pack metrics
	PacksCreated       prometheus.Counter
	PacksDeleted       prometheus.Counter
	StickerAddFailures prometheus.Counter
	AssemblyDuration   prometheus.Histogram

	// Kafka metrics
	KafkaMessagesProduced prometheus.Counter
	KafkaProduceErrors    *prometheus.CounterVec
}

var (
	// DefaultMetrics is the default metrics instance
	DefaultMetrics *Metrics
	once           sync.Once
)

// GetDefaultMetrics returns the singleton metrics instance
func GetDefaultMetrics() *Metrics {
	once.Do(func() {
		DefaultMetrics = NewMetrics()
	})
	return DefaultMetrics
}

// NewMetrics creates a new Metrics instance registered on the default registry
func NewMetrics() *Metrics {
	return &Metrics{
		EventsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sticker_bot_events_total",
				Help: "Total number of inbound events by kind",
			},
			[]string{"kind"},
		),
		ActiveSessions: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "sticker_bot_active_sessions",
			Help: "Current number of in-progress submissions",
		}),
		FaultsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "sticker_bot_faults_total",
			Help: "Total number of faults escalated to the global handler",
		}),

		MediaAccepted: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sticker_bot_media_accepted_total",
				Help: "Total number of accepted media items by kind",
			},
			[]string{"kind"},
		),
		MediaRejected: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sticker_bot_media_rejected_total",
				Help: "Total number of rejected media items by reason",
			},
			[]string{"reason"},
		),

		Transformations: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sticker_bot_transformations_total",
				Help: "Total number of media transformations by operation and result",
			},
			[]string{"operation", "result"},
		),

		PacksCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "sticker_bot_packs_created_total",
			Help: "Total number of registered sticker packs",
		}),
		PacksDeleted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "sticker_bot_packs_deleted_total",
			Help: "Total number of deleted sticker packs",
		}),
		StickerAddFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "sticker_bot_sticker_add_failures_total",
			Help: "Total number of stickers skipped because adding them failed",
		}),
		AssemblyDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "sticker_bot_assembly_duration_seconds",
			Help:    "Duration of pack assembly in seconds",
			Buckets: []float64{1, 2.5, 5, 10, 30, 60, 120, 300},
		}),

		KafkaMessagesProduced: promauto.NewCounter(prometheus.CounterOpts{
			Name: "sticker_bot_kafka_messages_produced_total",
			Help: "Total number of messages produced to Kafka",
		}),
		KafkaProduceErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sticker_bot_kafka_produce_errors_total",
				Help: "Total number of Kafka produce errors",
			},
			[]string{"error_type"},
		),
	}
}

// RecordEvent records an inbound event
func (m *Metrics) RecordEvent(kind string) {
	m.EventsTotal.WithLabelValues(kind).Inc()
}

// SetActiveSessions updates the live session gauge
func (m *Metrics) SetActiveSessions(n int) {
	m.ActiveSessions.Set(float64(n))
}

// RecordFault records a fault
func (m *Metrics) RecordFault() {
	m.FaultsTotal.Inc()
}

// RecordMediaAccepted records an accepted media item
func (m *Metrics) RecordMediaAccepted(kind string) {
	m.MediaAccepted.WithLabelValues(kind).Inc()
}

// RecordMediaRejected records a rejected media item with reason
func (m *Metrics) RecordMediaRejected(reason string) {
	if reason == "" {
		reason = "unknown"
	}
	m.MediaRejected.WithLabelValues(reason).Inc()
}

// RecordTransformation records a transformation outcome
func (m *Metrics) RecordTransformation(operation string, err error) {
	result := "success"
	if err != nil {
		result = "failure"
	}
	m.Transformations.WithLabelValues(operation, result).Inc()
}

// RecordPackCreated records a registered pack
func (m *Metrics) RecordPackCreated(duration float64) {
	m.PacksCreated.Inc()
	m.AssemblyDuration.Observe(duration)
}

// RecordPackDeleted records a deleted pack
func (m *Metrics) RecordPackDeleted() {
	m.PacksDeleted.Inc()
}

// RecordStickerAddFailure records a skipped sticker
func (m *Metrics) RecordStickerAddFailure() {
	m.StickerAddFailures.Inc()
}

// RecordKafkaProduce records a Kafka produce outcome
func (m *Metrics) RecordKafkaProduce(errorType string) {
	if errorType == "" {
		m.KafkaMessagesProduced.Inc()
		return
	}
	m.KafkaProduceErrors.WithLabelValues(errorType).Inc()
}
