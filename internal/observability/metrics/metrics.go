// Package metrics provides Prometheus metrics for observability.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "telemeet_transcription"

// Metrics holds all Prometheus metrics for the service.
type Metrics struct {
	// Session metrics
	SessionsTotal      prometheus.Counter
	SessionsActive     prometheus.Gauge
	ParticipantsTotal  prometheus.Counter
	ParticipantsActive prometheus.Gauge

	// Pipeline metrics
	SegmentsProcessed  prometheus.Counter
	SegmentsFailed     *prometheus.CounterVec
	SegmentsSuppressed prometheus.Counter
	PipelineDuration   prometheus.Histogram
	TranscodeFallbacks prometheus.Counter

	// Provider metrics
	STTLatency       *prometheus.HistogramVec
	STTErrors        *prometheus.CounterVec
	NormalizeLatency prometheus.Histogram

	// Broadcast metrics
	BroadcastMessages   prometheus.Counter
	BroadcastDeliveries prometheus.Counter

	// Ingest metrics
	UploadsTotal       prometheus.Counter
	AudioBytesReceived prometheus.Counter

	// Kafka publish metrics
	KafkaPublishTotal   *prometheus.CounterVec
	KafkaPublishErrors  *prometheus.CounterVec
	KafkaPublishLatency *prometheus.HistogramVec
}

// DefaultMetrics is the global metrics instance.
var DefaultMetrics = NewMetrics()

// NewMetrics creates and registers all Prometheus metrics.
func NewMetrics() *Metrics {
	return &Metrics{
		SessionsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_total",
			Help:      "Total number of sessions created",
		}),
		SessionsActive: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sessions_active",
			Help:      "Number of currently active sessions",
		}),
		ParticipantsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "participants_total",
			Help:      "Total number of participants that joined a session",
		}),
		ParticipantsActive: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "participants_active",
			Help:      "Number of currently joined participants",
		}),

		SegmentsProcessed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "segments_processed_total",
			Help:      "Total number of audio segments run through the pipeline",
		}),
		SegmentsFailed: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "segments_failed_total",
			Help:      "Total number of segments aborted, by pipeline stage",
		}, []string{"stage"}),
		SegmentsSuppressed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "segments_suppressed_total",
			Help:      "Total number of segments suppressed (empty after cleaning and sense-check)",
		}),
		PipelineDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "pipeline_duration_seconds",
			Help:      "End-to-end transcription pipeline duration in seconds",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		}),
		TranscodeFallbacks: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transcode_fallbacks_total",
			Help:      "Total number of segments passed through untranscoded",
		}),

		STTLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stt_latency_seconds",
			Help:      "Speech-to-text recognition latency in seconds",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		}, []string{"provider"}),
		STTErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stt_errors_total",
			Help:      "Total number of STT errors",
		}, []string{"provider", "error_type"}),
		NormalizeLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "normalize_latency_seconds",
			Help:      "Sense-check normalization latency in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		}),

		BroadcastMessages: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "broadcast_messages_total",
			Help:      "Total number of transcript messages broadcast on data tracks",
		}),
		BroadcastDeliveries: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "broadcast_deliveries_total",
			Help:      "Total number of per-peer transcript deliveries",
		}),

		UploadsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "uploads_total",
			Help:      "Total number of audio segment uploads",
		}),
		AudioBytesReceived: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "audio_bytes_received_total",
			Help:      "Total audio bytes received",
		}),

		KafkaPublishTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "kafka_publish_total",
			Help:      "Total number of Kafka messages published",
		}, []string{"topic", "event_type"}),
		KafkaPublishErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "kafka_publish_errors_total",
			Help:      "Total number of Kafka publish errors",
		}, []string{"topic", "event_type"}),
		KafkaPublishLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "kafka_publish_latency_seconds",
			Help:      "Kafka publish latency in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"topic"}),
	}
}

// RecordSessionStarted records a session being created.
func (m *Metrics) RecordSessionStarted() {
	m.SessionsTotal.Inc()
	m.SessionsActive.Inc()
}

// RecordSessionEnded records a session ending.
func (m *Metrics) RecordSessionEnded() {
	m.SessionsActive.Dec()
}

// RecordParticipantJoined records a participant joining a session.
func (m *Metrics) RecordParticipantJoined() {
	m.ParticipantsTotal.Inc()
	m.ParticipantsActive.Inc()
}

// RecordParticipantLeft records a participant leaving a session.
func (m *Metrics) RecordParticipantLeft() {
	m.ParticipantsActive.Dec()
}

// RecordSegment records a completed pipeline run.
func (m *Metrics) RecordSegment(durationSeconds float64) {
	m.SegmentsProcessed.Inc()
	m.PipelineDuration.Observe(durationSeconds)
}

// RecordSegmentFailed records a segment aborted at a pipeline stage.
func (m *Metrics) RecordSegmentFailed(stage string) {
	m.SegmentsFailed.WithLabelValues(stage).Inc()
}

// RecordSTT records one recognition attempt.
func (m *Metrics) RecordSTT(provider string, err error, latencySeconds float64) {
	m.STTLatency.WithLabelValues(provider).Observe(latencySeconds)
	if err != nil {
		m.STTErrors.WithLabelValues(provider, "request").Inc()
	}
}

// RecordBroadcast records a transcript broadcast and its per-peer deliveries.
func (m *Metrics) RecordBroadcast(deliveries int) {
	m.BroadcastMessages.Inc()
	m.BroadcastDeliveries.Add(float64(deliveries))
}

// RecordUpload records audio bytes arriving for one segment.
func (m *Metrics) RecordUpload(bytes int) {
	m.UploadsTotal.Inc()
	m.AudioBytesReceived.Add(float64(bytes))
}

// RecordKafkaPublish records a Kafka publish attempt.
func (m *Metrics) RecordKafkaPublish(topic, eventType string, err error, latencySeconds float64) {
	m.KafkaPublishTotal.WithLabelValues(topic, eventType).Inc()
	m.KafkaPublishLatency.WithLabelValues(topic).Observe(latencySeconds)
	if err != nil {
		m.KafkaPublishErrors.WithLabelValues(topic, eventType).Inc()
	}
}
