// Package metrics provides Prometheus metrics for observability.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "balance_schema"

// Validation outcomes used as the "result" label.
const (
	ResultValid      = "valid"
	ResultInvalid    = "invalid"
	ResultParseError = "parse_error"
	ResultTooLarge   = "too_large"
	ResultUnknown    = "unknown_kind"
)

// KindUnregistered replaces the "kind" label for documents whose kind is not
// loaded, keeping label values bounded by the registered kinds.
const KindUnregistered = "unregistered"

// Metrics holds all Prometheus metrics for the service.
type Metrics struct {
	// Validation metrics
	ValidationsTotal  *prometheus.CounterVec
	ViolationsTotal   *prometheus.CounterVec
	ValidationLatency *prometheus.HistogramVec
	DocumentBytes     prometheus.Histogram

	// API metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	// Kafka metrics
	KafkaConsumeTotal   *prometheus.CounterVec
	KafkaConsumeErrors  *prometheus.CounterVec
	KafkaPublishTotal   *prometheus.CounterVec
	KafkaPublishErrors  *prometheus.CounterVec
	KafkaPublishLatency *prometheus.HistogramVec
}

// DefaultMetrics is the global metrics instance, registered with the default registry.
var DefaultMetrics = NewMetrics(prometheus.DefaultRegisterer)

// NewMetrics creates all Prometheus metrics and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		// Validation metrics
		ValidationsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "validations_total",
			Help:      "Total number of documents validated, by kind and result",
		}, []string{"kind", "result"}),
		ViolationsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "violations_total",
			Help:      "Total number of schema violations reported, by kind and code",
		}, []string{"kind", "code"}),
		ValidationLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "validation_latency_seconds",
			Help:      "Time to decode and validate a document",
			Buckets:   []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05},
		}, []string{"kind"}),
		DocumentBytes: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "document_bytes",
			Help:      "Size of documents submitted for validation",
			Buckets:   prometheus.ExponentialBuckets(64, 4, 8),
		}),

		// API metrics
		RequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "Total number of API requests, by transport, method and code",
		}, []string{"transport", "method", "code"}),
		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "request_duration_seconds",
			Help:      "API request duration in seconds",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}, []string{"transport", "method"}),

		// Kafka metrics
		KafkaConsumeTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "kafka_consume_total",
			Help:      "Total number of Kafka messages consumed",
		}, []string{"topic"}),
		KafkaConsumeErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "kafka_consume_errors_total",
			Help:      "Total number of Kafka fetch or commit errors",
		}, []string{"topic"}),
		KafkaPublishTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "kafka_publish_total",
			Help:      "Total number of Kafka messages published",
		}, []string{"topic", "event_type"}),
		KafkaPublishErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "kafka_publish_errors_total",
			Help:      "Total number of Kafka publish errors",
		}, []string{"topic", "event_type"}),
		KafkaPublishLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "kafka_publish_latency_seconds",
			Help:      "Kafka publish latency in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"topic"}),
	}
}

// RecordValidation records one validation outcome with its violation codes.
func (m *Metrics) RecordValidation(kind, result string, codes []string, latencySeconds float64) {
	m.ValidationsTotal.WithLabelValues(kind, result).Inc()
	m.ValidationLatency.WithLabelValues(kind).Observe(latencySeconds)
	for _, code := range codes {
		m.ViolationsTotal.WithLabelValues(kind, code).Inc()
	}
}

// RecordDocumentSize records the size of a submitted document.
func (m *Metrics) RecordDocumentSize(bytes int) {
	m.DocumentBytes.Observe(float64(bytes))
}

// RecordRequest records an API request.
func (m *Metrics) RecordRequest(transport, method, code string, durationSeconds float64) {
	m.RequestsTotal.WithLabelValues(transport, method, code).Inc()
	m.RequestDuration.WithLabelValues(transport, method).Observe(durationSeconds)
}

// RecordKafkaConsume records a consumed message or a consume error.
func (m *Metrics) RecordKafkaConsume(topic string, err error) {
	if err != nil {
		m.KafkaConsumeErrors.WithLabelValues(topic).Inc()
		return
	}
	m.KafkaConsumeTotal.WithLabelValues(topic).Inc()
}

// RecordKafkaPublish records a Kafka publish attempt.
func (m *Metrics) RecordKafkaPublish(topic, eventType string, err error, latencySeconds float64) {
	m.KafkaPublishTotal.WithLabelValues(topic, eventType).Inc()
	m.KafkaPublishLatency.WithLabelValues(topic).Observe(latencySeconds)
	if err != nil {
		m.KafkaPublishErrors.WithLabelValues(topic, eventType).Inc()
	}
}
