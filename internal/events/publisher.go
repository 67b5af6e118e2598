// Package events provides Kafka ingest and result publishing.
package events

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"

	"balance-schema-service/internal/models"
	"balance-schema-service/internal/observability/metrics"
)

// Publisher publishes validation results to separate Kafka topics for valid
// and rejected documents.
type Publisher struct {
	writerValid    *kafka.Writer
	writerRejected *kafka.Writer
	principal      string
	topicValid     string
	topicRejected  string
	enabled        bool
	metrics        *metrics.Metrics
}

// Config holds Kafka publisher configuration.
type Config struct {
	Brokers       []string
	TopicValid    string
	TopicRejected string
	Principal     string
	Enabled       bool

	// MaxDocumentBytes is the largest document a result may embed. It sizes
	// the writers' BatchBytes; zero keeps the kafka-go default.
	MaxDocumentBytes int64
}

const (
	defaultBatchBytes = 1 << 20
	// resultEnvelopeBytes covers the result fields around the embedded
	// document, including a violation list bounded by the coin limit.
	resultEnvelopeBytes = 1 << 20
)

// WriterBatchBytes returns the writer batch size needed to publish a result
// embedding a document of up to maxDocumentBytes.
func WriterBatchBytes(maxDocumentBytes int64) int64 {
	if maxDocumentBytes <= 0 {
		return defaultBatchBytes
	}
	if n := maxDocumentBytes + resultEnvelopeBytes; n > defaultBatchBytes {
		return n
	}
	return defaultBatchBytes
}

// New creates a new Kafka result publisher. A nil or disabled config yields
// a log-only publisher.
func New(cfg *Config, m *metrics.Metrics) *Publisher {
	if m == nil {
		m = metrics.DefaultMetrics
	}

	if cfg == nil {
		log.Info().Msg("Kafka disabled (nil config), using log-only mode")
		return &Publisher{
			enabled: false,
			metrics: m,
		}
	}

	if !cfg.Enabled || len(cfg.Brokers) == 0 {
		log.Info().Msg("Kafka disabled, using log-only mode")
		return &Publisher{
			principal:     cfg.Principal,
			topicValid:    cfg.TopicValid,
			topicRejected: cfg.TopicRejected,
			enabled:       false,
			metrics:       m,
		}
	}

	transport := &kafka.Transport{
		Dial: newDialer().DialFunc,
	}

	batchBytes := WriterBatchBytes(cfg.MaxDocumentBytes)

	log.Info().
		Strs("brokers", cfg.Brokers).
		Str("topicValid", cfg.TopicValid).
		Str("topicRejected", cfg.TopicRejected).
		Str("principal", cfg.Principal).
		Int64("batchBytes", batchBytes).
		Msg("Kafka publisher initialized")

	return &Publisher{
		writerValid:    newWriter(cfg.Brokers, cfg.TopicValid, transport, batchBytes),
		writerRejected: newWriter(cfg.Brokers, cfg.TopicRejected, transport, batchBytes),
		principal:      cfg.Principal,
		topicValid:     cfg.TopicValid,
		topicRejected:  cfg.TopicRejected,
		enabled:        true,
		metrics:        m,
	}
}

// newDialer uses longer timeouts for DNS resolution in Kubernetes.
func newDialer() *kafka.Dialer {
	return &kafka.Dialer{
		Timeout:   10 * time.Second,
		DualStack: true,
	}
}

func newWriter(brokers []string, topic string, transport *kafka.Transport, batchBytes int64) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 10 * time.Millisecond,
		BatchBytes:   batchBytes,
		WriteTimeout: 10 * time.Second,
		RequiredAcks: kafka.RequireOne,
		Transport:    transport,
	}
}

// Publish routes a result to the valid or rejected topic by its Valid flag.
// An empty key falls back to the result ID. The document kind travels in the
// kind header.
func (p *Publisher) Publish(ctx context.Context, key string, result models.ValidationResult) error {
	if key == "" {
		key = result.ID
	}
	kind := kafka.Header{Key: HeaderKind, Value: []byte(result.Kind)}
	if result.Valid {
		return p.publish(ctx, p.writerValid, p.topicValid, models.EventTypeValid, key, result, kind)
	}
	return p.publish(ctx, p.writerRejected, p.topicRejected, models.EventTypeRejected, key, result, kind)
}

// publish writes one message to a specific Kafka writer.
func (p *Publisher) publish(ctx context.Context, writer *kafka.Writer, topic, eventType, key string, result models.ValidationResult, extra ...kafka.Header) error {
	start := time.Now()

	payload, err := jsonAPI.Marshal(result)
	if err != nil {
		log.Error().Err(err).Str("topic", topic).Msg("Failed to marshal event")
		return errors.Wrap(err, "marshal event")
	}

	log.Debug().
		Str("principal", p.principal).
		Str("topic", topic).
		Str("key", key).
		RawJSON("payload", payload).
		Msg("Publishing event")

	// If Kafka is disabled, just log
	if !p.enabled || writer == nil {
		p.metrics.RecordKafkaPublish(topic, eventType, nil, time.Since(start).Seconds())
		return nil
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: payload,
		Headers: []kafka.Header{
			{Key: HeaderEventType, Value: []byte(eventType)},
			{Key: HeaderPrincipal, Value: []byte(p.principal)},
		},
	}
	msg.Headers = append(msg.Headers, extra...)

	if err := writer.WriteMessages(ctx, msg); err != nil {
		log.Error().
			Err(err).
			Str("topic", topic).
			Str("key", key).
			Msg("Failed to write to Kafka")
		p.metrics.RecordKafkaPublish(topic, eventType, err, time.Since(start).Seconds())
		return errors.Wrapf(err, "write to %s", topic)
	}

	p.metrics.RecordKafkaPublish(topic, eventType, nil, time.Since(start).Seconds())
	return nil
}

// Close closes both Kafka writers.
func (p *Publisher) Close() error {
	var err error
	if p.writerValid != nil {
		if e := p.writerValid.Close(); e != nil {
			log.Error().Err(e).Msg("Error closing valid writer")
			err = e
		}
	}
	if p.writerRejected != nil {
		if e := p.writerRejected.Close(); e != nil {
			log.Error().Err(e).Msg("Error closing rejected writer")
			err = e
		}
	}
	return err
}
