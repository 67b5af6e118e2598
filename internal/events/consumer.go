package events

import (
	"context"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"

	"balance-schema-service/internal/observability/metrics"
)

var jsonAPI = jsoniter.ConfigCompatibleWithStandardLibrary

// Message headers.
const (
	HeaderEventType = "eventType"
	HeaderPrincipal = "principal"
	HeaderKind      = "kind"
	HeaderSource    = "source"
)

// Document is one ingested document awaiting validation.
type Document struct {
	Key     string
	Kind    string
	Source  string
	Payload []byte
}

// HandleFunc processes a consumed document. A returned error is logged and
// the message is still committed; rejected documents are not retried.
type HandleFunc func(ctx context.Context, doc Document) error

// ConsumerConfig holds Kafka consumer configuration.
type ConsumerConfig struct {
	Brokers     []string
	Topic       string
	GroupID     string
	DefaultKind string
	Enabled     bool
}

// Consumer reads documents from the ingest topic.
type Consumer struct {
	reader      *kafka.Reader
	topic       string
	defaultKind string
	enabled     bool
	metrics     *metrics.Metrics
}

// NewConsumer creates a consumer. A nil or disabled config yields a consumer
// whose Run blocks until the context is cancelled.
func NewConsumer(cfg *ConsumerConfig, m *metrics.Metrics) *Consumer {
	if m == nil {
		m = metrics.DefaultMetrics
	}
	if cfg == nil || !cfg.Enabled || len(cfg.Brokers) == 0 {
		log.Info().Msg("Kafka ingest disabled")
		c := &Consumer{metrics: m}
		if cfg != nil {
			c.topic = cfg.Topic
			c.defaultKind = cfg.DefaultKind
		}
		return c
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        cfg.Brokers,
		GroupID:        cfg.GroupID,
		Topic:          cfg.Topic,
		Dialer:         newDialer(),
		MinBytes:       1,
		MaxBytes:       10e6,
		MaxWait:        500 * time.Millisecond,
		CommitInterval: time.Second,
	})

	log.Info().
		Strs("brokers", cfg.Brokers).
		Str("topic", cfg.Topic).
		Str("groupId", cfg.GroupID).
		Msg("Kafka consumer initialized")

	return &Consumer{
		reader:      reader,
		topic:       cfg.Topic,
		defaultKind: cfg.DefaultKind,
		enabled:     true,
		metrics:     m,
	}
}

// Run fetches messages until ctx is cancelled, calling fn for each.
func (c *Consumer) Run(ctx context.Context, fn HandleFunc) error {
	if !c.enabled || c.reader == nil {
		<-ctx.Done()
		return nil
	}

	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			c.metrics.RecordKafkaConsume(c.topic, err)
			return errors.Wrapf(err, "fetch from %s", c.topic)
		}
		c.metrics.RecordKafkaConsume(c.topic, nil)

		doc := c.toDocument(msg)
		if err := fn(ctx, doc); err != nil {
			log.Warn().
				Err(err).
				Str("topic", msg.Topic).
				Int("partition", msg.Partition).
				Int64("offset", msg.Offset).
				Str("kind", doc.Kind).
				Msg("Document handling failed")
		}

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			c.metrics.RecordKafkaConsume(c.topic, err)
			return errors.Wrap(err, "commit offset")
		}
	}
}

// toDocument takes kind and source from headers, falling back to the
// configured default kind and the message coordinates.
func (c *Consumer) toDocument(msg kafka.Message) Document {
	doc := Document{
		Key:     string(msg.Key),
		Kind:    c.defaultKind,
		Source:  msg.Topic,
		Payload: msg.Value,
	}
	for _, h := range msg.Headers {
		switch h.Key {
		case HeaderKind:
			if len(h.Value) > 0 {
				doc.Kind = string(h.Value)
			}
		case HeaderSource:
			if len(h.Value) > 0 {
				doc.Source = string(h.Value)
			}
		}
	}
	return doc
}

// Close closes the underlying reader.
func (c *Consumer) Close() error {
	if c.reader == nil {
		return nil
	}
	return c.reader.Close()
}
