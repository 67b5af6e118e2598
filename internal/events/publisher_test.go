package events

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"balance-schema-service/internal/models"
	"balance-schema-service/internal/observability/metrics"
)

func newTestMetrics() *metrics.Metrics {
	return metrics.NewMetrics(prometheus.NewRegistry())
}

func TestNew_DisabledMode(t *testing.T) {
	tests := []struct {
		name string
		cfg  *Config
	}{
		{"nil config", nil},
		{"disabled", &Config{Enabled: false, Brokers: []string{"localhost:9092"}}},
		{"no brokers", &Config{Enabled: true, Brokers: []string{}}},
		{"empty brokers", &Config{Enabled: true, Brokers: nil}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := New(tt.cfg, newTestMetrics())
			require.NotNil(t, p)
			assert.False(t, p.enabled)
			assert.Nil(t, p.writerValid)
			assert.Nil(t, p.writerRejected)
		})
	}
}

func TestNew_ConfigValues(t *testing.T) {
	p := New(&Config{
		Enabled:       false,
		Brokers:       []string{"localhost:9092"},
		TopicValid:    "test.valid",
		TopicRejected: "test.rejected",
		Principal:     "test-principal",
	}, newTestMetrics())

	assert.Equal(t, "test-principal", p.principal)
	assert.Equal(t, "test.valid", p.topicValid)
	assert.Equal(t, "test.rejected", p.topicRejected)
}

func TestNew_EnabledCreatesWriters(t *testing.T) {
	p := New(&Config{
		Enabled:       true,
		Brokers:       []string{"localhost:9092"},
		TopicValid:    "test.valid",
		TopicRejected: "test.rejected",
	}, newTestMetrics())
	defer p.Close()

	assert.True(t, p.enabled)
	require.NotNil(t, p.writerValid)
	require.NotNil(t, p.writerRejected)
	assert.Equal(t, "test.valid", p.writerValid.Topic)
	assert.Equal(t, "test.rejected", p.writerRejected.Topic)
}

func TestPublisher_Publish_RoutesByValidity(t *testing.T) {
	m := newTestMetrics()
	p := New(&Config{Enabled: false, TopicValid: "test.valid", TopicRejected: "test.rejected"}, m)

	require.NoError(t, p.Publish(context.Background(), "k", models.ValidationResult{Valid: true}))
	require.NoError(t, p.Publish(context.Background(), "k", models.ValidationResult{
		Valid:      false,
		Violations: []models.Violation{{Path: "/amount", Reason: "missing required property", Code: "required"}},
	}))
	require.NoError(t, p.Publish(context.Background(), "k", models.ValidationResult{Valid: false}))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.KafkaPublishTotal.WithLabelValues("test.valid", models.EventTypeValid)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.KafkaPublishTotal.WithLabelValues("test.rejected", models.EventTypeRejected)))
}

func TestWriterBatchBytes(t *testing.T) {
	tests := []struct {
		name     string
		maxBytes int64
		want     int64
	}{
		{"unlimited documents", 0, defaultBatchBytes},
		{"small documents", 1024, 1024 + resultEnvelopeBytes},
		{"default document limit", 1 << 20, (1 << 20) + resultEnvelopeBytes},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, WriterBatchBytes(tt.maxBytes))
		})
	}
}

func TestNew_WritersSizedForDocumentLimit(t *testing.T) {
	p := New(&Config{
		Enabled:          true,
		Brokers:          []string{"localhost:9092"},
		TopicValid:       "test.valid",
		TopicRejected:    "test.rejected",
		MaxDocumentBytes: 4 << 20,
	}, newTestMetrics())
	defer p.Close()

	assert.Equal(t, WriterBatchBytes(4<<20), p.writerValid.BatchBytes)
	assert.Equal(t, WriterBatchBytes(4<<20), p.writerRejected.BatchBytes)
}

// nearLimitResult embeds a valid document of exactly maxBytes.
func nearLimitResult(maxBytes int) models.ValidationResult {
	prefix := `{"amount":{"denom":"uatom","amount":"1"},"memo":"`
	suffix := `"}`
	doc := prefix + strings.Repeat("x", maxBytes-len(prefix)-len(suffix)) + suffix
	return models.ValidationResult{
		EventType: models.EventTypeValid,
		ID:        "kafka-val-1",
		Source:    "kafka",
		Kind:      "balance",
		Valid:     true,
		Document:  json.RawMessage(doc),
		Timestamp: 1700000000000,
	}
}

func TestPublisher_Publish_NearLimitDocumentIsNotTooLarge(t *testing.T) {
	const maxBytes = 1 << 20
	p := New(&Config{
		Enabled:          true,
		Brokers:          []string{"127.0.0.1:1"},
		TopicValid:       "test.valid",
		TopicRejected:    "test.rejected",
		MaxDocumentBytes: maxBytes,
	}, newTestMetrics())
	defer p.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	// No broker listens here, so the write fails; it must not fail on size.
	err := p.Publish(ctx, "k", nearLimitResult(maxBytes))
	if err != nil {
		assert.NotContains(t, err.Error(), kafka.MessageSizeTooLarge.Error())
	}
}

func TestPublisher_Publish_DefaultWriterRejectsNearLimitDocument(t *testing.T) {
	const maxBytes = 1 << 20
	p := New(&Config{
		Enabled:       true,
		Brokers:       []string{"127.0.0.1:1"},
		TopicValid:    "test.valid",
		TopicRejected: "test.rejected",
	}, newTestMetrics())
	defer p.Close()

	err := p.Publish(context.Background(), "k", nearLimitResult(maxBytes))
	require.Error(t, err)
	assert.Contains(t, err.Error(), kafka.MessageSizeTooLarge.Error())
}

func TestPublisher_Close_NoWriters(t *testing.T) {
	p := New(&Config{Enabled: false}, newTestMetrics())
	assert.NoError(t, p.Close())

	assert.NoError(t, (&Publisher{}).Close())
}
