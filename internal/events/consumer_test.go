package events

import (
	"context"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
)

func TestConsumer_DisabledRunBlocksUntilCancelled(t *testing.T) {
	c := NewConsumer(&ConsumerConfig{Enabled: false, Topic: "in", DefaultKind: "balance"}, newTestMetrics())
	defer c.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	called := false
	err := c.Run(ctx, func(context.Context, Document) error {
		called = true
		return nil
	})
	assert.NoError(t, err)
	assert.False(t, called)
}

func TestConsumer_NilConfig(t *testing.T) {
	c := NewConsumer(nil, newTestMetrics())
	assert.False(t, c.enabled)
	assert.NoError(t, c.Close())
}

func TestConsumer_ToDocument(t *testing.T) {
	c := NewConsumer(&ConsumerConfig{Enabled: false, Topic: "in", DefaultKind: "balance"}, newTestMetrics())

	doc := c.toDocument(kafka.Message{
		Topic: "in",
		Key:   []byte("acct-1"),
		Value: []byte(`{"amount":{"denom":"uatom","amount":"1"}}`),
	})
	assert.Equal(t, Document{
		Key:     "acct-1",
		Kind:    "balance",
		Source:  "in",
		Payload: []byte(`{"amount":{"denom":"uatom","amount":"1"}}`),
	}, doc)

	doc = c.toDocument(kafka.Message{
		Topic: "in",
		Headers: []kafka.Header{
			{Key: HeaderKind, Value: []byte("all_balances")},
			{Key: HeaderSource, Value: []byte("node-7")},
			{Key: HeaderPrincipal, Value: []byte("ignored")},
		},
	})
	assert.Equal(t, "all_balances", doc.Kind)
	assert.Equal(t, "node-7", doc.Source)

	doc = c.toDocument(kafka.Message{
		Topic:   "in",
		Headers: []kafka.Header{{Key: HeaderKind, Value: nil}},
	})
	assert.Equal(t, "balance", doc.Kind, "empty kind header falls back to default")
}
