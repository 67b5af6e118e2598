package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordValidation(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.RecordValidation("balance", ResultValid, nil, 0.0001)
	m.RecordValidation("balance", ResultInvalid, []string{"required", "invalid_uint128", "invalid_uint128"}, 0.0002)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.ValidationsTotal.WithLabelValues("balance", ResultValid)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ValidationsTotal.WithLabelValues("balance", ResultInvalid)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.ViolationsTotal.WithLabelValues("balance", "invalid_uint128")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ViolationsTotal.WithLabelValues("balance", "required")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.ValidationLatency))
}

func TestRecordKafka(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.RecordKafkaPublish("valid", "balance.document.valid", nil, 0.01)
	m.RecordKafkaPublish("valid", "balance.document.valid", errors.New("boom"), 0.01)
	m.RecordKafkaConsume("in", nil)
	m.RecordKafkaConsume("in", errors.New("boom"))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.KafkaPublishTotal.WithLabelValues("valid", "balance.document.valid")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.KafkaPublishErrors.WithLabelValues("valid", "balance.document.valid")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.KafkaConsumeTotal.WithLabelValues("in")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.KafkaConsumeErrors.WithLabelValues("in")))
}

func TestRecordRequest(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.RecordRequest("http", "/v1/validate/{kind}", "200", 0.001)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("http", "/v1/validate/{kind}", "200")))
}

func TestNewMetrics_SeparateRegistries(t *testing.T) {
	assert.NotPanics(t, func() {
		NewMetrics(prometheus.NewRegistry())
		NewMetrics(prometheus.NewRegistry())
	})
}
