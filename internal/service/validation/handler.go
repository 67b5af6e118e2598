// Package validation coordinates document decoding, schema validation,
// metrics and result publishing.
package validation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"balance-schema-service/internal/events"
	"balance-schema-service/internal/models"
	"balance-schema-service/internal/observability/logging"
	"balance-schema-service/internal/observability/metrics"
	"balance-schema-service/internal/schema"
	"balance-schema-service/internal/service/sequence"
)

// ErrDocumentTooLarge is returned when a payload exceeds Limits.MaxDocumentBytes.
var ErrDocumentTooLarge = errors.New("document too large")

// Limits defines guardrails on submitted documents.
type Limits struct {
	MaxDocumentBytes int64 // Max raw payload size; zero means unlimited
}

// DefaultLimits returns sensible default limits.
func DefaultLimits() Limits {
	return Limits{
		MaxDocumentBytes: 1024 * 1024,
	}
}

// ResultPublisher receives every validation result. *events.Publisher implements it.
type ResultPublisher interface {
	Publish(ctx context.Context, key string, result models.ValidationResult) error
}

// Request is one document submitted for validation.
type Request struct {
	Source  string // transport or upstream producer, used in the result ID
	Key     string // partitioning key for published results
	Kind    string
	Payload []byte
}

// Handler validates documents. It holds no per-request state and is safe for concurrent use.
type Handler struct {
	validator *schema.Validator
	publisher ResultPublisher
	ids       *sequence.Generator
	metrics   *metrics.Metrics
	limits    Limits
}

// NewHandler creates a handler with default limits. publisher may be nil.
func NewHandler(v *schema.Validator, publisher ResultPublisher, m *metrics.Metrics) *Handler {
	return NewHandlerWithLimits(v, publisher, m, DefaultLimits())
}

// NewHandlerWithLimits creates a handler with custom limits.
func NewHandlerWithLimits(v *schema.Validator, publisher ResultPublisher, m *metrics.Metrics, limits Limits) *Handler {
	if m == nil {
		m = metrics.DefaultMetrics
	}
	return &Handler{
		validator: v,
		publisher: publisher,
		ids:       sequence.New(),
		metrics:   m,
		limits:    limits,
	}
}

// Validate decodes and validates a document without publishing.
//
// The returned result is always populated. The error is non-nil only when
// validation could not run: ErrDocumentTooLarge, *schema.ParseError or
// schema.ErrUnknownKind. Schema violations are reported in the result, not as an error.
func (h *Handler) Validate(ctx context.Context, req Request) (models.ValidationResult, error) {
	start := time.Now()
	result := models.ValidationResult{
		EventType: models.EventTypeRejected,
		ID:        h.ids.Next(req.Source),
		Source:    req.Source,
		Kind:      req.Kind,
		Timestamp: start.UnixMilli(),
	}
	logger := logging.WithDocument(req.Source, result.ID, req.Kind)

	// Kind is caller-supplied; only registered kinds become metric labels.
	metricKind := req.Kind
	if !h.validator.HasKind(req.Kind) {
		metricKind = metrics.KindUnregistered
	}

	h.metrics.RecordDocumentSize(len(req.Payload))
	if h.limits.MaxDocumentBytes > 0 && int64(len(req.Payload)) > h.limits.MaxDocumentBytes {
		err := fmt.Errorf("%w: %d > %d bytes", ErrDocumentTooLarge, len(req.Payload), h.limits.MaxDocumentBytes)
		result.ParseError = err.Error()
		h.metrics.RecordValidation(metricKind, metrics.ResultTooLarge, nil, time.Since(start).Seconds())
		logger.Warn().Int("bytes", len(req.Payload)).Msg("Document rejected: too large")
		return result, err
	}

	if !h.validator.HasKind(req.Kind) {
		err := fmt.Errorf("%w: %q", schema.ErrUnknownKind, req.Kind)
		result.ParseError = err.Error()
		h.metrics.RecordValidation(metricKind, metrics.ResultUnknown, nil, time.Since(start).Seconds())
		logger.Warn().Msg("Document rejected: unknown kind")
		return result, err
	}

	doc, err := schema.Decode(req.Payload)
	if err != nil {
		result.ParseError = err.Error()
		h.metrics.RecordValidation(metricKind, metrics.ResultParseError, nil, time.Since(start).Seconds())
		logger.Debug().Err(err).Msg("Document rejected: parse error")
		return result, err
	}
	result.Document = json.RawMessage(req.Payload)

	violations, err := h.validator.Violations(req.Kind, doc)
	if err != nil {
		result.ParseError = err.Error()
		return result, err
	}

	if len(violations) == 0 {
		result.Valid = true
		result.EventType = models.EventTypeValid
		h.metrics.RecordValidation(metricKind, metrics.ResultValid, nil, time.Since(start).Seconds())
		logger.Debug().Msg("Document valid")
		return result, nil
	}

	codes := make([]string, len(violations))
	result.Violations = make([]models.Violation, len(violations))
	for i, v := range violations {
		codes[i] = v.Code
		result.Violations[i] = models.Violation{Path: v.Path, Reason: v.Reason, Code: v.Code}
	}
	h.metrics.RecordValidation(metricKind, metrics.ResultInvalid, codes, time.Since(start).Seconds())
	logger.Debug().Int("violations", len(violations)).Msg("Document invalid")
	return result, nil
}

// Handle validates a document and publishes the result, including results
// for documents that could not be validated. It is the ingest entry point.
func (h *Handler) Handle(ctx context.Context, req Request) (models.ValidationResult, error) {
	result, verr := h.Validate(ctx, req)
	if h.publisher != nil {
		if err := h.publisher.Publish(ctx, req.Key, result); err != nil {
			logger := logging.WithDocument(req.Source, result.ID, req.Kind)
			logger.Error().
				Err(err).
				Msg("Failed to publish validation result")
			if verr == nil {
				verr = err
			}
		}
	}
	return result, verr
}

// HandleDocument adapts Handle to events.HandleFunc.
func (h *Handler) HandleDocument(ctx context.Context, doc events.Document) error {
	_, err := h.Handle(ctx, Request{
		Source:  doc.Source,
		Key:     doc.Key,
		Kind:    doc.Kind,
		Payload: doc.Payload,
	})
	return err
}
