package http

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	jsoniter "github.com/json-iterator/go"

	"balance-schema-service/internal/app"
	"balance-schema-service/internal/models"
	"balance-schema-service/internal/observability/logging"
	"balance-schema-service/internal/schema"
	"balance-schema-service/internal/service/validation"
)

var jsonAPI = jsoniter.ConfigCompatibleWithStandardLibrary

const validateRoute = "/v1/validate/{kind}"

// validateResponse is the body returned by the validate endpoint.
type validateResponse struct {
	ID         string             `json:"id"`
	Kind       string             `json:"kind"`
	Valid      bool               `json:"valid"`
	Violations []models.Violation `json:"violations,omitempty"`
	Error      string             `json:"error,omitempty"`
}

// NewRouter constructs the HTTP router for the service.
func NewRouter(application *app.Application, handler *validation.Handler) http.Handler {
	r := chi.NewRouter()

	// Basic middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	// Health endpoints
	r.Get("/v1/liveness", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/v1/readiness", func(w http.ResponseWriter, _ *http.Request) {
		if !application.Ready() {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("not ready"))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	// API routes
	r.Route("/v1", func(r chi.Router) {
		r.Post("/validate/{kind}", validateHandler(application, handler))
	})

	return r
}

func validateHandler(application *app.Application, handler *validation.Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		kind := chi.URLParam(r, "kind")
		logger := logging.WithRequest("http", middleware.GetReqID(r.Context()), kind)

		// One byte over the limit is enough to detect an oversized body.
		limit := application.Cfg.Limits.MaxDocumentBytes
		var body io.Reader = r.Body
		if limit > 0 {
			body = io.LimitReader(r.Body, limit+1)
		}
		payload, err := io.ReadAll(body)
		if err != nil {
			logger.Warn().Err(err).Msg("Failed to read request body")
			writeJSON(w, http.StatusBadRequest, validateResponse{Kind: kind, Error: "failed to read body"})
			return
		}

		result, err := handler.Validate(r.Context(), validation.Request{
			Source:  "http",
			Key:     middleware.GetReqID(r.Context()),
			Kind:    kind,
			Payload: payload,
		})

		resp := validateResponse{
			ID:         result.ID,
			Kind:       kind,
			Valid:      result.Valid,
			Violations: result.Violations,
		}
		code := http.StatusOK
		var pe *schema.ParseError
		switch {
		case errors.As(err, &pe):
			code = http.StatusBadRequest
		case errors.Is(err, schema.ErrUnknownKind):
			code = http.StatusNotFound
		case errors.Is(err, validation.ErrDocumentTooLarge):
			code = http.StatusRequestEntityTooLarge
		case err != nil:
			code = http.StatusInternalServerError
		case !result.Valid:
			code = http.StatusUnprocessableEntity
		}
		if err != nil {
			resp.Error = err.Error()
		}

		application.Metrics.RecordRequest("http", validateRoute, http.StatusText(code), time.Since(start).Seconds())
		writeJSON(w, code, resp)
	}
}

func writeJSON(w http.ResponseWriter, code int, body any) {
	data, err := jsonAPI.Marshal(body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(data)
}
