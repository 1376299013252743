package http

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/galionhq/nexus/internal/logger"
	"github.com/galionhq/nexus/internal/service"
)

// runWithTraceID sends one request through the traceid middleware and
// returns the recorder plus the request seen by the next handler.
func runWithTraceID(h *Handler, traceIDHeaderValue string) (*httptest.ResponseRecorder, *http.Request) {
	var capturedReq *http.Request
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		capturedReq = r
		w.WriteHeader(http.StatusOK)
	})

	mw := h.withTraceID(next)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	if traceIDHeaderValue != "" {
		req.Header.Set(traceIDHeader, traceIDHeaderValue)
	}

	rec := httptest.NewRecorder()
	mw.ServeHTTP(rec, req)
	return rec, capturedReq
}

// TestWithTraceID_GeneratesUUID verifies that a request without a trace ID
// gets a fresh UUID echoed in the response header.
func TestWithTraceID_GeneratesUUID(t *testing.T) {
	h := newTestHandler(&service.Services{})

	rec, capturedReq := runWithTraceID(h, "")

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, capturedReq)

	traceID := rec.Header().Get(traceIDHeader)
	require.NotEmpty(t, traceID)
	_, err := uuid.Parse(traceID)
	assert.NoError(t, err, "generated trace ID should be a valid UUID")
}

// TestWithTraceID_PropagatesIncoming verifies that a caller-supplied trace ID
// is kept so traces can span services.
func TestWithTraceID_PropagatesIncoming(t *testing.T) {
	h := newTestHandler(&service.Services{})

	rec, _ := runWithTraceID(h, "trace-from-gateway")

	assert.Equal(t, "trace-from-gateway", rec.Header().Get(traceIDHeader))
}

// TestWithTraceID_UniquePerRequest verifies that two requests without trace
// IDs get distinct ones.
func TestWithTraceID_UniquePerRequest(t *testing.T) {
	h := newTestHandler(&service.Services{})

	first, _ := runWithTraceID(h, "")
	second, _ := runWithTraceID(h, "")

	assert.NotEqual(t, first.Header().Get(traceIDHeader), second.Header().Get(traceIDHeader))
}

// TestWithTraceID_LoggerCarriesTraceID verifies that the request-scoped
// logger placed on the context stamps every entry with the trace ID.
func TestWithTraceID_LoggerCarriesTraceID(t *testing.T) {
	var buf bytes.Buffer
	h := &Handler{
		services: &service.Services{},
		logger:   &logger.Logger{Logger: zerolog.New(&buf)},
	}

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger.FromRequest(r).Info().Msg("inside handler")
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	req.Header.Set(traceIDHeader, "trace-abc")
	rec := httptest.NewRecorder()

	h.withTraceID(next).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, buf.String(), `"trace_id":"trace-abc"`)
	assert.Contains(t, buf.String(), "inside handler")
}
