package http

import (
	"net/http"

	"github.com/google/uuid"
)

// traceIDHeader carries the request correlation ID. An incoming value is
// propagated so a trace can span services; requests without one get a fresh
// UUID.
const traceIDHeader = "X-Trace-ID"

// withTraceID stamps every request with a trace ID, echoes it in the
// response header and stores a request-scoped logger carrying it on the
// context. Handlers pick that logger up with logger.FromRequest, so every
// line they emit correlates with the header the caller saw.
func (h *Handler) withTraceID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID := r.Header.Get(traceIDHeader)
		if traceID == "" {
			traceID = uuid.NewString()
		}

		requestLogger := h.logger.With().Str("trace_id", traceID).Logger()
		r = r.WithContext(requestLogger.WithContext(r.Context()))

		w.Header().Set(traceIDHeader, traceID)
		next.ServeHTTP(w, r)
	})
}
