// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Galion Labs

package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/galionhq/nexus/internal/metrics"
)

// withMetrics records Prometheus metrics for every request: an in-flight
// gauge around the handler and a latency histogram labelled with the chi
// route pattern, so path parameters do not explode the label cardinality.
func withMetrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		metrics.HTTPRequestsInFlight.Inc()
		defer metrics.HTTPRequestsInFlight.Dec()

		start := time.Now()

		mw := &responseWriter{
			ResponseWriter: w,
		}

		next.ServeHTTP(mw, r)

		// The pattern is only known after routing; unmatched requests fall
		// back to the raw path, which for a 404 is a bounded set in practice.
		route := chi.RouteContext(r.Context()).RoutePattern()
		if route == "" {
			route = r.URL.Path
		}

		status := mw.status
		if status == 0 {
			status = http.StatusOK
		}

		metrics.ObserveHTTPRequest(r.Method, route, status, time.Since(start))
	})
}
