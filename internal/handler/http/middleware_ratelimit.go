// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Galion Labs

package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/httprate"

	"github.com/galionhq/nexus/internal/app"
)

// rateLimit returns a sliding-window per-IP rate limiting middleware.
// Exceeding the budget answers HTTP 429 with the uniform JSON error body
// and a Retry-After hint of the window size.
func rateLimit(requestLimit int, window time.Duration) func(http.Handler) http.Handler {
	return httprate.Limit(
		requestLimit,
		window,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Retry-After", strconv.Itoa(int(window.Seconds())))
			writeAPIError(w, http.StatusTooManyRequests, "rate_limit_exceeded", app.MsgTooManyRequests)
		}),
	)
}
