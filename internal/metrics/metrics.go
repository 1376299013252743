// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Galion Labs

// Package metrics exposes the platform's Prometheus instrumentation. All
// collectors are registered on the default registry via promauto; the HTTP
// handler serves them on /metrics.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequestDuration tracks request latency per route. The route label
	// carries the chi pattern (e.g. /api/v1/auth/login), never the raw path,
	// so cardinality stays bounded.
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "nexus_http_request_duration_seconds",
		Help:    "HTTP request latency by method, route pattern and status code",
		Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
	}, []string{"method", "route", "status"})

	// HTTPRequestsInFlight gauges concurrently handled requests.
	HTTPRequestsInFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "nexus_http_requests_in_flight",
		Help: "Number of HTTP requests currently being served",
	})

	// LoginsTotal counts login completions by method (password, twofa, qr,
	// refresh) and outcome.
	LoginsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "nexus_logins_total",
		Help: "Total login attempts by method and outcome",
	}, []string{"method", "outcome"})

	// TwoFAVerificationsTotal counts second-factor checks by kind (totp or
	// backup_code) and outcome.
	TwoFAVerificationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "nexus_twofa_verifications_total",
		Help: "Total two-factor code verifications by kind and outcome",
	}, []string{"kind", "outcome"})

	// QRSessionsTotal counts QR sign-in lifecycle events: created, claimed,
	// approved, denied, consumed, expired.
	QRSessionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "nexus_qr_sessions_total",
		Help: "Total QR sign-in session events",
	}, []string{"event"})

	// SubscriptionRenewalsTotal counts reconciler decisions per outcome:
	// renewed, converted, canceled, expired.
	SubscriptionRenewalsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "nexus_subscription_renewals_total",
		Help: "Total subscription reconciliation outcomes",
	}, []string{"outcome"})
)

// ObserveHTTPRequest records one served request.
func ObserveHTTPRequest(method, route string, status int, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(duration.Seconds())
}

// IncLogin records a login attempt outcome.
func IncLogin(method string, success bool) {
	LoginsTotal.WithLabelValues(method, outcome(success)).Inc()
}

// IncTwoFAVerification records a second-factor verification outcome.
func IncTwoFAVerification(kind string, success bool) {
	TwoFAVerificationsTotal.WithLabelValues(kind, outcome(success)).Inc()
}

// IncQRSessionEvent records a QR session lifecycle event.
func IncQRSessionEvent(event string) {
	QRSessionsTotal.WithLabelValues(event).Inc()
}

// IncSubscriptionRenewal records one reconciler decision.
func IncSubscriptionRenewal(outcome string) {
	SubscriptionRenewalsTotal.WithLabelValues(outcome).Inc()
}

func outcome(success bool) string {
	if success {
		return "success"
	}
	return "failure"
}
