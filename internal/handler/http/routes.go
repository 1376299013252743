package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (h *Handler) Init() *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(h.withTraceID)
	router.Use(h.withLogging)
	router.Use(withGZip)
	router.Use(withMetrics)

	loginLimit := rateLimit(10, time.Minute)
	resetLimit := rateLimit(5, time.Minute)
	qrCreateLimit := rateLimit(10, time.Minute)
	qrPollLimit := rateLimit(60, time.Minute)

	// routes without authorization
	router.Group(func(r chi.Router) {
		r.Post("/api/v1/auth/register", h.register)
		r.With(loginLimit).Post("/api/v1/auth/login", h.login)
		r.With(loginLimit).Post("/api/v1/auth/login/2fa", h.loginTwoFA)
		r.Post("/api/v1/auth/refresh", h.refresh)

		r.Post("/api/v1/auth/verify-email", h.verifyEmail)
		r.With(resetLimit).Post("/api/v1/auth/password-reset", h.requestPasswordReset)
		r.Post("/api/v1/auth/password-reset/confirm", h.confirmPasswordReset)

		r.With(qrCreateLimit).Post("/api/v1/auth/qr", h.qrCreate)
		r.With(qrPollLimit).Get("/api/v1/auth/qr/{sessionID}", h.qrPoll)

		r.With(h.authOptional).Get("/api/v1/plans", h.listPlans)

		r.Get("/api/v1/health", h.health)
		r.Get("/api/v1/version", h.getServerVersion)
	})

	// routes behind bearer authentication
	router.Group(func(r chi.Router) {
		r.Use(h.auth)

		r.Post("/api/v1/auth/logout", h.logout)
		r.Get("/api/v1/users/me", h.me)
		r.Post("/api/v1/auth/verify-email/request", h.requestEmailVerification)

		r.Get("/api/v1/2fa", h.twoFAStatus)
		r.Post("/api/v1/2fa/setup", h.twoFASetup)
		r.Post("/api/v1/2fa/activate", h.twoFAActivate)
		r.Post("/api/v1/2fa/disable", h.twoFADisable)
		r.Post("/api/v1/2fa/backup-codes", h.twoFARegenerateBackupCodes)

		r.Post("/api/v1/auth/qr/{sessionID}/claim", h.qrClaim)
		r.Post("/api/v1/auth/qr/{sessionID}/approve", h.qrApprove)
		r.Post("/api/v1/auth/qr/{sessionID}/deny", h.qrDeny)

		r.Post("/api/v1/subscriptions", h.subscribe)
		r.Get("/api/v1/subscriptions/me", h.mySubscription)
		r.Delete("/api/v1/subscriptions/me", h.cancelSubscription)
		r.Post("/api/v1/subscriptions/me/resume", h.resumeSubscription)
		r.Post("/api/v1/subscriptions/me/plan", h.changePlan)
	})

	// plan management, admins only
	router.Group(func(r chi.Router) {
		r.Use(h.auth, h.admin)

		r.Post("/api/v1/plans", h.createPlan)
		r.Patch("/api/v1/plans/{planID}", h.updatePlan)
	})

	router.Method(http.MethodGet, "/metrics", promhttp.Handler())

	router.MethodNotAllowed(CheckHTTPMethod(router))

	return router
}
